package review

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRules(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRules_Empty(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules != nil {
		t.Error("expected nil rules for empty path")
	}
}

func TestLoadRules_YAML(t *testing.T) {
	path := writeRules(t, "rules.yaml", `
focus:
  - security
  - correctness
severityOverrides:
  Style: Low
  security: critical
required:
  - id: go-errors
    text: Ensure errors are wrapped with context
`)
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if len(rules.Focus) != 2 || rules.Focus[0] != "security" {
		t.Errorf("Focus = %v", rules.Focus)
	}
	if rules.SeverityOverrides["style"] != "low" {
		t.Errorf("SeverityOverrides[style] = %q, want low", rules.SeverityOverrides["style"])
	}
	if rules.SeverityOverrides["security"] != "high" {
		t.Errorf("SeverityOverrides[security] = %q, want high", rules.SeverityOverrides["security"])
	}
	if len(rules.Required) != 1 || rules.Required[0].ID != "go-errors" {
		t.Errorf("Required = %+v", rules.Required)
	}
}

func TestLoadRules_JSON(t *testing.T) {
	path := writeRules(t, "rules.json", `{
		"focus": ["performance"],
		"severityOverrides": {"performance": "medium"}
	}`)
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if rules.SeverityOverrides["performance"] != "medium" {
		t.Errorf("SeverityOverrides = %v", rules.SeverityOverrides)
	}
}

func TestLoadRules_Errors(t *testing.T) {
	if _, err := LoadRules("/nonexistent/path/rules.yaml"); err == nil {
		t.Error("expected error for nonexistent file")
	}
	if _, err := LoadRules(writeRules(t, "bad.yaml", "focus: [unclosed")); err == nil {
		t.Error("expected error for invalid YAML")
	}
	_, err := LoadRules(writeRules(t, "sev.yaml", "severityOverrides:\n  style: urgent\n"))
	if err == nil || !strings.Contains(err.Error(), "urgent") {
		t.Errorf("expected invalid severity error, got %v", err)
	}
}

func TestBuildRulesPromptSection(t *testing.T) {
	if got := BuildRulesPromptSection(nil); got != "" {
		t.Errorf("nil rules should produce empty section, got %q", got)
	}

	rules := &Rules{
		Focus:             []string{"security", "correctness"},
		SeverityOverrides: map[string]string{"style": "low", "security": "high"},
		Required:          []RequiredCheck{{ID: "no-panics", Text: "Library code must not panic"}},
	}
	section := BuildRulesPromptSection(rules)

	for _, want := range []string{
		"Focus areas: security, correctness",
		"- security issues should be rated as high severity.",
		"- style issues should be rated as low severity.",
		"[no-panics] Library code must not panic",
	} {
		if !strings.Contains(section, want) {
			t.Errorf("section missing %q:\n%s", want, section)
		}
	}
	// Overrides are listed in a stable order.
	if strings.Index(section, "security issues") > strings.Index(section, "style issues") {
		t.Error("severity overrides should be sorted by type")
	}
}

func TestApplySeverityOverrides(t *testing.T) {
	issues := []Issue{
		{Type: "Style", Severity: SeverityHigh},
		{Type: "security", Severity: SeverityLow},
		{Type: "performance", Severity: SeverityMedium},
	}
	rules := &Rules{SeverityOverrides: map[string]string{"style": "low", "security": "high"}}

	got := ApplySeverityOverrides(issues, rules)
	if got[0].Severity != SeverityLow {
		t.Errorf("style severity = %s, want low", got[0].Severity)
	}
	if got[1].Severity != SeverityHigh {
		t.Errorf("security severity = %s, want high", got[1].Severity)
	}
	if got[2].Severity != SeverityMedium {
		t.Errorf("performance severity = %s, want medium (unchanged)", got[2].Severity)
	}
}

func TestApplySeverityOverrides_NoRules(t *testing.T) {
	issues := []Issue{{Type: "style", Severity: SeverityHigh}}
	if got := ApplySeverityOverrides(issues, nil); got[0].Severity != SeverityHigh {
		t.Error("nil rules should leave issues unchanged")
	}
}
