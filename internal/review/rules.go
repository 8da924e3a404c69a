package review

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules is an optional rules pack that steers every file review. The file
// may be YAML or JSON.
type Rules struct {
	Focus             []string          `yaml:"focus,omitempty"`
	SeverityOverrides map[string]string `yaml:"severityOverrides,omitempty"`
	Required          []RequiredCheck   `yaml:"required,omitempty"`
}

// RequiredCheck is a policy check that should always be evaluated.
type RequiredCheck struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// LoadRules loads a rules file from disk. Returns nil Rules and nil error if path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	// Normalise override keys and values once so lookups are case-insensitive.
	if len(rules.SeverityOverrides) > 0 {
		overrides := make(map[string]string, len(rules.SeverityOverrides))
		for typ, sev := range rules.SeverityOverrides {
			s, ok := normalizeSeverity(sev)
			if !ok {
				return nil, fmt.Errorf("parsing rules file: invalid severity %q for %q", sev, typ)
			}
			overrides[strings.ToLower(strings.TrimSpace(typ))] = string(s)
		}
		rules.SeverityOverrides = overrides
	}
	return &rules, nil
}

// BuildRulesPromptSection returns additional prompt instructions derived from rules.
func BuildRulesPromptSection(rules *Rules) string {
	if rules == nil {
		return ""
	}

	var b strings.Builder

	if len(rules.Focus) > 0 {
		fmt.Fprintf(&b, "\nFocus areas: %s. Prioritize issues in these areas.\n",
			strings.Join(rules.Focus, ", "))
	}

	if len(rules.SeverityOverrides) > 0 {
		types := make([]string, 0, len(rules.SeverityOverrides))
		for typ := range rules.SeverityOverrides {
			types = append(types, typ)
		}
		sort.Strings(types)

		b.WriteString("\nSeverity policy:\n")
		for _, typ := range types {
			fmt.Fprintf(&b, "- %s issues should be rated as %s severity.\n", typ, rules.SeverityOverrides[typ])
		}
	}

	if len(rules.Required) > 0 {
		b.WriteString("\nRequired checks (always evaluate these):\n")
		for _, req := range rules.Required {
			fmt.Fprintf(&b, "- [%s] %s\n", req.ID, req.Text)
		}
	}

	return b.String()
}

// ApplySeverityOverrides enforces the rules' severity for issues of an
// overridden type.
func ApplySeverityOverrides(issues []Issue, rules *Rules) []Issue {
	if rules == nil || len(rules.SeverityOverrides) == 0 {
		return issues
	}
	for i := range issues {
		typ := strings.ToLower(strings.TrimSpace(issues[i].Type))
		if override, ok := rules.SeverityOverrides[typ]; ok {
			issues[i].Severity = Severity(override)
		}
	}
	return issues
}
