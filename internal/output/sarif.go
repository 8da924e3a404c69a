package output

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/repolens/internal/review"
)

// SARIFWriter outputs issues in SARIF v2.1.0 format.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	Level      string          `json:"level"`
	Message    sarifMessage    `json:"message"`
	Locations  []sarifLocation `json:"locations"`
	Fixes      []sarifFix      `json:"fixes,omitempty"`
	Properties sarifProperties `json:"properties"`
}

type sarifProperties struct {
	OverallRating float64 `json:"overallRating"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifFix struct {
	Description sarifMessage `json:"description"`
}

func buildSARIF(report *Report) sarifLog {
	rules := []sarifRule{}
	results := []sarifResult{}
	seen := make(map[string]bool)

	if report.Batch != nil {
		for _, fr := range report.Batch.Data {
			for _, is := range fr.Issues {
				ruleID := generateRuleID(is)
				if !seen[ruleID] {
					seen[ruleID] = true
					rules = append(rules, sarifRule{
						ID:               ruleID,
						Name:             ruleName(is.Type),
						ShortDescription: sarifMessage{Text: firstLine(is.Description)},
						DefaultConfig:    sarifDefaultConfig{Level: severityToLevel(is.Severity)},
					})
				}

				result := sarifResult{
					RuleID:  ruleID,
					Level:   severityToLevel(is.Severity),
					Message: sarifMessage{Text: is.Description},
					Locations: []sarifLocation{{
						PhysicalLocation: sarifPhysicalLocation{
							ArtifactLocation: sarifArtifactLocation{URI: fr.FileName},
						},
					}},
					Properties: sarifProperties{OverallRating: fr.OverallRating},
				}
				if is.SuggestedFix != "" {
					result.Fixes = append(result.Fixes, sarifFix{
						Description: sarifMessage{Text: is.SuggestedFix},
					})
				}
				results = append(results, result)
			}
		}
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "repolens",
						InformationURI: "https://github.com/dshills/repolens",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

// severityToLevel maps issue severity to SARIF level.
func severityToLevel(s review.Severity) string {
	switch s {
	case review.SeverityHigh:
		return "error"
	case review.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func ruleName(issueType string) string {
	name := strings.ToLower(strings.Join(strings.Fields(issueType), "-"))
	if name == "" {
		return "general"
	}
	return name
}

// generateRuleID creates a stable rule ID from issue type and description.
func generateRuleID(is review.Issue) string {
	name := ruleName(is.Type)
	h := sha256.Sum256([]byte(name + "/" + is.Description))
	return fmt.Sprintf("repolens/%s/%x", name, h[:4])
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
