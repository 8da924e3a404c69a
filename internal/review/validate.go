package review

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type rawIssue struct {
	Type         string `json:"type"`
	Description  string `json:"description"`
	Severity     string `json:"severity"`
	SuggestedFix string `json:"suggestedFix"`
}

type rawReview struct {
	FileName        string          `json:"fileName"`
	IsGoodQuality   *bool           `json:"isGoodQuality"`
	Issues          []rawIssue      `json:"issues"`
	OverallRating   json.RawMessage `json:"overallRating"`
	ReasonForRating string          `json:"reasonForRating"`
	// Older prompts asked for this misspelled key.
	LegacyReason string `json:"resoneForRating"`
}

// decodeReview turns the JSON extracted from a model answer into a
// FileReview, coercing the loose shapes models tend to produce and rejecting
// anything that does not fit the review schema.
func decodeReview(payload, path string) (FileReview, error) {
	data := bytes.TrimSpace([]byte(payload))

	// Some models wrap the object in a one-element array.
	if len(data) > 0 && data[0] == '[' {
		var wrapped []json.RawMessage
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return FileReview{}, fmt.Errorf("decoding review: %w", err)
		}
		if len(wrapped) != 1 {
			return FileReview{}, fmt.Errorf("expected one review object, got an array of %d", len(wrapped))
		}
		data = bytes.TrimSpace(wrapped[0])
	}
	if len(data) == 0 || data[0] != '{' {
		return FileReview{}, errors.New("review is not a JSON object")
	}

	var raw rawReview
	if err := json.Unmarshal(data, &raw); err != nil {
		return FileReview{}, fmt.Errorf("decoding review: %w", err)
	}

	if raw.IsGoodQuality == nil {
		return FileReview{}, errors.New("missing isGoodQuality")
	}
	rating, err := parseRating(raw.OverallRating)
	if err != nil {
		return FileReview{}, err
	}

	issues := make([]Issue, 0, len(raw.Issues))
	for i, ri := range raw.Issues {
		sev, ok := normalizeSeverity(ri.Severity)
		if !ok {
			return FileReview{}, fmt.Errorf("issue %d: invalid severity %q", i, ri.Severity)
		}
		issues = append(issues, Issue{
			Type:         strings.TrimSpace(ri.Type),
			Description:  strings.TrimSpace(ri.Description),
			Severity:     sev,
			SuggestedFix: strings.TrimSpace(ri.SuggestedFix),
		})
	}

	fileName := strings.TrimSpace(raw.FileName)
	if fileName == "" {
		fileName = path
	}
	reason := raw.ReasonForRating
	if reason == "" {
		reason = raw.LegacyReason
	}

	return FileReview{
		FileName:        fileName,
		IsGoodQuality:   *raw.IsGoodQuality,
		Issues:          issues,
		OverallRating:   rating,
		ReasonForRating: strings.TrimSpace(reason),
	}, nil
}

// parseRating accepts a JSON number or a numeric string in [0, 10].
func parseRating(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("missing overallRating")
	}

	var rating float64
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("decoding overallRating: %w", err)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("overallRating %q is not a number", s)
		}
		rating = f
	} else if err := json.Unmarshal(raw, &rating); err != nil {
		return 0, fmt.Errorf("overallRating %s is not a number", raw)
	}

	if math.IsNaN(rating) || rating < 0 || rating > 10 {
		return 0, fmt.Errorf("overallRating %v out of range [0, 10]", rating)
	}
	return rating, nil
}

// normalizeSeverity maps model severities onto low, medium or high.
func normalizeSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "minor", "info":
		return SeverityLow, true
	case "medium":
		return SeverityMedium, true
	case "high", "critical", "severe":
		return SeverityHigh, true
	default:
		return "", false
	}
}
