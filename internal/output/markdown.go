package output

import (
	"io"
	"strings"
	"time"

	"github.com/dshills/repolens/internal/review"
)

// MarkdownWriter outputs a markdown report with one collapsible section per file.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}
	sum := Summarize(report.Batch)

	ew.printf("## repolens review: %s\n\n", report.Repo)

	ew.println("| Metric | Value |")
	ew.println("|--------|-------|")
	ew.printf("| Files reviewed | %d |\n", sum.Files)
	if report.Stats.Failed > 0 {
		ew.printf("| Files skipped | %d |\n", report.Stats.Failed)
	}
	ew.printf("| Good quality | %d |\n", sum.GoodQuality)
	ew.printf("| High issues | %d |\n", sum.Issues.High)
	ew.printf("| Medium issues | %d |\n", sum.Issues.Medium)
	ew.printf("| Low issues | %d |\n", sum.Issues.Low)
	if sum.Files > 0 {
		ew.printf("| Mean rating | %.1f |\n", sum.MeanRating)
		ew.printf("| Median rating | %.1f |\n", sum.MedianRating)
		ew.printf("| Rating range | %s to %s |\n", formatRating(sum.MinRating), formatRating(sum.MaxRating))
	}
	ew.println("")

	if sum.Files == 0 {
		ew.println("No files were reviewed.")
		return ew.err
	}

	for _, fr := range report.Batch.Data {
		status := ":warning:"
		if fr.IsGoodQuality {
			status = ":white_check_mark:"
		}
		ew.printf("<details>\n<summary>%s <code>%s</code> %s/10 (%d issues)</summary>\n\n",
			status, fr.FileName, formatRating(fr.OverallRating), len(fr.Issues))

		if fr.ReasonForRating != "" {
			ew.printf("%s\n\n", fr.ReasonForRating)
		}

		for _, is := range sortedIssues(fr.Issues) {
			ew.printf("#### %s %s: %s\n\n", mdSeverityIcon(is.Severity), strings.ToUpper(string(is.Severity)), is.Type)
			ew.printf("%s\n\n", is.Description)

			if is.SuggestedFix != "" {
				ew.println("**Suggested fix:**\n")
				if looksLikeCode(is.SuggestedFix) {
					ew.printf("```%s\n%s\n```\n\n", inferLang(fr.FileName), is.SuggestedFix)
				} else {
					ew.printf("> %s\n\n", strings.ReplaceAll(is.SuggestedFix, "\n", "\n> "))
				}
			}
		}

		ew.println("</details>\n")
	}

	if report.Duration > 0 {
		ew.printf("*Reviewed in %s*\n", report.Duration.Round(time.Millisecond))
	}
	return ew.err
}

func mdSeverityIcon(s review.Severity) string {
	switch s {
	case review.SeverityHigh:
		return ":red_circle:"
	case review.SeverityMedium:
		return ":orange_circle:"
	case review.SeverityLow:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}

func looksLikeCode(s string) bool {
	codeIndicators := []string{
		"func ", "return ", "const ", "let ",
		"def ", "class ", "import ",
		"{", "}", "=>", ":=", "==",
		"()", "[];",
	}
	for _, indicator := range codeIndicators {
		if strings.Contains(s, indicator) {
			return true
		}
	}
	return false
}

var mdLangs = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".tsx":  "tsx",
	".jsx":  "jsx",
	".rs":   "rust",
	".java": "java",
	".rb":   "ruby",
	".cpp":  "cpp",
	".c":    "c",
	".cs":   "csharp",
	".php":  "php",
	".sh":   "bash",
	".sql":  "sql",
	".tf":   "hcl",
}

func inferLang(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return mdLangs[strings.ToLower(path[i:])]
	}
	return ""
}
