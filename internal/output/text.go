package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/repolens/internal/review"
)

// TextWriter outputs a human-readable report. Colours are used only when w
// is a terminal.
type TextWriter struct{}

type textStyles struct {
	title, dim, good, bad lipgloss.Style
	severity              map[review.Severity]lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		dim:   r.NewStyle().Foreground(lipgloss.Color("#888888")),
		good:  r.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		severity: map[review.Severity]lipgloss.Style{
			review.SeverityHigh:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
			review.SeverityMedium: r.NewStyle().Foreground(lipgloss.Color("#FFB347")),
			review.SeverityLow:    r.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
		},
	}
}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}
	st := newTextStyles(w)
	sum := Summarize(report.Batch)

	ew.println(st.title.Render("repolens review: " + report.Repo))
	ew.println(strings.Repeat("─", 60))
	ew.printf("Files reviewed: %d", sum.Files)
	if report.Stats.Attempted > 0 {
		ew.printf(" of %d selected", report.Stats.Attempted)
		if report.Stats.Failed > 0 {
			ew.printf(" (%d failed)", report.Stats.Failed)
		}
	}
	ew.println("")
	ew.printf("Issues: %d total", sum.Issues.Total())
	if sum.Issues.Total() > 0 {
		ew.printf(" (%d high, %d medium, %d low)", sum.Issues.High, sum.Issues.Medium, sum.Issues.Low)
	}
	ew.println("")
	if sum.Files > 0 {
		ew.printf("Rating: mean %.1f, median %.1f, min %.1f, max %.1f\n",
			sum.MeanRating, sum.MedianRating, sum.MinRating, sum.MaxRating)
		ew.printf("Good quality: %d of %d\n", sum.GoodQuality, sum.Files)
	}
	ew.println(strings.Repeat("─", 60))

	if sum.Files == 0 {
		ew.println("\nNo files were reviewed.")
		return ew.err
	}

	for _, fr := range report.Batch.Data {
		verdict := st.bad.Render("needs work")
		if fr.IsGoodQuality {
			verdict = st.good.Render("good")
		}
		ew.printf("\n%s  %s/10  %s\n", fr.FileName, formatRating(fr.OverallRating), verdict)
		for _, line := range wrapText(fr.ReasonForRating, 70) {
			ew.printf("  %s\n", st.dim.Render(line))
		}

		for _, is := range sortedIssues(fr.Issues) {
			label := st.severity[is.Severity].Render(severityIcon(is.Severity) + " " + strings.ToUpper(string(is.Severity)))
			ew.printf("\n  %s %s\n", label, is.Type)
			for _, line := range wrapText(is.Description, 70) {
				ew.printf("    %s\n", line)
			}
			if is.SuggestedFix != "" {
				ew.println("    Fix:")
				for _, line := range wrapText(is.SuggestedFix, 68) {
					ew.printf("      %s\n", line)
				}
			}
		}
	}

	if report.Duration > 0 {
		ew.printf("\n%s\n", strings.Repeat("─", 60))
		ew.printf("Completed in %s\n", report.Duration.Round(time.Millisecond))
	}

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

// sortedIssues returns issues ordered by severity, most severe first, keeping
// the model's order within a severity.
func sortedIssues(issues []review.Issue) []review.Issue {
	out := make([]review.Issue, 0, len(issues))
	for _, sev := range []review.Severity{review.SeverityHigh, review.SeverityMedium, review.SeverityLow} {
		for _, is := range issues {
			if is.Severity == sev {
				out = append(out, is)
			}
		}
	}
	return out
}

func formatRating(r float64) string {
	if r == float64(int(r)) {
		return fmt.Sprintf("%d", int(r))
	}
	return fmt.Sprintf("%.1f", r)
}

func severityIcon(s review.Severity) string {
	switch s {
	case review.SeverityHigh:
		return "[!!]"
	case review.SeverityMedium:
		return "[!]"
	case review.SeverityLow:
		return "[-]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
