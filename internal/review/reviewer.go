package review

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/dshills/repolens/internal/extract"
	"github.com/dshills/repolens/internal/redact"
)

// DefaultMaxFileBytes is the content size above which files are truncated
// before prompting.
const DefaultMaxFileBytes = 100000

// ContentFetcher downloads the decoded content of a repository file.
type ContentFetcher interface {
	FetchContent(ctx context.Context, contentURL string) (string, error)
}

// ReviewerOptions tunes what a Reviewer sends to the model.
type ReviewerOptions struct {
	// MaxFileBytes truncates larger files. Zero means DefaultMaxFileBytes,
	// negative disables truncation.
	MaxFileBytes  int
	RedactSecrets bool
	RedactPaths   []string
	Rules         *Rules
}

// Reviewer produces the structured review of one file.
type Reviewer struct {
	content      ContentFetcher
	model        Model
	redactor     *redact.Redactor
	scrub        bool
	rules        *Rules
	maxFileBytes int
	logger       logrus.FieldLogger
}

// NewReviewer creates a Reviewer.
func NewReviewer(content ContentFetcher, model Model, opts ReviewerOptions, logger logrus.FieldLogger) *Reviewer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	maxBytes := opts.MaxFileBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxFileBytes
	}
	return &Reviewer{
		content:      content,
		model:        model,
		redactor:     redact.New(opts.RedactPaths),
		scrub:        opts.RedactSecrets,
		rules:        opts.Rules,
		maxFileBytes: maxBytes,
		logger:       logger,
	}
}

// Review fetches the file at contentURL and asks the model to critique it.
func (r *Reviewer) Review(ctx context.Context, contentURL, path string) (FileReview, error) {
	if r.redactor.SkipPath(path) {
		return FileReview{}, fmt.Errorf("reviewing %s: %w", path, ErrFileRedacted)
	}

	content, err := r.content.FetchContent(ctx, contentURL)
	if err != nil {
		return FileReview{}, fmt.Errorf("reviewing %s: %w", path, err)
	}

	content = truncateContent(content, r.maxFileBytes)
	if r.scrub {
		var n int
		content, n = r.redactor.Scrub(content)
		if n > 0 {
			r.logger.WithFields(logrus.Fields{"path": path, "redactions": n}).Debug("redacted secrets before review")
		}
	}

	answer, err := r.model.Complete(ctx, BuildReviewPrompt(path, content, r.rules))
	if err != nil {
		return FileReview{}, fmt.Errorf("reviewing %s: %w", path, err)
	}
	return r.parse(answer, path)
}

// parse decodes a model answer into a review and applies severity overrides.
func (r *Reviewer) parse(answer, path string) (FileReview, error) {
	payload, ok := extract.JSON(answer)
	if !ok {
		return FileReview{}, &ReviewParseError{Path: path, Raw: truncateRaw(answer), Err: errNoJSON}
	}
	review, err := decodeReview(payload, path)
	if err != nil {
		return FileReview{}, &ReviewParseError{Path: path, Raw: truncateRaw(answer), Err: err}
	}
	review.Issues = ApplySeverityOverrides(review.Issues, r.rules)
	return review, nil
}

// truncateContent cuts content to at most limit bytes on a rune boundary and
// appends a marker saying how much was kept.
func truncateContent(content string, limit int) string {
	if limit <= 0 || len(content) <= limit {
		return content
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + fmt.Sprintf("\n... [truncated: showing %d of %d bytes]\n", cut, len(content))
}
