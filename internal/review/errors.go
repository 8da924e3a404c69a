package review

import (
	"errors"
	"fmt"
)

// ErrFileRedacted is returned for files excluded by the path redaction policy.
var ErrFileRedacted = errors.New("file excluded by redaction policy")

const maxRawInError = 500

// SelectionError reports a selection answer that did not contain a JSON
// array of paths.
type SelectionError struct {
	Raw string // model answer, truncated
	Err error
}

func (e *SelectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("file selection: unusable model response: %v", e.Err)
	}
	return "file selection: unusable model response"
}

func (e *SelectionError) Unwrap() error { return e.Err }

// ReviewParseError reports a review answer that could not be turned into a
// valid FileReview.
type ReviewParseError struct {
	Path string
	Raw  string // model answer, truncated
	Err  error
}

func (e *ReviewParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reviewing %s: unusable model response: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("reviewing %s: unusable model response", e.Path)
}

func (e *ReviewParseError) Unwrap() error { return e.Err }

var errNoJSON = errors.New("no JSON found in response")

func truncateRaw(s string) string {
	if len(s) <= maxRawInError {
		return s
	}
	return s[:maxRawInError] + "..."
}
