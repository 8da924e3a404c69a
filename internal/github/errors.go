package github

import (
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v62/github"
)

// UpstreamError reports a GitHub API call that failed or returned an
// unexpected shape. StatusCode is zero when no HTTP response was received.
type UpstreamError struct {
	Op         string
	StatusCode int
	Status     string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := e.Op + ": GitHub API error"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": %d - %s", e.StatusCode, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

var (
	errNoTree    = errors.New("response has no tree")
	errNoContent = errors.New("response has no content")
)

func upstreamError(op string, resp *gh.Response, err error) *UpstreamError {
	ue := &UpstreamError{Op: op, Err: err}
	if resp != nil && resp.Response != nil {
		ue.StatusCode = resp.StatusCode
		ue.Status = http.StatusText(resp.StatusCode)
	}
	return ue
}
