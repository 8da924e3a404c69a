package review

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/dshills/repolens/internal/github"
)

// fakeModel answers prompts through a function and counts calls.
type fakeModel struct {
	calls   atomic.Int32
	answer  func(prompt string) (string, error)
	mu      sync.Mutex
	prompts []string
}

func (m *fakeModel) Complete(_ context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.answer(prompt)
}

func staticModel(answer string) *fakeModel {
	return &fakeModel{answer: func(string) (string, error) { return answer, nil }}
}

type fakeTree struct {
	entries []github.TreeEntry
	err     error
	calls   atomic.Int32
}

func (f *fakeTree) FetchTree(context.Context, github.Repo) ([]github.TreeEntry, error) {
	f.calls.Add(1)
	return f.entries, f.err
}

// fakeContent serves file contents keyed by content URL.
type fakeContent struct {
	files map[string]string
	calls atomic.Int32
}

func (f *fakeContent) FetchContent(_ context.Context, url string) (string, error) {
	f.calls.Add(1)
	content, ok := f.files[url]
	if !ok {
		return "", &github.UpstreamError{Op: "fetching content", StatusCode: 404, Status: "Not Found"}
	}
	return content, nil
}

type selectorFunc func(ctx context.Context, paths []string) (map[string]struct{}, error)

func (f selectorFunc) Select(ctx context.Context, paths []string) (map[string]struct{}, error) {
	return f(ctx, paths)
}

// recordingReviewer returns a review per path and records which paths were
// attempted.
type recordingReviewer struct {
	mu       sync.Mutex
	reviewed []string
	fail     map[string]error
}

func (r *recordingReviewer) Review(_ context.Context, _, path string) (FileReview, error) {
	r.mu.Lock()
	r.reviewed = append(r.reviewed, path)
	r.mu.Unlock()
	if err := r.fail[path]; err != nil {
		return FileReview{}, err
	}
	return FileReview{FileName: path, IsGoodQuality: true, Issues: []Issue{}, OverallRating: 7}, nil
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

func blob(path string) github.TreeEntry {
	return github.TreeEntry{Path: path, ContentURL: "blob://" + path, Kind: github.KindBlob}
}

func dir(path string) github.TreeEntry {
	return github.TreeEntry{Path: path, ContentURL: "tree://" + path, Kind: github.KindTree}
}

func set(paths ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

const goodReviewJSON = `{
  "fileName": "src/a.ts",
  "isGoodQuality": true,
  "issues": [
    {"type": "style", "description": "Use const", "severity": "low", "suggestedFix": "Replace let with const"}
  ],
  "overallRating": 8,
  "reasonForRating": "Readable and small"
}`

func fenced(s string) string {
	return "Here is my review:\n```json\n" + s + "\n```\nLet me know if you need more."
}

var errBoom = errors.New("boom")
