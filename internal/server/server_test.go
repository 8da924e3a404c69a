package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/repolens/internal/github"
	"github.com/dshills/repolens/internal/review"
)

type fakePipeline struct {
	calls atomic.Int32
	mu    sync.Mutex
	repo  github.Repo
	batch *review.Batch
	err   error
}

func (f *fakePipeline) Run(_ context.Context, repo github.Repo) (*review.Batch, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.repo = repo
	f.mu.Unlock()
	return f.batch, f.err
}

func (f *fakePipeline) lastRepo() github.Repo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repo
}

type fakeLister struct {
	mu    sync.Mutex
	repos []github.RepoSummary
	err   error
	user  string
}

func (f *fakeLister) ListRepos(_ context.Context, user string) ([]github.RepoSummary, error) {
	f.mu.Lock()
	f.user = user
	f.mu.Unlock()
	return f.repos, f.err
}

func (f *fakeLister) lastUser() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

func newTestServer(t *testing.T, p Pipeline, l RepoLister) (*httptest.Server, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	srv := httptest.NewServer(New(p, l, logger).Handler())
	t.Cleanup(srv.Close)
	return srv, hook
}

func postGitURL(t *testing.T, srv *httptest.Server, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/gitUrl", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestGitURL_BadRequests(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed json", `{"gitUrl":`, "Invalid request body"},
		{"wrong type", `{"gitUrl": 42}`, "Invalid request body"},
		{"missing url", `{}`, "Git URL is required"},
		{"empty url", `{"gitUrl": ""}`, "Git URL is required"},
		{"not github", `{"gitUrl": "https://gitlab.com/o/r"}`, "Invalid GitHub URL"},
		{"no repo", `{"gitUrl": "https://github.com/owner"}`, "Invalid GitHub URL"},
		{"garbage", `{"gitUrl": "not a url at all"}`, "Invalid GitHub URL"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakePipeline{}
			srv, _ := newTestServer(t, p, &fakeLister{})

			status, body := postGitURL(t, srv, tc.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tc.wantErr, body["error"])
			assert.Zero(t, p.calls.Load(), "no pipeline work for a rejected request")
		})
	}
}

func TestGitURL_Success(t *testing.T) {
	p := &fakePipeline{batch: &review.Batch{
		Status: review.StatusSuccess,
		Data:   []review.FileReview{{FileName: "src/a.ts", IsGoodQuality: true, Issues: []review.Issue{}, OverallRating: 8}},
	}}
	srv, _ := newTestServer(t, p, &fakeLister{})

	status, body := postGitURL(t, srv, `{"gitUrl": "https://github.com/octo/cat.git"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, github.Repo{Owner: "octo", Name: "cat"}, p.lastRepo())
	assert.Equal(t, "success", body["status"])
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "src/a.ts", data[0].(map[string]any)["fileName"])
}

func TestGitURL_EmptyDataIsArray(t *testing.T) {
	p := &fakePipeline{batch: &review.Batch{Status: review.StatusSuccess}}
	srv, _ := newTestServer(t, p, &fakeLister{})

	resp, err := http.Post(srv.URL+"/gitUrl", "application/json", strings.NewReader(`{"gitUrl":"github.com/o/r"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, "[]", string(raw["data"]))
}

func TestGitURL_PipelineFailures(t *testing.T) {
	upstream := &github.UpstreamError{Op: "fetching tree", StatusCode: 404, Status: "Not Found"}
	testCases := []struct {
		name        string
		err         error
		wantError   string
		wantDetails string
	}{
		{
			name:        "tree",
			err:         &review.StageError{Stage: review.StageFetchingTree, Err: upstream},
			wantError:   "Failed to fetch repository tree",
			wantDetails: upstream.Error(),
		},
		{
			name:        "selection",
			err:         &review.StageError{Stage: review.StageSelectingFiles, Err: errors.New("model down")},
			wantError:   "Failed to select files for review",
			wantDetails: "model down",
		},
		{
			name:        "unknown",
			err:         errors.New("surprise"),
			wantError:   "Internal server error",
			wantDetails: "surprise",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, hook := newTestServer(t, &fakePipeline{err: tc.err}, &fakeLister{})

			status, body := postGitURL(t, srv, `{"gitUrl": "https://github.com/octo/cat"}`)
			assert.Equal(t, http.StatusInternalServerError, status)
			assert.Equal(t, tc.wantError, body["error"])
			assert.Equal(t, tc.wantDetails, body["details"])

			var logged bool
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.ErrorLevel && e.Data["repo"] == "octo/cat" {
					logged = true
				}
			}
			assert.True(t, logged, "pipeline failure should be logged with the repo")
		})
	}
}

func TestGitURL_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, &fakePipeline{}, &fakeLister{})
	resp, err := http.Get(srv.URL + "/gitUrl")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestGitURL_BodyTooLarge(t *testing.T) {
	p := &fakePipeline{}
	logger, _ := test.NewNullLogger()
	handler := New(p, &fakeLister{}, logger).Handler()

	body := `{"gitUrl": "` + strings.Repeat("a", maxBodyBytes+10) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/gitUrl", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var decoded errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "Request body too large", decoded.Error)
	assert.Zero(t, p.calls.Load())
}

func TestHealth(t *testing.T) {
	srv, hook := newTestServer(t, &fakePipeline{}, &fakeLister{})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, healthResponse{Status: "ok", Message: "repolens API"}, body)

	// The request line is logged after the response is flushed.
	require.Eventually(t, func() bool {
		for _, e := range hook.AllEntries() {
			if e.Data["method"] == "GET" && e.Data["path"] == "/" && e.Data["status"] == http.StatusOK {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestUnknownPath(t *testing.T) {
	srv, _ := newTestServer(t, &fakePipeline{}, &fakeLister{})
	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListRepos(t *testing.T) {
	lister := &fakeLister{repos: []github.RepoSummary{{Name: "cat", URL: "https://github.com/octo/cat"}}}
	srv, _ := newTestServer(t, &fakePipeline{}, lister)

	resp, err := http.Get(srv.URL + "/repos/octo")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "octo", lister.lastUser())

	var got []github.RepoSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, lister.repos, got)
}

func TestListRepos_UpstreamFailure(t *testing.T) {
	lister := &fakeLister{err: &github.UpstreamError{Op: "listing repositories", StatusCode: 404, Status: "Not Found"}}
	srv, _ := newTestServer(t, &fakePipeline{}, lister)

	resp, err := http.Get(srv.URL + "/repos/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Failed to list repositories", body.Error)
	assert.Contains(t, body.Details, "404")
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	s := New(&fakePipeline{}, &fakeLister{}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
