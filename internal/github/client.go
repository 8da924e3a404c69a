package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	gh "github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	defaultAPIURL = "https://api.github.com/"
	defaultBranch = "main"
	perPage       = 100
)

// EntryKind is the type of a tree entry as reported by GitHub.
type EntryKind string

const (
	KindBlob EntryKind = "blob"
	KindTree EntryKind = "tree"
)

// TreeEntry is one path in a repository snapshot.
type TreeEntry struct {
	Path       string    `json:"path"`
	ContentURL string    `json:"url"`
	Kind       EntryKind `json:"type"`
	Size       int       `json:"size,omitempty"`
}

// RepoSummary is a public repository listed for a user.
type RepoSummary struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Options configures a Client.
type Options struct {
	Token      string
	APIURL     string // REST base URL; defaults to api.github.com
	GraphQLURL string // defaults to api.github.com/graphql when APIURL is unset

	// Branch is the ref whose tree is fetched. Defaults to "main".
	Branch string
	// ResolveDefaultBranch looks up each repository's default branch before
	// fetching its tree instead of using Branch.
	ResolveDefaultBranch bool
	// WaitOnRateLimit sleeps through GitHub secondary rate limits (up to an
	// hour) instead of failing.
	WaitOnRateLimit bool

	Timeout time.Duration
	Logger  logrus.FieldLogger
}

// Client reads repository trees and blobs from GitHub.
type Client struct {
	rest          *gh.Client
	graphql       *githubv4.Client
	branch        string
	resolveBranch bool
	logger        logrus.FieldLogger
}

// NewClient creates a Client. Requests are unauthenticated unless a token is
// configured.
func NewClient(opts Options) (*Client, error) {
	var transport http.RoundTripper = http.DefaultTransport
	if opts.WaitOnRateLimit {
		waiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(time.Hour, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
		}
		transport = waiter
	}
	if opts.Token != "" {
		transport = &oauth2.Transport{
			Base:   transport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
		}
	}
	httpClient := &http.Client{Transport: transport, Timeout: opts.Timeout}

	rest := gh.NewClient(httpClient)
	customAPI := opts.APIURL != "" && strings.TrimRight(opts.APIURL, "/")+"/" != defaultAPIURL
	if customAPI {
		baseURL, err := url.Parse(strings.TrimRight(opts.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub API URL: %w", err)
		}
		rest.BaseURL = baseURL
	}

	// GraphQL always requires a token.
	var graphql *githubv4.Client
	if opts.Token != "" {
		switch {
		case opts.GraphQLURL != "":
			graphql = githubv4.NewEnterpriseClient(opts.GraphQLURL, httpClient)
		case !customAPI:
			graphql = githubv4.NewClient(httpClient)
		}
	}

	branch := opts.Branch
	if branch == "" {
		branch = defaultBranch
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		rest:          rest,
		graphql:       graphql,
		branch:        branch,
		resolveBranch: opts.ResolveDefaultBranch,
		logger:        logger,
	}, nil
}

// FetchTree returns the recursive file listing of the repository's branch.
// Paths are unique; GitHub's order is preserved.
func (c *Client) FetchTree(ctx context.Context, repo Repo) ([]TreeEntry, error) {
	branch, err := c.branchFor(ctx, repo)
	if err != nil {
		return nil, err
	}

	tree, resp, err := c.rest.Git.GetTree(ctx, repo.Owner, repo.Name, branch, true)
	if err != nil {
		return nil, upstreamError("fetching tree", resp, err)
	}
	if tree == nil || tree.Entries == nil {
		return nil, upstreamError("fetching tree", resp, errNoTree)
	}
	if tree.GetTruncated() {
		c.logger.WithFields(logrus.Fields{"repo": repo.String(), "entries": len(tree.Entries)}).
			Warn("GitHub truncated the tree listing, reviewing a partial snapshot")
	}

	seen := make(map[string]bool, len(tree.Entries))
	entries := make([]TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		path := e.GetPath()
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		entries = append(entries, TreeEntry{
			Path:       path,
			ContentURL: e.GetURL(),
			Kind:       EntryKind(e.GetType()),
			Size:       e.GetSize(),
		})
	}
	return entries, nil
}

// FetchContent downloads the blob at contentURL and returns it decoded.
func (c *Client) FetchContent(ctx context.Context, contentURL string) (string, error) {
	req, err := c.rest.NewRequest(http.MethodGet, contentURL, nil)
	if err != nil {
		return "", &UpstreamError{Op: "fetching content", Err: err}
	}

	var blob gh.Blob
	resp, err := c.rest.Do(ctx, req, &blob)
	if err != nil {
		return "", upstreamError("fetching content", resp, err)
	}
	if blob.Content == nil || blob.GetContent() == "" {
		return "", upstreamError("fetching content", resp, errNoContent)
	}

	switch enc := blob.GetEncoding(); enc {
	case "base64", "":
		// GitHub wraps base64 payloads at 60 columns.
		cleaned := strings.NewReplacer("\n", "", "\r", "").Replace(blob.GetContent())
		decoded, err := base64.StdEncoding.DecodeString(cleaned)
		if err != nil {
			return "", upstreamError("decoding content", resp, err)
		}
		return string(decoded), nil
	case "utf-8":
		return blob.GetContent(), nil
	default:
		return "", upstreamError("decoding content", resp, fmt.Errorf("unsupported encoding %q", enc))
	}
}

// ListRepos lists the public repositories owned by user.
func (c *Client) ListRepos(ctx context.Context, user string) ([]RepoSummary, error) {
	opts := &gh.RepositoryListByUserOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
		Type:        "owner",
	}

	repos := []RepoSummary{}
	for {
		page, resp, err := c.rest.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, upstreamError("listing repositories", resp, err)
		}
		for _, r := range page {
			repos = append(repos, RepoSummary{Name: r.GetName(), URL: r.GetHTMLURL()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repos, nil
}

// defaultBranchQuery reads a repository's default branch over GraphQL.
type defaultBranchQuery struct {
	Repository struct {
		DefaultBranchRef struct {
			Name string
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

func (c *Client) branchFor(ctx context.Context, repo Repo) (string, error) {
	if !c.resolveBranch {
		return c.branch, nil
	}

	var branch string
	if c.graphql != nil {
		var q defaultBranchQuery
		vars := map[string]interface{}{
			"owner": githubv4.String(repo.Owner),
			"name":  githubv4.String(repo.Name),
		}
		if err := c.graphql.Query(ctx, &q, vars); err != nil {
			return "", &UpstreamError{Op: "resolving default branch", Err: err}
		}
		branch = q.Repository.DefaultBranchRef.Name
	} else {
		r, resp, err := c.rest.Repositories.Get(ctx, repo.Owner, repo.Name)
		if err != nil {
			return "", upstreamError("resolving default branch", resp, err)
		}
		branch = r.GetDefaultBranch()
	}

	if branch == "" {
		return "", &UpstreamError{Op: "resolving default branch", Err: fmt.Errorf("%s has no default branch", repo)}
	}
	c.logger.WithFields(logrus.Fields{"repo": repo.String(), "branch": branch}).Debug("resolved default branch")
	return branch, nil
}
