package github

import (
	"fmt"
	"regexp"
	"strings"
)

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string { return r.Owner + "/" + r.Name }

var repoURLRe = regexp.MustCompile(`^(?i:https?://)?(?i:www\.)?(?i:github\.com)/([^/\s]+)/([^/\s]+?)(?:\.git)?(?:/.*)?$`)

// ParseRepoURL extracts owner and repository name from a GitHub URL such as
// https://github.com/owner/repo, www.github.com/owner/repo.git or a deeper
// browser link like github.com/owner/repo/tree/main.
func ParseRepoURL(raw string) (Repo, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	m := repoURLRe.FindStringSubmatch(s)
	if m == nil {
		return Repo{}, fmt.Errorf("not a GitHub repository URL: %q", raw)
	}
	return Repo{Owner: m[1], Name: m[2]}, nil
}
