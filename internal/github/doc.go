// Package github reads repository snapshots from the GitHub API.
//
// Client lists a repository's recursive tree, fetches and decodes blob
// content, resolves default branches and lists a user's public
// repositories. It is built on go-github; a bearer token is attached only
// when one is configured. Every failed or malformed API response surfaces as
// an *UpstreamError.
package github
