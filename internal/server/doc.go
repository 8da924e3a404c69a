// Package server exposes the repository review pipeline over HTTP.
//
// Routes:
//
//	POST /gitUrl          review the repository named by {"gitUrl": "..."}
//	GET  /                health check
//	GET  /repos/{owner}   list a user's public repositories
//
// Request bodies are limited to 1 MiB and every request is logged with its
// method, path, status and duration.
package server
