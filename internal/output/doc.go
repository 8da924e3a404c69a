// Package output renders a repository review for the command line.
//
// Four formats are supported:
//   - text     human-readable terminal output (default)
//   - json     the batch exactly as the HTTP API returns it
//   - markdown one collapsible section per reviewed file
//   - sarif    SARIF v2.1.0 for code scanning tools
//
// Text and markdown start with a Summary: issue counts per severity and
// rating statistics across the reviewed files.
package output
