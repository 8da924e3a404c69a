// Repolens reviews GitHub repositories with an LLM.
//
// The model first picks the files worth reviewing from the repository tree,
// then each picked file is reviewed on its own and the structured results
// are collected into one batch.
//
// Usage:
//
//	repolens review https://github.com/owner/repo   # review once, print a report
//	repolens review <url> --format sarif --out r.sarif
//	repolens serve --addr :8080                      # POST /gitUrl {"gitUrl": "..."}
//	repolens config init                             # write a default config file
//	repolens models list                             # known providers and models
package main
