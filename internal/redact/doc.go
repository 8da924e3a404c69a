// Package redact removes secrets from repository files before their content
// is sent to an LLM provider.
//
// Detection uses regex heuristics for common secret shapes: key assignments,
// JWTs, private key headers, cloud and provider tokens, and credentials
// embedded in connection URLs. Files whose paths match configured glob
// patterns are never sent at all.
package redact
