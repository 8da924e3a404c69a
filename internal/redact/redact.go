package redact

import (
	"path"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

var secretPatterns = []*regexp.Regexp{
	// key = value assignments
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`),

	// well-known token shapes
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	regexp.MustCompile(`github_pat_[A-Za-z0-9_]{22,}`),
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),

	// credentials embedded in connection strings
	regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*://[^\s:/@]+:[^\s@/]{3,}@`),
}

// Redactor scrubs file content before it is sent to a model.
type Redactor struct {
	paths []string
}

// New returns a Redactor that additionally refuses any file whose path
// matches one of the glob patterns. A leading "**/" matches at any depth.
func New(paths []string) *Redactor {
	return &Redactor{paths: append([]string(nil), paths...)}
}

// Scrub replaces every detected secret with [REDACTED] and reports how many
// replacements were made.
func (r *Redactor) Scrub(content string) (string, int) {
	n := 0
	for _, pat := range secretPatterns {
		content = pat.ReplaceAllStringFunc(content, func(string) string {
			n++
			return placeholder
		})
	}
	return content, n
}

// SkipPath reports whether p matches a configured path pattern.
func (r *Redactor) SkipPath(p string) bool {
	if r == nil {
		return false
	}
	p = strings.TrimPrefix(p, "/")
	for _, pattern := range r.paths {
		if ok, err := path.Match(pattern, p); err == nil && ok {
			return true
		}
		trimmed := strings.TrimPrefix(pattern, "**/")
		if trimmed == pattern {
			continue
		}
		// Try every suffix of the path so "**/config/*.yml" matches nested dirs.
		rest := p
		for {
			if ok, err := path.Match(trimmed, rest); err == nil && ok {
				return true
			}
			i := strings.IndexByte(rest, '/')
			if i < 0 {
				break
			}
			rest = rest[i+1:]
		}
	}
	return false
}
