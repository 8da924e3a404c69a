package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// labeledFenceRe matches the shortest ```json ... ``` block.
	labeledFenceRe = regexp.MustCompile("(?s)```(?i:json)\\s*(.*?)\\s*```")
	// labeledFenceGreedyRe runs to the last fence, for payloads whose string
	// values contain fences of their own.
	labeledFenceGreedyRe = regexp.MustCompile("(?s)```(?i:json)\\s*(.*)\\s*```")
	// bareFenceRe matches a fence with no language label.
	bareFenceRe = regexp.MustCompile("(?s)```[ \\t]*\\r?\\n(.*?)```")
)

// JSON returns the JSON text embedded in raw and true, or "" and false when
// raw holds no well-formed JSON. The returned string is the candidate text
// as found, trimmed, so callers decode it into their own types.
//
// Candidates are tried in order: a ```json fenced block, the whole input,
// then an unlabeled fenced block.
func JSON(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	for _, candidate := range candidates(raw) {
		if candidate != "" && json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

func candidates(raw string) []string {
	var out []string
	if m := labeledFenceRe.FindStringSubmatch(raw); m != nil {
		out = append(out, strings.TrimSpace(m[1]))
		if g := labeledFenceGreedyRe.FindStringSubmatch(raw); g != nil {
			out = append(out, strings.TrimSpace(g[1]))
		}
	}
	out = append(out, strings.TrimSpace(raw))
	if m := bareFenceRe.FindStringSubmatch(raw); m != nil {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}
