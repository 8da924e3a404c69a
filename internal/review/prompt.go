package review

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const selectionPromptHeader = `I have a list of files from a GitHub repository. Analyze the file structure and identify which files are useful for a code review and which should be ignored.

Instructions:
- Include: source code files (e.g. .js, .ts, .jsx, .tsx, .py, .java, .go, .cpp, .cs, .rs, .rb).
- Exclude:
  - Configuration files (e.g. .env, .gitignore, package.json, package-lock.json, yarn.lock, go.sum, tsconfig.json, webpack.config.js).
  - Dependency directories (e.g. node_modules/, vendor/, .cache/).
  - Build outputs (e.g. dist/, out/, build/).
  - Documentation (e.g. README.md, LICENSE, CHANGELOG.md).
  - Assets (e.g. images, fonts, icons, .png, .jpg, .svg, .woff).

Expected output:
Return only a JSON array of strings containing the paths of the files to review, exactly as they appear below. Do not include any other text, explanation, or metadata.

File tree:
`

// BuildSelectionPrompt embeds the repository paths as a JSON array.
func BuildSelectionPrompt(paths []string) string {
	var b strings.Builder
	b.WriteString(selectionPromptHeader)
	b.WriteString("```json\n")
	b.WriteString(encodePaths(paths))
	b.WriteString("\n```\n")
	return b.String()
}

func encodePaths(paths []string) string {
	if paths == nil {
		paths = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a []string cannot fail.
	_ = enc.Encode(paths)
	return strings.TrimSpace(buf.String())
}

// BuildReviewPrompt asks for a single structured review of one file.
func BuildReviewPrompt(path, content string, rules *Rules) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a senior code reviewer. Carefully analyze the following file: %s\n\n", path)

	b.WriteString(`Review guidelines:
- Assess the code for best practices, readability, maintainability, performance, security, and style.
- Identify potential bugs, inefficiencies, security vulnerabilities, and naming inconsistencies.
- Check for proper error handling, API status codes, and modularity.
- Where applicable, look for unused variables, redundant code, and optimization opportunities.
`)

	if langs := detectLanguages([]string{path}); len(langs) > 0 {
		fmt.Fprintf(&b, "Language: %s\n", strings.Join(langs, ", "))
	}

	if rulesSection := BuildRulesPromptSection(rules); rulesSection != "" {
		b.WriteString(rulesSection)
	}

	b.WriteString("\nRespond with only a single JSON object, no other text. It must have exactly this structure:\n")
	b.WriteString("```json\n")
	fmt.Fprintf(&b, `{
  "fileName": %q,
  "isGoodQuality": true,
  "issues": [
    {
      "type": "string (e.g. performance, security, style, best practice)",
      "description": "detailed explanation of the issue",
      "severity": "low | medium | high",
      "suggestedFix": "recommended change to improve the code"
    }
  ],
  "overallRating": 7,
  "reasonForRating": "explanation for the overall rating"
}`, path)
	b.WriteString("\n```\n")
	b.WriteString(`"isGoodQuality" is a boolean. "overallRating" is a number from 0 to 10 based on code quality, readability, and best practices. "severity" must be one of low, medium, high. Use an empty "issues" array when there is nothing to report.` + "\n")

	b.WriteString("\nCode to review:\n")
	b.WriteString("--- BEGIN FILE ---\n")
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("--- END FILE ---\n")

	return b.String()
}

var langMap = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".mjs":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript/React",
	".jsx":   "JavaScript/React",
	".rs":    "Rust",
	".java":  "Java",
	".rb":    "Ruby",
	".cpp":   "C++",
	".cc":    "C++",
	".c":     "C",
	".h":     "C/C++",
	".cs":    "C#",
	".php":   "PHP",
	".swift": "Swift",
	".kt":    "Kotlin",
	".scala": "Scala",
	".sql":   "SQL",
	".sh":    "Shell",
	".tf":    "Terraform",
}

func detectLanguages(files []string) []string {
	seen := make(map[string]bool)
	var langs []string
	for _, f := range files {
		dot := strings.LastIndexByte(f, '.')
		if dot < 0 || strings.LastIndexByte(f, '/') > dot {
			continue
		}
		lang, ok := langMap[strings.ToLower(f[dot:])]
		if ok && !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	return langs
}
