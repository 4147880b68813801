// Package schema post-processes LLM-generated dbt schema YAML: it strips
// Markdown artifacts, repairs common formatting mistakes, canonises test
// syntax, and renders one ordered schema.yml document per model directory.
package schema

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	fencePattern      = regexp.MustCompile("(?m)^\\s*```(?:yaml)?\\s*|\\s*```$")
	needsQuotePattern = regexp.MustCompile(`^(\s*description:\s*)([^"'][^#]*?:[^"'].*)$`)
)

// Sanitize strips Markdown code fences from an LLM reply and, if the result
// still fails to parse as YAML, quotes description values that contain a
// bare colon. The returned text is a best effort: callers must still handle
// parse failures.
func Sanitize(raw string) string {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))

	var probe any
	if err := yaml.Unmarshal([]byte(cleaned), &probe); err == nil {
		return cleaned
	}

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		if m := needsQuotePattern.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + `"` + squashWhitespace(m[2]) + `"`
		}
	}
	return strings.Join(lines, "\n")
}

// squashWhitespace collapses internal newlines and runs of spaces into
// single spaces and trims the ends.
func squashWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
