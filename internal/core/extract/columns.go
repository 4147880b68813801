package extract

import (
	"regexp"
	"sort"
	"strings"
)

var (
	selectListPattern = regexp.MustCompile(`(?is)\bselect\s+(.*?)\s+from\b`)
	aliasPattern      = regexp.MustCompile("(?i)\\s+as\\s+([`\"\\[\\]\\w]+)$")
	tokenSplitPattern = regexp.MustCompile(`[\s.]+`)
)

// Columns runs a lightweight select-list parse over the SQL text. It is
// deliberately approximate: good enough to seed the prompt, never used for
// anything load-bearing.
func Columns(sql string) []string {
	seen := map[string]struct{}{}

	for _, match := range selectListPattern.FindAllStringSubmatch(sql, -1) {
		for _, expr := range splitTopLevelCommas(match[1]) {
			name := columnName(strings.TrimSpace(expr))
			if name != "" {
				seen[name] = struct{}{}
			}
		}
	}

	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}

// splitTopLevelCommas splits a SQL expression list on commas that are not
// nested inside parentheses.
func splitTopLevelCommas(expr string) []string {
	var (
		out   []string
		buf   strings.Builder
		depth int
	)
	for _, ch := range expr {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(buf.String()))
				buf.Reset()
				continue
			}
		}
		buf.WriteRune(ch)
	}
	if trimmed := strings.TrimSpace(buf.String()); trimmed != "" {
		out = append(out, trimmed)
	}
	return out
}

func columnName(expr string) string {
	if expr == "" {
		return ""
	}

	var name string
	if alias := aliasPattern.FindStringSubmatch(expr); alias != nil {
		name = alias[1]
	} else {
		tokens := tokenSplitPattern.Split(expr, -1)
		name = tokens[len(tokens)-1]
	}

	name = strings.Trim(name, " \"'`[]()")
	if name == "" || name == "*" || strings.HasPrefix(name, "(") {
		return ""
	}
	return name
}
