package extract

import (
	"regexp"
	"strings"
)

var (
	lineHintPattern  = regexp.MustCompile(`(?im)--\s*@column\s+(\w+)\s*:\s*(.*)$`)
	jinjaHintPattern = regexp.MustCompile(`(?is){#\s*@column\s+(\w+)\s*:\s*(.*?)#}`)
	refPattern       = regexp.MustCompile(`ref\(['"]([^'"]+)['"]\)`)
)

// ColumnHints returns {column: description} pairs discovered from
// "-- @column name: desc" line comments and the Jinja comment equivalent.
func ColumnHints(sql string) map[string]string {
	hints := map[string]string{}
	for _, match := range lineHintPattern.FindAllStringSubmatch(sql, -1) {
		hints[strings.TrimSpace(match[1])] = strings.TrimSpace(match[2])
	}
	for _, match := range jinjaHintPattern.FindAllStringSubmatch(sql, -1) {
		hints[strings.TrimSpace(match[1])] = strings.TrimSpace(match[2])
	}
	return hints
}

// Refs returns the dbt ref() targets in source order, without duplicates.
func Refs(sql string) []string {
	var (
		refs []string
		seen = map[string]struct{}{}
	)
	for _, match := range refPattern.FindAllStringSubmatch(sql, -1) {
		if _, ok := seen[match[1]]; ok {
			continue
		}
		seen[match[1]] = struct{}{}
		refs = append(refs, match[1])
	}
	return refs
}
