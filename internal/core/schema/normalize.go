package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Normalize fixes common LLM formatting issues inside a model entry:
// descriptions collapsed to a single line, duplicate columns dropped (first
// definition wins), and duplicate tests removed at both model and column
// level. The input map is not modified.
func Normalize(m Model) Model {
	out := make(Model, len(m))
	for k, v := range m {
		out[k] = v
	}

	if desc, ok := out["description"].(string); ok {
		out["description"] = squashWhitespace(desc)
	}

	if tests, ok := out["tests"].([]any); ok {
		if deduped := dedupeTests(tests); len(deduped) > 0 {
			out["tests"] = deduped
		} else {
			delete(out, "tests")
		}
	}

	if cols, ok := out["columns"].([]any); ok {
		out["columns"] = dedupeColumns(cols)
	}

	return out
}

// dedupeColumns keeps the first definition per column name and cleans each
// kept column's description and tests.
func dedupeColumns(cols []any) []any {
	out := make([]any, 0, len(cols))
	seen := map[string]struct{}{}

	for _, item := range cols {
		col, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := col["name"].(string)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		cleaned := make(map[string]any, len(col))
		for k, v := range col {
			cleaned[k] = v
		}
		if desc, ok := cleaned["description"].(string); ok {
			cleaned["description"] = squashWhitespace(desc)
		}
		if tests, ok := cleaned["tests"].([]any); ok {
			if deduped := dedupeTests(tests); len(deduped) > 0 {
				cleaned["tests"] = deduped
			} else {
				delete(cleaned, "tests")
			}
		}
		out = append(out, cleaned)
	}
	return out
}

// dedupeTests removes duplicate tests, keyed by the test name for simple
// string and single-key mapping forms, or by a serialized form otherwise.
func dedupeTests(tests []any) []any {
	out := make([]any, 0, len(tests))
	seen := map[string]struct{}{}

	for _, t := range tests {
		key := testKey(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

func testKey(t any) string {
	switch v := t.(type) {
	case string:
		return v
	case map[string]any:
		if len(v) == 1 {
			for name := range v {
				return name
			}
		}
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Sprintf("%v", t)
	}
	return string(data)
}
