package schema

import "strings"

// testAlias maps a non-standard test name emitted by a model to its
// canonical dbt or dbt_utils equivalent plus an argument rewrite.
type testAlias struct {
	name      string
	transform func(v any) map[string]any
}

var testAliases = map[string]testAlias{
	"equal":  {"accepted_values", func(v any) map[string]any { return map[string]any{"values": asList(v)} }},
	"equals": {"accepted_values", func(v any) map[string]any { return map[string]any{"values": asList(v)} }},

	"check_positive":  {"dbt_utils.expect_column_values_to_be_positive", func(any) map[string]any { return map[string]any{} }},
	"expect_positive": {"dbt_utils.expect_column_values_to_be_positive", func(any) map[string]any { return map[string]any{} }},

	"check_between": {"dbt_utils.expect_column_values_to_be_between", func(v any) map[string]any {
		if list, ok := v.([]any); ok && len(list) >= 2 {
			return map[string]any{"min_value": list[0], "max_value": list[1]}
		}
		return map[string]any{"min_value": mapValue(v, "min"), "max_value": mapValue(v, "max")}
	}},
	"expect_between": {"dbt_utils.expect_column_values_to_be_between", func(v any) map[string]any {
		return map[string]any{"min_value": mapValue(v, "min"), "max_value": mapValue(v, "max")}
	}},
	"between": {"dbt_utils.accepted_range", func(v any) map[string]any {
		return map[string]any{"min_value": mapValue(v, "from"), "max_value": mapValue(v, "to")}
	}},

	"regex_match": {"dbt_utils.expect_column_to_match_regex", func(v any) map[string]any {
		if s, ok := v.(string); ok {
			return map[string]any{"regex": s}
		}
		return map[string]any{"regex": mapValue(v, "pattern")}
	}},
	"match_regex": {"dbt_utils.expect_column_to_match_regex", func(v any) map[string]any {
		return map[string]any{"regex": v}
	}},
}

// unwantedKeys are stripped from model entries: the version lives at the
// document level, and "model"/"schema_version" are hallucinated wrappers.
var unwantedKeys = map[string]struct{}{
	"version":        {},
	"schema_version": {},
	"model":          {},
}

// modelKeyOrder is the canonical key order for a model entry when rendered;
// keys not listed here follow, alphabetically.
var modelKeyOrder = []string{"name", "description", "columns", "tags", "refs", "tests", "config"}

// columnKeyOrder is the canonical key order within a column entry.
var columnKeyOrder = []string{"name", "description", "data_type", "tests"}

// Canonise repairs a parsed model entry so dbt will accept it: injects the
// fallback name when missing, folds a singular "ref" into "refs", rewrites
// aliased tests to canonical dbt/dbt_utils forms, and drops unwanted keys.
// With stripTests set, all model and column level tests are removed instead.
// The input map is not modified.
func Canonise(raw Model, fallbackName string, stripTests bool) Model {
	m := make(Model, len(raw))
	for k, v := range raw {
		m[k] = v
	}

	if name, _ := m["name"].(string); name == "" {
		m["name"] = fallbackName
	}

	if ref, ok := m["ref"]; ok {
		refs := asList(m["refs"])
		m["refs"] = append(refs, ref)
		delete(m, "ref")
	}
	if refs, ok := m["refs"].(string); ok {
		m["refs"] = []any{refs}
	}

	if stripTests {
		delete(m, "tests")
	} else if tests, ok := m["tests"].([]any); ok {
		m["tests"] = fixTests(tests)
	}

	if cols, ok := m["columns"].([]any); ok {
		fixed := make([]any, 0, len(cols))
		for _, item := range cols {
			col, ok := item.(map[string]any)
			if !ok {
				fixed = append(fixed, item)
				continue
			}
			cc := make(map[string]any, len(col))
			for k, v := range col {
				cc[k] = v
			}
			if stripTests {
				delete(cc, "tests")
			} else if tests, ok := cc["tests"].([]any); ok {
				cc["tests"] = fixTests(tests)
			}
			fixed = append(fixed, cc)
		}
		m["columns"] = fixed
	}

	for k := range unwantedKeys {
		delete(m, k)
	}
	return m
}

// fixTests rewrites aliased single-key test mappings to their canonical
// form; everything else passes through unchanged.
func fixTests(tests []any) []any {
	fixed := make([]any, 0, len(tests))
	for _, t := range tests {
		entry, ok := t.(map[string]any)
		if !ok || len(entry) != 1 {
			fixed = append(fixed, t)
			continue
		}
		var alias string
		var val any
		for k, v := range entry {
			alias, val = k, v
		}
		canon, ok := testAliases[strings.ToLower(alias)]
		if !ok {
			fixed = append(fixed, t)
			continue
		}
		fixed = append(fixed, map[string]any{canon.name: canon.transform(val)})
	}
	return fixed
}

func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

func mapValue(v any, key string) any {
	if m, ok := v.(map[string]any); ok {
		return m[key]
	}
	return nil
}
