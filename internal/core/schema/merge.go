package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// AddUnique appends a model entry unless one with the same name is already
// present. The first definition wins.
func AddUnique(acc []Model, m Model) []Model {
	name, _ := m["name"].(string)
	for _, existing := range acc {
		if existing["name"] == name {
			return acc
		}
	}
	return append(acc, m)
}

// Merge combines freshly generated model entries with an existing schema.yml
// document. Regenerated models replace their previous entries in place;
// entries for models not part of this run are preserved; new models append
// at the end. A nil or empty existing document yields the generated list
// unchanged.
func Merge(existing []byte, generated []Model) ([]Model, error) {
	if len(existing) == 0 {
		return generated, nil
	}

	var doc struct {
		Models []Model `yaml:"models"`
	}
	if err := yaml.Unmarshal(existing, &doc); err != nil {
		return nil, fmt.Errorf("parse existing schema file: %w", err)
	}

	fresh := make(map[string]Model, len(generated))
	for _, m := range generated {
		if name, _ := m["name"].(string); name != "" {
			fresh[name] = m
		}
	}

	var out []Model
	used := map[string]struct{}{}
	for _, m := range doc.Models {
		name, _ := m["name"].(string)
		if repl, ok := fresh[name]; ok {
			out = append(out, repl)
			used[name] = struct{}{}
			continue
		}
		out = append(out, m)
	}

	for _, m := range generated {
		name, _ := m["name"].(string)
		if _, done := used[name]; done {
			continue
		}
		out = AddUnique(out, m)
	}
	return out, nil
}
