package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Model is one model entry of a dbt schema.yml document.
type Model = map[string]any

// Parse decodes a sanitized LLM reply into model entries. Replies come in
// two shapes: a full document with a "models" list, or a single bare model
// mapping. Both are accepted.
func Parse(text string) ([]Model, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("parse schema reply: %w", err)
	}

	switch v := doc.(type) {
	case map[string]any:
		wrapped, ok := v["models"]
		if !ok {
			return []Model{v}, nil
		}
		list, ok := wrapped.([]any)
		if !ok {
			return nil, fmt.Errorf("parse schema reply: models is %T, expected a list", wrapped)
		}
		models := make([]Model, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			models = append(models, m)
		}
		return models, nil
	default:
		return nil, fmt.Errorf("parse schema reply: got %T, expected a mapping", doc)
	}
}
