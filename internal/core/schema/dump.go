package schema

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Encode renders a full schema.yml document (version: 2 plus the model
// entries) with canonical key ordering and two-space indentation.
func Encode(models []Model) ([]byte, error) {
	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			scalarNode("version"), intNode(2),
			scalarNode("models"), modelsNode(models),
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode schema document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode schema document: %w", err)
	}
	return buf.Bytes(), nil
}

func modelsNode(models []Model) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, m := range models {
		seq.Content = append(seq.Content, orderedMapNode(m, modelKeyOrder))
	}
	return seq
}

// orderedMapNode renders a mapping with the given keys first and any
// leftovers after, alphabetically.
func orderedMapNode(m map[string]any, order []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	emitted := map[string]struct{}{}

	appendPair := func(key string, value any) {
		node.Content = append(node.Content, scalarNode(key), valueNode(key, value))
		emitted[key] = struct{}{}
	}

	for _, key := range order {
		if v, ok := m[key]; ok {
			appendPair(key, v)
		}
	}

	var rest []string
	for key := range m {
		if _, done := emitted[key]; !done {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		appendPair(key, m[key])
	}
	return node
}

// valueNode converts an arbitrary decoded YAML value back into a node,
// recursing so nested column entries also get their canonical key order.
func valueNode(key string, v any) *yaml.Node {
	switch t := v.(type) {
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range t {
			seq.Content = append(seq.Content, valueNode(key, item))
		}
		return seq
	case map[string]any:
		if key == "columns" {
			return orderedMapNode(t, columnKeyOrder)
		}
		return orderedMapNode(t, nil)
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return scalarNode(fmt.Sprintf("%v", v))
		}
		return n
	}
}

func scalarNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: s}
}

func intNode(i int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprintf("%d", i), Tag: "!!int"}
}
