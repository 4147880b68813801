// Package prompt renders the natural-language request sent to the LLM for a
// single SQL model. The built-in templates can be overridden by dropping
// system.tmpl / user.tmpl files into a prompts directory.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const (
	systemTemplateFile = "system.tmpl"
	userTemplateFile   = "user.tmpl"
)

// Data carries everything the templates may reference for one model.
type Data struct {
	ModelName   string
	Sector      string
	SQL         string
	Columns     []string
	ColumnHints map[string]string
	Refs        []string
	SourcesYAML string
}

// Registry holds the parsed prompt templates.
type Registry struct {
	system *template.Template
	user   *template.Template
}

// NewRegistry parses the built-in templates, replacing either one with a
// file from dir when present. An empty dir means built-ins only.
func NewRegistry(dir string) (*Registry, error) {
	systemText := defaultSystemTemplate
	userText := defaultUserTemplate

	if dir = strings.TrimSpace(dir); dir != "" {
		if text, err := readTemplate(filepath.Join(dir, systemTemplateFile)); err != nil {
			return nil, err
		} else if text != "" {
			systemText = text
		}
		if text, err := readTemplate(filepath.Join(dir, userTemplateFile)); err != nil {
			return nil, err
		} else if text != "" {
			userText = text
		}
	}

	system, err := template.New("system").Funcs(templateFuncs).Parse(systemText)
	if err != nil {
		return nil, fmt.Errorf("parse system template: %w", err)
	}
	user, err := template.New("user").Funcs(templateFuncs).Parse(userText)
	if err != nil {
		return nil, fmt.Errorf("parse user template: %w", err)
	}

	return &Registry{system: system, user: user}, nil
}

// Render produces the system and user prompt strings for one model.
func (r *Registry) Render(data Data) (string, string, error) {
	if r == nil || r.system == nil || r.user == nil {
		return "", "", fmt.Errorf("prompt registry not configured")
	}

	var systemOut, userOut strings.Builder
	if err := r.system.Execute(&systemOut, data); err != nil {
		return "", "", fmt.Errorf("render system prompt: %w", err)
	}
	if err := r.user.Execute(&userOut, data); err != nil {
		return "", "", fmt.Errorf("render user prompt: %w", err)
	}

	return strings.TrimSpace(systemOut.String()), strings.TrimSpace(userOut.String()), nil
}

func readTemplate(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- prompt path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read prompt template %s: %w", path, err)
	}
	return string(data), nil
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}
