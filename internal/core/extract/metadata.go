package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Metadata is the sector and tag list inferred from a model's path.
//
// models/execution/some_subfolder/my_model.sql yields sector "execution"
// and tags ["execution", "some_subfolder"].
type Metadata struct {
	Sector string
	Tags   []string
}

// PathMetadata infers sector and tags from a model path relative to the
// models root.
func PathMetadata(modelsRoot, modelPath string) Metadata {
	rel, err := filepath.Rel(modelsRoot, modelPath)
	if err != nil {
		return Metadata{}
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		// Model sits directly under models/; no sector directory.
		return Metadata{}
	}

	meta := Metadata{Sector: parts[0], Tags: []string{parts[0]}}
	for _, part := range parts[1 : len(parts)-1] {
		meta.Tags = append(meta.Tags, part)
	}
	return meta
}

// SourcesYAML locates and reads the sector-level sources file:
// models/<sector>/<sector>_sources.yml, falling back to any *_sources.yml
// next to the model. Missing files yield an empty string, not an error.
func SourcesYAML(modelsRoot, sector, modelPath string) (string, error) {
	if sector != "" {
		path := filepath.Join(modelsRoot, sector, sector+"_sources.yml")
		if data, err := os.ReadFile(path); err == nil { // #nosec G304 -- path derived from scanned tree
			return string(data), nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("read sources file %s: %w", path, err)
		}
	}

	candidates, err := filepath.Glob(filepath.Join(filepath.Dir(modelPath), "*_sources.yml"))
	if err != nil || len(candidates) == 0 {
		return "", nil
	}
	data, err := os.ReadFile(candidates[0]) // #nosec G304 -- path derived from scanned tree
	if err != nil {
		return "", fmt.Errorf("read sources file %s: %w", candidates[0], err)
	}
	return string(data), nil
}

// ModelFile bundles everything extracted from one SQL model.
type ModelFile struct {
	Path        string
	Name        string
	Sector      string
	Tags        []string
	SQL         string
	Columns     []string
	ColumnHints map[string]string
	Refs        []string
	SourcesYAML string
}

// ReadModelFile loads and extracts a single model.
func ReadModelFile(modelsRoot, path string) (*ModelFile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the scanned tree
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}

	sql := string(data)
	meta := PathMetadata(modelsRoot, path)
	sources, err := SourcesYAML(modelsRoot, meta.Sector, path)
	if err != nil {
		return nil, err
	}

	return &ModelFile{
		Path:        path,
		Name:        strings.TrimSuffix(filepath.Base(path), ".sql"),
		Sector:      meta.Sector,
		Tags:        meta.Tags,
		SQL:         sql,
		Columns:     Columns(sql),
		ColumnHints: ColumnHints(sql),
		Refs:        Refs(sql),
		SourcesYAML: sources,
	}, nil
}
