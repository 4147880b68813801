// Package extract pulls lightweight structural metadata out of dbt SQL
// model files: select-list columns, ref() targets, inline column hints, and
// sector/tag metadata inferred from the path under models/.
package extract

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modelsDirName = "models"

// FindModelsRoot returns the absolute models/ directory for a run.
//
// If path contains a models/ child the caller gave the project root;
// otherwise the walk climbs upwards until a directory literally named
// "models" is found.
func FindModelsRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(filepath.Join(abs, modelsDirName)); err == nil && info.IsDir() {
		return filepath.Join(abs, modelsDirName), nil
	}

	for dir := abs; ; dir = filepath.Dir(dir) {
		if filepath.Base(dir) == modelsDirName {
			return dir, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}

	return "", fmt.Errorf("could not locate a %q folder from %s", modelsDirName, path)
}

// ListModelFiles returns the sorted *.sql files under root, skipping
// underscore-prefixed files and *_tmp.sql scratch models. A non-nil selected
// set restricts results to the named models (by file stem).
func ListModelFiles(root string, selected map[string]struct{}) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".sql") {
			return nil
		}
		if strings.HasPrefix(d.Name(), "_") || strings.HasSuffix(d.Name(), "_tmp.sql") {
			return nil
		}
		if selected != nil {
			stem := strings.TrimSuffix(d.Name(), ".sql")
			if _, ok := selected[stem]; !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan models under %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
