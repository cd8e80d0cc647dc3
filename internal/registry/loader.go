package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"racket/internal/common/fsutil"
	"racket/pkg/types"
)

// LoadDir lists the models stored under a saved-models directory. Every
// non-hidden entry is a model: a directory (versioned SavedModel layout) or a
// single file (e.g. *.gguf). ID and Name are the entry name; Path is absolute.
// A missing directory yields an empty list rather than an error.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.Model{}, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	models := make([]types.Model, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		kind := "file"
		if e.IsDir() {
			kind = "dir"
		}
		models = append(models, types.Model{ID: name, Name: name, Path: filepath.Join(abs, name), Kind: kind})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// MarkActive flags the model whose ID equals active.
func MarkActive(models []types.Model, active string) []types.Model {
	for i := range models {
		models[i].Active = active != "" && models[i].ID == active
	}
	return models
}
