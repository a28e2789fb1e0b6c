package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Loader handles loading base layouts from a directory.
type Loader struct {
	Root string
}

// NewLoader creates a loader rooted at the given directory.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// LoadAll recursively scans and loads all base files.
// Returns bases sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]Base, error) {
	var bases []Base

	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		base, err := l.LoadFile(path)
		if err != nil {
			// Skip files that do not parse as a base
			return nil
		}

		bases = append(bases, base)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	sort.Slice(bases, func(i, j int) bool {
		return bases[i].ID < bases[j].ID
	})

	return bases, nil
}

// LoadFile loads a single base file.
func (l *Loader) LoadFile(path string) (Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Base{}, fmt.Errorf("reading file %s: %w", path, err)
	}

	base, err := ParseBase(data)
	if err != nil {
		return Base{}, fmt.Errorf("parsing file %s: %w", path, err)
	}

	base.FilePath = path
	return base, nil
}

// ByID loads a specific base by ID.
func (l *Loader) ByID(id string) (Base, error) {
	bases, err := l.LoadAll()
	if err != nil {
		return Base{}, err
	}

	for _, b := range bases {
		if b.ID == id {
			return b, nil
		}
	}

	return Base{}, fmt.Errorf("base not found: %s", id)
}

// ListIDs returns all base IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	bases, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(bases))
	for i, b := range bases {
		ids[i] = b.ID
	}
	return ids, nil
}
