package layout

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/vovakirdan/baseraid/internal/catalog"
)

//go:embed bases/*.yaml
var builtinFS embed.FS

// Builtin returns a library of the embedded starter bases. It is used
// when no layout directory is configured.
func Builtin() (*Library, error) {
	entries, err := fs.ReadDir(builtinFS, "bases")
	if err != nil {
		return nil, fmt.Errorf("layout: reading embedded bases: %w", err)
	}

	bases := make([]Base, 0, len(entries))
	for _, entry := range entries {
		data, err := builtinFS.ReadFile("bases/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("layout: reading embedded base %s: %w", entry.Name(), err)
		}
		b, err := ParseBase(data)
		if err != nil {
			return nil, fmt.Errorf("layout: parsing embedded base %s: %w", entry.Name(), err)
		}
		bases = append(bases, b)
	}

	return NewLibrary(bases)
}

// Load builds the base library from a directory, or falls back to the
// embedded starter bases when dir is empty. Every base must validate
// against the catalog.
func Load(dir string, cat *catalog.Catalog) (*Library, error) {
	var (
		lib *Library
		err error
	)
	if dir == "" {
		lib, err = Builtin()
	} else {
		var bases []Base
		bases, err = NewLoader(dir).LoadAll()
		if err == nil {
			lib, err = NewLibrary(bases)
		}
	}
	if err != nil {
		return nil, err
	}

	for _, b := range lib.All() {
		if err := b.Validate(cat); err != nil {
			return nil, err
		}
	}
	return lib, nil
}
