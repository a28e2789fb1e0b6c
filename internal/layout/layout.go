// Package layout loads defender base layouts from YAML files.
// A layout names buildings by kind and position; hit points and footprint
// dimensions are resolved from the catalog when a battle is assembled.
package layout

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/baseraid/internal/battle"
	"github.com/vovakirdan/baseraid/internal/catalog"
	"github.com/vovakirdan/baseraid/internal/grid"
)

// BuildingRecord is one placed building in a base layout.
type BuildingRecord struct {
	ID                int    `yaml:"id"`
	Kind              string `yaml:"type"`
	Row               int    `yaml:"row"`
	Col               int    `yaml:"col"`
	Level             int    `yaml:"level"`
	UnderConstruction bool   `yaml:"under_construction,omitempty"`
}

// Base is a complete defender base definition.
type Base struct {
	ID        string           `yaml:"id"`
	Name      string           `yaml:"name"`
	GridSize  int              `yaml:"grid_size,omitempty"`
	Resources battle.Resources `yaml:"resources"`
	Buildings []BuildingRecord `yaml:"buildings"`
	FilePath  string           `yaml:"-"`
}

// ParseBase parses a YAML base file.
func ParseBase(data []byte) (Base, error) {
	var b Base
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Base{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if b.ID == "" {
		return Base{}, fmt.Errorf("base file missing id")
	}
	return b, nil
}

// EffectiveGridSize returns the base's own grid size, or def when the
// layout does not set one.
func (b Base) EffectiveGridSize(def int) int {
	if b.GridSize > 0 {
		return b.GridSize
	}
	return def
}

// Validate checks the base against catalog dimensions: every kind must be
// known, every footprint must fit inside the grid, and no two footprints
// may overlap.
func (b Base) Validate(cat *catalog.Catalog) error {
	size := b.EffectiveGridSize(cat.Rules.GridSize)

	seen := make(map[int]bool, len(b.Buildings))
	footprints := make([]grid.Footprint, len(b.Buildings))
	for i, rec := range b.Buildings {
		if rec.ID <= 0 {
			return fmt.Errorf("layout %q: building at index %d needs a positive id", b.ID, i)
		}
		if seen[rec.ID] {
			return fmt.Errorf("layout %q: duplicate building id %d", b.ID, rec.ID)
		}
		seen[rec.ID] = true

		kind, err := battle.ParseBuildingKind(rec.Kind)
		if err != nil {
			return fmt.Errorf("layout %q: building %d: %w", b.ID, rec.ID, err)
		}
		spec, ok := cat.Building(kind)
		if !ok {
			return fmt.Errorf("layout %q: building %d: kind %q not in catalog", b.ID, rec.ID, rec.Kind)
		}
		if rec.Level < 1 {
			return fmt.Errorf("layout %q: building %d: level must be >= 1, got %d", b.ID, rec.ID, rec.Level)
		}

		fp := grid.NewFootprint(rec.Row, rec.Col, spec.Width, spec.Height)
		if rec.Row < 0 || rec.Col < 0 || fp.Bottom() > size || fp.Right() > size {
			return fmt.Errorf("layout %q: building %d: footprint outside %dx%d grid", b.ID, rec.ID, size, size)
		}
		footprints[i] = fp
	}

	for i := range footprints {
		for j := i + 1; j < len(footprints); j++ {
			if footprints[i].Overlaps(footprints[j]) {
				return fmt.Errorf("layout %q: building %d overlaps building %d",
					b.ID, b.Buildings[i].ID, b.Buildings[j].ID)
			}
		}
	}
	return nil
}
