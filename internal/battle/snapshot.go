package battle

import "math"

// BuildingSnapshot is the wire-stable view of one building.
type BuildingSnapshot struct {
	ID        int     `json:"id"`
	Kind      string  `json:"kind"`
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Level     int     `json:"level"`
	HP        float64 `json:"hp"`
	MaxHP     float64 `json:"maxHp"`
	Defensive bool    `json:"defensive,omitempty"`
	Destroyed bool    `json:"destroyed"`
}

// UnitSnapshot is the wire-stable view of one unit.
type UnitSnapshot struct {
	ID     int     `json:"id"`
	Kind   string  `json:"kind"`
	Row    float64 `json:"row"`
	Col    float64 `json:"col"`
	HP     float64 `json:"hp"`
	State  string  `json:"state"`
	Target int     `json:"target,omitempty"`
}

// Snapshot is the complete battle state for one tick. It carries only
// primitives and wire names so that the transport encoding never depends
// on internal mutable structures.
type Snapshot struct {
	Tick               uint64             `json:"tick"`
	GridSize           int                `json:"gridSize"`
	DeployDepth        int                `json:"deployDepth"`
	Buildings          []BuildingSnapshot `json:"buildings"`
	Units              []UnitSnapshot     `json:"units"`
	DestructionPercent int                `json:"destructionPercent"`
}

// Snapshot captures the current battle state.
func (s *Simulation) Snapshot() Snapshot {
	buildings := make([]BuildingSnapshot, len(s.buildings))
	for i, b := range s.buildings {
		buildings[i] = BuildingSnapshot{
			ID:        int(b.ID),
			Kind:      b.Kind.String(),
			Row:       b.Footprint.Row,
			Col:       b.Footprint.Col,
			Width:     b.Footprint.Width,
			Height:    b.Footprint.Height,
			Level:     b.Level,
			HP:        b.HP,
			MaxHP:     b.MaxHP,
			Defensive: b.Defensive,
			Destroyed: b.Destroyed,
		}
	}

	units := make([]UnitSnapshot, len(s.units))
	for i, u := range s.units {
		units[i] = UnitSnapshot{
			ID:     int(u.ID),
			Kind:   u.Kind.String(),
			Row:    u.Row,
			Col:    u.Col,
			HP:     u.HP,
			State:  u.State.String(),
			Target: int(u.TargetID),
		}
	}

	return Snapshot{
		Tick:               s.tick,
		GridSize:           s.gridSize,
		DeployDepth:        s.zone.Depth,
		Buildings:          buildings,
		Units:              units,
		DestructionPercent: s.DestructionPercent(),
	}
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := snap.Tick
	h = h*31 + uint64(snap.GridSize)           //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.DestructionPercent) //#nosec G115 -- hash computation

	for _, b := range snap.Buildings {
		h = h*31 + uint64(b.ID) //#nosec G115 -- hash computation
		h = h*31 + math.Float64bits(b.HP)
		if b.Destroyed {
			h = h*31 + 1
		}
	}

	for _, u := range snap.Units {
		h = h*31 + uint64(u.ID) //#nosec G115 -- hash computation
		h = h*31 + math.Float64bits(u.Row)
		h = h*31 + math.Float64bits(u.Col)
		h = h*31 + uint64(u.Target) //#nosec G115 -- hash computation
	}

	return h
}
