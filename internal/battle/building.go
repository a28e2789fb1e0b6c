package battle

import "github.com/vovakirdan/baseraid/internal/grid"

// Building is a defender structure on the battlefield. The footprint and
// identity are immutable for the lifetime of the battle; only HP and the
// Destroyed flag change while the simulation runs.
type Building struct {
	ID        BuildingID
	Kind      BuildingKind
	Footprint grid.Footprint
	Level     int
	HP        float64
	MaxHP     float64
	Defensive bool
	Destroyed bool
}

// NewBuilding creates an intact building with full hit points.
func NewBuilding(id BuildingID, kind BuildingKind, fp grid.Footprint, level int, maxHP float64, defensive bool) *Building {
	return &Building{
		ID:        id,
		Kind:      kind,
		Footprint: fp,
		Level:     level,
		HP:        maxHP,
		MaxHP:     maxHP,
		Defensive: defensive,
	}
}

// Unit is an attacker-deployed combatant. Position is fractional so that
// per-tick movement steps smaller than a cell accumulate correctly.
// Units exist only on the attacking side and never take damage; defender
// fire is not part of the simulation.
type Unit struct {
	ID       UnitID
	Kind     UnitKind
	Stats    UnitStats
	HP       float64
	Row, Col float64
	State    UnitState
	TargetID BuildingID
}

// Alive reports whether the unit can still act.
func (u *Unit) Alive() bool {
	return u.State != UnitStateDead
}
