// Package battle implements the authoritative raid simulation: buildings,
// units, autonomous targeting, continuous damage, and battle outcome.
// The simulation has no clock of its own; the caller drives time through
// Step with an explicit delta.
package battle

import "fmt"

// UnitID identifies a deployed unit within a single battle.
// IDs are allocated by the Simulation, monotonically from 1.
// Zero is reserved to mean "no unit".
type UnitID int

// BuildingID identifies a building within a single battle.
// IDs come from the defender base snapshot. Zero means "no building"
// and is used by units that currently have no target.
type BuildingID int

// UnitKind enumerates the deployable unit types.
type UnitKind int

const (
	UnitWarrior UnitKind = iota
	UnitArcher
	UnitHorseman
	UnitRam
)

// String returns the wire name of the unit kind.
func (k UnitKind) String() string {
	switch k {
	case UnitWarrior:
		return "warrior"
	case UnitArcher:
		return "archer"
	case UnitHorseman:
		return "horseman"
	case UnitRam:
		return "ram"
	default:
		return "unknown"
	}
}

// ParseUnitKind converts a wire name to a UnitKind.
func ParseUnitKind(s string) (UnitKind, error) {
	switch s {
	case "warrior":
		return UnitWarrior, nil
	case "archer":
		return UnitArcher, nil
	case "horseman":
		return UnitHorseman, nil
	case "ram":
		return UnitRam, nil
	default:
		return 0, fmt.Errorf("battle: unknown unit kind %q", s)
	}
}

// UnitKinds lists every unit kind in declaration order.
func UnitKinds() []UnitKind {
	return []UnitKind{UnitWarrior, UnitArcher, UnitHorseman, UnitRam}
}

// BuildingKind enumerates the building types a defender base can contain.
type BuildingKind int

const (
	BuildingTownCenter BuildingKind = iota
	BuildingHouse
	BuildingFarm
	BuildingBarracks
	BuildingTower
	BuildingWall
	BuildingStorage
	BuildingGoldMine
	BuildingMarket
	BuildingTemple
)

// String returns the wire name of the building kind.
func (k BuildingKind) String() string {
	switch k {
	case BuildingTownCenter:
		return "town_center"
	case BuildingHouse:
		return "house"
	case BuildingFarm:
		return "farm"
	case BuildingBarracks:
		return "barracks"
	case BuildingTower:
		return "tower"
	case BuildingWall:
		return "wall"
	case BuildingStorage:
		return "storage"
	case BuildingGoldMine:
		return "gold_mine"
	case BuildingMarket:
		return "market"
	case BuildingTemple:
		return "temple"
	default:
		return "unknown"
	}
}

// ParseBuildingKind converts a wire name to a BuildingKind.
func ParseBuildingKind(s string) (BuildingKind, error) {
	switch s {
	case "town_center":
		return BuildingTownCenter, nil
	case "house":
		return BuildingHouse, nil
	case "farm":
		return BuildingFarm, nil
	case "barracks":
		return BuildingBarracks, nil
	case "tower":
		return BuildingTower, nil
	case "wall":
		return BuildingWall, nil
	case "storage":
		return BuildingStorage, nil
	case "gold_mine":
		return BuildingGoldMine, nil
	case "market":
		return BuildingMarket, nil
	case "temple":
		return BuildingTemple, nil
	default:
		return 0, fmt.Errorf("battle: unknown building kind %q", s)
	}
}

// BuildingKinds lists every building kind in declaration order.
func BuildingKinds() []BuildingKind {
	return []BuildingKind{
		BuildingTownCenter,
		BuildingHouse,
		BuildingFarm,
		BuildingBarracks,
		BuildingTower,
		BuildingWall,
		BuildingStorage,
		BuildingGoldMine,
		BuildingMarket,
		BuildingTemple,
	}
}

// UnitState describes what a unit is doing during the current tick.
type UnitState int

const (
	UnitStateIdle UnitState = iota
	UnitStateMoving
	UnitStateAttacking
	UnitStateDead
)

// String returns the wire name of the unit state.
func (s UnitState) String() string {
	switch s {
	case UnitStateIdle:
		return "idle"
	case UnitStateMoving:
		return "moving"
	case UnitStateAttacking:
		return "attacking"
	case UnitStateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// TargetPreference controls which buildings a unit considers when
// selecting a target.
type TargetPreference int

const (
	// TargetAny considers every intact building.
	TargetAny TargetPreference = iota

	// TargetDefensive narrows selection to defensive buildings while any
	// remain intact, then falls back to TargetAny.
	TargetDefensive
)

// String returns the wire name of the preference.
func (p TargetPreference) String() string {
	switch p {
	case TargetAny:
		return "any"
	case TargetDefensive:
		return "defensive"
	default:
		return "unknown"
	}
}

// ParseTargetPreference converts a wire name to a TargetPreference.
func ParseTargetPreference(s string) (TargetPreference, error) {
	switch s {
	case "any", "":
		return TargetAny, nil
	case "defensive":
		return TargetDefensive, nil
	default:
		return 0, fmt.Errorf("battle: unknown target preference %q", s)
	}
}

// Resources holds the defender's lootable stock.
type Resources struct {
	Food int `json:"food" yaml:"food"`
	Wood int `json:"wood" yaml:"wood"`
	Gold int `json:"gold" yaml:"gold"`
}

// UnitStats holds the fixed combat profile of a unit kind.
// Damage is hit points per attack, AttackRate attacks per second,
// Range and MoveSpeed are in cells and cells per second.
type UnitStats struct {
	MaxHP      float64
	Damage     float64
	AttackRate float64
	Range      float64
	MoveSpeed  float64
	Prefers    TargetPreference
}
