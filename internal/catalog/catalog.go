// Package catalog provides YAML-based stat configuration for the raid
// simulator: unit combat profiles, building specs, and battle rules.
package catalog

import (
	"fmt"

	"github.com/vovakirdan/baseraid/internal/battle"
)

// BattleRules holds the tunable parameters that shape every battle.
type BattleRules struct {
	GridSize      int
	DeployDepth   int
	TickRate      int
	MaxBattleSecs int
	LootFactor    float64
	TroopBudget   int
}

// MaxTicks returns the battle time budget in simulation ticks.
func (r BattleRules) MaxTicks() uint64 {
	return uint64(r.TickRate) * uint64(r.MaxBattleSecs) //#nosec G115 -- rules are validated positive
}

// BuildingSpec holds the fixed profile of a building kind.
type BuildingSpec struct {
	Width      int
	Height     int
	BaseHP     float64
	HPPerLevel float64
	Defensive  bool
}

// MaxHP returns the hit points of a building at the given level.
// Levels below 1 are treated as level 1.
func (sp BuildingSpec) MaxHP(level int) float64 {
	if level < 1 {
		level = 1
	}
	return sp.BaseHP + sp.HPPerLevel*float64(level-1)
}

// Catalog aggregates the validated stat tables.
type Catalog struct {
	Rules     BattleRules
	Units     map[battle.UnitKind]battle.UnitStats
	Buildings map[battle.BuildingKind]BuildingSpec
}

// UnitStats returns the combat profile for a unit kind.
func (c *Catalog) UnitStats(kind battle.UnitKind) (battle.UnitStats, bool) {
	stats, ok := c.Units[kind]
	return stats, ok
}

// Building returns the spec for a building kind.
func (c *Catalog) Building(kind battle.BuildingKind) (BuildingSpec, bool) {
	spec, ok := c.Buildings[kind]
	return spec, ok
}

// ValidateTroops checks an attacker's troop composition against the
// catalog: every kind must have stats, counts must be positive, and the
// total must fit the troop budget.
func (c *Catalog) ValidateTroops(troops map[battle.UnitKind]int) error {
	total := 0
	for kind, n := range troops {
		if _, ok := c.Units[kind]; !ok {
			return fmt.Errorf("catalog: unit kind %s has no stats", kind)
		}
		if n < 0 {
			return fmt.Errorf("catalog: negative troop count for %s", kind)
		}
		total += n
	}
	if total == 0 {
		return fmt.Errorf("catalog: troop list is empty")
	}
	if total > c.Rules.TroopBudget {
		return fmt.Errorf("catalog: %d troops exceed budget of %d", total, c.Rules.TroopBudget)
	}
	return nil
}
