package battle

import "math"

// Result is the computed outcome of a battle. All fields derive from
// simulation state, so recomputing at any point yields consistent values.
type Result struct {
	DestructionPercent int       `json:"destructionPercent"`
	Stars              int       `json:"stars"`
	Loot               Resources `json:"loot"`
	DestroyedHP        float64   `json:"destroyedHp"`
	TotalHP            float64   `json:"totalHp"`
	Ticks              uint64    `json:"ticks"`
}

// DestructionPercent returns the destroyed share of total building hit
// points as a whole percentage, rounded down. A base with no buildings
// counts as fully destroyed.
func (s *Simulation) DestructionPercent() int {
	if s.totalHP == 0 {
		return 100
	}
	// Summation order can leave destroyedHP a hair under totalHP even
	// when every building is down.
	if s.AllDestroyed() {
		return 100
	}
	return int(math.Floor(s.destroyedHP / s.totalHP * 100))
}

// StarsFor maps a destruction percentage to the awarded star count.
func StarsFor(percent int) int {
	switch {
	case percent >= 100:
		return 3
	case percent >= 75:
		return 2
	case percent >= 50:
		return 1
	default:
		return 0
	}
}

// Loot returns the attacker's plunder: each resource scaled by the
// destruction percentage and the loot factor, rounded down per resource.
func (s *Simulation) Loot(factor float64) Resources {
	share := float64(s.DestructionPercent()) / 100 * factor
	return Resources{
		Food: int(math.Floor(float64(s.resources.Food) * share)),
		Wood: int(math.Floor(float64(s.resources.Wood) * share)),
		Gold: int(math.Floor(float64(s.resources.Gold) * share)),
	}
}

// Result bundles the current outcome of the battle.
func (s *Simulation) Result(lootFactor float64) Result {
	pct := s.DestructionPercent()
	return Result{
		DestructionPercent: pct,
		Stars:              StarsFor(pct),
		Loot:               s.Loot(lootFactor),
		DestroyedHP:        s.destroyedHP,
		TotalHP:            s.totalHP,
		Ticks:              s.tick,
	}
}
