package battle

import "github.com/vovakirdan/baseraid/internal/grid"

// Simulation holds the full authoritative state of one raid battle.
// It is not safe for concurrent use; the owning session drives it from
// a single goroutine.
type Simulation struct {
	gridSize  int
	zone      grid.DeployZone
	buildings []*Building
	units     []*Unit

	tick        uint64
	totalHP     float64
	destroyedHP float64
	resources   Resources
	nextUnitID  UnitID
}

// NewSimulation assembles a battlefield from an already-resolved building
// list. Buildings keep their slice order for the whole battle; target
// tie-breaking depends on it staying stable.
func NewSimulation(gridSize, deployDepth int, buildings []*Building, res Resources) *Simulation {
	s := &Simulation{
		gridSize:  gridSize,
		zone:      grid.DeployZone{Size: gridSize, Depth: deployDepth},
		buildings: buildings,
		resources: res,
	}
	for _, b := range buildings {
		s.totalHP += b.MaxHP
	}
	return s
}

// GridSize returns the battlefield side length in cells.
func (s *Simulation) GridSize() int {
	return s.gridSize
}

// Zone returns the attacker deploy zone.
func (s *Simulation) Zone() grid.DeployZone {
	return s.zone
}

// Tick returns the number of simulation steps executed so far.
func (s *Simulation) Tick() uint64 {
	return s.tick
}

// Buildings returns the battlefield buildings in stable order.
func (s *Simulation) Buildings() []*Building {
	return s.buildings
}

// Units returns the deployed units in deploy order.
func (s *Simulation) Units() []*Unit {
	return s.units
}

// Resources returns the defender stock the battle was created with.
func (s *Simulation) Resources() Resources {
	return s.resources
}

// ValidDeployPosition reports whether a unit may be placed at the given
// position: inside the deploy zone and not inside the footprint of any
// intact building. A destroyed building no longer blocks its cells.
func (s *Simulation) ValidDeployPosition(row, col float64) bool {
	if !s.zone.Contains(row, col) {
		return false
	}
	for _, b := range s.buildings {
		if b.Destroyed {
			continue
		}
		if b.Footprint.ContainsPoint(row, col) {
			return false
		}
	}
	return true
}

// Deploy places a new unit at the given position and returns it.
// Position validity and troop accounting are the caller's job; the
// simulation only allocates the identity and initial state.
func (s *Simulation) Deploy(kind UnitKind, stats UnitStats, row, col float64) *Unit {
	s.nextUnitID++
	u := &Unit{
		ID:    s.nextUnitID,
		Kind:  kind,
		Stats: stats,
		HP:    stats.MaxHP,
		Row:   row,
		Col:   col,
		State: UnitStateIdle,
	}
	s.units = append(s.units, u)
	return u
}

// Step advances the battle by one tick of dt seconds. Every living unit
// first resolves its target and moves, then every attacking unit deals
// damage. Splitting the phases keeps damage independent of unit order
// within a tick.
func (s *Simulation) Step(dt float64) {
	for _, u := range s.units {
		if !u.Alive() {
			continue
		}
		s.advanceUnit(u, dt)
	}
	for _, u := range s.units {
		if u.State == UnitStateAttacking {
			s.applyAttack(u, dt)
		}
	}
	s.clearDeadTargets()
	s.tick++
}

// clearDeadTargets drops references to buildings destroyed this tick, so
// a broadcast snapshot never shows a unit targeting a destroyed building.
// Affected units retarget on the next tick.
func (s *Simulation) clearDeadTargets() {
	for _, u := range s.units {
		if u.TargetID == 0 {
			continue
		}
		if b := s.buildingByID(u.TargetID); b == nil || b.Destroyed {
			u.TargetID = 0
		}
	}
}

// advanceUnit resolves targeting, range, and movement for one unit.
func (s *Simulation) advanceUnit(u *Unit, dt float64) {
	target := s.buildingByID(u.TargetID)
	if target == nil || target.Destroyed {
		target = s.selectTarget(u)
		if target == nil {
			u.TargetID = 0
			u.State = UnitStateIdle
			return
		}
		u.TargetID = target.ID
	}

	if target.Footprint.DistanceTo(u.Row, u.Col) <= u.Stats.Range {
		u.State = UnitStateAttacking
		return
	}

	u.State = UnitStateMoving
	s.moveToward(u, target, dt)
}

// selectTarget picks the intact building whose center is nearest to the
// unit. Units with a defensive preference only widen to the full building
// list once no defensive building remains. Ties keep the first building
// encountered in slice order, which is stable for the whole battle.
func (s *Simulation) selectTarget(u *Unit) *Building {
	if u.Stats.Prefers == TargetDefensive {
		if b := s.nearestBuilding(u, true); b != nil {
			return b
		}
	}
	return s.nearestBuilding(u, false)
}

func (s *Simulation) nearestBuilding(u *Unit, defensiveOnly bool) *Building {
	var best *Building
	var bestDist float64
	for _, b := range s.buildings {
		if b.Destroyed {
			continue
		}
		if defensiveOnly && !b.Defensive {
			continue
		}
		row, col := b.Footprint.Center()
		d := grid.Distance(u.Row, u.Col, row, col)
		if best == nil || d < bestDist {
			best = b
			bestDist = d
		}
	}
	return best
}

// moveToward advances the unit straight at the target's center, clamped
// so it never overshoots within a single tick.
func (s *Simulation) moveToward(u *Unit, target *Building, dt float64) {
	row, col := target.Footprint.Center()
	dRow := row - u.Row
	dCol := col - u.Col
	dist := grid.Distance(u.Row, u.Col, row, col)
	if dist == 0 {
		return
	}
	step := u.Stats.MoveSpeed * dt
	if step > dist {
		step = dist
	}
	u.Row += dRow / dist * step
	u.Col += dCol / dist * step
}

// applyAttack deals one tick of continuous damage to the unit's target.
// A building destroyed earlier in the same tick absorbs nothing further.
func (s *Simulation) applyAttack(u *Unit, dt float64) {
	target := s.buildingByID(u.TargetID)
	if target == nil || target.Destroyed {
		return
	}
	target.HP -= u.Stats.Damage * u.Stats.AttackRate * dt
	if target.HP <= 0 {
		target.HP = 0
		target.Destroyed = true
		s.destroyedHP += target.MaxHP
	}
}

func (s *Simulation) buildingByID(id BuildingID) *Building {
	if id == 0 {
		return nil
	}
	for _, b := range s.buildings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// AllDestroyed reports whether no intact building remains. An empty
// battlefield counts as fully destroyed.
func (s *Simulation) AllDestroyed() bool {
	for _, b := range s.buildings {
		if !b.Destroyed {
			return false
		}
	}
	return true
}

// ActiveUnits counts units that can still act.
func (s *Simulation) ActiveUnits() int {
	n := 0
	for _, u := range s.units {
		if u.Alive() {
			n++
		}
	}
	return n
}
