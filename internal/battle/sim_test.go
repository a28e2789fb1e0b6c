package battle

import (
	"testing"

	"github.com/vovakirdan/baseraid/internal/grid"
)

func warriorStats() UnitStats {
	return UnitStats{
		MaxHP:      100,
		Damage:     20,
		AttackRate: 1.0,
		Range:      1.0,
		MoveSpeed:  2.0,
		Prefers:    TargetAny,
	}
}

func ramStats() UnitStats {
	return UnitStats{
		MaxHP:      320,
		Damage:     60,
		AttackRate: 0.4,
		Range:      1.0,
		MoveSpeed:  1.2,
		Prefers:    TargetDefensive,
	}
}

func newFarmSim() *Simulation {
	farm := NewBuilding(1, BuildingFarm, grid.NewFootprint(5, 5, 2, 2), 1, 500, false)
	return NewSimulation(40, 2, []*Building{farm}, Resources{Food: 2000, Wood: 1000, Gold: 500})
}

func TestWarriorDestroysFarm(t *testing.T) {
	sim := newFarmSim()
	if !sim.ValidDeployPosition(0, 10) {
		t.Fatal("deploy position (0, 10) should be valid")
	}
	sim.Deploy(UnitWarrior, warriorStats(), 0, 10)

	const dt = 1.0 / 20
	for i := 0; i < 1000 && !sim.AllDestroyed(); i++ {
		sim.Step(dt)
	}

	if !sim.AllDestroyed() {
		t.Fatal("farm should be destroyed within 1000 ticks")
	}

	result := sim.Result(0.2)
	if result.DestructionPercent != 100 {
		t.Errorf("DestructionPercent = %d, expected 100", result.DestructionPercent)
	}
	if result.Stars != 3 {
		t.Errorf("Stars = %d, expected 3", result.Stars)
	}
	if result.DestroyedHP != 500 {
		t.Errorf("DestroyedHP = %v, expected 500", result.DestroyedHP)
	}
	want := Resources{Food: 400, Wood: 200, Gold: 100}
	if result.Loot != want {
		t.Errorf("Loot = %+v, expected %+v", result.Loot, want)
	}
	if result.Ticks != sim.Tick() {
		t.Errorf("Ticks = %d, expected %d", result.Ticks, sim.Tick())
	}
}

func TestTargetSelectionPicksClosest(t *testing.T) {
	near := NewBuilding(1, BuildingFarm, grid.NewFootprint(5, 5, 2, 2), 1, 500, false)
	far := NewBuilding(2, BuildingHouse, grid.NewFootprint(30, 30, 2, 2), 1, 300, false)
	sim := NewSimulation(40, 2, []*Building{far, near}, Resources{})

	u := sim.Deploy(UnitWarrior, warriorStats(), 0, 10)
	sim.Step(1.0 / 20)

	if u.TargetID != near.ID {
		t.Errorf("TargetID = %d, expected nearest building %d", u.TargetID, near.ID)
	}
	if u.State != UnitStateMoving {
		t.Errorf("State = %v, expected moving", u.State)
	}
}

func TestTargetIsSticky(t *testing.T) {
	near := NewBuilding(1, BuildingFarm, grid.NewFootprint(5, 5, 2, 2), 1, 500, false)
	far := NewBuilding(2, BuildingHouse, grid.NewFootprint(30, 30, 2, 2), 1, 300, false)
	sim := NewSimulation(40, 2, []*Building{near, far}, Resources{})

	u := sim.Deploy(UnitWarrior, warriorStats(), 0, 10)
	u.TargetID = far.ID

	for range 10 {
		sim.Step(1.0 / 20)
	}

	if u.TargetID != far.ID {
		t.Errorf("TargetID = %d, expected retained target %d", u.TargetID, far.ID)
	}
}

func TestRetargetAfterTargetDestroyed(t *testing.T) {
	first := NewBuilding(1, BuildingWall, grid.NewFootprint(0, 2, 1, 1), 1, 10, false)
	second := NewBuilding(2, BuildingHouse, grid.NewFootprint(20, 20, 2, 2), 1, 300, false)
	sim := NewSimulation(40, 2, []*Building{first, second}, Resources{})

	u := sim.Deploy(UnitWarrior, warriorStats(), 0, 1)
	first.HP = 0.5

	sim.Step(1.0 / 20) // in range of first, one tick of damage finishes it
	if !first.Destroyed {
		t.Fatal("first building should be destroyed")
	}
	if u.TargetID != 0 {
		t.Fatalf("TargetID = %d, expected cleared after the kill", u.TargetID)
	}

	sim.Step(1.0 / 20)
	if u.TargetID != second.ID {
		t.Errorf("TargetID = %d, expected retarget to %d", u.TargetID, second.ID)
	}

	// Destroyed max HP counts toward destruction regardless of remaining HP.
	if got := sim.DestructionPercent(); got != 3 {
		t.Errorf("DestructionPercent = %d, expected 3", got)
	}
}

func TestDestroyedTargetClearedForAllUnits(t *testing.T) {
	wall := NewBuilding(1, BuildingWall, grid.NewFootprint(0, 2, 1, 1), 1, 10, false)
	far := NewBuilding(2, BuildingHouse, grid.NewFootprint(20, 20, 2, 2), 1, 300, false)
	sim := NewSimulation(40, 2, []*Building{wall, far}, Resources{})

	// Two units in range of the wall, one still walking toward it.
	left := sim.Deploy(UnitWarrior, warriorStats(), 0, 1)
	right := sim.Deploy(UnitWarrior, warriorStats(), 0, 4)
	walker := sim.Deploy(UnitWarrior, warriorStats(), 0, 10)
	wall.HP = 1.5

	sim.Step(1.0 / 20) // combined damage finishes the wall

	if !wall.Destroyed {
		t.Fatal("wall should be destroyed")
	}
	for _, u := range []*Unit{left, right, walker} {
		if u.TargetID != 0 {
			t.Errorf("unit %d TargetID = %d, expected cleared", u.ID, u.TargetID)
		}
	}
	if got := sim.DestructionPercent(); got != 3 {
		t.Errorf("DestructionPercent = %d, expected 3 (10 of 310 HP)", got)
	}

	sim.Step(1.0 / 20)
	for _, u := range []*Unit{left, right, walker} {
		if u.TargetID != far.ID {
			t.Errorf("unit %d TargetID = %d, expected retarget to %d", u.ID, u.TargetID, far.ID)
		}
	}
}

func TestUnitIdlesWithNoBuildings(t *testing.T) {
	sim := NewSimulation(40, 2, nil, Resources{Food: 100})

	u := sim.Deploy(UnitWarrior, warriorStats(), 0, 10)
	sim.Step(1.0 / 20)

	if u.State != UnitStateIdle {
		t.Errorf("State = %v, expected idle", u.State)
	}
	if u.TargetID != 0 {
		t.Errorf("TargetID = %d, expected 0", u.TargetID)
	}
	if !sim.AllDestroyed() {
		t.Error("empty battlefield should count as destroyed")
	}
	if got := sim.DestructionPercent(); got != 100 {
		t.Errorf("DestructionPercent = %d, expected 100", got)
	}
}

func TestDefensivePreferenceWithFallback(t *testing.T) {
	farm := NewBuilding(1, BuildingFarm, grid.NewFootprint(5, 5, 2, 2), 1, 500, false)
	tower := NewBuilding(2, BuildingTower, grid.NewFootprint(30, 30, 2, 2), 1, 600, true)
	sim := NewSimulation(40, 2, []*Building{farm, tower}, Resources{})

	u := sim.Deploy(UnitRam, ramStats(), 0, 10)
	sim.Step(1.0 / 20)

	if u.TargetID != tower.ID {
		t.Errorf("TargetID = %d, expected defensive building %d despite farm being closer", u.TargetID, tower.ID)
	}

	tower.HP = 0
	tower.Destroyed = true
	sim.Step(1.0 / 20)

	if u.TargetID != farm.ID {
		t.Errorf("TargetID = %d, expected fallback to %d with no defenses left", u.TargetID, farm.ID)
	}
}

func TestTieBreakKeepsFirstEncountered(t *testing.T) {
	// Both centers are equidistant from the deploy point.
	left := NewBuilding(1, BuildingHouse, grid.NewFootprint(4, 6, 2, 2), 1, 300, false)
	right := NewBuilding(2, BuildingHouse, grid.NewFootprint(4, 12, 2, 2), 1, 300, false)

	sim := NewSimulation(40, 2, []*Building{left, right}, Resources{})
	u := sim.Deploy(UnitWarrior, warriorStats(), 0, 10)
	sim.Step(1.0 / 20)
	if u.TargetID != left.ID {
		t.Errorf("TargetID = %d, expected first-listed building %d", u.TargetID, left.ID)
	}

	sim = NewSimulation(40, 2, []*Building{right, left}, Resources{})
	u = sim.Deploy(UnitWarrior, warriorStats(), 0, 10)
	sim.Step(1.0 / 20)
	if u.TargetID != right.ID {
		t.Errorf("TargetID = %d, expected first-listed building %d after reorder", u.TargetID, right.ID)
	}
}

func TestMovementClampsAtCenter(t *testing.T) {
	farm := NewBuilding(1, BuildingFarm, grid.NewFootprint(5, 5, 2, 2), 1, 500, false)
	sim := NewSimulation(40, 2, []*Building{farm}, Resources{})

	stats := warriorStats()
	stats.MoveSpeed = 1000
	u := sim.Deploy(UnitWarrior, stats, 0, 6.5)

	sim.Step(1.0 / 20)

	row, col := farm.Footprint.Center()
	if u.Row != row || u.Col != col {
		t.Errorf("position = (%v, %v), expected exact center (%v, %v)", u.Row, u.Col, row, col)
	}
}

func TestMovementStepScalesWithTickRate(t *testing.T) {
	farm := NewBuilding(1, BuildingFarm, grid.NewFootprint(5, 5, 2, 2), 1, 500, false)
	sim := NewSimulation(40, 2, []*Building{farm}, Resources{})

	// Straight vertical approach: speed 2 at dt 0.05 moves 0.1 cells.
	u := sim.Deploy(UnitWarrior, warriorStats(), 0, 6)
	sim.Step(1.0 / 20)

	if diff := u.Row - 0.1; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Row = %v, expected 0.1", u.Row)
	}
	if u.Col != 6 {
		t.Errorf("Col = %v, expected unchanged 6", u.Col)
	}
}

func TestValidDeployPosition(t *testing.T) {
	edge := NewBuilding(1, BuildingHouse, grid.NewFootprint(0, 20, 2, 2), 1, 300, false)
	razed := NewBuilding(2, BuildingWall, grid.NewFootprint(0, 30, 1, 1), 1, 200, false)
	razed.HP = 0
	razed.Destroyed = true
	sim := NewSimulation(40, 2, []*Building{edge, razed}, Resources{})

	tests := []struct {
		name     string
		row, col float64
		expected bool
	}{
		{"top band", 0, 10, true},
		{"bottom band", 39.5, 5, true},
		{"interior", 20, 20, false},
		{"just past band", 2, 10, false},
		{"outside grid", -1, 5, false},
		{"inside footprint", 0.5, 20.5, false},
		{"next to footprint", 0.5, 22.5, true},
		{"inside razed footprint", 0.5, 30.5, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sim.ValidDeployPosition(tc.row, tc.col); got != tc.expected {
				t.Errorf("ValidDeployPosition(%v, %v) = %v, expected %v", tc.row, tc.col, got, tc.expected)
			}
		})
	}
}

func TestUnitIDsMonotonic(t *testing.T) {
	sim := newFarmSim()
	for i := 1; i <= 3; i++ {
		u := sim.Deploy(UnitWarrior, warriorStats(), 0, float64(8+i))
		if u.ID != UnitID(i) {
			t.Errorf("unit %d got ID %d", i, u.ID)
		}
	}
	if got := sim.ActiveUnits(); got != 3 {
		t.Errorf("ActiveUnits = %d, expected 3", got)
	}
}

func TestIdenticalRunsStayInSync(t *testing.T) {
	run := func(ticks int) Snapshot {
		sim := newFarmSim()
		sim.Deploy(UnitWarrior, warriorStats(), 0, 10)
		sim.Deploy(UnitArcher, UnitStats{MaxHP: 60, Damage: 14, AttackRate: 1.2, Range: 5, MoveSpeed: 1.8}, 39, 10)
		for range ticks {
			sim.Step(1.0 / 20)
		}
		return sim.Snapshot()
	}

	a := run(200)
	b := run(200)
	if a.Hash() != b.Hash() {
		t.Error("identical runs should produce identical snapshots")
	}

	early := run(10)
	if early.Hash() == a.Hash() {
		t.Error("snapshots at different ticks should differ")
	}
}

func TestSnapshotReflectsState(t *testing.T) {
	sim := newFarmSim()
	sim.Deploy(UnitWarrior, warriorStats(), 0, 10)
	for range 50 {
		sim.Step(1.0 / 20)
	}

	snap := sim.Snapshot()
	if snap.Tick != 50 {
		t.Errorf("Tick = %d, expected 50", snap.Tick)
	}
	if snap.GridSize != 40 || snap.DeployDepth != 2 {
		t.Errorf("grid = %dx%d depth %d, expected 40 depth 2", snap.GridSize, snap.GridSize, snap.DeployDepth)
	}
	if len(snap.Buildings) != 1 || len(snap.Units) != 1 {
		t.Fatalf("snapshot sizes = %d buildings %d units", len(snap.Buildings), len(snap.Units))
	}
	if snap.Buildings[0].Kind != "farm" {
		t.Errorf("building kind = %q, expected farm", snap.Buildings[0].Kind)
	}
	if snap.Buildings[0].HP != sim.Buildings()[0].HP {
		t.Errorf("building HP = %v, expected %v", snap.Buildings[0].HP, sim.Buildings()[0].HP)
	}
	if snap.Units[0].Kind != "warrior" {
		t.Errorf("unit kind = %q, expected warrior", snap.Units[0].Kind)
	}
	if snap.Units[0].State != "moving" && snap.Units[0].State != "attacking" {
		t.Errorf("unit state = %q, expected moving or attacking at tick 50", snap.Units[0].State)
	}
}
