package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/vovakirdan/baseraid/internal/battle"
	"github.com/vovakirdan/baseraid/internal/grid"
)

// BuildingRecord seeds one defender building. Hit points, size and the
// defensive flag are already resolved from the catalog by the caller.
// A non-nil ConstructionEnd in the future means the building is still a
// construction site and takes no part in the battle.
type BuildingRecord struct {
	ID              int
	Kind            battle.BuildingKind
	Row             int
	Col             int
	Width           int
	Height          int
	Level           int
	MaxHP           float64
	Defensive       bool
	ConstructionEnd *time.Time
}

// Setup is everything a session needs to run one battle.
type Setup struct {
	BattleID    BattleID
	AttackerID  string
	LayoutID    string
	GridSize    int
	DeployDepth int
	Buildings   []BuildingRecord
	Resources   battle.Resources
	Troops      map[battle.UnitKind]int
	Stats       map[battle.UnitKind]battle.UnitStats
}

// Config controls session timing and loot.
type Config struct {
	// TickRate is the number of simulation steps per second.
	TickRate int

	// MaxTicks is the battle time budget, counted in ticks.
	MaxTicks uint64

	// LootFactor scales how much of the defender stockpile can be carried off.
	LootFactor float64

	// GracePeriod keeps the session answering late commands after the
	// battle ends. Zero means stop immediately.
	GracePeriod time.Duration

	// NewTicker overrides the battle clock. Nil means a real interval
	// ticker at TickRate.
	NewTicker func() Ticker

	// Now overrides the clock used to resolve construction sites.
	// Nil means time.Now.
	Now func() time.Time
}

// Session is the authoritative server side of one raid battle.
type Session struct {
	id         BattleID
	attackerID string
	layoutID   string

	sim  *battle.Simulation
	cfg  Config
	part Participant

	remaining map[battle.UnitKind]int
	stats     map[battle.UnitKind]battle.UnitStats

	phase   Phase
	seq     uint64
	outcome *Outcome

	commands chan Command
	ticker   Ticker
	tickC    <-chan time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// New validates the setup and builds a session in the setup phase.
// Buildings still under construction at the current time are excluded
// from the battle.
func New(setup Setup, cfg Config, part Participant) (*Session, error) {
	if part == nil {
		return nil, fmt.Errorf("session: participant required")
	}
	if setup.BattleID == "" {
		return nil, fmt.Errorf("session: battle id required")
	}
	if setup.AttackerID == "" {
		return nil, fmt.Errorf("session: attacker id required")
	}
	if setup.GridSize <= 0 || setup.DeployDepth <= 0 {
		return nil, fmt.Errorf("session: grid size and deploy depth must be positive")
	}
	if cfg.TickRate <= 0 {
		return nil, fmt.Errorf("session: tick rate must be positive")
	}
	if cfg.MaxTicks == 0 {
		return nil, fmt.Errorf("session: max ticks must be positive")
	}

	remaining := make(map[battle.UnitKind]int, len(setup.Troops))
	for kind, count := range setup.Troops {
		if count <= 0 {
			return nil, fmt.Errorf("session: troop count for %s must be positive", kind)
		}
		if _, ok := setup.Stats[kind]; !ok {
			return nil, fmt.Errorf("session: no stats for unit kind %s", kind)
		}
		remaining[kind] = count
	}
	if len(remaining) == 0 {
		return nil, fmt.Errorf("session: at least one troop required")
	}

	stats := make(map[battle.UnitKind]battle.UnitStats, len(setup.Stats))
	for kind, st := range setup.Stats {
		stats[kind] = st
	}

	now := time.Now()
	if cfg.Now != nil {
		now = cfg.Now()
	}

	buildings := make([]*battle.Building, 0, len(setup.Buildings))
	for _, rec := range setup.Buildings {
		if rec.ConstructionEnd != nil && rec.ConstructionEnd.After(now) {
			continue
		}
		fp := grid.NewFootprint(rec.Row, rec.Col, rec.Width, rec.Height)
		buildings = append(buildings, battle.NewBuilding(
			battle.BuildingID(rec.ID), rec.Kind, fp, rec.Level, rec.MaxHP, rec.Defensive))
	}

	return &Session{
		id:         setup.BattleID,
		attackerID: setup.AttackerID,
		layoutID:   setup.LayoutID,
		sim:        battle.NewSimulation(setup.GridSize, setup.DeployDepth, buildings, setup.Resources),
		cfg:        cfg,
		part:       part,
		remaining:  remaining,
		stats:      stats,
		phase:      PhaseSetup,
		commands:   make(chan Command, 64),
		done:       make(chan struct{}),
	}, nil
}

// ID returns the battle identifier.
func (s *Session) ID() BattleID {
	return s.id
}

// AttackerID returns the attacking player's identifier.
func (s *Session) AttackerID() string {
	return s.attackerID
}

// LayoutID returns the defender layout identifier.
func (s *Session) LayoutID() string {
	return s.layoutID
}

// Send delivers a command to the session.
// Non-blocking, uses a buffered channel.
func (s *Session) Send(cmd Command) {
	select {
	case s.commands <- cmd:
	default:
		// Channel full, drop command (rare under normal conditions)
	}
}

// Run drives the battle to completion. The callback runs once when the
// battle ends. Run returns after the grace period, or immediately when
// the session is stopped.
func (s *Session) Run(onComplete func(Report)) {
	defer func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
		s.doneOnce.Do(func() {
			close(s.done)
		})
	}()

	// Initial state so the attacker sees the base before deploying.
	s.broadcastState()

	for {
		select {
		case cmd := <-s.commands:
			s.handleCommand(cmd)

		case <-s.tickC:
			s.runTick()

		case <-s.part.Done():
			s.finalize(EndReasonDisconnect)

		case <-s.done:
			return
		}

		if s.phase == PhaseEnded {
			s.complete(onComplete)
			return
		}
	}
}

// Stop gracefully stops the session without a result callback.
func (s *Session) Stop() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

func (s *Session) handleCommand(cmd Command) {
	switch c := cmd.(type) {
	case DeployUnitCmd:
		s.handleDeploy(c)
	case StartBattleCmd:
		s.handleStart()
	case EndBattleCmd:
		s.handleEnd()
	case DisconnectCmd:
		s.finalize(EndReasonDisconnect)
	}
}

func (s *Session) handleDeploy(cmd DeployUnitCmd) {
	if s.phase != PhaseSetup {
		s.reject(ErrorCodeWrongPhase, "units can only be deployed during setup")
		return
	}

	kind, err := battle.ParseUnitKind(cmd.Kind)
	if err != nil {
		s.reject(ErrorCodeUnknownUnit, fmt.Sprintf("unknown unit kind %q", cmd.Kind))
		return
	}
	stats, ok := s.stats[kind]
	if !ok {
		s.reject(ErrorCodeUnknownUnit, fmt.Sprintf("unit kind %q is not part of this battle", cmd.Kind))
		return
	}
	if s.remaining[kind] <= 0 {
		s.reject(ErrorCodeTroopsExhausted, fmt.Sprintf("no %s left to deploy", kind))
		return
	}
	if !s.sim.ValidDeployPosition(cmd.Row, cmd.Col) {
		s.reject(ErrorCodeInvalidPosition, "position is not inside the deploy zone")
		return
	}

	s.sim.Deploy(kind, stats, cmd.Row, cmd.Col)
	s.remaining[kind]--
	s.broadcastState()
}

func (s *Session) handleStart() {
	if s.phase != PhaseSetup {
		s.reject(ErrorCodeWrongPhase, "battle already started")
		return
	}
	if len(s.sim.Units()) == 0 {
		s.reject(ErrorCodeNoUnitsDeployed, "deploy at least one unit first")
		return
	}

	s.phase = PhaseRunning
	s.ticker = s.newTicker()
	s.tickC = s.ticker.C()
	s.broadcastState()
}

func (s *Session) handleEnd() {
	if s.phase == PhaseEnded {
		s.reject(ErrorCodeWrongPhase, "battle already ended")
		return
	}
	// Ending during setup is a concession with zero destruction.
	s.finalize(EndReasonStopped)
}

func (s *Session) runTick() {
	if s.phase != PhaseRunning {
		return
	}

	dt := 1.0 / float64(s.cfg.TickRate)
	s.sim.Step(dt)

	switch {
	case s.sim.AllDestroyed():
		s.finalize(EndReasonBaseDestroyed)
	case s.sim.ActiveUnits() == 0:
		s.finalize(EndReasonNoUnits)
	case s.sim.Tick() >= s.cfg.MaxTicks:
		s.finalize(EndReasonTimeout)
	default:
		s.broadcastState()
	}
}

// finalize moves the session to the ended phase, computes the result once
// and broadcasts the final state. Safe to call from any phase.
func (s *Session) finalize(reason EndReason) {
	if s.phase == PhaseEnded {
		return
	}
	s.phase = PhaseEnded

	if s.ticker != nil {
		s.ticker.Stop()
		s.tickC = nil
	}

	s.outcome = &Outcome{
		Result: s.sim.Result(s.cfg.LootFactor),
		Reason: reason,
	}
	s.broadcastState()
}

// complete reports the outcome, then keeps answering late commands for the
// grace period so clients are not left waiting on a silent socket.
func (s *Session) complete(onComplete func(Report)) {
	if onComplete != nil {
		onComplete(s.report())
	}

	if s.cfg.GracePeriod <= 0 {
		return
	}

	timer := time.NewTimer(s.cfg.GracePeriod)
	defer timer.Stop()

	for {
		select {
		case cmd := <-s.commands:
			if _, ok := cmd.(DisconnectCmd); ok {
				return
			}
			s.reject(ErrorCodeWrongPhase, "battle already ended")

		case <-timer.C:
			return

		case <-s.part.Done():
			return

		case <-s.done:
			return
		}
	}
}

func (s *Session) report() Report {
	return Report{
		BattleID:   s.id,
		AttackerID: s.attackerID,
		LayoutID:   s.layoutID,
		Reason:     s.outcome.Reason,
		Result:     s.outcome.Result,
	}
}

func (s *Session) reject(code ErrorCode, msg string) {
	s.part.Send(ErrorEvent{Code: code, Message: msg})
}

func (s *Session) broadcastState() {
	s.seq++
	s.part.Send(StateEvent{
		Seq:            s.seq,
		Phase:          s.phase,
		Snapshot:       s.sim.Snapshot(),
		TicksRemaining: s.ticksRemaining(),
		Troops:         s.troopsByName(),
		Outcome:        s.outcome,
	})
}

func (s *Session) ticksRemaining() uint64 {
	tick := s.sim.Tick()
	if tick >= s.cfg.MaxTicks {
		return 0
	}
	return s.cfg.MaxTicks - tick
}

func (s *Session) troopsByName() map[string]int {
	out := make(map[string]int, len(s.remaining))
	for kind, count := range s.remaining {
		out[kind.String()] = count
	}
	return out
}

func (s *Session) newTicker() Ticker {
	if s.cfg.NewTicker != nil {
		return s.cfg.NewTicker()
	}
	return NewIntervalTicker(time.Second / time.Duration(s.cfg.TickRate))
}
