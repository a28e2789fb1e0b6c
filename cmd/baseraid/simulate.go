package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/baseraid/internal/battle"
	"github.com/vovakirdan/baseraid/internal/catalog"
	"github.com/vovakirdan/baseraid/internal/layout"
	"github.com/vovakirdan/baseraid/internal/server"
	"github.com/vovakirdan/baseraid/internal/session"
	"github.com/vovakirdan/baseraid/internal/storage"
)

var (
	flagSimLayout   string
	flagSimAttacker string
	flagSimTroops   string
	flagSimSave     bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless battle",
	Long: `Run one battle locally without a server or client.

Troops are spread along the edge of the deploy zone, the battle starts
immediately, and ticks are driven as fast as they resolve. The outcome
is printed when the battle ends.

The troop plan is kind:count pairs, for example "warrior:4,archer:2".

Examples:
  baseraid simulate
  baseraid simulate --layout hilltop --troops warrior:10,ram:4
  baseraid simulate --attacker alice --save`,
	Run: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&flagSimLayout, "layout", "riverside", "Defender base to raid")
	simulateCmd.Flags().StringVar(&flagSimAttacker, "attacker", "cli", "Attacker ID for the report")
	simulateCmd.Flags().StringVar(&flagSimTroops, "troops", "warrior:4", "Troop plan as kind:count pairs")
	simulateCmd.Flags().BoolVar(&flagSimSave, "save", false, "Save the battle report to the database")
}

func runSimulate(_ *cobra.Command, _ []string) {
	cat, err := catalog.Load(flagCatalog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	lib, err := layout.Load(flagLayoutDir, cat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading layouts: %v\n", err)
		os.Exit(1)
	}

	base, err := lib.Layout(flagSimLayout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'baseraid layouts' to see available bases.")
		os.Exit(1)
	}

	troops, err := battle.ParseTroops(flagSimTroops)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cat.ValidateTroops(troops); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	battleID := session.BattleID(uuid.NewString())
	setup, err := server.BuildSetup(cat, base, battleID, flagSimAttacker, troops, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error assembling battle: %v\n", err)
		os.Exit(1)
	}

	ticker := session.NewManualTicker()
	part := session.NewChannelParticipant("simulate", 64)
	reports := make(chan session.Report, 1)

	sess, err := session.New(setup, session.Config{
		TickRate:    cat.Rules.TickRate,
		MaxTicks:    cat.Rules.MaxTicks(),
		LootFactor:  cat.Rules.LootFactor,
		GracePeriod: time.Millisecond,
		NewTicker:   func() session.Ticker { return ticker },
	}, part)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating session: %v\n", err)
		os.Exit(1)
	}

	go func() {
		sess.Run(func(r session.Report) { reports <- r })
		part.Close()
	}()

	// First frame is the setup state
	<-part.Events()

	fmt.Printf("Raiding %s (%s) as %s\n", base.Name, base.ID, flagSimAttacker)
	fmt.Printf("  Troops: %s\n", battle.FormatTroops(troops))
	fmt.Println()

	deployed, err := deployAll(sess, part, troops, setup.GridSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deploying troops: %v\n", err)
		sess.Stop()
		os.Exit(1)
	}
	fmt.Printf("  t=   0s  deployed %d units\n", deployed)

	sess.Send(session.StartBattleCmd{})
	state, ok := (<-part.Events()).(session.StateEvent)
	if !ok || state.Phase != session.PhaseRunning {
		fmt.Fprintln(os.Stderr, "Error: battle did not start")
		sess.Stop()
		os.Exit(1)
	}

	// Lockstep: every tick produces exactly one state frame
	progressEvery := uint64(cat.Rules.TickRate) * 10 //#nosec G115 -- tick rate is validated positive
	for state.Outcome == nil {
		ticker.Tick()
		next, ok := (<-part.Events()).(session.StateEvent)
		if !ok {
			continue
		}
		state = next

		tick := state.Snapshot.Tick
		if state.Outcome == nil && tick%progressEvery == 0 {
			fmt.Printf("  t=%4ds  destruction %3d%%  units alive %d\n",
				tick/uint64(cat.Rules.TickRate), //#nosec G115 -- tick rate is validated positive
				state.Snapshot.DestructionPercent,
				aliveUnits(state.Snapshot))
		}
	}

	report := <-reports
	printReport(base, troops, report, cat.Rules.TickRate)

	if flagSimSave {
		saveReport(report)
	}
}

// deployAll spreads the troop plan along the deploy ring, skipping spots
// blocked by building footprints.
func deployAll(sess *session.Session, part *session.ChannelParticipant, troops map[battle.UnitKind]int, gridSize int) (int, error) {
	spots := deploySpots(gridSize)
	next := 0
	deployed := 0

	for _, kind := range battle.UnitKinds() {
		for i := 0; i < troops[kind]; i++ {
			for placed := false; !placed; {
				if next >= len(spots) {
					return deployed, fmt.Errorf("no free deploy spots left for %s", kind)
				}
				spot := spots[next]
				next++

				sess.Send(session.DeployUnitCmd{Kind: kind.String(), Row: spot[0], Col: spot[1]})
				switch evt := (<-part.Events()).(type) {
				case session.StateEvent:
					placed = true
					deployed++
				case session.ErrorEvent:
					if evt.Code != session.ErrorCodeInvalidPosition {
						return deployed, fmt.Errorf("%s", evt.Message)
					}
					// Spot is blocked, try the next one
				}
			}
		}
	}
	return deployed, nil
}

// deploySpots lists cell centers along the grid edge, top and bottom rows
// first, then the side columns.
func deploySpots(gridSize int) [][2]float64 {
	far := float64(gridSize) - 0.5
	spots := make([][2]float64, 0, 4*gridSize)
	for c := 0; c < gridSize; c++ {
		spots = append(spots, [2]float64{0.5, float64(c) + 0.5})
	}
	for c := 0; c < gridSize; c++ {
		spots = append(spots, [2]float64{far, float64(c) + 0.5})
	}
	for r := 1; r < gridSize-1; r++ {
		spots = append(spots, [2]float64{float64(r) + 0.5, 0.5})
		spots = append(spots, [2]float64{float64(r) + 0.5, far})
	}
	return spots
}

func aliveUnits(snap battle.Snapshot) int {
	alive := 0
	for _, u := range snap.Units {
		if u.State != "dead" {
			alive++
		}
	}
	return alive
}

func printReport(base layout.Base, troops map[battle.UnitKind]int, r session.Report, tickRate int) {
	secs := float64(r.Result.Ticks) / float64(tickRate)

	fmt.Println()
	fmt.Printf("Battle over: %s\n", r.Reason)
	fmt.Println()
	fmt.Printf("  Base:        %s (%s)\n", base.Name, base.ID)
	fmt.Printf("  Troops:      %s\n", battle.FormatTroops(troops))
	fmt.Printf("  Duration:    %.1fs (%d ticks)\n", secs, r.Result.Ticks)
	fmt.Printf("  Destruction: %d%%\n", r.Result.DestructionPercent)
	fmt.Printf("  Stars:       %s\n", starBar(r.Result.Stars))
	fmt.Printf("  Loot:        %d food, %d wood, %d gold\n",
		r.Result.Loot.Food, r.Result.Loot.Wood, r.Result.Loot.Gold)
}

func saveReport(r session.Report) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open reports database: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.Save(r); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save report: %v\n", err)
		return
	}
	fmt.Println()
	fmt.Println("Report saved.")
}

func starBar(stars int) string {
	return strings.Repeat("*", stars) + strings.Repeat("-", 3-stars)
}
