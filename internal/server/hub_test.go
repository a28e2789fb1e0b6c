package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/baseraid/internal/battle"
	"github.com/vovakirdan/baseraid/internal/catalog"
	"github.com/vovakirdan/baseraid/internal/layout"
	"github.com/vovakirdan/baseraid/internal/session"
)

const wsTimeout = 5 * time.Second

// fastCatalogYAML trades realism for test speed: 10ms ticks and a
// warrior that levels a farm in a few hits.
const fastCatalogYAML = `
rules:
  grid_size: 20
  deploy_depth: 2
  tick_rate: 100
  max_battle_secs: 2
  loot_factor: 0.5
  troop_budget: 10
units:
  warrior:
    max_hp: 100
    damage: 1000
    attack_rate: 10
    range: 1
    move_speed: 50
buildings:
  farm:
    width: 2
    height: 2
    base_hp: 300
    hp_per_level: 100
`

type captureSaver struct {
	reports chan session.Report
}

func (c *captureSaver) Save(r session.Report) error {
	c.reports <- r
	return nil
}

func fastCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(fastCatalogYAML), 0o644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}
	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return cat
}

func meadowLibrary(t *testing.T) *layout.Library {
	t.Helper()
	lib, err := layout.NewLibrary([]layout.Base{{
		ID:        "meadow",
		Name:      "Meadow Farm",
		Resources: battle.Resources{Food: 1000, Wood: 500, Gold: 200},
		Buildings: []layout.BuildingRecord{
			{ID: 1, Kind: "farm", Row: 8, Col: 8, Level: 1},
		},
	}})
	if err != nil {
		t.Fatalf("NewLibrary() failed: %v", err)
	}
	return lib
}

func testHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(fastCatalog(t), meadowLibrary(t), log.New(io.Discard))
	hub.SetGracePeriod(100 * time.Millisecond)
	return hub
}

func dialBattle(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/battle?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s) failed: %v", query, err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(wsTimeout)); err != nil {
		t.Fatalf("SetReadDeadline failed: %v", err)
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	env, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("Server sent bad envelope %s: %v", raw, err)
	}
	return env
}

func readState(t *testing.T, conn *websocket.Conn) StatePayload {
	t.Helper()
	env := readEnvelope(t, conn)
	if env.Type != TypeState {
		t.Fatalf("Expected state envelope, got %s: %s", env.Type, env.Data)
	}
	var payload StatePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("Unmarshal state failed: %v", err)
	}
	return payload
}

func readError(t *testing.T, conn *websocket.Conn) ErrorPayload {
	t.Helper()
	env := readEnvelope(t, conn)
	if env.Type != TypeError {
		t.Fatalf("Expected error envelope, got %s: %s", env.Type, env.Data)
	}
	var payload ErrorPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("Unmarshal error failed: %v", err)
	}
	return payload
}

func sendEnvelope(t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		t.Fatalf("NewEnvelope(%s) failed: %v", msgType, err)
	}
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal envelope failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("WriteMessage(%s) failed: %v", msgType, err)
	}
}

func TestHandleBattleFullRaid(t *testing.T) {
	hub := testHub(t)
	saver := &captureSaver{reports: make(chan session.Report, 1)}
	hub.SetReportSaver(saver)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleBattle))
	defer srv.Close()

	conn := dialBattle(t, srv, "layout=meadow&attacker=alice&troops=warrior:1")

	// Initial state arrives unprompted
	state := readState(t, conn)
	if state.Seq != 1 || state.Phase != "setup" {
		t.Fatalf("Expected initial setup state, got seq %d phase %q", state.Seq, state.Phase)
	}
	if len(state.Snapshot.Buildings) != 1 {
		t.Fatalf("Expected 1 building in snapshot, got %d", len(state.Snapshot.Buildings))
	}
	if state.Troops["warrior"] != 1 {
		t.Errorf("Expected 1 warrior in reserve, got %v", state.Troops)
	}

	// Frames that are not valid envelopes get a bad_request error
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
	if errPayload := readError(t, conn); errPayload.Code != "bad_request" {
		t.Errorf("Expected bad_request, got %q", errPayload.Code)
	}

	// Valid envelope, unknown unit kind
	sendEnvelope(t, conn, TypeDeployUnit, DeployUnitPayload{Kind: "goblin", Row: 0, Col: 5})
	if errPayload := readError(t, conn); errPayload.Code != "unknown_unit" {
		t.Errorf("Expected unknown_unit, got %q", errPayload.Code)
	}

	sendEnvelope(t, conn, TypeDeployUnit, DeployUnitPayload{Kind: "warrior", Row: 0, Col: 5})
	state = readState(t, conn)
	if len(state.Snapshot.Units) != 1 {
		t.Fatalf("Expected 1 deployed unit, got %d", len(state.Snapshot.Units))
	}
	if state.Troops["warrior"] != 0 {
		t.Errorf("Expected empty reserve after deploy, got %v", state.Troops)
	}

	sendEnvelope(t, conn, TypeStartBattle, nil)
	state = readState(t, conn)
	if state.Phase != "running" {
		t.Fatalf("Expected running phase after start, got %q", state.Phase)
	}

	// Drain ticks until the battle resolves
	deadline := time.Now().Add(wsTimeout)
	for state.Outcome == nil {
		if time.Now().After(deadline) {
			t.Fatal("Battle did not finish in time")
		}
		state = readState(t, conn)
	}

	if state.Phase != "ended" {
		t.Errorf("Expected ended phase on final state, got %q", state.Phase)
	}
	if state.Outcome.Reason != "base_destroyed" {
		t.Errorf("Expected base_destroyed, got %q", state.Outcome.Reason)
	}
	if state.Outcome.DestructionPercent != 100 || state.Outcome.Stars != 3 {
		t.Errorf("Expected full destruction, got %d%% %d stars",
			state.Outcome.DestructionPercent, state.Outcome.Stars)
	}
	if state.Outcome.Loot != (battle.Resources{Food: 500, Wood: 250, Gold: 100}) {
		t.Errorf("Expected half the resources as loot, got %+v", state.Outcome.Loot)
	}

	select {
	case report := <-saver.reports:
		if report.AttackerID != "alice" || report.LayoutID != "meadow" {
			t.Errorf("Report misattributed: %+v", report)
		}
		if report.BattleID == "" {
			t.Error("Report missing battle ID")
		}
		if report.Reason != session.EndReasonBaseDestroyed {
			t.Errorf("Expected base_destroyed report, got %v", report.Reason)
		}
		if report.Result.DestructionPercent != 100 {
			t.Errorf("Expected 100%% in report, got %d%%", report.Result.DestructionPercent)
		}
	case <-time.After(wsTimeout):
		t.Fatal("Report was never saved")
	}

	if n := hub.SessionCount(); n != 0 {
		t.Errorf("Expected 0 sessions after battle end, got %d", n)
	}
}

func TestHandleBattleRejectsBadRequests(t *testing.T) {
	hub := testHub(t)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleBattle))
	defer srv.Close()

	tests := []struct {
		name     string
		query    string
		wantCode int
	}{
		{"unknown layout", "layout=unknown&troops=warrior:1", http.StatusNotFound},
		{"malformed troops", "layout=meadow&troops=warrior=1", http.StatusBadRequest},
		{"unknown unit kind", "layout=meadow&troops=goblin:1", http.StatusBadRequest},
		{"empty troops", "layout=meadow&troops=", http.StatusBadRequest},
		{"over budget", "layout=meadow&troops=warrior:99", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/battle?" + tt.query)
			if err != nil {
				t.Fatalf("GET failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, resp.StatusCode)
			}
		})
	}

	if n := hub.SessionCount(); n != 0 {
		t.Errorf("Rejected requests should not leave sessions, got %d", n)
	}
}

func TestHandleLayouts(t *testing.T) {
	hub := testHub(t)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleLayouts))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/layouts")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var entries []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Buildings int    `json:"buildings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 layout, got %d", len(entries))
	}
	if entries[0].ID != "meadow" || entries[0].Name != "Meadow Farm" || entries[0].Buildings != 1 {
		t.Errorf("Layout entry = %+v", entries[0])
	}
}

func TestBuildSetup(t *testing.T) {
	cat := catalog.DefaultCatalog()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	base := layout.Base{
		ID:        "fort",
		Name:      "Fort",
		Resources: battle.Resources{Food: 100, Wood: 100, Gold: 100},
		Buildings: []layout.BuildingRecord{
			{ID: 1, Kind: "town_center", Row: 10, Col: 10, Level: 2},
			{ID: 2, Kind: "tower", Row: 20, Col: 20, Level: 1},
			{ID: 3, Kind: "market", Row: 30, Col: 10, Level: 1, UnderConstruction: true},
		},
	}
	troops := map[battle.UnitKind]int{battle.UnitWarrior: 2, battle.UnitRam: 1}

	setup, err := BuildSetup(cat, base, "battle-1", "alice", troops, now)
	if err != nil {
		t.Fatalf("BuildSetup() failed: %v", err)
	}

	if setup.LayoutID != "fort" || setup.AttackerID != "alice" {
		t.Errorf("Setup misattributed: %s/%s", setup.LayoutID, setup.AttackerID)
	}
	if setup.GridSize != 40 || setup.DeployDepth != 2 {
		t.Errorf("Expected 40/2 grid, got %d/%d", setup.GridSize, setup.DeployDepth)
	}
	if len(setup.Stats) != 2 {
		t.Errorf("Expected stats for 2 kinds, got %d", len(setup.Stats))
	}
	if setup.Stats[battle.UnitRam].Prefers != battle.TargetDefensive {
		t.Error("Ram stats were not resolved from the catalog")
	}

	if len(setup.Buildings) != 3 {
		t.Fatalf("Expected 3 building records, got %d", len(setup.Buildings))
	}

	tc := setup.Buildings[0]
	if tc.Kind != battle.BuildingTownCenter {
		t.Errorf("Expected town_center first, got %v", tc.Kind)
	}
	if tc.Width != 4 || tc.Height != 4 {
		t.Errorf("Expected 4x4 town center, got %dx%d", tc.Width, tc.Height)
	}
	if tc.MaxHP != 1800 {
		t.Errorf("Expected level 2 town center at 1800 HP, got %g", tc.MaxHP)
	}
	if tc.ConstructionEnd != nil {
		t.Error("Finished building should have no construction end")
	}

	if !setup.Buildings[1].Defensive {
		t.Error("Tower should be defensive")
	}

	market := setup.Buildings[2]
	if market.ConstructionEnd == nil {
		t.Fatal("Under-construction market should have a construction end")
	}
	if !market.ConstructionEnd.After(now) {
		t.Errorf("Construction end %v should be after %v", market.ConstructionEnd, now)
	}
}

func TestBuildSetupRejects(t *testing.T) {
	cat := catalog.DefaultCatalog()
	now := time.Now()
	troops := map[battle.UnitKind]int{battle.UnitWarrior: 1}

	overlapping := layout.Base{
		ID: "broken",
		Buildings: []layout.BuildingRecord{
			{ID: 1, Kind: "house", Row: 10, Col: 10, Level: 1},
			{ID: 2, Kind: "house", Row: 11, Col: 11, Level: 1},
		},
	}
	if _, err := BuildSetup(cat, overlapping, "b", "a", troops, now); err == nil {
		t.Error("Expected error for overlapping layout")
	}

	badKind := layout.Base{
		ID: "broken",
		Buildings: []layout.BuildingRecord{
			{ID: 1, Kind: "castle", Row: 10, Col: 10, Level: 1},
		},
	}
	if _, err := BuildSetup(cat, badKind, "b", "a", troops, now); err == nil {
		t.Error("Expected error for unknown building kind")
	}

	badTroops := map[battle.UnitKind]int{battle.UnitKind(99): 1}
	valid := layout.Base{
		ID: "ok",
		Buildings: []layout.BuildingRecord{
			{ID: 1, Kind: "house", Row: 10, Col: 10, Level: 1},
		},
	}
	if _, err := BuildSetup(cat, valid, "b", "a", badTroops, now); err == nil {
		t.Error("Expected error for troops with no stats")
	}
}
