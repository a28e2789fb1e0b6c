package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/baseraid/internal/battle"
	"github.com/vovakirdan/baseraid/internal/catalog"
	"github.com/vovakirdan/baseraid/internal/layout"
	"github.com/vovakirdan/baseraid/internal/session"
)

// underConstructionFor is how much build time is assumed to remain on a
// layout's construction sites. Battles are far shorter, so sites never
// join the fight.
const underConstructionFor = time.Hour

// defaultGracePeriod keeps finished sessions answering late commands
// before the connection is torn down.
const defaultGracePeriod = 10 * time.Second

// BaseProvider supplies defender layouts by ID.
type BaseProvider interface {
	Layout(id string) (layout.Base, error)
}

// Hub owns the stat catalog, the defender layouts and every running
// battle session.
type Hub struct {
	cat    *catalog.Catalog
	bases  BaseProvider
	saver  session.ReportSaver // Optional, can be nil
	logger *log.Logger
	grace  time.Duration

	mu       sync.RWMutex
	sessions map[session.BattleID]*session.Session

	upgrader websocket.Upgrader
}

// NewHub creates a hub serving battles against the given layouts.
func NewHub(cat *catalog.Catalog, bases BaseProvider, logger *log.Logger) *Hub {
	return &Hub{
		cat:      cat,
		bases:    bases,
		logger:   logger,
		grace:    defaultGracePeriod,
		sessions: make(map[session.BattleID]*session.Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// SetReportSaver sets the optional battle report saver.
func (h *Hub) SetReportSaver(saver session.ReportSaver) {
	h.saver = saver
}

// SetGracePeriod overrides how long finished sessions linger.
func (h *Hub) SetGracePeriod(d time.Duration) {
	h.grace = d
}

// HandleBattle upgrades GET /battle?layout=<id>&attacker=<id>&troops=<plan>
// into a battle session. The troop plan uses kind:count pairs, for example
// "warrior:4,archer:2".
func (h *Hub) HandleBattle(w http.ResponseWriter, r *http.Request) {
	layoutID := r.URL.Query().Get("layout")
	attackerID := r.URL.Query().Get("attacker")
	if attackerID == "" {
		attackerID = "guest" // Default attacker ID
	}

	// Resolve everything before upgrading so bad requests still get
	// plain HTTP status codes.
	base, err := h.bases.Layout(layoutID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	troops, err := battle.ParseTroops(r.URL.Query().Get("troops"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.cat.ValidateTroops(troops); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	battleID := session.BattleID(uuid.NewString())
	setup, err := BuildSetup(h.cat, base, battleID, attackerID, troops, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	part := session.NewChannelParticipant(string(battleID), eventBufferSize)
	sess, err := session.New(setup, h.sessionConfig(), part)
	if err != nil {
		// Setup was validated above, so this is a programming error.
		h.logger.Error("session rejected validated setup", "error", err)
		conn.Close()
		return
	}

	h.register(sess)
	h.logger.Info("battle started",
		"battle", battleID,
		"layout", layoutID,
		"attacker", attackerID,
		"troops", battle.FormatTroops(troops),
	)

	go func() {
		sess.Run(h.onComplete)
		part.Close()
	}()

	c := &client{conn: conn, sess: sess, part: part, logger: h.logger}
	go c.writePump()
	go c.readPump()
}

// HandleLayouts lists the available defender bases as JSON.
func (h *Hub) HandleLayouts(w http.ResponseWriter, r *http.Request) {
	lister, ok := h.bases.(interface{ All() []layout.Base })
	if !ok {
		http.Error(w, "layout listing not supported", http.StatusNotImplemented)
		return
	}

	type entry struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Buildings int    `json:"buildings"`
	}
	bases := lister.All()
	entries := make([]entry, 0, len(bases))
	for _, b := range bases {
		entries = append(entries, entry{ID: b.ID, Name: b.Name, Buildings: len(b.Buildings)})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, entries, h.logger)
}

func (h *Hub) sessionConfig() session.Config {
	return session.Config{
		TickRate:    h.cat.Rules.TickRate,
		MaxTicks:    h.cat.Rules.MaxTicks(),
		LootFactor:  h.cat.Rules.LootFactor,
		GracePeriod: h.grace,
	}
}

func (h *Hub) onComplete(r session.Report) {
	h.unregister(r.BattleID)
	h.logger.Info("battle ended",
		"battle", r.BattleID,
		"reason", r.Reason,
		"destruction", r.Result.DestructionPercent,
		"stars", r.Result.Stars,
		"ticks", r.Result.Ticks,
	)

	if h.saver != nil {
		// Best effort save, don't block the session goroutine
		go func() {
			if err := h.saver.Save(r); err != nil {
				h.logger.Warn("could not save battle report", "battle", r.BattleID, "error", err)
			}
		}()
	}
}

func (h *Hub) register(s *session.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID()] = s
}

func (h *Hub) unregister(id session.BattleID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}

// SessionCount returns the number of running battles.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// StopAll stops every running session. Used during server shutdown.
func (h *Hub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.sessions {
		s.Stop()
	}
	h.sessions = make(map[session.BattleID]*session.Session)
}

// BuildSetup resolves a defender layout and troop plan against the catalog
// into a full session setup. Buildings marked under construction get a
// completion time in the future and therefore sit out the battle.
func BuildSetup(
	cat *catalog.Catalog,
	base layout.Base,
	battleID session.BattleID,
	attackerID string,
	troops map[battle.UnitKind]int,
	now time.Time,
) (session.Setup, error) {
	if err := base.Validate(cat); err != nil {
		return session.Setup{}, err
	}

	stats := make(map[battle.UnitKind]battle.UnitStats, len(troops))
	for kind := range troops {
		st, ok := cat.UnitStats(kind)
		if !ok {
			return session.Setup{}, fmt.Errorf("no stats for unit kind %s", kind)
		}
		stats[kind] = st
	}

	records := make([]session.BuildingRecord, 0, len(base.Buildings))
	for _, rec := range base.Buildings {
		kind, err := battle.ParseBuildingKind(rec.Kind)
		if err != nil {
			return session.Setup{}, err
		}
		spec, ok := cat.Building(kind)
		if !ok {
			return session.Setup{}, fmt.Errorf("building kind %s not in catalog", kind)
		}

		sr := session.BuildingRecord{
			ID:        rec.ID,
			Kind:      kind,
			Row:       rec.Row,
			Col:       rec.Col,
			Width:     spec.Width,
			Height:    spec.Height,
			Level:     rec.Level,
			MaxHP:     spec.MaxHP(rec.Level),
			Defensive: spec.Defensive,
		}
		if rec.UnderConstruction {
			end := now.Add(underConstructionFor)
			sr.ConstructionEnd = &end
		}
		records = append(records, sr)
	}

	return session.Setup{
		BattleID:    battleID,
		AttackerID:  attackerID,
		LayoutID:    base.ID,
		GridSize:    base.EffectiveGridSize(cat.Rules.GridSize),
		DeployDepth: cat.Rules.DeployDepth,
		Buildings:   records,
		Resources:   base.Resources,
		Troops:      troops,
		Stats:       stats,
	}, nil
}
