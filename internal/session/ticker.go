package session

import "time"

// Ticker abstracts the battle clock so tests can drive ticks by hand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// IntervalTicker wraps a time.Ticker for real-time battles.
type IntervalTicker struct {
	t *time.Ticker
}

// NewIntervalTicker creates a ticker that fires every d.
func NewIntervalTicker(d time.Duration) *IntervalTicker {
	return &IntervalTicker{t: time.NewTicker(d)}
}

func (it *IntervalTicker) C() <-chan time.Time { return it.t.C }

func (it *IntervalTicker) Stop() { it.t.Stop() }

// ManualTicker fires only when Tick is called. Tests use it to advance
// a session one deterministic step at a time.
type ManualTicker struct {
	ch chan time.Time
}

// NewManualTicker creates a manual ticker.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time, 1)}
}

func (mt *ManualTicker) C() <-chan time.Time { return mt.ch }

func (mt *ManualTicker) Stop() {}

// Tick delivers one tick. Drops the tick if the previous one has not been
// consumed yet.
func (mt *ManualTicker) Tick() {
	select {
	case mt.ch <- time.Now():
	default:
	}
}
