package session

import "sync"

// Participant is the session's view of the attacker connection. The
// transport owns the socket; the session only needs an identity, a way
// to push events, and a signal for when the connection is gone.
type Participant interface {
	// ID identifies the attacker connection.
	ID() string

	// Send queues an event for delivery. It must never block the
	// session loop, no matter how slowly the other end reads.
	Send(evt Event)

	// Done is closed once the connection is gone for good.
	Done() <-chan struct{}
}

// ChannelParticipant bridges a session to a transport goroutine through
// a buffered channel. A reader that falls behind loses the oldest queued
// events first; the most recent state frame always reaches the buffer.
type ChannelParticipant struct {
	id   string
	done chan struct{}

	mu      sync.Mutex
	events  chan Event
	dropped int
	closed  bool
}

// NewChannelParticipant builds a participant with room for bufSize
// queued events. Sizes below one fall back to 64, a few seconds of
// state frames at the default battle pace.
func NewChannelParticipant(id string, bufSize int) *ChannelParticipant {
	if bufSize < 1 {
		bufSize = 64
	}
	return &ChannelParticipant{
		id:     id,
		done:   make(chan struct{}),
		events: make(chan Event, bufSize),
	}
}

// ID returns the attacker connection identifier.
func (p *ChannelParticipant) ID() string {
	return p.id
}

// Send queues evt for the transport without blocking. When the buffer is
// full the oldest queued event is discarded until evt fits. After Close,
// Send does nothing.
func (p *ChannelParticipant) Send(evt Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	for {
		select {
		case p.events <- evt:
			return
		default:
		}
		// Full. Make room by dropping from the front; the reader may
		// have drained the channel in the meantime, so the drop itself
		// must not block either.
		select {
		case <-p.events:
			p.dropped++
		default:
		}
	}
}

// Dropped reports how many events were discarded because the reader
// fell behind.
func (p *ChannelParticipant) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Events returns the transport side of the bridge. The write pump
// drains it and forwards each event to the socket.
func (p *ChannelParticipant) Events() <-chan Event {
	return p.events
}

// Done returns the channel closed on disconnect.
func (p *ChannelParticipant) Done() <-chan struct{} {
	return p.done
}

// Close severs the participant: Done is closed exactly once and any
// later Send becomes a no-op. Calling Close again has no effect.
func (p *ChannelParticipant) Close() {
	p.mu.Lock()
	already := p.closed
	p.closed = true
	p.mu.Unlock()
	if !already {
		close(p.done)
	}
}
