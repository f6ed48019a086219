// Package dedupe guarantees at-most-once processing of inbound event
// identifiers within a sliding time window. Slack delivers events
// at-least-once; the gate is what keeps retries from producing duplicate
// replies.
package dedupe

import (
	"sync"
	"time"
)

// DefaultTTL is how long an admitted event id is remembered. Slack's retry
// window is shorter than this in practice.
const DefaultTTL = 300 * time.Second

// Gate is an in-memory at-most-once admission gate. Check-then-insert and
// eviction both run under a single mutex, so two concurrent deliveries of the
// same event id can never both be admitted.
//
// State is deliberately not persisted: a restart resets the window, which is
// acceptable while upstream retry windows stay shorter than process uptime.
// A durable implementation can replace the Gate behind Admit without touching
// callers.
type Gate struct {
	ttl    time.Duration
	mu     sync.Mutex
	seen   map[string]*time.Timer
	closed bool
}

// Options configures a Gate.
type Options struct {
	TTL time.Duration
}

// NewGate constructs a Gate with the default eviction window.
func NewGate(optFns ...func(o *Options)) *Gate {
	opts := Options{TTL: DefaultTTL}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Gate{ttl: opts.TTL, seen: map[string]*time.Timer{}}
}

// Admit reports whether the caller may process the event. It returns true
// exactly once per event id within the eviction window; a second call with
// the same id before eviction returns false. Admission schedules the id's
// eviction after the TTL.
func (g *Gate) Admit(eventID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return false
	}
	if _, dup := g.seen[eventID]; dup {
		return false
	}

	g.seen[eventID] = time.AfterFunc(g.ttl, func() { g.evict(eventID) })

	return true
}

func (g *Gate) evict(eventID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.seen, eventID)
}

// Len returns the number of event ids currently remembered.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.seen)
}

// Close stops all pending eviction timers. Subsequent Admit calls return false.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.closed = true
	for id, timer := range g.seen {
		timer.Stop()
		delete(g.seen, id)
	}
}
