package hotkey

import (
	"sync"
	"time"
)

// GuardState is the phase of a Guard.
type GuardState int

const (
	Idle GuardState = iota
	Processing
	Cooldown
)

func (s GuardState) String() string {
	switch s {
	case Processing:
		return "processing"
	case Cooldown:
		return "cooldown"
	default:
		return "idle"
	}
}

// Guard allows at most one in-flight invocation of a hotkey action.
//
//	Idle -> Processing -> Cooldown -> Idle
//
// Triggers that arrive outside Idle are dropped, not queued. The cooldown is
// a debounce for OS key-repeat double delivery; it is a heuristic, not a
// correctness mechanism.
type Guard struct {
	cooldown time.Duration

	mu      sync.Mutex
	state   GuardState
	dropped int
}

// NewGuard returns an idle guard with the given cooldown.
func NewGuard(cooldown time.Duration) *Guard {
	return &Guard{cooldown: cooldown}
}

// Trigger runs fn unless another invocation is in flight or cooling down.
// It reports whether fn ran.
func (g *Guard) Trigger(fn func()) bool {
	g.mu.Lock()
	if g.state != Idle {
		g.dropped++
		g.mu.Unlock()
		return false
	}
	g.state = Processing
	g.mu.Unlock()

	defer g.release()
	fn()
	return true
}

func (g *Guard) release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cooldown <= 0 {
		g.state = Idle
		return
	}
	g.state = Cooldown
	time.AfterFunc(g.cooldown, func() {
		g.mu.Lock()
		g.state = Idle
		g.mu.Unlock()
	})
}

// Wrap returns fn guarded by g.
func (g *Guard) Wrap(fn func()) func() {
	return func() { g.Trigger(fn) }
}

// State returns the current phase.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Dropped returns how many triggers were discarded.
func (g *Guard) Dropped() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dropped
}
