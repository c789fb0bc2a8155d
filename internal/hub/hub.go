// Package hub fans history change events out to view projections.
// It is transport-agnostic: subscribers register, receive events through Send,
// and the history store publishes after every mutation. Send must never block
// the publisher.
package hub

import (
	"log/slog"
	"sync"
	"time"
)

// Op names the mutation that produced an Event.
type Op string

const (
	OpAdded      Op = "added"
	OpDeleted    Op = "deleted"
	OpCleared    Op = "cleared"
	OpFavorite   Op = "favorite"
	OpPromoted   Op = "promoted"
	OpRestored   Op = "restored"
	OpVisibility Op = "visibility"
)

// Event describes one change. Fields not relevant to Op are zero.
type Event struct {
	Op       Op        `json:"op"`
	ID       string    `json:"id,omitempty"`
	Favorite bool      `json:"favorite,omitempty"`
	Visible  bool      `json:"visible,omitempty"`
	Size     int       `json:"size"`
	At       time.Time `json:"at"`
}

// Subscriber is anything that wants change events.
type Subscriber interface {
	ID() string
	// Send delivers an event. Must be non-blocking.
	Send(Event)
}

// Hub routes events to all registered subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]Subscriber
	last Event
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{subs: make(map[string]Subscriber)}
}

// Register adds a subscriber. A subscriber registered under an existing ID
// replaces the previous one.
func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	h.subs[s.ID()] = s
	total := len(h.subs)
	h.mu.Unlock()

	slog.Debug("subscriber registered", "subscriber", s.ID(), "total", total)
}

// Unregister removes a subscriber.
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	delete(h.subs, s.ID())
	total := len(h.subs)
	h.mu.Unlock()

	slog.Debug("subscriber unregistered", "subscriber", s.ID(), "total", total)
}

// Publish stamps ev and delivers it to every subscriber.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.Lock()
	h.last = ev
	targets := make([]Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		s.Send(ev)
	}
}

// Last returns the most recently published event.
func (h *Hub) Last() Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// Len returns the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Chan is a Subscriber backed by a buffered channel. Events that do not fit
// are dropped with a warning.
type Chan struct {
	id string
	ch chan Event
}

// NewChan returns a channel subscriber with the given buffer size.
func NewChan(id string, size int) *Chan {
	return &Chan{id: id, ch: make(chan Event, size)}
}

func (c *Chan) ID() string { return c.id }

func (c *Chan) Send(ev Event) {
	select {
	case c.ch <- ev:
	default:
		slog.Warn("subscriber channel full, dropping", "subscriber", c.id, "op", ev.Op)
	}
}

// C returns the receive side of the subscription.
func (c *Chan) C() <-chan Event { return c.ch }
