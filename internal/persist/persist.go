// Package persist provides durable storage for history snapshots.
//
// A Gateway loads and saves whole snapshots. The Saver sits between the
// history store and a Gateway: it keeps at most one save in flight and
// coalesces snapshots submitted meanwhile, so the last submitted snapshot is
// always the last one written and a stale write can never land after a newer
// one.
package persist

import (
	"context"
	"log/slog"
	"sync"

	"go.klb.dev/clipbox/internal/history"
)

// Gateway is the persisted-store boundary.
type Gateway interface {
	// Load returns the stored history in MRU order. A missing store is an
	// empty history, not an error.
	Load(ctx context.Context) ([]history.Entry, error)
	// Save replaces the stored history with entries.
	Save(ctx context.Context, entries []history.Entry) error
	// Close releases resources held by the gateway.
	Close() error
}

// LoadOrEmpty loads the history and degrades any failure to an empty one.
func LoadOrEmpty(ctx context.Context, gw Gateway) []history.Entry {
	entries, err := gw.Load(ctx)
	if err != nil {
		slog.Error("history load failed, starting empty", "err", err)
		return nil
	}
	return entries
}

// Saver serializes saves to a Gateway. It implements history.Persister.
type Saver struct {
	gw Gateway

	mu      sync.Mutex
	idle    *sync.Cond
	pending []history.Entry
	queued  bool
	running bool

	saves  int
	failed int
}

// NewSaver returns a Saver writing to gw.
func NewSaver(gw Gateway) *Saver {
	s := &Saver{gw: gw}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Submit schedules entries to be saved and returns immediately. A snapshot
// still waiting when a newer one arrives is replaced, never written.
func (s *Saver) Submit(entries []history.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = entries
	s.queued = true
	if !s.running {
		s.running = true
		go s.loop()
	}
}

func (s *Saver) loop() {
	for {
		s.mu.Lock()
		if !s.queued {
			s.running = false
			s.idle.Broadcast()
			s.mu.Unlock()
			return
		}
		snap := s.pending
		s.pending = nil
		s.queued = false
		s.mu.Unlock()

		err := s.gw.Save(context.Background(), snap)

		s.mu.Lock()
		s.saves++
		if err != nil {
			s.failed++
		}
		s.mu.Unlock()

		if err != nil {
			slog.Error("history save failed", "err", err, "entries", len(snap))
		} else {
			slog.Debug("history saved", "entries", len(snap))
		}
	}
}

// Flush blocks until no save is queued or in flight, or ctx is done.
func (s *Saver) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.mu.Lock()
		for s.running {
			s.idle.Wait()
		}
		s.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats reports how many saves ran and how many of them failed.
func (s *Saver) Stats() (saves, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves, s.failed
}
