// Package capture feeds system clipboard changes into the history store.
package capture

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.klb.dev/clipbox/internal/clip"
	"go.klb.dev/clipbox/internal/history"
)

// Monitor subscribes to a clipboard backend once and ingests every new
// payload it reports.
type Monitor struct {
	store   *history.Store
	backend clip.Backend

	mu       sync.RWMutex
	last     string
	lastSeen time.Time
	captured int
}

// New creates the monitor but does not start it.
func New(store *history.Store, backend clip.Backend) *Monitor {
	return &Monitor{store: store, backend: backend}
}

// Run reads the clipboard whenever the backend signals a change. It blocks
// until ctx is done; call in a goroutine.
func (m *Monitor) Run(ctx context.Context) {
	slog.Info("clipboard monitor started", "backend", m.backend.Name())
	defer slog.Info("clipboard monitor stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.backend.Watch():
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	raw, err := m.backend.Read()
	if err != nil {
		slog.Error("clipboard read failed", "err", err)
		return
	}
	if raw == "" {
		return
	}

	m.mu.Lock()
	if raw == m.last {
		m.mu.Unlock()
		return
	}
	m.last = raw
	m.lastSeen = time.Now()
	m.mu.Unlock()

	if _, ok := m.store.Ingest(raw); ok {
		m.mu.Lock()
		m.captured++
		m.mu.Unlock()
	}
}

// Stats reports how many payloads were inserted and when the clipboard last
// changed.
func (m *Monitor) Stats() (captured int, lastSeen time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.captured, m.lastSeen
}
