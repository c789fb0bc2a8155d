package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipbox/internal/clip"
	"go.klb.dev/clipbox/internal/history"
)

func contents(entries []history.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Content
	}
	return out
}

func TestMonitorIngestsChanges(t *testing.T) {
	store := history.New(history.Options{})
	cb := clip.NewMemory()
	m := New(store, cb)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	step := func(raw string, want ...string) {
		t.Helper()
		cb.Set(raw)
		require.Eventually(t, func() bool {
			_, seen := m.Stats()
			return !seen.IsZero() && assert.ObjectsAreEqual(want, contents(store.View(history.All)))
		}, 2*time.Second, 5*time.Millisecond)
	}

	step("hello", "hello")
	step("world", "world", "hello")
	step("hello", "world", "hello") // duplicate of an older entry

	captured, _ := m.Stats()
	assert.Equal(t, 2, captured)
}

func TestMonitorSkipsEmptyClipboard(t *testing.T) {
	store := history.New(history.Options{})
	cb := clip.NewMemory()
	m := New(store, cb)

	m.poll()
	cb.Set("   ")
	m.poll()

	assert.Zero(t, store.Len())
	captured, _ := m.Stats()
	assert.Zero(t, captured)
}

func TestMonitorStopsOnCancel(t *testing.T) {
	m := New(history.New(history.Options{}), clip.NewMemory())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
