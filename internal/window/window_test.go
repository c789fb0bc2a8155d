package window

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipbox/internal/hub"
)

func TestHeadlessToggle(t *testing.T) {
	h := hub.New()
	sub := hub.NewChan("view", 4)
	h.Register(sub)

	w := NewHeadless(h)
	assert.False(t, w.Visible())

	v, err := w.Toggle()
	require.NoError(t, err)
	assert.True(t, v)
	ev := <-sub.C()
	assert.Equal(t, hub.OpVisibility, ev.Op)
	assert.True(t, ev.Visible)

	v, _ = w.Toggle()
	assert.False(t, v)
	assert.False(t, (<-sub.C()).Visible)
	assert.Equal(t, 2, w.Toggles())
}

func TestHeadlessHide(t *testing.T) {
	w := NewHeadless(nil)
	assert.False(t, w.Hide(), "already hidden")

	_, _ = w.Toggle()
	assert.True(t, w.Hide())
	assert.False(t, w.Visible())
}

func TestConcurrentHideFlipsOnce(t *testing.T) {
	w := NewHeadless(nil)
	_, _ = w.Toggle()

	var (
		wg      sync.WaitGroup
		changed atomic.Int32
	)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.Hide() {
				changed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), changed.Load())
	assert.False(t, w.Visible())
	assert.Equal(t, 2, w.Toggles())
}
