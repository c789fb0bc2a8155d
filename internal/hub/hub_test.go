package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFansOut(t *testing.T) {
	h := New()
	a := NewChan("a", 4)
	b := NewChan("b", 4)
	h.Register(a)
	h.Register(b)
	require.Equal(t, 2, h.Len())

	h.Publish(Event{Op: OpAdded, ID: "x", Size: 1})

	for _, c := range []*Chan{a, b} {
		select {
		case ev := <-c.C():
			assert.Equal(t, OpAdded, ev.Op)
			assert.Equal(t, "x", ev.ID)
			assert.False(t, ev.At.IsZero())
		default:
			t.Fatalf("subscriber %s got nothing", c.ID())
		}
	}
	assert.Equal(t, "x", h.Last().ID)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	h := New()
	c := NewChan("c", 1)
	h.Register(c)
	h.Unregister(c)
	h.Publish(Event{Op: OpCleared})

	assert.Empty(t, c.C())
	assert.Zero(t, h.Len())
}

func TestFullChannelDrops(t *testing.T) {
	h := New()
	c := NewChan("slow", 1)
	h.Register(c)

	h.Publish(Event{Op: OpAdded, ID: "1"})
	h.Publish(Event{Op: OpAdded, ID: "2"})

	ev := <-c.C()
	assert.Equal(t, "1", ev.ID)
	assert.Empty(t, c.C())
}
