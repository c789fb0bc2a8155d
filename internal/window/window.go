// Package window holds the visibility toggle for the clipbox window.
package window

import (
	"log/slog"
	"sync"

	"go.klb.dev/clipbox/internal/hub"
)

// Toggler flips window visibility and returns the new state.
type Toggler interface {
	Toggle() (bool, error)
}

// Headless tracks visibility for a daemon without a GUI and reports every
// transition on the change feed so an attached view can follow it.
type Headless struct {
	h *hub.Hub

	mu      sync.Mutex
	visible bool
	toggles int
}

// NewHeadless returns a hidden window. h may be nil.
func NewHeadless(h *hub.Hub) *Headless {
	return &Headless{h: h}
}

func (w *Headless) Toggle() (bool, error) {
	visible, _ := w.flip(func(bool) bool { return true })
	return visible, nil
}

// Hide makes the window invisible. It reports whether anything changed.
func (w *Headless) Hide() bool {
	_, changed := w.flip(func(visible bool) bool { return visible })
	return changed
}

// flip inverts visibility when should allows it, deciding and flipping in one
// critical section.
func (w *Headless) flip(should func(visible bool) bool) (visible, changed bool) {
	w.mu.Lock()
	if !should(w.visible) {
		visible = w.visible
		w.mu.Unlock()
		return visible, false
	}
	w.visible = !w.visible
	w.toggles++
	visible = w.visible
	w.mu.Unlock()

	slog.Debug("window toggled", "visible", visible)
	if w.h != nil {
		w.h.Publish(hub.Event{Op: hub.OpVisibility, Visible: visible})
	}
	return visible, true
}

// Visible returns the current state.
func (w *Headless) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// Toggles returns how many times Toggle ran.
func (w *Headless) Toggles() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.toggles
}
