// Package app implements the user-facing actions that sit on top of the
// history store: copy an entry back to the clipboard, dismiss the window,
// and the hotkey toggle.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"go.klb.dev/clipbox/internal/clip"
	"go.klb.dev/clipbox/internal/content"
	"go.klb.dev/clipbox/internal/history"
	"go.klb.dev/clipbox/internal/window"
)

// ErrNotFound is returned when an action names an unknown entry.
var ErrNotFound = errors.New("entry not found")

// Actions binds the store to the clipboard writer and the window.
type Actions struct {
	store *history.Store
	clip  clip.Writer
	win   window.Toggler
}

// New returns the action set.
func New(store *history.Store, w clip.Writer, win window.Toggler) *Actions {
	return &Actions{store: store, clip: w, win: win}
}

// Copy puts entry id on the system clipboard and promotes it to the front.
// With dismiss set the window is toggled afterwards. A failed clipboard write
// leaves the history untouched. An entry deleted while its content was being
// written is reported as ErrNotFound.
func (a *Actions) Copy(id string, dismiss bool) error {
	e, ok := a.store.Get(id)
	if !ok {
		return ErrNotFound
	}

	if err := a.write(e); err != nil {
		slog.Error("clipboard write failed", "id", id, "kind", e.Kind, "err", err)
		return fmt.Errorf("copy %s: %w", id, err)
	}
	if _, found := a.store.MoveToFront(id); !found {
		slog.Warn("entry deleted during copy", "id", id)
		return fmt.Errorf("copy %s: %w", id, ErrNotFound)
	}
	slog.Debug("entry copied", "id", id, "kind", e.Kind, "dismiss", dismiss)

	if dismiss {
		if _, err := a.win.Toggle(); err != nil {
			slog.Warn("window toggle failed after copy", "err", err)
		}
	}
	return nil
}

func (a *Actions) write(e history.Entry) error {
	if e.Kind != content.Image {
		return a.clip.WriteText(e.Content)
	}
	if e.SourcePath != "" {
		err := a.clip.WriteImageFile(e.SourcePath)
		if err == nil {
			return nil
		}
		slog.Warn("image source unavailable, using stored copy", "path", e.SourcePath, "err", err)
	}
	return a.clip.WriteImageEncoded(e.Content)
}

// Toggle flips window visibility.
func (a *Actions) Toggle() (bool, error) {
	visible, err := a.win.Toggle()
	if err != nil {
		return false, fmt.Errorf("toggle window: %w", err)
	}
	return visible, nil
}

// Escape is the keyboard dismiss action.
func (a *Actions) Escape() (bool, error) {
	slog.Debug("escape pressed")
	return a.Toggle()
}

// HotkeyAction returns the callback bound to the global shortcut. Errors are
// logged since there is no caller to report them to.
func (a *Actions) HotkeyAction() func() {
	return func() {
		if _, err := a.Toggle(); err != nil {
			slog.Error("hotkey toggle failed", "err", err)
		}
	}
}
