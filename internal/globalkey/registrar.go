//go:build windows || ((linux || darwin) && cgo)

package globalkey

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.design/x/hotkey"
)

var keys = map[string]hotkey.Key{
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD,
	"E": hotkey.KeyE, "F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH,
	"I": hotkey.KeyI, "J": hotkey.KeyJ, "K": hotkey.KeyK, "L": hotkey.KeyL,
	"M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO, "P": hotkey.KeyP,
	"Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX,
	"Y": hotkey.KeyY, "Z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,

	"SPACE":  hotkey.KeySpace,
	"RETURN": hotkey.KeyReturn,
	"ENTER":  hotkey.KeyReturn,
	"ESCAPE": hotkey.KeyEscape,
	"TAB":    hotkey.KeyTab,

	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3, "F4": hotkey.KeyF4,
	"F5": hotkey.KeyF5, "F6": hotkey.KeyF6, "F7": hotkey.KeyF7, "F8": hotkey.KeyF8,
	"F9": hotkey.KeyF9, "F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,
}

func resolve(s string) ([]hotkey.Modifier, hotkey.Key, error) {
	c, err := Parse(s)
	if err != nil {
		return nil, 0, err
	}
	k, ok := keys[c.Key]
	if !ok {
		return nil, 0, fmt.Errorf("hotkey %q: unsupported key %q", s, c.Key)
	}
	mods := make([]hotkey.Modifier, 0, len(c.Mods))
	for _, m := range c.Mods {
		mod, ok := modifiers[m]
		if !ok {
			return nil, 0, fmt.Errorf("hotkey %q: modifier %q not available on this platform", s, m)
		}
		mods = append(mods, mod)
	}
	return mods, k, nil
}

type binding struct {
	hk   *hotkey.Hotkey
	done chan struct{}
}

// Registrar binds shortcuts with the OS. The zero value is not usable; call
// New.
type Registrar struct {
	mu     sync.Mutex
	active map[string]*binding
}

// New returns an empty Registrar.
func New() *Registrar {
	return &Registrar{active: make(map[string]*binding)}
}

// Register binds key and calls fn on every key-down event. fn runs on a
// dedicated goroutine, one event at a time.
func (r *Registrar) Register(key string, fn func()) error {
	mods, k, err := resolve(key)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[key]; ok {
		return fmt.Errorf("hotkey %q: already registered", key)
	}

	hk := hotkey.New(mods, k)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("hotkey %q: %w", key, err)
	}
	b := &binding{hk: hk, done: make(chan struct{})}
	r.active[key] = b

	go func() {
		for {
			select {
			case <-b.done:
				return
			case <-hk.Keydown():
				slog.Debug("hotkey pressed", "key", key)
				fn()
			}
		}
	}()
	return nil
}

// Unregister releases key.
func (r *Registrar) Unregister(key string) error {
	r.mu.Lock()
	b, ok := r.active[key]
	delete(r.active, key)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("hotkey %q: not registered", key)
	}
	close(b.done)
	if err := b.hk.Unregister(); err != nil {
		return fmt.Errorf("hotkey %q: %w", key, err)
	}
	return nil
}
