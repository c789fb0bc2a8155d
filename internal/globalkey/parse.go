// Package globalkey registers system-wide shortcuts with the OS through
// golang.design/x/hotkey. Shortcuts are written as "Mod+Mod+Key", for
// example "Ctrl+Alt+V" or "Cmd+Shift+V".
package globalkey

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned by Register on platforms without global hotkeys.
var ErrUnsupported = errors.New("global hotkeys are not supported on this platform")

// Combo is a parsed shortcut. Mods are canonical names (ctrl, shift, alt,
// super) in a stable order; Key is upper case.
type Combo struct {
	Mods []string
	Key  string
}

func (c Combo) String() string {
	parts := make([]string, 0, len(c.Mods)+1)
	for _, m := range c.Mods {
		parts = append(parts, modLabel[m])
	}
	return strings.Join(append(parts, c.Key), "+")
}

var modOrder = []string{"ctrl", "alt", "shift", "super"}

var modLabel = map[string]string{
	"ctrl":  "Ctrl",
	"alt":   "Alt",
	"shift": "Shift",
	"super": "Super",
}

var modAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"opt":     "alt",
	"shift":   "shift",
	"super":   "super",
	"cmd":     "super",
	"command": "super",
	"win":     "super",
	"meta":    "super",
}

// Parse splits a shortcut string into modifiers and key.
func Parse(s string) (Combo, error) {
	parts := strings.Split(s, "+")
	if len(parts) < 2 {
		return Combo{}, fmt.Errorf("hotkey %q: need at least one modifier and a key", s)
	}

	key := strings.ToUpper(strings.TrimSpace(parts[len(parts)-1]))
	if key == "" {
		return Combo{}, fmt.Errorf("hotkey %q: missing key", s)
	}

	seen := make(map[string]bool, len(parts)-1)
	for _, p := range parts[:len(parts)-1] {
		name, ok := modAliases[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return Combo{}, fmt.Errorf("hotkey %q: unknown modifier %q", s, p)
		}
		if seen[name] {
			return Combo{}, fmt.Errorf("hotkey %q: duplicate modifier %q", s, p)
		}
		seen[name] = true
	}

	c := Combo{Key: key}
	for _, m := range modOrder {
		if seen[m] {
			c.Mods = append(c.Mods, m)
		}
	}
	return c, nil
}
