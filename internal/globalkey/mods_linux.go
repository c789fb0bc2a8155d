//go:build linux && cgo

package globalkey

import "golang.design/x/hotkey"

// Mod1 is Alt and Mod4 is Super on common X11 keymaps.
var modifiers = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.Mod1,
	"super": hotkey.Mod4,
}
