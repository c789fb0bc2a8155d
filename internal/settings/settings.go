// Package settings persists user preferences that the daemon changes at
// runtime, such as the global shortcut. The file is TOML managed by viper.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// ShortcutKey is the settings key holding the global shortcut.
const ShortcutKey = "clipbox_shortcut"

// File is a TOML settings file. It implements hotkey.KeySlot.
type File struct {
	path string

	mu sync.Mutex
	v  *viper.Viper
}

// Open loads path if it exists. A missing file is an empty settings set.
func Open(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat settings %s: %w", path, err)
	}
	return &File{path: path, v: v}, nil
}

// OpenOrEmpty is Open for daemon startup: an unreadable file is logged and
// treated as empty, so callers fall back to their defaults. The next store
// replaces the broken file.
func OpenOrEmpty(path string) *File {
	f, err := Open(path)
	if err != nil {
		slog.Warn("settings unreadable, starting from defaults", "path", path, "err", err)
		v := viper.New()
		v.SetConfigType("toml")
		return &File{path: path, v: v}
	}
	return f
}

// Path returns the settings file location.
func (f *File) Path() string { return f.path }

func (f *File) LoadShortcut() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.v.GetString(ShortcutKey)
	return key, key != ""
}

func (f *File) StoreShortcut(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.v.Set(ShortcutKey, key)
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := f.v.WriteConfigAs(f.path); err != nil {
		return fmt.Errorf("write settings %s: %w", f.path, err)
	}
	return nil
}
