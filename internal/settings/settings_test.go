package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipbox/internal/hotkey"
)

type okRegistrar struct{ keys []string }

func (r *okRegistrar) Register(key string, _ func()) error {
	r.keys = append(r.keys, key)
	return nil
}

func (r *okRegistrar) Unregister(string) error { return nil }

func TestShortcutRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "settings.toml")

	f, err := Open(path)
	require.NoError(t, err)
	_, ok := f.LoadShortcut()
	assert.False(t, ok)

	require.NoError(t, f.StoreShortcut("Ctrl+Alt+c"))
	key, ok := f.LoadShortcut()
	assert.True(t, ok)
	assert.Equal(t, "Ctrl+Alt+c", key)

	reopened, err := Open(path)
	require.NoError(t, err)
	key, ok = reopened.LoadShortcut()
	assert.True(t, ok)
	assert.Equal(t, "Ctrl+Alt+c", key)
}

func TestOpenRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("clipbox_shortcut = "), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestOpenOrEmptyRecoversFromBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("clipbox_shortcut = "), 0o600))

	f := OpenOrEmpty(path)
	_, ok := f.LoadShortcut()
	assert.False(t, ok)

	reg := &okRegistrar{}
	m := hotkey.NewManager(reg, f, func() {}, hotkey.Options{Sleep: func(time.Duration) {}})
	require.NoError(t, m.Init("linux"))
	assert.Equal(t, hotkey.DefaultKey("linux"), m.Binding().Key)

	require.NoError(t, m.Rebind("Ctrl+Shift+b"))
	reopened, err := Open(path)
	require.NoError(t, err, "a successful rebind rewrites the broken file")
	key, _ := reopened.LoadShortcut()
	assert.Equal(t, "Ctrl+Shift+b", key)
}

func TestOpenOrEmptyKeepsReadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("clipbox_shortcut = \"Alt+F1\"\n"), 0o600))

	key, ok := OpenOrEmpty(path).LoadShortcut()
	assert.True(t, ok)
	assert.Equal(t, "Alt+F1", key)
}
