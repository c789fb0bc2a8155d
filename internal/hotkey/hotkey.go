// Package hotkey manages the single global shortcut that toggles the
// clipbox window.
//
// A Manager owns the ShortcutBinding. It is either Unbound or Bound(key).
// Rebind moves between keys with an unregister, settle, register sequence
// that is not cancellable; a second Rebind arriving while one is running is
// rejected with ErrRebindInProgress rather than queued. The bound callback
// runs through a Guard so OS key repeat cannot stack invocations.
package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultSettle   = 100 * time.Millisecond
	DefaultCooldown = 300 * time.Millisecond
)

var (
	// ErrRebindInProgress is returned when Rebind is called while another
	// rebind has not finished.
	ErrRebindInProgress = errors.New("hotkey rebind already in progress")
	// ErrRegister wraps OS registration failures. The binding is Unbound
	// afterwards.
	ErrRegister = errors.New("hotkey registration failed")
	// ErrEmptyKey is returned for a blank shortcut.
	ErrEmptyKey = errors.New("hotkey is empty")
	// ErrClosed is returned by a rebind that finishes after Close.
	ErrClosed = errors.New("hotkey manager closed")
)

// Registrar is the OS-level hotkey capability.
type Registrar interface {
	Register(key string, fn func()) error
	Unregister(key string) error
}

// KeySlot is the persisted slot holding the user's shortcut.
type KeySlot interface {
	LoadShortcut() (string, bool)
	StoreShortcut(key string) error
}

// Binding is the current (key, registration) pair. An unbound binding has an
// empty Key.
type Binding struct {
	Key        string `json:"key"`
	Registered bool   `json:"registered"`
}

// Bound reports whether the binding holds an OS registration.
func (b Binding) Bound() bool { return b.Registered }

func (b Binding) String() string {
	if !b.Registered {
		return "unbound"
	}
	return "bound(" + b.Key + ")"
}

// DefaultKey returns the shortcut used when none is stored, per platform
// family (a runtime.GOOS value).
func DefaultKey(platform string) string {
	if platform == "darwin" {
		return "Cmd+Shift+V"
	}
	return "Ctrl+Alt+V"
}

// Options tunes a Manager. Zero values pick defaults.
type Options struct {
	// Settle is the wait between unregistering the old key and registering
	// the new one, absorbing asynchronous OS teardown.
	Settle time.Duration
	// Cooldown is the Guard debounce after each invocation.
	Cooldown time.Duration
	// Sleep replaces time.Sleep in tests.
	Sleep func(time.Duration)
}

// Manager is the hotkey binding state machine.
type Manager struct {
	reg    Registrar
	slot   KeySlot
	guard  *Guard
	action func()
	settle time.Duration
	sleep  func(time.Duration)

	rebinding atomic.Bool

	// life serializes OS registration calls with Close.
	life   sync.Mutex
	closed bool

	mu      sync.RWMutex
	binding Binding
}

// NewManager returns an Unbound manager that will run action, guarded, on
// every hotkey press.
func NewManager(reg Registrar, slot KeySlot, action func(), opts Options) *Manager {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Manager{
		reg:    reg,
		slot:   slot,
		guard:  NewGuard(opts.Cooldown),
		action: action,
		settle: opts.Settle,
		sleep:  opts.Sleep,
	}
}

// Guard returns the re-entrancy guard wrapping the action.
func (m *Manager) Guard() *Guard { return m.guard }

// Binding returns the current binding.
func (m *Manager) Binding() Binding {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.binding
}

func (m *Manager) set(b Binding) {
	m.mu.Lock()
	m.binding = b
	m.mu.Unlock()
}

// Init binds the stored shortcut, or the platform default when the slot is
// empty. It is called once at startup. A failed registration leaves the
// manager Unbound and is returned.
func (m *Manager) Init(platform string) error {
	key, ok := m.slot.LoadShortcut()
	if !ok || strings.TrimSpace(key) == "" {
		key = DefaultKey(platform)
		slog.Debug("no stored hotkey, using platform default", "platform", platform, "key", key)
	}
	if !m.rebinding.CompareAndSwap(false, true) {
		return ErrRebindInProgress
	}
	defer m.rebinding.Store(false)

	return m.register(strings.TrimSpace(key))
}

// Rebind moves the binding to newKey and stores it in the key slot.
//
// Rebinding to the key already bound is a successful no-op. Otherwise the old
// key is unregistered best-effort, the manager waits for the OS to settle and
// registers newKey. If that fails the binding is Unbound, the old key is not
// restored, and an error wrapping ErrRegister is returned.
func (m *Manager) Rebind(newKey string) error {
	newKey = strings.TrimSpace(newKey)
	if newKey == "" {
		return ErrEmptyKey
	}
	if !m.rebinding.CompareAndSwap(false, true) {
		slog.Warn("hotkey rebind rejected, another rebind is running", "key", newKey)
		return ErrRebindInProgress
	}
	defer m.rebinding.Store(false)

	cur := m.Binding()
	if cur.Registered && cur.Key == newKey {
		return nil
	}

	if cur.Registered {
		m.release(cur.Key)
		m.sleep(m.settle)
	}

	if err := m.register(newKey); err != nil {
		return err
	}

	if err := m.slot.StoreShortcut(newKey); err != nil {
		slog.Warn("hotkey saved in memory only", "key", newKey, "err", err)
	}
	slog.Info("hotkey rebound", "from", cur.Key, "to", newKey)
	return nil
}

func (m *Manager) release(key string) {
	m.life.Lock()
	defer m.life.Unlock()
	if m.closed {
		return
	}
	if err := m.reg.Unregister(key); err != nil {
		slog.Warn("hotkey unregister failed, continuing", "key", key, "err", err)
	}
	m.set(Binding{})
}

func (m *Manager) register(key string) error {
	m.life.Lock()
	defer m.life.Unlock()
	if m.closed {
		m.set(Binding{})
		slog.Debug("hotkey not registered, manager closed", "key", key)
		return ErrClosed
	}
	if err := m.reg.Register(key, m.guard.Wrap(m.action)); err != nil {
		m.set(Binding{})
		slog.Error("hotkey registration failed", "key", key, "err", err)
		return fmt.Errorf("%w: %s: %w", ErrRegister, key, err)
	}
	m.set(Binding{Key: key, Registered: true})
	slog.Debug("hotkey registered", "key", key)
	return nil
}

// Close unregisters the bound key, if any. A rebind still running when Close
// is called fails with ErrClosed instead of registering its key.
func (m *Manager) Close() error {
	m.life.Lock()
	defer m.life.Unlock()
	m.closed = true

	cur := m.Binding()
	if !cur.Registered {
		return nil
	}
	m.set(Binding{})
	if err := m.reg.Unregister(cur.Key); err != nil {
		return fmt.Errorf("unregister %s: %w", cur.Key, err)
	}
	return nil
}
