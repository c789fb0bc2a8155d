//go:build !darwin && !windows && !linux

package clip

import "time"

// DefaultPollInterval is unused by the headless backend.
const DefaultPollInterval = 500 * time.Millisecond

// New returns an in-memory backend for platforms without a supported
// clipboard (containers, CI, etc.).
func New(_ time.Duration) Backend {
	return NewMemory()
}
