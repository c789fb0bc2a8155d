//go:build !windows && !((linux || darwin) && cgo)

package globalkey

// Registrar rejects every registration on platforms without global hotkeys.
type Registrar struct{}

// New returns a Registrar that always fails with ErrUnsupported.
func New() *Registrar { return &Registrar{} }

func (r *Registrar) Register(key string, _ func()) error {
	if _, err := Parse(key); err != nil {
		return err
	}
	return ErrUnsupported
}

func (r *Registrar) Unregister(string) error { return ErrUnsupported }
