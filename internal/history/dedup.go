package history

import "go.klb.dev/clipbox/internal/content"

// ShouldAccept reports whether candidate may be inserted into entries.
//
// Blank payloads are rejected. Otherwise every entry is compared, not just the
// head, so that alternating copies of the same two values are still caught.
// Text compares trimmed; images compare only the first content.ImageKeyLen
// characters of their encoded form, so long images that differ only past that
// point are treated as duplicates. That false negative is a known limitation of
// the cheap comparison.
func ShouldAccept(candidate content.Payload, entries []Entry) bool {
	if candidate.Blank() {
		return false
	}
	kind, key := candidate.Kind(), candidate.Key()
	for _, e := range entries {
		if e.key == "" {
			// built outside the store
			if e.Payload().Equal(candidate) {
				return false
			}
			continue
		}
		if e.Kind == kind && e.key == key {
			return false
		}
	}
	return true
}
