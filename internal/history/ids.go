package history

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDGenerator returns a new unique id for an entry captured at t.
type IDGenerator func(t time.Time) string

// ULIDs returns a generator of monotonic ULIDs. Ids made within the same
// millisecond still sort in creation order and never collide.
func ULIDs() IDGenerator {
	var mu sync.Mutex
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return func(t time.Time) string {
		mu.Lock()
		defer mu.Unlock()
		return ulid.MustNew(ulid.Timestamp(t), entropy).String()
	}
}
