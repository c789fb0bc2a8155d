// Package history implements the clipboard history engine: a bounded,
// deduplicated, most-recently-used list of entries with a favorites view.
//
// The Store is the system of record for the running process. Every mutation is
// serialized by one mutex; after a mutation settles the store hands a snapshot
// to its Persister and then publishes a change event on its hub. Persistence is
// best-effort: the in-memory state is never rolled back.
package history

import (
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"go.klb.dev/clipbox/internal/content"
	"go.klb.dev/clipbox/internal/hub"
)

// Persister receives a snapshot after every mutation. Submit must not block;
// it is called with the store lock held so snapshots arrive in mutation order.
type Persister interface {
	Submit(entries []Entry)
}

// Options configures a Store. Zero values pick defaults.
type Options struct {
	MaxSize   int
	Persister Persister
	Hub       *hub.Hub
	IDs       IDGenerator
	Now       func() time.Time
}

// Store is the ordered, bounded, favorite-aware history.
type Store struct {
	mu      sync.Mutex
	entries []Entry // MRU order: index 0 is the most recent

	max     int
	persist Persister
	hub     *hub.Hub
	newID   IDGenerator
	now     func() time.Time
}

// New returns an empty Store.
func New(opts Options) *Store {
	s := &Store{
		max:     opts.MaxSize,
		persist: opts.Persister,
		hub:     opts.Hub,
		newID:   opts.IDs,
		now:     opts.Now,
	}
	if s.max <= 0 {
		s.max = DefaultMaxSize
	}
	if s.hub == nil {
		s.hub = hub.New()
	}
	if s.newID == nil {
		s.newID = ULIDs()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// MaxSize returns the history bound.
func (s *Store) MaxSize() int { return s.max }

// Hub returns the change feed.
func (s *Store) Hub() *hub.Hub { return s.hub }

// Restore replaces the history with entries loaded from the persisted store.
// Kinds are re-derived, blank and duplicate entries are dropped, missing ids are
// assigned, and the result is truncated to the bound. No save is triggered.
// It returns the number of entries kept.
func (s *Store) Restore(entries []Entry) int {
	kept := make([]Entry, 0, min(len(entries), s.max))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if len(kept) == s.max {
			break
		}
		p := e.Payload()
		if !ShouldAccept(p, kept) {
			continue
		}
		e.Kind = p.Kind()
		e.key = p.Key()
		if e.Kind != content.Image {
			e.SourcePath = ""
		}
		if _, dup := seen[e.ID]; e.ID == "" || dup {
			e.ID = s.newID(s.now())
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = s.now()
		}
		seen[e.ID] = struct{}{}
		kept = append(kept, e)
	}

	s.mu.Lock()
	s.entries = kept
	n := len(kept)
	s.hub.Publish(hub.Event{Op: hub.OpRestored, Size: n})
	s.mu.Unlock()

	if dropped := len(entries) - n; dropped > 0 {
		slog.Info("history restored", "entries", n, "dropped", dropped)
	} else {
		slog.Info("history restored", "entries", n)
	}
	return n
}

// Ingest classifies raw and inserts it at the front unless it is blank or a
// duplicate of any stored entry. The oldest entries beyond the bound are
// evicted, favorites included. It returns the new entry and true on insertion.
func (s *Store) Ingest(raw string) (Entry, bool) {
	p := content.Classify(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ShouldAccept(p, s.entries) {
		if !p.Blank() {
			slog.Debug("clipboard duplicate ignored", "kind", p.Kind())
		}
		return Entry{}, false
	}

	now := s.now()
	e := Entry{
		ID:        s.newID(now),
		Content:   raw,
		CreatedAt: now,
		Kind:      p.Kind(),
		key:       p.Key(),
	}
	s.entries = slices.Insert(s.entries, 0, e)
	if len(s.entries) > s.max {
		evicted := len(s.entries) - s.max
		clear(s.entries[s.max:])
		s.entries = s.entries[:s.max]
		slog.Debug("history evicted oldest", "count", evicted)
	}

	logEntry("clipboard captured", e)
	s.commitLocked(hub.Event{Op: hub.OpAdded, ID: e.ID})
	return e, true
}

// Delete removes the entry with id. It reports whether anything was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	s.commitLocked(hub.Event{Op: hub.OpDeleted, ID: id})
	return true
}

// ClearAll empties the history. Confirmation is the caller's job.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.commitLocked(hub.Event{Op: hub.OpCleared})
}

// ToggleFavorite flips the favorite flag of id and returns the new value.
// ok is false when id is unknown.
func (s *Store) ToggleFavorite(id string) (favorite, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false, false
	}
	s.entries[i].Favorite = !s.entries[i].Favorite
	favorite = s.entries[i].Favorite
	s.commitLocked(hub.Event{Op: hub.OpFavorite, ID: id, Favorite: favorite})
	return favorite, true
}

// PromoteToFront moves id to position 0, keeping the relative order of every
// other entry. CreatedAt is not touched. It reports whether the order changed.
func (s *Store) PromoteToFront(id string) bool {
	moved, _ := s.MoveToFront(id)
	return moved
}

// MoveToFront is PromoteToFront that also reports whether id was present, so
// callers can tell an unknown id from one that is already first.
func (s *Store) MoveToFront(id string) (moved, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false, false
	}
	if i == 0 {
		return false, true
	}
	e := s.entries[i]
	copy(s.entries[1:i+1], s.entries[:i])
	s.entries[0] = e
	s.commitLocked(hub.Event{Op: hub.OpPromoted, ID: id})
	return true, true
}

// Get returns the entry with id.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// View returns a copy of the requested projection. All is storage order.
// FavoritesOnly is sorted by CreatedAt descending, independent of promotions.
func (s *Store) View(tab Tab) []Entry {
	s.mu.Lock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if tab == FavoritesOnly && !e.Favorite {
			continue
		}
		out = append(out, e)
	}
	s.mu.Unlock()

	if tab == FavoritesOnly {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// Search narrows View(tab) to text entries fuzzily matching query,
// case-insensitively. An empty query returns the whole view.
func (s *Store) Search(tab Tab, query string) []Entry {
	view := s.View(tab)
	query = strings.TrimSpace(query)
	if query == "" {
		return view
	}
	out := view[:0]
	for _, e := range view {
		if e.Kind == content.Text && fuzzy.MatchFold(query, e.Content) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
}

// commitLocked hands a snapshot to the persister and publishes ev.
// Must be called with s.mu held.
func (s *Store) commitLocked(ev hub.Event) {
	if s.persist != nil {
		s.persist.Submit(slices.Clone(s.entries))
	}
	ev.Size = len(s.entries)
	s.hub.Publish(ev)
}
