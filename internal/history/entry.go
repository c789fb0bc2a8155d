package history

import (
	"encoding/json"
	"time"

	"go.klb.dev/clipbox/internal/content"
)

// DefaultMaxSize bounds the history when no size is configured.
const DefaultMaxSize = 100

// Entry is one clipboard history record. Only Favorite changes after creation.
type Entry struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"created_at"`
	Kind       content.Kind `json:"kind"`
	Favorite   bool         `json:"favorite"`
	SourcePath string       `json:"source_path,omitempty"`

	// key is the dedup comparison key, fixed when the entry is built or
	// restored so ingestion does not re-derive it for every stored entry.
	key string
}

// Payload returns the classified content of the entry.
func (e Entry) Payload() content.Payload { return content.Classify(e.Content) }

// UnmarshalJSON decodes an entry and re-derives Kind from Content, so a stored
// kind can never disagree with the payload.
func (e *Entry) UnmarshalJSON(b []byte) error {
	type plain Entry
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = Entry(p)
	payload := content.Classify(e.Content)
	e.Kind = payload.Kind()
	e.key = payload.Key()
	if e.Kind != content.Image {
		e.SourcePath = ""
	}
	return nil
}

// Tab selects a projection of the history.
type Tab int

const (
	// All is the full history in MRU order.
	All Tab = iota
	// FavoritesOnly is the favorited entries, newest capture first.
	FavoritesOnly
)

func (t Tab) String() string {
	if t == FavoritesOnly {
		return "favorites"
	}
	return "all"
}

// ParseTab maps "favorites" (or "fav") to FavoritesOnly and anything else to All.
func ParseTab(s string) Tab {
	switch s {
	case "favorites", "favorite", "fav":
		return FavoritesOnly
	default:
		return All
	}
}
