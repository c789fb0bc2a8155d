package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.klb.dev/clipbox/internal/crypto"
	"go.klb.dev/clipbox/internal/history"
)

const snapshotVersion = 1

type snapshot struct {
	Version int             `json:"version"`
	Entries []history.Entry `json:"entries"`
}

// FileGateway stores the history as one JSON document, optionally sealed
// with a passphrase-derived key. Writes go to a temp file that is renamed
// into place.
type FileGateway struct {
	path string
	key  *crypto.Key
}

// NewFileGateway returns a gateway for path. A nil key stores plain JSON.
func NewFileGateway(path string, key *crypto.Key) (*FileGateway, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FileGateway{path: path, key: key}, nil
}

// Path returns the snapshot file location.
func (g *FileGateway) Path() string { return g.path }

func (g *FileGateway) Load(_ context.Context) ([]history.Entry, error) {
	data, err := os.ReadFile(g.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	switch {
	case crypto.IsSealed(data) && g.key == nil:
		return nil, fmt.Errorf("history %s is encrypted and no passphrase is configured", g.path)
	case crypto.IsSealed(data):
		data, err = crypto.Open(data, g.key)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return snap.Entries, nil
}

func (g *FileGateway) Save(_ context.Context, entries []history.Entry) error {
	if entries == nil {
		entries = []history.Entry{}
	}
	data, err := json.Marshal(snapshot{Version: snapshotVersion, Entries: entries})
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if g.key != nil {
		if data, err = crypto.Seal(data, g.key); err != nil {
			return fmt.Errorf("seal history: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(g.path), ".history-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}
	if err := os.Rename(tmp.Name(), g.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

func (g *FileGateway) Close() error { return nil }
