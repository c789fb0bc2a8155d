package persist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipbox/internal/content"
	"go.klb.dev/clipbox/internal/crypto"
	"go.klb.dev/clipbox/internal/history"
)

// gatedGateway blocks its first Save until release is closed.
type gatedGateway struct {
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	saved [][]history.Entry
	err   error
}

func newGatedGateway() *gatedGateway {
	return &gatedGateway{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *gatedGateway) Load(context.Context) ([]history.Entry, error) { return nil, g.err }

func (g *gatedGateway) Save(_ context.Context, entries []history.Entry) error {
	g.started <- struct{}{}
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saved = append(g.saved, entries)
	return g.err
}

func (g *gatedGateway) Close() error { return nil }

func snap(ids ...string) []history.Entry {
	out := make([]history.Entry, len(ids))
	for i, id := range ids {
		out[i] = history.Entry{ID: id, Content: id}
	}
	return out
}

func TestSaverCoalescesToLatest(t *testing.T) {
	gw := newGatedGateway()
	s := NewSaver(gw)

	s.Submit(snap("a"))
	<-gw.started // first save in flight

	s.Submit(snap("b"))
	s.Submit(snap("c", "b"))
	s.Submit(snap("d", "c", "b"))
	close(gw.release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))

	gw.mu.Lock()
	defer gw.mu.Unlock()
	require.Len(t, gw.saved, 2, "intermediate snapshots are skipped")
	assert.Equal(t, snap("a"), gw.saved[0])
	assert.Equal(t, snap("d", "c", "b"), gw.saved[1], "last submitted snapshot is written last")

	saves, failed := s.Stats()
	assert.Equal(t, 2, saves)
	assert.Zero(t, failed)
}

func TestSaverFailureIsCounted(t *testing.T) {
	gw := newGatedGateway()
	gw.err = errors.New("disk full")
	close(gw.release)
	s := NewSaver(gw)

	s.Submit(snap("a"))
	require.NoError(t, s.Flush(context.Background()))

	saves, failed := s.Stats()
	assert.Equal(t, 1, saves)
	assert.Equal(t, 1, failed)
}

func TestSaverFlushHonoursContext(t *testing.T) {
	gw := newGatedGateway()
	s := NewSaver(gw)
	s.Submit(snap("a"))
	<-gw.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Flush(ctx), context.DeadlineExceeded)

	close(gw.release)
	require.NoError(t, s.Flush(context.Background()))
}

func TestSaverWithStore(t *testing.T) {
	gw := newGatedGateway()
	close(gw.release)
	saver := NewSaver(gw)
	store := history.New(history.Options{Persister: saver})

	for _, v := range []string{"a", "b", "c"} {
		store.Ingest(v)
	}
	require.NoError(t, saver.Flush(context.Background()))

	gw.mu.Lock()
	defer gw.mu.Unlock()
	last := gw.saved[len(gw.saved)-1]
	require.Len(t, last, 3)
	assert.Equal(t, "c", last[0].Content)
}

func TestLoadOrEmpty(t *testing.T) {
	gw := newGatedGateway()
	gw.err = errors.New("corrupt")
	assert.Empty(t, LoadOrEmpty(context.Background(), gw))
}

func sampleEntries() []history.Entry {
	created := time.Date(2026, 3, 4, 5, 6, 7, 8000, time.UTC)
	return []history.Entry{
		{ID: "01A", Content: "hello", CreatedAt: created, Kind: content.Text, Favorite: true},
		{ID: "01B", Content: "data:image/png;base64,AAAA", CreatedAt: created.Add(-time.Minute),
			Kind: content.Image, SourcePath: "/tmp/b.png"},
	}
}

func TestFileGatewayRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	gw, err := NewFileGateway(path, nil)
	require.NoError(t, err)

	got, err := gw.Load(ctx)
	require.NoError(t, err, "missing file is an empty history")
	assert.Empty(t, got)

	require.NoError(t, gw.Save(ctx, sampleEntries()))
	got, err = gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleEntries(), got)

	require.NoError(t, gw.Save(ctx, nil))
	got, err = gw.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileGatewayEncrypted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")
	key, err := crypto.DeriveKey("s3cret")
	require.NoError(t, err)

	gw, err := NewFileGateway(path, key)
	require.NoError(t, err)
	require.NoError(t, gw.Save(ctx, sampleEntries()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, crypto.IsSealed(raw))
	assert.NotContains(t, string(raw), "hello")

	got, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleEntries(), got)

	plain, err := NewFileGateway(path, nil)
	require.NoError(t, err)
	_, err = plain.Load(ctx)
	assert.Error(t, err)

	other, _ := crypto.DeriveKey("wrong")
	wrong, err := NewFileGateway(path, other)
	require.NoError(t, err)
	_, err = wrong.Load(ctx)
	assert.ErrorIs(t, err, crypto.ErrDecrypt)
}

func TestFileGatewayCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	gw, err := NewFileGateway(path, nil)
	require.NoError(t, err)
	_, err = gw.Load(context.Background())
	assert.Error(t, err)
	assert.Empty(t, LoadOrEmpty(context.Background(), gw))
}

func TestFileGatewayRederivesKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	doc := `{"version":1,"entries":[{"id":"x","content":"plain","kind":"image","source_path":"/p"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	gw, err := NewFileGateway(path, nil)
	require.NoError(t, err)
	got, err := gw.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, content.Text, got[0].Kind)
	assert.Empty(t, got[0].SourcePath)
}

func TestSQLiteGatewayRoundTrip(t *testing.T) {
	ctx := context.Background()
	gw, err := NewSQLiteGateway(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })

	got, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, gw.Save(ctx, sampleEntries()))
	got, err = gw.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i, want := range sampleEntries() {
		assert.Equal(t, want.ID, got[i].ID)
		assert.Equal(t, want.Content, got[i].Content)
		assert.Equal(t, want.Kind, got[i].Kind)
		assert.Equal(t, want.Favorite, got[i].Favorite)
		assert.Equal(t, want.SourcePath, got[i].SourcePath)
		assert.True(t, want.CreatedAt.Equal(got[i].CreatedAt))
	}

	// order follows the snapshot, not insertion history
	reordered := []history.Entry{sampleEntries()[1], sampleEntries()[0]}
	require.NoError(t, gw.Save(ctx, reordered))
	got, err = gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "01B", got[0].ID)
	assert.Equal(t, "01A", got[1].ID)

	require.NoError(t, gw.Save(ctx, nil))
	got, err = gw.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteGatewayUnreadableTimestamp(t *testing.T) {
	ctx := context.Background()
	gw, err := NewSQLiteGateway(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })

	_, err = gw.db.ExecContext(ctx,
		`INSERT INTO entries (id, position, content, created_at) VALUES
		 ('01A', 0, 'a', 'yesterday'),
		 ('01B', 1, 'b', '2024-01-02 03:04:05')`)
	require.NoError(t, err)

	got, err := gw.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].CreatedAt.IsZero(), "unreadable stamp is left for Restore to fill")
	assert.True(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Equal(got[1].CreatedAt))

	_, err = parseStamp("yesterday")
	assert.ErrorContains(t, err, `parse created_at "yesterday"`)
}
