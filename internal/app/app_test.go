package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipbox/internal/content"
	"go.klb.dev/clipbox/internal/history"
)

type recorder struct {
	calls    []string
	failAll  bool
	failFile bool
	onWrite  func()
}

func (r *recorder) WriteText(s string) error {
	r.calls = append(r.calls, "text:"+s)
	if r.onWrite != nil {
		r.onWrite()
	}
	return r.fail()
}

func (r *recorder) WriteImageFile(path string) error {
	r.calls = append(r.calls, "file:"+path)
	if r.failFile {
		return errors.New("no such file")
	}
	return r.fail()
}

func (r *recorder) WriteImageEncoded(string) error {
	r.calls = append(r.calls, "encoded")
	return r.fail()
}

func (r *recorder) fail() error {
	if r.failAll {
		return errors.New("clipboard busy")
	}
	return nil
}

type flipper struct {
	visible bool
	err     error
	n       int
}

func (f *flipper) Toggle() (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.n++
	f.visible = !f.visible
	return f.visible, nil
}

func contents(entries []history.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Content
	}
	return out
}

func TestCopyTextPromotesAndDismisses(t *testing.T) {
	store := history.New(history.Options{})
	old, _ := store.Ingest("first")
	store.Ingest("second")

	rec := &recorder{}
	win := &flipper{visible: true}
	a := New(store, rec, win)

	require.NoError(t, a.Copy(old.ID, true))
	assert.Equal(t, []string{"text:first"}, rec.calls)
	assert.Equal(t, []string{"first", "second"}, contents(store.View(history.All)))
	assert.False(t, win.visible)
}

func TestCopyWithoutDismissKeepsWindow(t *testing.T) {
	store := history.New(history.Options{})
	e, _ := store.Ingest("x")
	win := &flipper{}

	require.NoError(t, New(store, &recorder{}, win).Copy(e.ID, false))
	assert.Zero(t, win.n)
}

func TestCopyUnknownID(t *testing.T) {
	a := New(history.New(history.Options{}), &recorder{}, &flipper{})
	assert.ErrorIs(t, a.Copy("nope", true), ErrNotFound)
}

func TestCopyReportsEntryDeletedDuringWrite(t *testing.T) {
	store := history.New(history.Options{})
	e, _ := store.Ingest("going")
	store.Ingest("staying")
	win := &flipper{}

	rec := &recorder{onWrite: func() { store.Delete(e.ID) }}
	err := New(store, rec, win).Copy(e.ID, true)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"staying"}, contents(store.View(history.All)))
	assert.Zero(t, win.n, "no dismiss after a failed copy")
}

func TestCopyWriteFailureLeavesOrder(t *testing.T) {
	store := history.New(history.Options{})
	old, _ := store.Ingest("first")
	store.Ingest("second")
	win := &flipper{}

	err := New(store, &recorder{failAll: true}, win).Copy(old.ID, true)
	require.Error(t, err)
	assert.Equal(t, []string{"second", "first"}, contents(store.View(history.All)))
	assert.Zero(t, win.n)
}

func TestCopyImagePrefersSourcePath(t *testing.T) {
	img := content.EncodeImage("image/png", []byte{1, 2, 3})
	store := history.New(history.Options{})
	store.Restore([]history.Entry{{ID: "img", Content: img, SourcePath: "/tmp/shot.png"}})

	rec := &recorder{}
	require.NoError(t, New(store, rec, &flipper{}).Copy("img", false))
	assert.Equal(t, []string{"file:/tmp/shot.png"}, rec.calls)

	rec = &recorder{failFile: true}
	require.NoError(t, New(store, rec, &flipper{}).Copy("img", false))
	assert.Equal(t, []string{"file:/tmp/shot.png", "encoded"}, rec.calls)
}

func TestCopyImageEncoded(t *testing.T) {
	store := history.New(history.Options{})
	e, _ := store.Ingest(content.EncodeImage("image/png", []byte{9}))

	rec := &recorder{}
	require.NoError(t, New(store, rec, &flipper{}).Copy(e.ID, false))
	assert.Equal(t, []string{"encoded"}, rec.calls)
}

func TestEscapeAndHotkeyToggle(t *testing.T) {
	win := &flipper{}
	a := New(history.New(history.Options{}), &recorder{}, win)

	v, err := a.Escape()
	require.NoError(t, err)
	assert.True(t, v)

	a.HotkeyAction()()
	assert.False(t, win.visible)

	win.err = errors.New("no display")
	_, err = a.Toggle()
	assert.Error(t, err)
	a.HotkeyAction()() // logged, not fatal
}
