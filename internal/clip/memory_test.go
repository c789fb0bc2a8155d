package clip

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipbox/internal/content"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestMemorySetSignalsOnChange(t *testing.T) {
	m := NewMemory()

	m.Set("hello")
	select {
	case <-m.Watch():
	default:
		t.Fatal("expected a watch signal")
	}

	m.Set("hello")
	select {
	case <-m.Watch():
		t.Fatal("unchanged contents must not signal")
	default:
	}

	got, err := m.Read()
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestMemoryWriteImageEncoded(t *testing.T) {
	m := NewMemory()
	enc := content.EncodeImage("image/gif", pngHeader)

	require.NoError(t, m.WriteImageEncoded(enc))
	got, _ := m.Read()
	assert.Equal(t, enc, got)
}

func TestWriteImageEncodedRejectsText(t *testing.T) {
	m := NewMemory()
	err := m.WriteImageEncoded("just text")
	assert.ErrorIs(t, err, content.ErrNotImage)

	got, _ := m.Read()
	assert.Empty(t, got, "clipboard untouched on failure")
}

func TestWriteImageEncodedRejectsBadBase64(t *testing.T) {
	m := NewMemory()
	assert.Error(t, m.WriteImageEncoded("data:image/png;base64,!!!"))
}

func TestMemoryWriteImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))

	m := NewMemory()
	require.NoError(t, m.WriteImageFile(path))
	got, _ := m.Read()
	assert.Equal(t, content.EncodeImage("image/png", pngHeader), got)

	assert.Error(t, m.WriteImageFile(filepath.Join(t.TempDir(), "missing.png")))
}
