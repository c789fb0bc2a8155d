// Package clip provides a unified interface to the system clipboard. Build
// constraints select the implementation:
//
//	clip_desktop.go  darwin, windows, linux via golang.design/x/clipboard, polling
//	clip_other.go    headless stub for everything else
//
// Payloads cross this boundary as strings: plain text, or an image in
// data-URL form (see package content).
package clip

import (
	"fmt"
	"os"

	"go.klb.dev/clipbox/internal/content"
)

// Writer is the outbound clipboard capability used when the user picks an
// entry to copy.
type Writer interface {
	// WriteText puts s on the clipboard as text.
	WriteText(s string) error
	// WriteImageFile puts the PNG image stored at path on the clipboard.
	WriteImageFile(path string) error
	// WriteImageEncoded puts a data-URL encoded image on the clipboard.
	WriteImageEncoded(data string) error
}

// Backend is the interface that all clipboard implementations satisfy.
type Backend interface {
	Writer

	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard payload. Text wins over an image;
	// an image is returned in data-URL form. Returns "", nil when the
	// clipboard is empty or holds only unsupported formats.
	Read() (string, error)

	// Watch returns a channel that receives a signal whenever the clipboard
	// changes. The channel is never closed. The caller should call Read when
	// it receives from the channel.
	Watch() <-chan struct{}

	// Close releases any resources held by the backend.
	Close()
}

// readImageFile loads the image bytes at path.
func readImageFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("read image %s: file is empty", path)
	}
	return data, nil
}

// decodeImage extracts the image bytes from a data URL. The data part is
// everything after the first comma.
func decodeImage(data string) ([]byte, error) {
	p := content.Classify(data)
	if !p.IsImage() {
		return nil, fmt.Errorf("write image: %w", content.ErrNotImage)
	}
	return p.Decode()
}
