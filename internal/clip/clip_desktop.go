//go:build darwin || windows || linux

package clip

import (
	"bytes"
	"log/slog"
	"time"

	"golang.design/x/clipboard"

	"go.klb.dev/clipbox/internal/content"
)

// DefaultPollInterval is how often the desktop backend samples the clipboard.
const DefaultPollInterval = 500 * time.Millisecond

type desktopBackend struct {
	interval time.Duration
	watchCh  chan struct{}
	done     chan struct{}
	lastText []byte
	lastImg  []byte
}

// New returns the desktop clipboard backend, or a headless backend if the
// display environment is unavailable (e.g. a server without X11 or
// Wayland). clipboard.Init is called here rather than in init() so that CLI
// sub-commands never touch the display.
func New(interval time.Duration) Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return NewMemory()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	b := &desktopBackend{
		interval: interval,
		watchCh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go b.poll()
	return b
}

func (b *desktopBackend) Name() string { return "desktop clipboard (poll)" }

func (b *desktopBackend) poll() {
	t := time.NewTicker(b.interval)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			text := clipboard.Read(clipboard.FmtText)
			img := clipboard.Read(clipboard.FmtImage)
			if !bytes.Equal(text, b.lastText) || !bytes.Equal(img, b.lastImg) {
				b.lastText = text
				b.lastImg = img
				select {
				case b.watchCh <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (b *desktopBackend) Read() (string, error) {
	if text := clipboard.Read(clipboard.FmtText); len(text) > 0 {
		return string(text), nil
	}
	if img := clipboard.Read(clipboard.FmtImage); len(img) > 0 {
		return content.EncodeImage("image/png", img), nil
	}
	return "", nil
}

func (b *desktopBackend) WriteText(s string) error {
	clipboard.Write(clipboard.FmtText, []byte(s))
	return nil
}

func (b *desktopBackend) WriteImageFile(path string) error {
	data, err := readImageFile(path)
	if err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

func (b *desktopBackend) WriteImageEncoded(data string) error {
	img, err := decodeImage(data)
	if err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, img)
	return nil
}

func (b *desktopBackend) Watch() <-chan struct{} { return b.watchCh }
func (b *desktopBackend) Close()                 { close(b.done) }
