package clip

import (
	"sync"

	"go.klb.dev/clipbox/internal/content"
)

// Memory is a process-local clipboard used when no display server is
// available. Set simulates a copy made by another application.
type Memory struct {
	mu      sync.Mutex
	current string
	watchCh chan struct{}
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory {
	return &Memory{watchCh: make(chan struct{}, 1)}
}

func (m *Memory) Name() string { return "headless (memory)" }

// Set replaces the clipboard contents and signals watchers.
func (m *Memory) Set(raw string) {
	m.mu.Lock()
	changed := raw != m.current
	m.current = raw
	m.mu.Unlock()

	if changed {
		select {
		case m.watchCh <- struct{}{}:
		default:
		}
	}
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, nil
}

func (m *Memory) WriteText(s string) error {
	m.Set(s)
	return nil
}

func (m *Memory) WriteImageFile(path string) error {
	data, err := readImageFile(path)
	if err != nil {
		return err
	}
	m.Set(content.EncodeImage("image/png", data))
	return nil
}

func (m *Memory) WriteImageEncoded(data string) error {
	img, err := decodeImage(data)
	if err != nil {
		return err
	}
	m.Set(content.EncodeImage(content.Classify(data).MIME(), img))
	return nil
}

func (m *Memory) Watch() <-chan struct{} { return m.watchCh }
func (m *Memory) Close()                 {}
