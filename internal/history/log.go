package history

import (
	"context"
	"log/slog"

	"go.klb.dev/clipbox/internal/content"
)

const previewLen = 120

// logEntry logs a history event at INFO (id, kind) and DEBUG (text preview up
// to 120 chars, or encoded size for images).
func logEntry(event string, e Entry) {
	slog.Info(event, "id", e.ID, "kind", e.Kind)

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if e.Kind == content.Text {
		preview := e.Content
		if len(preview) > previewLen {
			preview = preview[:previewLen] + "…"
		}
		slog.Debug("history entry", "id", e.ID, "preview", preview)
	} else {
		slog.Debug("history entry", "id", e.ID, "size_bytes", len(e.Content))
	}
}
