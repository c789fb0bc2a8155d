package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.klb.dev/clipbox/internal/content"
	"go.klb.dev/clipbox/internal/history"
	"go.klb.dev/clipbox/internal/hub"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, "one two three", preview("one\n  two\tthree", 40))
	assert.Equal(t, "abcd…", preview("abcdefgh", 5))
	assert.Equal(t, "héllo", preview("héllo", 5))
}

func TestDescribeImage(t *testing.T) {
	raw := content.EncodeImage("image/png", []byte(strings.Repeat("x", 300)))
	e := history.Entry{ID: "1", Content: raw, Kind: content.Image}
	got := describe(e)
	assert.True(t, strings.HasPrefix(got, "[image image/png, "), got)
}

func TestDescribeText(t *testing.T) {
	e := history.Entry{ID: "1", Content: "hello\nworld", Kind: content.Text}
	assert.Equal(t, "hello world", describe(e))
}

func TestFormatEvent(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

	got := formatEvent(&hub.Event{Op: hub.OpAdded, ID: "01J", Size: 3, At: at})
	assert.Equal(t, "12:00:00  added     01J size=3", got)

	got = formatEvent(&hub.Event{Op: hub.OpVisibility, Visible: true, At: at})
	assert.Equal(t, "12:00:00  window visible", got)

	got = formatEvent(&hub.Event{Op: hub.OpCleared, At: at})
	assert.Equal(t, "12:00:00  cleared   size=0", got)
}
