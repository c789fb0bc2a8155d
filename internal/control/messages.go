package control

import (
	"time"

	"go.klb.dev/clipbox/internal/history"
	"go.klb.dev/clipbox/internal/hotkey"
)

// Messages are plain structs carried by the JSON codec on gRPC and encoded
// the same way on the HTTP routes.

type ListRequest struct {
	Tab   string `json:"tab,omitempty"`
	Query string `json:"query,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type ListResponse struct {
	Entries []history.Entry `json:"entries"`
	Total   int             `json:"total"`
	MaxSize int             `json:"max_size"`
}

type IDRequest struct {
	ID string `json:"id"`
}

type CopyRequest struct {
	ID      string `json:"id"`
	Dismiss bool   `json:"dismiss,omitempty"`
}

type CopyResponse struct{}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

type FavoriteResponse struct {
	Favorite bool `json:"favorite"`
}

type PromoteResponse struct {
	Moved bool `json:"moved"`
}

type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

type ClearResponse struct {
	Removed int `json:"removed"`
}

type ToggleRequest struct{}

type ToggleResponse struct {
	Visible bool `json:"visible"`
}

type RebindRequest struct {
	Key string `json:"key"`
}

type RebindResponse struct {
	Binding hotkey.Binding `json:"binding"`
}

type StatusRequest struct{}

type StatusResponse struct {
	Version      string         `json:"version"`
	Store        string         `json:"store"`
	Entries      int            `json:"entries"`
	Favorites    int            `json:"favorites"`
	MaxSize      int            `json:"max_size"`
	Binding      hotkey.Binding `json:"binding"`
	Visible      bool           `json:"visible"`
	Saves        int            `json:"saves"`
	SaveFailures int            `json:"save_failures"`
	Captured     int            `json:"captured"`
	LastCapture  time.Time      `json:"last_capture,omitzero"`
	Watchers     int            `json:"watchers"`
	StartedAt    time.Time      `json:"started_at"`
}

type WatchRequest struct{}
