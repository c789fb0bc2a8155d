// Package control exposes the history to CLI tools and view processes.
//
// One Service backs two transports: gRPC (a hand-written service descriptor
// using a JSON codec) and HTTP/JSON routes on a grpc-gateway ServeMux. On TCP
// both share a single listener through cmux; the local IPC socket serves
// gRPC only and needs no token.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipbox/internal/app"
	"go.klb.dev/clipbox/internal/history"
	"go.klb.dev/clipbox/internal/hotkey"
	"go.klb.dev/clipbox/internal/hub"
)

// Rebinder is the part of the hotkey manager the control surface drives.
type Rebinder interface {
	Rebind(key string) error
	Binding() hotkey.Binding
}

// Deps wires a Service. Store and Actions are required, the rest may be nil.
type Deps struct {
	Store   *history.Store
	Actions *app.Actions
	Hotkeys Rebinder
	Version string
	// StoreKind names the persistence backend for status output.
	StoreKind string
	Saver     interface{ Stats() (saves, failed int) }
	Monitor   interface{ Stats() (int, time.Time) }
	Window    interface{ Visible() bool }
}

// Service implements the History service.
type Service struct {
	d       Deps
	started time.Time
	seq     atomic.Uint64
}

// NewService returns a Service over d.
func NewService(d Deps) *Service {
	return &Service{d: d, started: time.Now()}
}

func (s *Service) List(_ context.Context, req *ListRequest) (*ListResponse, error) {
	tab := history.ParseTab(req.Tab)
	entries := s.d.Store.Search(tab, req.Query)
	total := len(entries)
	if req.Limit > 0 && len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}
	return &ListResponse{Entries: entries, Total: total, MaxSize: s.d.Store.MaxSize()}, nil
}

func (s *Service) Copy(_ context.Context, req *CopyRequest) (*CopyResponse, error) {
	err := s.d.Actions.Copy(req.ID, req.Dismiss)
	switch {
	case errors.Is(err, app.ErrNotFound):
		return nil, notFound(req.ID)
	case err != nil:
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return &CopyResponse{}, nil
}

func (s *Service) Delete(_ context.Context, req *IDRequest) (*DeleteResponse, error) {
	if !s.d.Store.Delete(req.ID) {
		return nil, notFound(req.ID)
	}
	return &DeleteResponse{Deleted: true}, nil
}

func (s *Service) Favorite(_ context.Context, req *IDRequest) (*FavoriteResponse, error) {
	fav, ok := s.d.Store.ToggleFavorite(req.ID)
	if !ok {
		return nil, notFound(req.ID)
	}
	return &FavoriteResponse{Favorite: fav}, nil
}

func (s *Service) Promote(_ context.Context, req *IDRequest) (*PromoteResponse, error) {
	moved, ok := s.d.Store.MoveToFront(req.ID)
	if !ok {
		return nil, notFound(req.ID)
	}
	return &PromoteResponse{Moved: moved}, nil
}

// Clear empties the history. The caller must confirm explicitly.
func (s *Service) Clear(_ context.Context, req *ClearRequest) (*ClearResponse, error) {
	if !req.Confirm {
		return nil, status.Error(codes.FailedPrecondition, "clear requires confirmation")
	}
	n := s.d.Store.Len()
	s.d.Store.ClearAll()
	slog.Info("history cleared", "removed", n)
	return &ClearResponse{Removed: n}, nil
}

func (s *Service) Toggle(_ context.Context, _ *ToggleRequest) (*ToggleResponse, error) {
	visible, err := s.d.Actions.Toggle()
	if err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return &ToggleResponse{Visible: visible}, nil
}

func (s *Service) Rebind(_ context.Context, req *RebindRequest) (*RebindResponse, error) {
	if s.d.Hotkeys == nil {
		return nil, status.Error(codes.Unimplemented, "hotkeys are disabled")
	}
	err := s.d.Hotkeys.Rebind(req.Key)
	switch {
	case errors.Is(err, hotkey.ErrRebindInProgress):
		return nil, status.Error(codes.Aborted, err.Error())
	case errors.Is(err, hotkey.ErrClosed):
		return nil, status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, hotkey.ErrEmptyKey):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case err != nil:
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	return &RebindResponse{Binding: s.d.Hotkeys.Binding()}, nil
}

func (s *Service) Status(_ context.Context, _ *StatusRequest) (*StatusResponse, error) {
	resp := &StatusResponse{
		Version:   s.d.Version,
		Store:     s.d.StoreKind,
		Entries:   s.d.Store.Len(),
		Favorites: len(s.d.Store.View(history.FavoritesOnly)),
		MaxSize:   s.d.Store.MaxSize(),
		Watchers:  s.d.Store.Hub().Len(),
		StartedAt: s.started,
	}
	if s.d.Hotkeys != nil {
		resp.Binding = s.d.Hotkeys.Binding()
	}
	if s.d.Saver != nil {
		resp.Saves, resp.SaveFailures = s.d.Saver.Stats()
	}
	if s.d.Monitor != nil {
		resp.Captured, resp.LastCapture = s.d.Monitor.Stats()
	}
	if s.d.Window != nil {
		resp.Visible = s.d.Window.Visible()
	}
	return resp, nil
}

// Watch streams change events to send until ctx is done or send fails.
func (s *Service) Watch(ctx context.Context, _ *WatchRequest, send func(*hub.Event) error) error {
	id := fmt.Sprintf("%s/watch/%d", addrFromCtx(ctx), s.seq.Add(1))
	sub := hub.NewChan(id, 64)

	h := s.d.Store.Hub()
	h.Register(sub)
	defer h.Unregister(sub)

	slog.Info("watch started", "subscriber", id)
	defer slog.Info("watch ended", "subscriber", id)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-sub.C():
			if err := send(&ev); err != nil {
				return err
			}
		}
	}
}

func notFound(id string) error {
	return status.Errorf(codes.NotFound, "entry %q not found", id)
}

func addrFromCtx(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if a := p.Addr.String(); a != "" && !strings.HasPrefix(a, "@") {
			return a
		}
	}
	return "local"
}
