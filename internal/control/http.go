package control

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type route struct {
	method  string
	pattern string
	handle  func(s *Service, r *http.Request, params map[string]string) (any, error)
}

var routes = []route{
	{"GET", "/v1/entries", func(s *Service, r *http.Request, _ map[string]string) (any, error) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		return s.List(r.Context(), &ListRequest{Tab: q.Get("tab"), Query: q.Get("q"), Limit: limit})
	}},
	{"DELETE", "/v1/entries", func(s *Service, r *http.Request, _ map[string]string) (any, error) {
		confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
		return s.Clear(r.Context(), &ClearRequest{Confirm: confirm})
	}},
	{"DELETE", "/v1/entries/{id}", func(s *Service, r *http.Request, p map[string]string) (any, error) {
		return s.Delete(r.Context(), &IDRequest{ID: p["id"]})
	}},
	{"POST", "/v1/entries/{id}/copy", func(s *Service, r *http.Request, p map[string]string) (any, error) {
		req := &CopyRequest{}
		if err := decodeBody(r, req); err != nil {
			return nil, err
		}
		req.ID = p["id"]
		return s.Copy(r.Context(), req)
	}},
	{"POST", "/v1/entries/{id}/favorite", func(s *Service, r *http.Request, p map[string]string) (any, error) {
		return s.Favorite(r.Context(), &IDRequest{ID: p["id"]})
	}},
	{"POST", "/v1/entries/{id}/promote", func(s *Service, r *http.Request, p map[string]string) (any, error) {
		return s.Promote(r.Context(), &IDRequest{ID: p["id"]})
	}},
	{"POST", "/v1/window/toggle", func(s *Service, r *http.Request, _ map[string]string) (any, error) {
		return s.Toggle(r.Context(), &ToggleRequest{})
	}},
	{"PUT", "/v1/hotkey", func(s *Service, r *http.Request, _ map[string]string) (any, error) {
		req := &RebindRequest{}
		if err := decodeBody(r, req); err != nil {
			return nil, err
		}
		return s.Rebind(r.Context(), req)
	}},
	{"GET", "/v1/status", func(s *Service, r *http.Request, _ map[string]string) (any, error) {
		return s.Status(r.Context(), &StatusRequest{})
	}},
}

// NewHTTPHandler returns the HTTP/JSON surface of svc. token, when set, is
// required as a bearer token on every request.
func NewHTTPHandler(svc *Service, token string) (http.Handler, error) {
	mux := gwruntime.NewServeMux()
	auth := tokenAuth{token: token}

	for _, rt := range routes {
		err := mux.HandlePath(rt.method, rt.pattern, func(w http.ResponseWriter, r *http.Request, params map[string]string) {
			if token != "" && !auth.valid(r.Header.Get("Authorization")) {
				writeError(w, status.Error(codes.Unauthenticated, "invalid token"))
				return
			}
			resp, err := rt.handle(svc, r, params)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, resp)
		})
		if err != nil {
			return nil, err
		}
	}
	return mux, nil
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || err == io.EOF {
		return nil
	}
	return status.Errorf(codes.InvalidArgument, "decode body: %v", err)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	st := status.Convert(err)
	writeJSON(w, gwruntime.HTTPStatusFromCode(st.Code()), errorBody{
		Code:    st.Code().String(),
		Message: st.Message(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("http response write failed", "err", err)
	}
}
