package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/internal/auth"
	"Storefront/internal/catalog"
	"Storefront/internal/persist"
	"Storefront/pkg/kit"
)

const maxBodyBytes = 1 << 20

// Server renders the storefront screens from the Store cells. One process
// serves one UI session.
type Server struct {
	Store   *Store
	Session *auth.Session
	Log     *zap.Logger
}

type listView struct {
	Products        []catalog.Product `json:"products"`
	Loading         bool              `json:"loading"`
	Error           string            `json:"error,omitempty"`
	IsAuthenticated bool              `json:"isAuthenticated"`
}

type detailView struct {
	Product         *catalog.Product `json:"product"`
	Loading         bool             `json:"loading"`
	Error           string           `json:"error,omitempty"`
	IsAuthenticated bool             `json:"isAuthenticated"`
}

type signInReq struct {
	Token string `json:"token"`
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) listView() listView {
	return listView{
		Products:        s.Store.Products().Get(),
		Loading:         s.Store.Loading().Get(),
		Error:           s.Store.Error().Get(),
		IsAuthenticated: s.Session.IsAuthenticated().Get(),
	}
}

func (s *Server) detailView() detailView {
	return detailView{
		Product:         s.Store.SelectedProduct().Get(),
		Loading:         s.Store.Loading().Get(),
		Error:           s.Store.Error().Get(),
		IsAuthenticated: s.Session.IsAuthenticated().Get(),
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.Store.LoadAll(r.Context())
	kit.WriteJSON(w, http.StatusOK, s.listView())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.Store.Refresh(r.Context())
	kit.WriteJSON(w, http.StatusOK, s.listView())
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	s.Store.LoadOne(r.Context(), id)
	kit.WriteJSON(w, http.StatusOK, s.detailView())
}

func (s *Server) handleClearSelection(w http.ResponseWriter, _ *http.Request) {
	s.Store.ClearSelected()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeForm(w, r)
	if !ok {
		return
	}

	p, err := s.Store.Create(r.Context(), form.Draft())
	if err != nil {
		s.writeWriteError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	form, ok := decodeForm(w, r)
	if !ok {
		return
	}

	p, err := s.Store.Update(r.Context(), id, form.Patch())
	if err != nil {
		s.writeWriteError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.writeWriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if err := s.Session.SignIn(req.Token); err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Session.State().Get())
}

func (s *Server) handleSignOut(w http.ResponseWriter, _ *http.Request) {
	s.Session.SignOut()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	st := s.Session.State().Get()
	if st == nil {
		st = &auth.State{}
	}
	kit.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Store.cache.Get(r.Context(), readinessKey); err != nil && !errors.Is(err, persist.ErrNotFound) {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "cache not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// readinessKey is never written; a miss proves the backend answers.
const readinessKey = "readyz"

// writeWriteError answers a failed mutation with the upstream message. Only
// an upstream 404 passes through; everything else is a 502.
func (s *Server) writeWriteError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger().Warn("catalog write failed", zap.Error(err))

	status := http.StatusBadGateway
	switch {
	case catalog.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, context.Canceled):
		status = http.StatusRequestTimeout
	}
	kit.WriteError(w, r, status, err.Error(), nil)
}

func decodeForm(w http.ResponseWriter, r *http.Request) (catalog.Form, bool) {
	var form catalog.Form
	if err := decodeJSON(w, r, &form); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return catalog.Form{}, false
	}
	if err := form.Validate(); err != nil {
		var ve *catalog.ValidationError
		if errors.As(err, &ve) {
			kit.WriteError(w, r, http.StatusBadRequest, "invalid product", ve)
			return catalog.Form{}, false
		}
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return catalog.Form{}, false
	}
	return form, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}
