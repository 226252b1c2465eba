package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

const maxBodyBytes = 1 << 20

// Server is the upstream catalog stub. It mimics the fakestoreapi product
// collection closely enough for the storefront to run against it.
type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			s.logger().Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", s.list)
		pr.Post("/", s.create)
		pr.Get("/{id}", s.get)
		pr.Put("/{id}", s.update)
		pr.Delete("/{id}", s.delete)
	})

	return r
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context())
	if err != nil {
		s.logger().Error("list products failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, "get", id, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var d Draft
	if err := decodeBody(w, r, &d); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if d.Price < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "price must not be negative", nil)
		return
	}

	p, err := s.Store.Create(r.Context(), d)
	if err != nil {
		s.logger().Error("create product failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var patch Patch
	if err := decodeBody(w, r, &patch); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if patch.Price != nil && *patch.Price < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "price must not be negative", nil)
		return
	}

	p, err := s.Store.Update(r.Context(), id, patch)
	if err != nil {
		s.writeStoreError(w, r, "update", id, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := s.Store.Delete(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, "delete", id, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, op string, id int, err error) {
	if errors.Is(err, ErrNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"id": id})
		return
	}
	s.logger().Error(op+" product failed", zap.Error(err), zap.Int("id", id))
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
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

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}
