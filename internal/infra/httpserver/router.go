// Package httpserver exposes a read-only status surface over a running or
// finished sweep: health, live progress, and run history.
package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/analogtools/gmsweep/internal/application/characterize"
	domain "github.com/analogtools/gmsweep/internal/domain/sweep"
	"github.com/analogtools/gmsweep/internal/middleware"
)

type Router struct {
	svc *characterize.Service
}

func NewRouter(svc *characterize.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(middleware.Logging)
	mux.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{http.MethodGet},
	}))

	mux.Get("/health", middleware.HealthHandler(checkers))

	mux.Route("/v1", func(rt chi.Router) {
		rt.Get("/progress", r.wrap(r.handleProgress))
		rt.Get("/runs/latest", r.wrap(r.handleLatest))
		rt.Get("/runs/{id}", r.wrap(r.handleGet))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// GET /v1/progress
func (r *Router) handleProgress(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, r.svc.Progress())
}

// GET /v1/runs/latest?limit=N
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit := 20
	if v := req.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	runs, err := r.svc.Latest(req.Context(), limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []*domain.Run{}
	}
	return writeJSON(w, runs)
}

// GET /v1/runs/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	run, err := r.svc.Get(req.Context(), domain.RunID(id))
	if err != nil {
		return err
	}
	if run == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil
	}
	return writeJSON(w, run)
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}
