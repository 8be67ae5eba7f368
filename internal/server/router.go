package server

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/samvad-hq/samvad-json-relay/internal/logger"
)

// NewRouter mounts the relay routes.
func NewRouter(h *Handler, log logger.Logger) *chi.Mux {
	if log == nil {
		log = logger.NopLogger{}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(LoggingMiddleware(log))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Get("/proxy", h.Proxy)
	r.Post("/batch", h.Batch)
	return r
}
