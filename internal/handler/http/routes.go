package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, h.withLogging, withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/version", h.getServerVersion)
		r.Get("/api/info", h.getServerInfo)
	})

	// sync routes
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		if h.requestTimeout > 0 {
			r.Use(middleware.Timeout(h.requestTimeout))
		}

		r.Route("/api/sync/{table}", func(r chi.Router) {
			r.With(h.withContentHash).Post("/push", h.push)
			r.Get("/pull", h.pull)
			r.With(h.withContentHash).Post("/fetch", h.fetch)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
