package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Mount registers the API routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/matchups", h.ListMatchups)
		r.Get("/matchups/{a}/{b}", h.GetMatchup)
		r.Get("/characters", h.ListCharacters)
		r.Get("/predict", h.Predict)

		r.Group(func(r chi.Router) {
			r.Use(h.AdminAuthMiddleware)
			r.Post("/ingest/sets", h.IngestSets)
			r.Post("/matchups/rebuild", h.RebuildMatchups)
		})
	})
}
