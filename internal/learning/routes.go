package learning

import (
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/sessions", h.Start)
	r.Get("/sessions/{id}", h.GetState)
	r.Post("/sessions/{id}/pause", h.Pause)
	r.Post("/sessions/{id}/resume", h.Resume)
	r.Get("/sessions/{id}/explanation", h.Explanation)
	r.Post("/sessions/{id}/confirm", h.Confirm)
	r.Get("/sessions/{id}/test", h.TestPage)
	r.Post("/sessions/{id}/answers", h.SubmitAnswer)

	return r
}
