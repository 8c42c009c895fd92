package admin

import (
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/stats", h.Stats)
	r.Get("/users", h.ListUsers)
	r.Patch("/users/{id}/quotas/{bucket}", h.SetUserQuota)

	return r
}
