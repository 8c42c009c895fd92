package file

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.Upload)
	r.Get("/course/{courseId}", h.ListByCourse)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/process", h.Process)
	r.Delete("/{id}", h.Delete)

	return r
}
