package quota

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/auth"
	"github.com/saulo-duarte/luma-lambda/internal/config"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	userID := uuid.MustParse(claims.UserID)
	responses, err := h.service.List(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("Failed to list quotas")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	config.JSON(w, http.StatusOK, responses)
}
