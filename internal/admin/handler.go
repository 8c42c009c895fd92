package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/config"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/user"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to build admin stats")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	config.JSON(w, http.StatusOK, stats)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	size := queryInt(r, "size", defaultPageSize)
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	response, err := h.service.ListUsers(r.Context(), page, size)
	if err != nil {
		log.WithError(err).Error("Failed to list users")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) SetUserQuota(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	bucket := quota.Bucket(chi.URLParam(r, "bucket"))
	if !bucket.IsValid() {
		http.Error(w, "unknown quota bucket", http.StatusBadRequest)
		return
	}

	var dto SetQuotaDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if dto.Limit == nil || *dto.Limit < 0 {
		http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
		return
	}

	response, err := h.service.SetUserQuota(r.Context(), userID, bucket, *dto.Limit)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("Failed to set quota limit")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
