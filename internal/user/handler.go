package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saulo-duarte/luma-lambda/internal/auth"
	"github.com/saulo-duarte/luma-lambda/internal/config"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var dto GoogleLoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if dto.Code == "" {
		http.Error(w, "code required", http.StatusBadRequest)
		return
	}

	response, accessToken, refreshToken, err := h.service.GoogleLogin(r.Context(), dto.Code)
	if err != nil {
		if errors.Is(err, ErrInvalidAuthCode) {
			http.Error(w, "invalid authorization code", http.StatusUnauthorized)
			return
		}
		log.WithError(err).Error("Google login failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	auth.SetAuthCookies(w, accessToken, refreshToken)
	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	cookie, err := r.Cookie(auth.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		http.Error(w, "refresh token required", http.StatusUnauthorized)
		return
	}

	accessToken, refreshToken, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) || errors.Is(err, ErrUserNotFound) {
			http.Error(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		log.WithError(err).Error("Token refresh failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	auth.SetAuthCookies(w, accessToken, refreshToken)
	config.JSON(w, http.StatusOK, map[string]string{"message": "token refreshed"})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	response, err := h.service.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("Failed to fetch user")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	config.JSON(w, http.StatusOK, response)
}
