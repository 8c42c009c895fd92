package learning

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/auth"
	"github.com/saulo-duarte/luma-lambda/internal/config"
	"github.com/saulo-duarte/luma-lambda/internal/file"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/testbank"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var dto StartSessionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if dto.FileID == uuid.Nil {
		http.Error(w, "file_id is required", http.StatusBadRequest)
		return
	}

	userID := uuid.MustParse(claims.UserID)
	response, err := h.service.Start(r.Context(), userID, dto)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	response, err := h.service.GetState(r.Context(), sessionID, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	response, err := h.service.Pause(r.Context(), sessionID, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	response, err := h.service.Resume(r.Context(), sessionID, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) Explanation(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	response, err := h.service.Explanation(r.Context(), sessionID, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	var dto ConfirmDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if dto.SubTopicID == uuid.Nil {
		http.Error(w, "sub_topic_id is required", http.StatusBadRequest)
		return
	}

	response, err := h.service.Confirm(r.Context(), sessionID, userID, dto)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) TestPage(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	response, err := h.service.TestPage(r.Context(), sessionID, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	var dto SubmitAnswerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if dto.QuestionIndex == nil {
		http.Error(w, "question_index is required", http.StatusBadRequest)
		return
	}

	response, err := h.service.SubmitAnswer(r.Context(), sessionID, userID, *dto.QuestionIndex, dto.Answer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) sessionRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}

	return sessionID, uuid.MustParse(claims.UserID), true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := config.WithContext(r.Context())

	switch {
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case errors.Is(err, file.ErrFileNotFound):
		http.Error(w, "file not found", http.StatusNotFound)
	case errors.Is(err, ErrSubTopicNotFound):
		http.Error(w, "subtopic not found", http.StatusNotFound)
	case errors.Is(err, ErrQuestionNotFound):
		http.Error(w, "question not found", http.StatusNotFound)
	case errors.Is(err, ErrFileNotReady):
		http.Error(w, "file has not been processed yet", http.StatusConflict)
	case errors.Is(err, ErrInvalidSessionState):
		http.Error(w, "session is not in the required state", http.StatusConflict)
	case errors.Is(err, ErrInvalidPhase):
		http.Error(w, "action does not match the session phase", http.StatusConflict)
	case errors.Is(err, ErrQuestionResolved):
		http.Error(w, "question is already resolved", http.StatusConflict)
	case errors.Is(err, ErrTestNotReady):
		http.Error(w, "test has not been generated yet", http.StatusConflict)
	case errors.Is(err, quota.ErrQuotaExceeded):
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	case errors.Is(err, ErrAIUnavailable), errors.Is(err, testbank.ErrAIUnavailable):
		http.Error(w, "AI provider unavailable", http.StatusBadGateway)
	case errors.Is(err, testbank.ErrGenerationFailed):
		http.Error(w, "test generation failed", http.StatusBadGateway)
	default:
		log.WithError(err).Error("Learning session operation failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
