package file

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/auth"
	"github.com/saulo-duarte/luma-lambda/internal/config"
	"github.com/saulo-duarte/luma-lambda/internal/course"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		log.WithError(err).Warn("Invalid multipart form")
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	courseID, err := uuid.Parse(r.FormValue("course_id"))
	if err != nil {
		http.Error(w, "invalid course_id", http.StatusBadRequest)
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer part.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		buf := make([]byte, 512)
		n, _ := part.Read(buf)
		mimeType = http.DetectContentType(buf[:n])
		if _, err := part.Seek(0, 0); err != nil {
			http.Error(w, "could not read file", http.StatusBadRequest)
			return
		}
	}

	userID := uuid.MustParse(claims.UserID)
	response, err := h.service.Upload(r.Context(), userID, UploadDTO{
		CourseID: courseID,
		FileName: header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Content:  part,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotPDF):
			http.Error(w, "only PDF files are supported", http.StatusUnsupportedMediaType)
		case errors.Is(err, ErrFileTooLarge):
			http.Error(w, "file exceeds the upload size limit", http.StatusRequestEntityTooLarge)
		case errors.Is(err, course.ErrCourseNotFound):
			http.Error(w, "course not found", http.StatusNotFound)
		case errors.Is(err, quota.ErrQuotaExceeded):
			http.Error(w, "upload quota exceeded", http.StatusTooManyRequests)
		default:
			log.WithError(err).Error("Failed to upload file")
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	config.JSON(w, http.StatusCreated, response)
}

func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	userID := uuid.MustParse(claims.UserID)
	response, err := h.service.Process(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileNotFound):
			http.Error(w, "file not found", http.StatusNotFound)
		case errors.Is(err, ErrFileProcessing):
			http.Error(w, "file is already being processed", http.StatusConflict)
		case errors.Is(err, quota.ErrQuotaExceeded):
			http.Error(w, "learning quota exceeded", http.StatusTooManyRequests)
		case errors.Is(err, ErrAIUnavailable):
			http.Error(w, "ai provider unavailable", http.StatusBadGateway)
		case errors.Is(err, ErrExtractionFailed):
			http.Error(w, "topic extraction failed", http.StatusUnprocessableEntity)
		default:
			log.WithError(err).Error("Failed to process file")
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	courseID, err := uuid.Parse(chi.URLParam(r, "courseId"))
	if err != nil {
		http.Error(w, "invalid course id", http.StatusBadRequest)
		return
	}

	userID := uuid.MustParse(claims.UserID)
	responses, err := h.service.ListByCourse(r.Context(), courseID, userID)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			http.Error(w, "course not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("Failed to list files")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	config.JSON(w, http.StatusOK, responses)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	userID := uuid.MustParse(claims.UserID)
	response, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			http.Error(w, "file not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("Failed to fetch file")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	config.JSON(w, http.StatusOK, response)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		log.Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	userID := uuid.MustParse(claims.UserID)
	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrFileNotFound) {
			http.Error(w, "file not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("Failed to delete file")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
