package file

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/topic"
)

// UploadDTO carries one multipart upload into the service. Content is the
// file part's stream; Size and MimeType come from its header.
type UploadDTO struct {
	CourseID uuid.UUID
	FileName string
	MimeType string
	Size     int64
	Content  io.Reader
}

type FileResponse struct {
	ID           uuid.UUID  `json:"id"`
	CourseID     uuid.UUID  `json:"course_id"`
	OriginalName string     `json:"original_name"`
	MimeType     string     `json:"mime_type"`
	Size         int64      `json:"size"`
	Status       FileStatus `json:"status"`
	PageCount    int        `json:"page_count,omitempty"`
	// URL is a short-lived signed download link. Empty when signing failed.
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type OutlineResponse struct {
	FileID      uuid.UUID          `json:"file_id"`
	Status      FileStatus         `json:"status"`
	PageCount   int                `json:"page_count,omitempty"`
	TopicGroups []topic.TopicGroup `json:"topic_groups"`
}

func toResponse(f *CourseFile) FileResponse {
	return FileResponse{
		ID:           f.ID,
		CourseID:     f.CourseID,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		Status:       f.Status,
		PageCount:    f.PageCount,
		CreatedAt:    f.CreatedAt,
	}
}
