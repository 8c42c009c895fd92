package file

import (
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/topic"
	"gorm.io/gorm"
)

type CourseFile struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID     uuid.UUID  `gorm:"column:course_id;not null;index" json:"course_id"`
	UserID       uuid.UUID  `gorm:"column:user_id;not null;index" json:"user_id"`
	OriginalName string     `gorm:"not null" json:"original_name"`
	MimeType     string     `gorm:"not null" json:"mime_type"`
	Size         int64      `gorm:"not null" json:"size"`
	StorageKey   string     `gorm:"not null" json:"-"`
	Status       FileStatus `gorm:"not null;default:UPLOADED" json:"status"`
	PageCount    int        `json:"page_count"`

	TopicGroups []topic.TopicGroup `gorm:"foreignKey:FileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"topic_groups,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *CourseFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
