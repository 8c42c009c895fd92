package quota

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Quota struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"column:user_id;not null;uniqueIndex:idx_quota_user_bucket" json:"user_id"`
	Bucket Bucket    `gorm:"not null;uniqueIndex:idx_quota_user_bucket" json:"bucket"`
	Used   int       `gorm:"not null;default:0" json:"used"`
	// LIMIT is reserved in SQL, hence the explicit column name.
	Limit     int       `gorm:"column:quota_limit;not null" json:"limit"`
	ResetsAt  time.Time `gorm:"column:resets_at;not null" json:"resets_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Quota) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// QuotaAuditLog is an append-only mirror of every consume, refund, reset
// and limit change. Rows are never updated or deleted.
type QuotaAuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:user_id;not null;index" json:"user_id"`
	Bucket    Bucket    `gorm:"not null" json:"bucket"`
	Change    int       `gorm:"not null" json:"change"`
	Reason    string    `gorm:"not null" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *QuotaAuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
