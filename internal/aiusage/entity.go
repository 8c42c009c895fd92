package aiusage

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AIUsageLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"column:user_id;not null;index" json:"user_id"`
	Purpose      Purpose   `gorm:"not null;index" json:"purpose"`
	Model        string    `gorm:"not null" json:"model"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CostUSD      float64   `gorm:"column:cost_usd" json:"cost_usd"`
	Success      bool      `gorm:"not null" json:"success"`
	Error        string    `json:"error,omitempty"`
	DurationMS   int64     `gorm:"column:duration_ms" json:"duration_ms"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (l *AIUsageLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
