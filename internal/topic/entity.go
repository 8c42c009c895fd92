package topic

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TopicGroup is one chapter of a file's extracted outline. Groups and
// their subtopics are immutable once extraction succeeds.
type TopicGroup struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FileID     uuid.UUID  `gorm:"column:file_id;not null;uniqueIndex:idx_topic_group_file_order" json:"file_id"`
	OrderIndex int        `gorm:"column:order_index;not null;uniqueIndex:idx_topic_group_file_order" json:"order_index"`
	Title      string     `gorm:"not null" json:"title"`
	Type       TopicType  `gorm:"not null" json:"type"`
	PageStart  int        `json:"page_start"`
	PageEnd    int        `json:"page_end"`
	SubTopics  []SubTopic `gorm:"foreignKey:TopicGroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sub_topics,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (g *TopicGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

type SubTopic struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TopicGroupID uuid.UUID `gorm:"column:topic_group_id;not null;uniqueIndex:idx_subtopic_group_order" json:"topic_group_id"`
	OrderIndex   int       `gorm:"column:order_index;not null;uniqueIndex:idx_subtopic_group_order" json:"order_index"`
	Title        string    `gorm:"not null" json:"title"`
	Summary      string    `json:"summary,omitempty"`
	// Explanation caches the AI-generated study text. Nil until a learning
	// session first requests it.
	Explanation *string   `json:"explanation,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *SubTopic) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
