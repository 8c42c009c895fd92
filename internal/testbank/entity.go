package testbank

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TopicTest is one cached question of a topic group's test. Rows are
// written once per group and returned verbatim afterwards; regeneration
// requires deleting them out of band.
type TopicTest struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TopicGroupID  uuid.UUID      `gorm:"column:topic_group_id;not null;uniqueIndex:idx_topic_test_group_index" json:"topic_group_id"`
	QuestionIndex int            `gorm:"column:question_index;not null;uniqueIndex:idx_topic_test_group_index" json:"question_index"`
	Type          QuestionType   `gorm:"not null" json:"type"`
	Question      string         `gorm:"type:text;not null" json:"question"`
	Options       datatypes.JSON `gorm:"type:jsonb" json:"options,omitempty"`
	CorrectAnswer string         `gorm:"type:text;not null" json:"correct_answer"`
	Explanation   string         `gorm:"type:text" json:"explanation"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (t *TopicTest) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
