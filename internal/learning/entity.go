package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LearningSession is one guided pass of a user through a file's outline.
// The (CurrentPhase, CurrentTopicIndex, CurrentSubIndex) triple is the
// state machine's position; indices past the outline mean the session is
// done.
type LearningSession struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID     `gorm:"column:user_id;not null;index" json:"user_id"`
	FileID            uuid.UUID     `gorm:"column:file_id;not null;index" json:"file_id"`
	Status            SessionStatus `gorm:"not null;default:IN_PROGRESS" json:"status"`
	CurrentPhase      SessionPhase  `gorm:"column:current_phase;not null;default:EXPLAINING" json:"current_phase"`
	CurrentTopicIndex int           `gorm:"column:current_topic_index;not null;default:0" json:"current_topic_index"`
	CurrentSubIndex   int           `gorm:"column:current_sub_index;not null;default:0" json:"current_sub_index"`
	StartedAt         time.Time     `json:"started_at"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

func (s *LearningSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SubTopicProgress marks a subtopic as confirmed within a session.
// Rows are created by the confirm action only, via upsert.
type SubTopicProgress struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID   uuid.UUID  `gorm:"column:session_id;not null;uniqueIndex:idx_subtopic_progress" json:"session_id"`
	SubTopicID  uuid.UUID  `gorm:"column:sub_topic_id;not null;uniqueIndex:idx_subtopic_progress" json:"sub_topic_id"`
	Confirmed   bool       `gorm:"not null;default:false" json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *SubTopicProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TopicProgress aggregates a session's test results for one topic group.
// Rows are created lazily on the first attempt; a missing row reads as
// zero progress. Counters are only ever changed by atomic UPDATE
// expressions.
type TopicProgress struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID     uuid.UUID   `gorm:"column:session_id;not null;uniqueIndex:idx_topic_progress" json:"session_id"`
	TopicGroupID  uuid.UUID   `gorm:"column:topic_group_id;not null;uniqueIndex:idx_topic_progress" json:"topic_group_id"`
	Status        TopicStatus `gorm:"not null;default:IN_PROGRESS" json:"status"`
	TotalAttempts int         `gorm:"column:total_attempts;not null;default:0" json:"total_attempts"`
	CorrectCount  int         `gorm:"column:correct_count;not null;default:0" json:"correct_count"`
	WrongCount    int         `gorm:"column:wrong_count;not null;default:0" json:"wrong_count"`
	IsWeakPoint   bool        `gorm:"column:is_weak_point;not null;default:false" json:"is_weak_point"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (p *TopicProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TestAnswer is one graded attempt. Rows are append-only; the per-question
// attempt state is derived from them.
type TestAnswer struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID     uuid.UUID `gorm:"column:session_id;not null;index:idx_test_answer_question" json:"session_id"`
	TopicGroupID  uuid.UUID `gorm:"column:topic_group_id;not null;index:idx_test_answer_question" json:"topic_group_id"`
	QuestionIndex int       `gorm:"column:question_index;not null;index:idx_test_answer_question" json:"question_index"`
	Answer        string    `gorm:"type:text;not null" json:"answer"`
	Correct       bool      `gorm:"not null" json:"correct"`
	CreatedAt     time.Time `json:"created_at"`
}

func (a *TestAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
