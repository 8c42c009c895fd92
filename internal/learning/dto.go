package learning

import (
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/testbank"
	"github.com/saulo-duarte/luma-lambda/internal/topic"
	"gorm.io/datatypes"
)

type StartSessionDTO struct {
	FileID uuid.UUID `json:"file_id"`
}

type ConfirmDTO struct {
	SubTopicID uuid.UUID `json:"sub_topic_id"`
}

type SubmitAnswerDTO struct {
	QuestionIndex *int   `json:"question_index"`
	Answer        string `json:"answer"`
}

type SessionStateResponse struct {
	ID                uuid.UUID       `json:"id"`
	FileID            uuid.UUID       `json:"file_id"`
	Status            SessionStatus   `json:"status"`
	CurrentPhase      SessionPhase    `json:"current_phase"`
	CurrentTopicIndex int             `json:"current_topic_index"`
	CurrentSubIndex   int             `json:"current_sub_index"`
	StartedAt         time.Time       `json:"started_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	Topics            []TopicStateDTO `json:"topics"`
}

type TopicStateDTO struct {
	ID            uuid.UUID          `json:"id"`
	OrderIndex    int                `json:"order_index"`
	Title         string             `json:"title"`
	Type          topic.TopicType    `json:"type"`
	Status        TopicStatus        `json:"status,omitempty"`
	IsWeakPoint   bool               `json:"is_weak_point"`
	TotalAttempts int                `json:"total_attempts"`
	CorrectCount  int                `json:"correct_count"`
	WrongCount    int                `json:"wrong_count"`
	SubTopics     []SubTopicStateDTO `json:"sub_topics"`
}

type SubTopicStateDTO struct {
	ID         uuid.UUID `json:"id"`
	OrderIndex int       `json:"order_index"`
	Title      string    `json:"title"`
	Confirmed  bool      `json:"confirmed"`
}

type SessionSummaryResponse struct {
	ID           uuid.UUID     `json:"id"`
	Status       SessionStatus `json:"status"`
	CurrentPhase SessionPhase  `json:"current_phase"`
}

type ExplanationResponse struct {
	SubTopicID  uuid.UUID `json:"sub_topic_id"`
	Title       string    `json:"title"`
	Explanation string    `json:"explanation"`
	Cached      bool      `json:"cached"`
}

type ConfirmResponse struct {
	SubTopicID        uuid.UUID    `json:"sub_topic_id"`
	Confirmed         bool         `json:"confirmed"`
	CurrentPhase      SessionPhase `json:"current_phase"`
	CurrentTopicIndex int          `json:"current_topic_index"`
	CurrentSubIndex   int          `json:"current_sub_index"`
}

// TestQuestionDTO is a question as shown to the student: the correct
// answer and explanation are stripped until the question is resolved.
type TestQuestionDTO struct {
	QuestionIndex int                   `json:"question_index"`
	Type          testbank.QuestionType `json:"type"`
	Question      string                `json:"question"`
	Options       datatypes.JSON        `json:"options,omitempty"`
	Attempts      int                   `json:"attempts"`
	Correct       bool                  `json:"correct"`
	Resolved      bool                  `json:"resolved"`
}

type TestPageResponse struct {
	TopicGroupID      uuid.UUID         `json:"topic_group_id"`
	TopicTitle        string            `json:"topic_title"`
	Questions         []TestQuestionDTO `json:"questions"`
	NextQuestionIndex *int              `json:"next_question_index,omitempty"`
}

type AnswerResultResponse struct {
	Correct           bool          `json:"correct"`
	AttemptCount      int           `json:"attempt_count"`
	CanRetry          bool          `json:"can_retry"`
	Explanation       string        `json:"explanation,omitempty"`
	CorrectAnswer     string        `json:"correct_answer,omitempty"`
	Remediation       string        `json:"remediation,omitempty"`
	TopicCompleted    bool          `json:"topic_completed"`
	SessionCompleted  bool          `json:"session_completed"`
	NextQuestionIndex *int          `json:"next_question_index,omitempty"`
	CurrentPhase      SessionPhase  `json:"current_phase"`
	SessionStatus     SessionStatus `json:"session_status"`
}
