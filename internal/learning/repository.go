package learning

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionState is the derived attempt state of one question within a
// session, built from its TestAnswer rows.
type QuestionState struct {
	Attempts int
	Correct  bool
}

type Repository interface {
	CreateSession(s *LearningSession) error
	FindSessionByIDAndUser(id, userID uuid.UUID) (*LearningSession, error)
	FindActiveByUserAndFile(userID, fileID uuid.UUID) (*LearningSession, error)
	UpdateSession(s *LearningSession) error

	ConfirmSubTopic(sessionID, subTopicID uuid.UUID, at time.Time) error
	ConfirmedSubTopics(sessionID uuid.UUID) (map[uuid.UUID]bool, error)

	TopicProgressByGroup(sessionID uuid.UUID) (map[uuid.UUID]TopicProgress, error)
	RecordAttempt(sessionID, topicGroupID uuid.UUID, questionIndex int, answer string, correct bool) error
	QuestionStates(sessionID, topicGroupID uuid.UUID) (map[int]QuestionState, error)
	FinalizeTopic(sessionID, topicGroupID uuid.UUID, weakPoint bool) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSession(s *LearningSession) error {
	return r.db.Create(s).Error
}

func (r *repository) FindSessionByIDAndUser(id, userID uuid.UUID) (*LearningSession, error) {
	var session LearningSession
	if err := r.db.First(&session, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// FindActiveByUserAndFile returns the user's non-completed session for a
// file, or nil when none exists.
func (r *repository) FindActiveByUserAndFile(userID, fileID uuid.UUID) (*LearningSession, error) {
	var session LearningSession
	err := r.db.
		Where("user_id = ? AND file_id = ? AND status <> ?", userID, fileID, COMPLETED).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *repository) UpdateSession(s *LearningSession) error {
	return r.db.Save(s).Error
}

// ConfirmSubTopic upserts the confirmation row, so repeating the action
// is a no-op.
func (r *repository) ConfirmSubTopic(sessionID, subTopicID uuid.UUID, at time.Time) error {
	progress := SubTopicProgress{
		SessionID:   sessionID,
		SubTopicID:  subTopicID,
		Confirmed:   true,
		ConfirmedAt: &at,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "sub_topic_id"}},
		DoUpdates: clause.Assignments(map[string]any{"confirmed": true, "confirmed_at": at}),
	}).Create(&progress).Error
}

func (r *repository) ConfirmedSubTopics(sessionID uuid.UUID) (map[uuid.UUID]bool, error) {
	var rows []SubTopicProgress
	if err := r.db.
		Where("session_id = ? AND confirmed = ?", sessionID, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	confirmed := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		confirmed[row.SubTopicID] = true
	}
	return confirmed, nil
}

func (r *repository) TopicProgressByGroup(sessionID uuid.UUID) (map[uuid.UUID]TopicProgress, error) {
	var rows []TopicProgress
	if err := r.db.
		Where("session_id = ?", sessionID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	progress := make(map[uuid.UUID]TopicProgress, len(rows))
	for _, row := range rows {
		progress[row.TopicGroupID] = row
	}
	return progress, nil
}

// RecordAttempt appends the attempt row and bumps the topic counters in
// one transaction. The counter update is a single atomic UPDATE so
// concurrent submissions cannot double-count.
func (r *repository) RecordAttempt(sessionID, topicGroupID uuid.UUID, questionIndex int, answer string, correct bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		progress := TopicProgress{
			SessionID:    sessionID,
			TopicGroupID: topicGroupID,
			Status:       TOPIC_IN_PROGRESS,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "topic_group_id"}},
			DoNothing: true,
		}).Create(&progress).Error; err != nil {
			return err
		}

		attempt := TestAnswer{
			SessionID:     sessionID,
			TopicGroupID:  topicGroupID,
			QuestionIndex: questionIndex,
			Answer:        answer,
			Correct:       correct,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		correctInc, wrongInc := 0, 1
		if correct {
			correctInc, wrongInc = 1, 0
		}
		return tx.Model(&TopicProgress{}).
			Where("session_id = ? AND topic_group_id = ?", sessionID, topicGroupID).
			Updates(map[string]any{
				"total_attempts": gorm.Expr("total_attempts + 1"),
				"correct_count":  gorm.Expr("correct_count + ?", correctInc),
				"wrong_count":    gorm.Expr("wrong_count + ?", wrongInc),
			}).Error
	})
}

func (r *repository) QuestionStates(sessionID, topicGroupID uuid.UUID) (map[int]QuestionState, error) {
	var answers []TestAnswer
	if err := r.db.
		Where("session_id = ? AND topic_group_id = ?", sessionID, topicGroupID).
		Order("created_at ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}

	states := make(map[int]QuestionState, len(answers))
	for _, a := range answers {
		state := states[a.QuestionIndex]
		state.Attempts++
		if a.Correct {
			state.Correct = true
		}
		states[a.QuestionIndex] = state
	}
	return states, nil
}

func (r *repository) FinalizeTopic(sessionID, topicGroupID uuid.UUID, weakPoint bool) error {
	return r.db.Model(&TopicProgress{}).
		Where("session_id = ? AND topic_group_id = ?", sessionID, topicGroupID).
		Updates(map[string]any{
			"status":        TOPIC_COMPLETED,
			"is_weak_point": weakPoint,
		}).Error
}
