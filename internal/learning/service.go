package learning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/aiusage"
	"github.com/saulo-duarte/luma-lambda/internal/config"
	"github.com/saulo-duarte/luma-lambda/internal/file"
	"github.com/saulo-duarte/luma-lambda/internal/llm"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/testbank"
	"github.com/saulo-duarte/luma-lambda/internal/topic"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrInvalidSessionState = errors.New("session is not in progress")
	ErrInvalidPhase        = errors.New("action does not match the session phase")
	ErrFileNotReady        = errors.New("file has no extracted topics yet")
	ErrSubTopicNotFound    = errors.New("subtopic not found in this session")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrQuestionResolved    = errors.New("question is already resolved")
	ErrTestNotReady        = errors.New("test has not been generated yet")
	ErrAIUnavailable       = errors.New("ai provider unavailable")
)

const (
	explanationMaxTokens   = 2048
	explanationTemperature = 0.4

	remediationMaxTokens   = 1024
	remediationTemperature = 0.5
)

type Service interface {
	Start(ctx context.Context, userID uuid.UUID, dto StartSessionDTO) (*SessionStateResponse, error)
	GetState(ctx context.Context, sessionID, userID uuid.UUID) (*SessionStateResponse, error)
	Pause(ctx context.Context, sessionID, userID uuid.UUID) (*SessionSummaryResponse, error)
	Resume(ctx context.Context, sessionID, userID uuid.UUID) (*SessionSummaryResponse, error)
	Explanation(ctx context.Context, sessionID, userID uuid.UUID) (*ExplanationResponse, error)
	Confirm(ctx context.Context, sessionID, userID uuid.UUID, dto ConfirmDTO) (*ConfirmResponse, error)
	TestPage(ctx context.Context, sessionID, userID uuid.UUID) (*TestPageResponse, error)
	SubmitAnswer(ctx context.Context, sessionID, userID uuid.UUID, questionIndex int, answer string) (*AnswerResultResponse, error)
}

type service struct {
	repo     Repository
	topics   topic.Repository
	files    file.Service
	tests    testbank.Service
	testRepo testbank.Repository
	quotas   quota.Service
	provider llm.Provider
	usage    aiusage.Recorder
}

func NewService(
	repo Repository,
	topics topic.Repository,
	files file.Service,
	tests testbank.Service,
	testRepo testbank.Repository,
	quotas quota.Service,
	provider llm.Provider,
	usage aiusage.Recorder,
) Service {
	return &service{
		repo:     repo,
		topics:   topics,
		files:    files,
		tests:    tests,
		testRepo: testRepo,
		quotas:   quotas,
		provider: provider,
		usage:    usage,
	}
}

// Start opens a session for a processed file. An existing non-completed
// session for the same file is returned as-is.
func (s *service) Start(ctx context.Context, userID uuid.UUID, dto StartSessionDTO) (*SessionStateResponse, error) {
	log := config.WithContext(ctx)

	f, err := s.files.Get(ctx, dto.FileID, userID)
	if err != nil {
		return nil, err
	}
	if f.Status != file.READY {
		return nil, ErrFileNotReady
	}

	existing, err := s.repo.FindActiveByUserAndFile(userID, dto.FileID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.state(existing)
	}

	session := &LearningSession{
		UserID:       userID,
		FileID:       dto.FileID,
		Status:       IN_PROGRESS,
		CurrentPhase: EXPLAINING,
		StartedAt:    time.Now(),
	}
	if err := s.repo.CreateSession(session); err != nil {
		return nil, err
	}

	log.Infof("Started learning session %s for file %s", session.ID, session.FileID)
	return s.state(session)
}

func (s *service) GetState(ctx context.Context, sessionID, userID uuid.UUID) (*SessionStateResponse, error) {
	session, err := s.findSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.state(session)
}

func (s *service) Pause(ctx context.Context, sessionID, userID uuid.UUID) (*SessionSummaryResponse, error) {
	session, err := s.findSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != IN_PROGRESS {
		return nil, ErrInvalidSessionState
	}

	session.Status = PAUSED
	if err := s.repo.UpdateSession(session); err != nil {
		return nil, err
	}
	return summary(session), nil
}

func (s *service) Resume(ctx context.Context, sessionID, userID uuid.UUID) (*SessionSummaryResponse, error) {
	session, err := s.findSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != PAUSED {
		return nil, ErrInvalidSessionState
	}

	session.Status = IN_PROGRESS
	if err := s.repo.UpdateSession(session); err != nil {
		return nil, err
	}
	return summary(session), nil
}

// Explanation returns the current subtopic's study text, generating and
// caching it on first request.
func (s *service) Explanation(ctx context.Context, sessionID, userID uuid.UUID) (*ExplanationResponse, error) {
	log := config.WithContext(ctx)

	session, err := s.activeSession(sessionID, userID, EXPLAINING)
	if err != nil {
		return nil, err
	}

	_, group, err := s.currentGroup(session)
	if err != nil {
		return nil, err
	}
	if session.CurrentSubIndex >= len(group.SubTopics) {
		return nil, fmt.Errorf("session %s sub index %d out of range", session.ID, session.CurrentSubIndex)
	}
	sub := &group.SubTopics[session.CurrentSubIndex]

	if sub.Explanation != nil && *sub.Explanation != "" {
		return &ExplanationResponse{SubTopicID: sub.ID, Title: sub.Title, Explanation: *sub.Explanation, Cached: true}, nil
	}

	if err := s.quotas.Consume(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "explanation"); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, genErr := s.provider.Generate(ctx, llm.Request{
		System:      explanationSystemPrompt,
		User:        buildExplanationPrompt(group.Title, sub),
		MaxTokens:   explanationMaxTokens,
		Temperature: explanationTemperature,
	})
	duration := time.Since(start)

	if genErr == nil && strings.TrimSpace(resp.Content) == "" {
		genErr = llm.ErrEmptyResponse
	}
	s.recordUsage(ctx, userID, aiusage.EXPLANATION, resp, genErr, duration)
	if genErr != nil {
		s.quotas.Refund(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "explanation_failed")
		log.WithError(genErr).Error("Explanation call failed")
		return nil, ErrAIUnavailable
	}

	text := strings.TrimSpace(resp.Content)
	if err := s.topics.SetSubTopicExplanation(sub.ID, text); err != nil {
		// The student still gets the text; only the cache write was lost.
		log.WithError(err).Warnf("Failed to cache explanation for subtopic %s", sub.ID)
	}

	return &ExplanationResponse{SubTopicID: sub.ID, Title: sub.Title, Explanation: text, Cached: false}, nil
}

// Confirm marks a subtopic as understood. Confirming the current one
// advances the session: next subtopic, or the testing phase after the
// last. Re-confirming an earlier subtopic is a no-op upsert.
func (s *service) Confirm(ctx context.Context, sessionID, userID uuid.UUID, dto ConfirmDTO) (*ConfirmResponse, error) {
	log := config.WithContext(ctx)

	session, err := s.activeSession(sessionID, userID, EXPLAINING)
	if err != nil {
		return nil, err
	}

	groups, group, err := s.currentGroup(session)
	if err != nil {
		return nil, err
	}
	if !outlineHasSubTopic(groups, dto.SubTopicID) {
		return nil, ErrSubTopicNotFound
	}

	if err := s.repo.ConfirmSubTopic(session.ID, dto.SubTopicID, time.Now()); err != nil {
		return nil, err
	}

	if session.CurrentSubIndex < len(group.SubTopics) && group.SubTopics[session.CurrentSubIndex].ID == dto.SubTopicID {
		if session.CurrentSubIndex+1 < len(group.SubTopics) {
			session.CurrentSubIndex++
		} else {
			// Last subtopic confirmed: flip the phase, indices unchanged.
			session.CurrentPhase = TESTING
		}
		if err := s.repo.UpdateSession(session); err != nil {
			return nil, err
		}
		log.Infof("Session %s now at phase %s (topic %d, sub %d)",
			session.ID, session.CurrentPhase, session.CurrentTopicIndex, session.CurrentSubIndex)
	}

	return &ConfirmResponse{
		SubTopicID:        dto.SubTopicID,
		Confirmed:         true,
		CurrentPhase:      session.CurrentPhase,
		CurrentTopicIndex: session.CurrentTopicIndex,
		CurrentSubIndex:   session.CurrentSubIndex,
	}, nil
}

// TestPage returns the current topic's test, generating it on first
// request. Correct answers and explanations are stripped.
func (s *service) TestPage(ctx context.Context, sessionID, userID uuid.UUID) (*TestPageResponse, error) {
	session, err := s.activeSession(sessionID, userID, TESTING)
	if err != nil {
		return nil, err
	}

	_, group, err := s.currentGroup(session)
	if err != nil {
		return nil, err
	}

	tests, err := s.tests.GetOrGenerate(ctx, userID, group)
	if err != nil {
		return nil, err
	}

	states, err := s.repo.QuestionStates(session.ID, group.ID)
	if err != nil {
		return nil, err
	}

	questions := make([]TestQuestionDTO, 0, len(tests))
	for _, test := range tests {
		state := states[test.QuestionIndex]
		questions = append(questions, TestQuestionDTO{
			QuestionIndex: test.QuestionIndex,
			Type:          test.Type,
			Question:      test.Question,
			Options:       test.Options,
			Attempts:      state.Attempts,
			Correct:       state.Correct,
			Resolved:      state.Correct || state.Attempts >= MaxAttempts,
		})
	}

	return &TestPageResponse{
		TopicGroupID:      group.ID,
		TopicTitle:        group.Title,
		Questions:         questions,
		NextQuestionIndex: nextUnresolved(tests, states),
	}, nil
}

// SubmitAnswer grades one attempt, records it, and advances the session
// when the graded question settles the topic.
func (s *service) SubmitAnswer(ctx context.Context, sessionID, userID uuid.UUID, questionIndex int, answer string) (*AnswerResultResponse, error) {
	log := config.WithContext(ctx)

	session, err := s.activeSession(sessionID, userID, TESTING)
	if err != nil {
		return nil, err
	}

	groups, group, err := s.currentGroup(session)
	if err != nil {
		return nil, err
	}

	tests, err := s.testRepo.FindByGroup(group.ID)
	if err != nil {
		return nil, err
	}
	if len(tests) == 0 {
		return nil, ErrTestNotReady
	}

	var test *testbank.TopicTest
	for i := range tests {
		if tests[i].QuestionIndex == questionIndex {
			test = &tests[i]
			break
		}
	}
	if test == nil {
		return nil, ErrQuestionNotFound
	}

	states, err := s.repo.QuestionStates(session.ID, group.ID)
	if err != nil {
		return nil, err
	}
	state := states[questionIndex]
	if state.Correct || state.Attempts >= MaxAttempts {
		return nil, ErrQuestionResolved
	}

	correct := gradeAnswer(answer, test.CorrectAnswer)
	if err := s.repo.RecordAttempt(session.ID, group.ID, questionIndex, answer, correct); err != nil {
		return nil, err
	}
	attemptCount := state.Attempts + 1

	result := &AnswerResultResponse{
		Correct:      correct,
		AttemptCount: attemptCount,
	}
	switch {
	case correct:
		result.Explanation = test.Explanation
	case attemptCount < MaxAttempts:
		result.CanRetry = true
		result.Remediation = s.remediate(ctx, userID, group, test, answer, attemptCount)
	default:
		// Attempts exhausted: reveal the answer.
		result.CorrectAnswer = test.CorrectAnswer
		result.Explanation = test.Explanation
	}

	states[questionIndex] = QuestionState{Attempts: attemptCount, Correct: state.Correct || correct}
	next := nextUnresolved(tests, states)
	if next == nil {
		weak := false
		for _, t := range tests {
			if !states[t.QuestionIndex].Correct {
				weak = true
				break
			}
		}
		if err := s.repo.FinalizeTopic(session.ID, group.ID, weak); err != nil {
			return nil, err
		}
		result.TopicCompleted = true

		if session.CurrentTopicIndex+1 < len(groups) {
			session.CurrentTopicIndex++
			session.CurrentSubIndex = 0
			session.CurrentPhase = EXPLAINING
		} else {
			// Index past the outline marks completion.
			session.CurrentTopicIndex++
			now := time.Now()
			session.Status = COMPLETED
			session.CompletedAt = &now
			result.SessionCompleted = true
		}
		if err := s.repo.UpdateSession(session); err != nil {
			return nil, err
		}
		log.Infof("Session %s finished topic %s (weak point: %t)", session.ID, group.ID, weak)
	} else {
		result.NextQuestionIndex = next
	}

	result.CurrentPhase = session.CurrentPhase
	result.SessionStatus = session.Status
	return result, nil
}

// remediate generates the wrong-answer guidance. Every failure here is
// swallowed: grading never blocks on the secondary AI call.
func (s *service) remediate(ctx context.Context, userID uuid.UUID, group *topic.TopicGroup, test *testbank.TopicTest, answer string, attempt int) string {
	log := config.WithContext(ctx)

	if err := s.quotas.Consume(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "remediation"); err != nil {
		log.WithError(err).Warn("Skipping remediation")
		return ""
	}

	start := time.Now()
	resp, genErr := s.provider.Generate(ctx, llm.Request{
		System:      remediationSystemPrompt,
		User:        buildRemediationPrompt(group, test.Question, answer, attempt),
		MaxTokens:   remediationMaxTokens,
		Temperature: remediationTemperature,
	})
	duration := time.Since(start)

	if genErr == nil && strings.TrimSpace(resp.Content) == "" {
		genErr = llm.ErrEmptyResponse
	}
	s.recordUsage(ctx, userID, aiusage.REMEDIATION, resp, genErr, duration)
	if genErr != nil {
		s.quotas.Refund(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "remediation_failed")
		log.WithError(genErr).Warn("Remediation call failed")
		return ""
	}

	return strings.TrimSpace(resp.Content)
}

func (s *service) recordUsage(ctx context.Context, userID uuid.UUID, purpose aiusage.Purpose, resp *llm.Response, err error, d time.Duration) {
	entry := aiusage.Entry{
		UserID:   userID,
		Purpose:  purpose,
		Model:    s.provider.ModelID(),
		Err:      err,
		Duration: d,
	}
	if resp != nil {
		entry.Model = resp.Model
		entry.Usage = resp.Usage
	}
	s.usage.Record(ctx, entry)
}

func (s *service) findSession(sessionID, userID uuid.UUID) (*LearningSession, error) {
	session, err := s.repo.FindSessionByIDAndUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *service) activeSession(sessionID, userID uuid.UUID, phase SessionPhase) (*LearningSession, error) {
	session, err := s.findSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != IN_PROGRESS {
		return nil, ErrInvalidSessionState
	}
	if session.CurrentPhase != phase {
		return nil, ErrInvalidPhase
	}
	return session, nil
}

func (s *service) currentGroup(session *LearningSession) ([]topic.TopicGroup, *topic.TopicGroup, error) {
	groups, err := s.topics.FindByFileID(session.FileID)
	if err != nil {
		return nil, nil, err
	}
	if session.CurrentTopicIndex >= len(groups) {
		return nil, nil, fmt.Errorf("session %s topic index %d out of range", session.ID, session.CurrentTopicIndex)
	}
	return groups, &groups[session.CurrentTopicIndex], nil
}

func (s *service) state(session *LearningSession) (*SessionStateResponse, error) {
	groups, err := s.topics.FindByFileID(session.FileID)
	if err != nil {
		return nil, err
	}
	confirmed, err := s.repo.ConfirmedSubTopics(session.ID)
	if err != nil {
		return nil, err
	}
	progress, err := s.repo.TopicProgressByGroup(session.ID)
	if err != nil {
		return nil, err
	}

	topics := make([]TopicStateDTO, 0, len(groups))
	for _, g := range groups {
		dto := TopicStateDTO{
			ID:         g.ID,
			OrderIndex: g.OrderIndex,
			Title:      g.Title,
			Type:       g.Type,
			SubTopics:  make([]SubTopicStateDTO, 0, len(g.SubTopics)),
		}
		if p, ok := progress[g.ID]; ok {
			dto.Status = p.Status
			dto.IsWeakPoint = p.IsWeakPoint
			dto.TotalAttempts = p.TotalAttempts
			dto.CorrectCount = p.CorrectCount
			dto.WrongCount = p.WrongCount
		}
		for _, sub := range g.SubTopics {
			dto.SubTopics = append(dto.SubTopics, SubTopicStateDTO{
				ID:         sub.ID,
				OrderIndex: sub.OrderIndex,
				Title:      sub.Title,
				Confirmed:  confirmed[sub.ID],
			})
		}
		topics = append(topics, dto)
	}

	return &SessionStateResponse{
		ID:                session.ID,
		FileID:            session.FileID,
		Status:            session.Status,
		CurrentPhase:      session.CurrentPhase,
		CurrentTopicIndex: session.CurrentTopicIndex,
		CurrentSubIndex:   session.CurrentSubIndex,
		StartedAt:         session.StartedAt,
		CompletedAt:       session.CompletedAt,
		Topics:            topics,
	}, nil
}

func summary(session *LearningSession) *SessionSummaryResponse {
	return &SessionSummaryResponse{
		ID:           session.ID,
		Status:       session.Status,
		CurrentPhase: session.CurrentPhase,
	}
}

func outlineHasSubTopic(groups []topic.TopicGroup, id uuid.UUID) bool {
	for _, g := range groups {
		for _, sub := range g.SubTopics {
			if sub.ID == id {
				return true
			}
		}
	}
	return false
}

// nextUnresolved returns the lowest question index that can still be
// answered: never attempted, or wrong with attempts remaining.
func nextUnresolved(tests []testbank.TopicTest, states map[int]QuestionState) *int {
	for _, test := range tests {
		state, ok := states[test.QuestionIndex]
		if !ok || (!state.Correct && state.Attempts < MaxAttempts) {
			idx := test.QuestionIndex
			return &idx
		}
	}
	return nil
}
