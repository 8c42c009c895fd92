package testbank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/aiusage"
	"github.com/saulo-duarte/luma-lambda/internal/config"
	"github.com/saulo-duarte/luma-lambda/internal/llm"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/topic"
	"gorm.io/datatypes"
)

var (
	ErrAIUnavailable    = errors.New("ai provider unavailable")
	ErrGenerationFailed = errors.New("test generation failed")
)

const (
	coreQuestionCount       = 5
	supportingQuestionCount = 3
	optionCount             = 4

	generationMaxTokens   = 4096
	generationTemperature = 0.7
)

func questionCountFor(t topic.TopicType) int {
	if t == topic.CORE {
		return coreQuestionCount
	}
	return supportingQuestionCount
}

type Service interface {
	// GetOrGenerate returns the group's cached test, generating and caching
	// it on first request. The group must carry its subtopics.
	GetOrGenerate(ctx context.Context, userID uuid.UUID, group *topic.TopicGroup) ([]TopicTest, error)
}

type service struct {
	repo     Repository
	quotas   quota.Service
	provider llm.Provider
	usage    aiusage.Recorder
}

func NewService(repo Repository, quotas quota.Service, provider llm.Provider, usage aiusage.Recorder) Service {
	return &service{
		repo:     repo,
		quotas:   quotas,
		provider: provider,
		usage:    usage,
	}
}

func (s *service) GetOrGenerate(ctx context.Context, userID uuid.UUID, group *topic.TopicGroup) ([]TopicTest, error) {
	log := config.WithContext(ctx)

	existing, err := s.repo.FindByGroup(group.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	if err := s.quotas.Consume(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "test_generation"); err != nil {
		return nil, err
	}

	count := questionCountFor(group.Type)
	start := time.Now()
	resp, genErr := s.provider.Generate(ctx, llm.Request{
		System:      testSystemPrompt,
		User:        buildTestPrompt(group, count),
		MaxTokens:   generationMaxTokens,
		Temperature: generationTemperature,
	})
	duration := time.Since(start)

	if genErr != nil {
		s.recordUsage(ctx, userID, nil, genErr, duration)
		s.quotas.Refund(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "test_generation_failed")
		log.WithError(genErr).Error("Test generation call failed")
		return nil, ErrAIUnavailable
	}

	tests, parseErr := parseTests(resp.Content, group.ID, count)
	s.recordUsage(ctx, userID, resp, parseErr, duration)
	if parseErr != nil {
		s.quotas.Refund(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "test_generation_failed")
		log.WithError(parseErr).Error("Model returned an invalid test set")
		return nil, ErrGenerationFailed
	}

	if err := s.repo.CreateAll(tests); err != nil {
		s.quotas.Refund(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "test_generation_failed")
		return nil, err
	}

	log.Infof("Generated %d questions for topic group %s", len(tests), group.ID)
	return tests, nil
}

func (s *service) recordUsage(ctx context.Context, userID uuid.UUID, resp *llm.Response, err error, d time.Duration) {
	entry := aiusage.Entry{
		UserID:   userID,
		Purpose:  aiusage.TEST_GENERATION,
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

type testPayload struct {
	Questions []struct {
		Type          string   `json:"type"`
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correct_answer"`
		Explanation   string   `json:"explanation"`
	} `json:"questions"`
}

func parseTests(content string, groupID uuid.UUID, want int) ([]TopicTest, error) {
	var payload testPayload
	if err := json.Unmarshal([]byte(llm.StripFences(content)), &payload); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if len(payload.Questions) != want {
		return nil, fmt.Errorf("model returned %d questions, want %d", len(payload.Questions), want)
	}

	tests := make([]TopicTest, 0, want)
	for i, q := range payload.Questions {
		qType := QuestionType(strings.ToUpper(strings.TrimSpace(q.Type)))
		if !qType.IsValid() {
			return nil, fmt.Errorf("question %d has invalid type %q", i, q.Type)
		}
		question := strings.TrimSpace(q.Question)
		if question == "" {
			return nil, fmt.Errorf("question %d is empty", i)
		}
		answer := strings.TrimSpace(q.CorrectAnswer)
		if answer == "" {
			return nil, fmt.Errorf("question %d has no correct answer", i)
		}

		test := TopicTest{
			TopicGroupID:  groupID,
			QuestionIndex: i,
			Type:          qType,
			Question:      question,
			CorrectAnswer: answer,
			Explanation:   strings.TrimSpace(q.Explanation),
		}

		switch qType {
		case MULTIPLE_CHOICE:
			if len(q.Options) != optionCount {
				return nil, fmt.Errorf("question %d has %d options, want %d", i, len(q.Options), optionCount)
			}
			found := false
			for _, opt := range q.Options {
				if strings.TrimSpace(opt) == answer {
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("question %d: correct answer is not among the options", i)
			}
			raw, err := json.Marshal(q.Options)
			if err != nil {
				return nil, fmt.Errorf("encode options: %w", err)
			}
			test.Options = datatypes.JSON(raw)
		case SHORT_ANSWER:
			if len(q.Options) != 0 {
				return nil, fmt.Errorf("question %d: short answer questions cannot have options", i)
			}
		}

		tests = append(tests, test)
	}
	return tests, nil
}
