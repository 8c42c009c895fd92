package testbank_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/aiusage"
	"github.com/saulo-duarte/luma-lambda/internal/llm"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/testbank"
	"github.com/saulo-duarte/luma-lambda/internal/topic"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&topic.TopicGroup{},
		&topic.SubTopic{},
		&testbank.TopicTest{},
		&quota.Quota{},
		&quota.QuotaAuditLog{},
		&aiusage.AIUsageLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db     *gorm.DB
	svc    testbank.Service
	mock   *llm.MockProvider
	quotas quota.Service
	userID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	mock := llm.NewMockProvider()
	quotas := quota.NewService(quota.NewRepository(db))
	usage := aiusage.NewRecorder(aiusage.NewRepository(db))
	svc := testbank.NewService(testbank.NewRepository(db), quotas, mock, usage)

	userID := uuid.New()
	if err := quotas.Provision(context.Background(), userID); err != nil {
		t.Fatalf("provision quotas: %v", err)
	}

	return &fixture{db: db, svc: svc, mock: mock, quotas: quotas, userID: userID}
}

func (f *fixture) createGroup(t *testing.T, groupType topic.TopicType) *topic.TopicGroup {
	t.Helper()
	group := &topic.TopicGroup{
		FileID: uuid.New(),
		Title:  "Vetores e Espaços",
		Type:   groupType,
		SubTopics: []topic.SubTopic{
			{OrderIndex: 0, Title: "Definição de vetor", Summary: "O que é um vetor."},
			{OrderIndex: 1, Title: "Combinações lineares", Summary: "Somas ponderadas de vetores."},
		},
	}
	if err := f.db.Create(group).Error; err != nil {
		t.Fatalf("create topic group: %v", err)
	}
	return group
}

func (f *fixture) used(t *testing.T) int {
	t.Helper()
	var q quota.Quota
	if err := f.db.First(&q, "user_id = ? AND bucket = ?", f.userID, quota.LEARNING_INTERACTIONS).Error; err != nil {
		t.Fatalf("find quota: %v", err)
	}
	return q.Used
}

func (f *fixture) testRows(t *testing.T) int64 {
	t.Helper()
	var count int64
	f.db.Model(&testbank.TopicTest{}).Count(&count)
	return count
}

func mcQuestion(i int) map[string]any {
	return map[string]any{
		"type":           "MULTIPLE_CHOICE",
		"question":       fmt.Sprintf("Pergunta %d sobre vetores?", i),
		"options":        []string{"Opção A", "Opção B", "Opção C", "Opção D"},
		"correct_answer": "Opção B",
		"explanation":    "A opção B descreve a propriedade correta.",
	}
}

func saQuestion(i int) map[string]any {
	return map[string]any{
		"type":           "SHORT_ANSWER",
		"question":       fmt.Sprintf("Pergunta %d: qual o termo?", i),
		"correct_answer": "vetor",
		"explanation":    "Definição direta do conceito.",
	}
}

func payloadWith(questions ...map[string]any) string {
	raw, _ := json.Marshal(map[string]any{"questions": questions})
	return string(raw)
}

func validPayload(n int) string {
	questions := make([]map[string]any, 0, n)
	for i := 0; i < n-1; i++ {
		questions = append(questions, mcQuestion(i))
	}
	questions = append(questions, saQuestion(n-1))
	return payloadWith(questions...)
}

func TestGetOrGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("GeneratesAndCaches", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, topic.CORE)
		f.mock.AddResponse(llm.MockResponse{
			Content: "```json\n" + validPayload(5) + "\n```",
			Usage:   llm.Usage{InputTokens: 400, OutputTokens: 600, TotalTokens: 1000},
		})

		tests, err := f.svc.GetOrGenerate(ctx, f.userID, group)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(tests) != 5 {
			t.Fatalf("questions = %d, want 5", len(tests))
		}
		for i, q := range tests {
			if q.QuestionIndex != i {
				t.Errorf("question %d has index %d", i, q.QuestionIndex)
			}
		}
		if tests[0].Type != testbank.MULTIPLE_CHOICE {
			t.Errorf("first question type = %s, want MULTIPLE_CHOICE", tests[0].Type)
		}
		var options []string
		if err := json.Unmarshal(tests[0].Options, &options); err != nil || len(options) != 4 {
			t.Errorf("options = %v (err %v), want 4 entries", options, err)
		}
		last := tests[4]
		if last.Type != testbank.SHORT_ANSWER || last.Options != nil {
			t.Errorf("last question = %+v, want SHORT_ANSWER without options", last)
		}

		cached, err := f.svc.GetOrGenerate(ctx, f.userID, group)
		if err != nil {
			t.Fatalf("cached fetch: %v", err)
		}
		if len(cached) != 5 || cached[0].ID != tests[0].ID {
			t.Error("cached rows differ from the generated ones")
		}
		if f.mock.CallCount() != 1 {
			t.Errorf("model calls = %d, want 1", f.mock.CallCount())
		}
		if got := f.used(t); got != 1 {
			t.Errorf("learning used = %d, want 1", got)
		}

		var usageRow aiusage.AIUsageLog
		if err := f.db.First(&usageRow, "user_id = ?", f.userID).Error; err != nil {
			t.Fatalf("find usage row: %v", err)
		}
		if usageRow.Purpose != aiusage.TEST_GENERATION || !usageRow.Success {
			t.Errorf("usage row = %+v, want successful test_generation", usageRow)
		}
	})

	t.Run("SupportingGroupGetsThreeQuestions", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, topic.SUPPORTING)
		f.mock.AddResponse(llm.MockResponse{Content: validPayload(3)})

		tests, err := f.svc.GetOrGenerate(ctx, f.userID, group)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(tests) != 3 {
			t.Errorf("questions = %d, want 3", len(tests))
		}
		if !strings.Contains(f.mock.Calls[0].User, "3 perguntas") {
			t.Errorf("prompt does not request 3 questions: %q", f.mock.Calls[0].User)
		}
	})

	t.Run("QuotaExceeded", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, topic.CORE)
		if _, err := f.quotas.SetLimit(ctx, f.userID, quota.LEARNING_INTERACTIONS, 0); err != nil {
			t.Fatalf("set limit: %v", err)
		}

		_, err := f.svc.GetOrGenerate(ctx, f.userID, group)
		if !errors.Is(err, quota.ErrQuotaExceeded) {
			t.Fatalf("err = %v, want ErrQuotaExceeded", err)
		}
		if f.mock.CallCount() != 0 {
			t.Errorf("model calls = %d, want 0", f.mock.CallCount())
		}
		if got := f.testRows(t); got != 0 {
			t.Errorf("persisted rows = %d, want 0", got)
		}
	})

	t.Run("TransportFailureRefunds", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, topic.CORE)
		f.mock.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("upstream 503")}})

		_, err := f.svc.GetOrGenerate(ctx, f.userID, group)
		if !errors.Is(err, testbank.ErrAIUnavailable) {
			t.Fatalf("err = %v, want ErrAIUnavailable", err)
		}
		if got := f.used(t); got != 0 {
			t.Errorf("learning used = %d, want 0 after refund", got)
		}
		if got := f.testRows(t); got != 0 {
			t.Errorf("persisted rows = %d, want 0", got)
		}

		var usageRow aiusage.AIUsageLog
		if err := f.db.First(&usageRow, "user_id = ?", f.userID).Error; err != nil {
			t.Fatalf("find usage row: %v", err)
		}
		if usageRow.Success {
			t.Error("usage row marked success for a failed call")
		}
	})

	t.Run("InvalidPayloads", func(t *testing.T) {
		cases := []struct {
			name    string
			content string
		}{
			{"NotJSON", "não é JSON"},
			{"WrongCount", validPayload(4)},
			{"ThreeOptions", payloadWith(
				mcQuestion(0), mcQuestion(1), mcQuestion(2), mcQuestion(3),
				map[string]any{
					"type":           "MULTIPLE_CHOICE",
					"question":       "Pergunta com poucas opções?",
					"options":        []string{"A", "B", "C"},
					"correct_answer": "A",
					"explanation":    "x",
				},
			)},
			{"CorrectNotAnOption", payloadWith(
				mcQuestion(0), mcQuestion(1), mcQuestion(2), mcQuestion(3),
				map[string]any{
					"type":           "MULTIPLE_CHOICE",
					"question":       "Pergunta com resposta solta?",
					"options":        []string{"A", "B", "C", "D"},
					"correct_answer": "E",
					"explanation":    "x",
				},
			)},
			{"ShortAnswerWithOptions", payloadWith(
				mcQuestion(0), mcQuestion(1), mcQuestion(2), mcQuestion(3),
				map[string]any{
					"type":           "SHORT_ANSWER",
					"question":       "Pergunta curta com opções?",
					"options":        []string{"A", "B", "C", "D"},
					"correct_answer": "A",
					"explanation":    "x",
				},
			)},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				f := newFixture(t)
				group := f.createGroup(t, topic.CORE)
				f.mock.AddResponse(llm.MockResponse{Content: tc.content})

				_, err := f.svc.GetOrGenerate(ctx, f.userID, group)
				if !errors.Is(err, testbank.ErrGenerationFailed) {
					t.Fatalf("err = %v, want ErrGenerationFailed", err)
				}
				if got := f.testRows(t); got != 0 {
					t.Errorf("persisted rows = %d, want 0", got)
				}
				if got := f.used(t); got != 0 {
					t.Errorf("learning used = %d, want 0 after refund", got)
				}
			})
		}
	})
}
