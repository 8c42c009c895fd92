package admin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/admin"
	"github.com/saulo-duarte/luma-lambda/internal/aiusage"
	"github.com/saulo-duarte/luma-lambda/internal/course"
	"github.com/saulo-duarte/luma-lambda/internal/file"
	"github.com/saulo-duarte/luma-lambda/internal/learning"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/user"
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
		&user.User{},
		&course.Course{},
		&file.CourseFile{},
		&learning.LearningSession{},
		&learning.TopicProgress{},
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
	svc    admin.Service
	quotas quota.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	quotas := quota.NewService(quota.NewRepository(db))
	svc := admin.NewService(
		admin.NewRepository(db),
		quotas,
		aiusage.NewRepository(db),
		user.NewUserRepository(db),
	)
	return &fixture{db: db, svc: svc, quotas: quotas}
}

func (f *fixture) seedUser(t *testing.T, email string, plan user.Plan, createdAt time.Time) *user.User {
	t.Helper()
	u := &user.User{
		GoogleID:  "google-" + email,
		Email:     email,
		Name:      email,
		Role:      "user",
		Plan:      plan,
		CreatedAt: createdAt,
	}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Now()

	alice := f.seedUser(t, "alice@example.com", user.FREE, now.Add(-2*time.Hour))
	bruno := f.seedUser(t, "bruno@example.com", user.FREE, now.Add(-time.Hour))
	f.seedUser(t, "carla@example.com", user.PRO, now)

	for _, c := range []course.Course{
		{UserID: alice.ID, Title: "Álgebra Linear"},
		{UserID: bruno.ID, Title: "Cálculo I"},
	} {
		if err := f.db.Create(&c).Error; err != nil {
			t.Fatalf("seed course: %v", err)
		}
	}

	for _, status := range []file.FileStatus{file.READY, file.READY, file.FAILED} {
		row := file.CourseFile{
			CourseID: uuid.New(), UserID: alice.ID, OriginalName: "doc.pdf",
			MimeType: "application/pdf", Size: 10, StorageKey: uuid.NewString(), Status: status,
		}
		if err := f.db.Create(&row).Error; err != nil {
			t.Fatalf("seed file: %v", err)
		}
	}

	for _, status := range []learning.SessionStatus{learning.IN_PROGRESS, learning.COMPLETED} {
		row := learning.LearningSession{
			UserID: alice.ID, FileID: uuid.New(), Status: status,
			CurrentPhase: learning.EXPLAINING, StartedAt: now,
		}
		if err := f.db.Create(&row).Error; err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}

	for _, weak := range []bool{true, true, false} {
		row := learning.TopicProgress{
			SessionID: uuid.New(), TopicGroupID: uuid.New(),
			Status: learning.TOPIC_COMPLETED, IsWeakPoint: weak,
		}
		if err := f.db.Create(&row).Error; err != nil {
			t.Fatalf("seed topic progress: %v", err)
		}
	}

	old := aiusage.AIUsageLog{
		UserID: alice.ID, Purpose: aiusage.TOPIC_EXTRACTION, Model: "mock",
		InputTokens: 100, OutputTokens: 50, CostUSD: 0.5, Success: true,
		CreatedAt: now.AddDate(0, -2, 0),
	}
	if err := f.db.Create(&old).Error; err != nil {
		t.Fatalf("seed old usage: %v", err)
	}
	for i := 0; i < 2; i++ {
		row := aiusage.AIUsageLog{
			UserID: alice.ID, Purpose: aiusage.EXPLANATION, Model: "mock",
			InputTokens: 10, OutputTokens: 5, CostUSD: 0.1, Success: true,
		}
		if err := f.db.Create(&row).Error; err != nil {
			t.Fatalf("seed usage: %v", err)
		}
	}

	for _, seed := range []struct {
		id     uuid.UUID
		amount int
	}{{alice.ID, 3}, {bruno.ID, 1}} {
		if err := f.quotas.Provision(ctx, seed.id); err != nil {
			t.Fatalf("provision: %v", err)
		}
		if err := f.quotas.Consume(ctx, seed.id, quota.LEARNING_INTERACTIONS, seed.amount, "test"); err != nil {
			t.Fatalf("consume: %v", err)
		}
	}

	stats, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.Users.Total != 3 {
		t.Errorf("users total = %d, want 3", stats.Users.Total)
	}
	if stats.Users.ByPlan[user.FREE] != 2 || stats.Users.ByPlan[user.PRO] != 1 {
		t.Errorf("by plan = %v, want 2 FREE / 1 PRO", stats.Users.ByPlan)
	}
	if stats.Courses != 2 {
		t.Errorf("courses = %d, want 2", stats.Courses)
	}
	if stats.FilesByStatus[file.READY] != 2 || stats.FilesByStatus[file.FAILED] != 1 {
		t.Errorf("files = %v, want 2 READY / 1 FAILED", stats.FilesByStatus)
	}
	if stats.SessionsByStatus[learning.IN_PROGRESS] != 1 || stats.SessionsByStatus[learning.COMPLETED] != 1 {
		t.Errorf("sessions = %v", stats.SessionsByStatus)
	}
	if stats.WeakPointTopics != 2 {
		t.Errorf("weak topics = %d, want 2", stats.WeakPointTopics)
	}

	if stats.AIUsage.AllTime.Calls != 3 || stats.AIUsage.AllTime.InputTokens != 120 {
		t.Errorf("all time = %+v, want 3 calls / 120 input tokens", stats.AIUsage.AllTime)
	}
	if stats.AIUsage.CurrentMonth.Calls != 2 || stats.AIUsage.CurrentMonth.OutputTokens != 10 {
		t.Errorf("current month = %+v, want 2 calls / 10 output tokens", stats.AIUsage.CurrentMonth)
	}

	if len(stats.TopConsumers) < 2 {
		t.Fatalf("top consumers = %d, want at least 2", len(stats.TopConsumers))
	}
	first := stats.TopConsumers[0]
	if first.UserID != alice.ID || first.Email != "alice@example.com" || first.Used != 3 {
		t.Errorf("top consumer = %+v, want alice with 3 used", first)
	}
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Now()

	f.seedUser(t, "oldest@example.com", user.FREE, now.Add(-3*time.Hour))
	f.seedUser(t, "middle@example.com", user.FREE, now.Add(-2*time.Hour))
	f.seedUser(t, "newest@example.com", user.PRO, now.Add(-time.Hour))

	page1, err := f.svc.ListUsers(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if page1.Total != 3 || len(page1.Users) != 2 {
		t.Fatalf("page 1 = total %d, rows %d, want 3/2", page1.Total, len(page1.Users))
	}
	if page1.Users[0].Email != "newest@example.com" || page1.Users[1].Email != "middle@example.com" {
		t.Errorf("page 1 order = %s, %s", page1.Users[0].Email, page1.Users[1].Email)
	}

	page2, err := f.svc.ListUsers(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2.Users) != 1 || page2.Users[0].Email != "oldest@example.com" {
		t.Errorf("page 2 = %+v, want just the oldest", page2.Users)
	}
}

func TestSetUserQuota(t *testing.T) {
	ctx := context.Background()

	t.Run("UpdatesExistingLimit", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t, "alice@example.com", user.FREE, time.Now())
		if err := f.quotas.Provision(ctx, u.ID); err != nil {
			t.Fatalf("provision: %v", err)
		}

		resp, err := f.svc.SetUserQuota(ctx, u.ID, quota.LEARNING_INTERACTIONS, 99)
		if err != nil {
			t.Fatalf("set quota: %v", err)
		}
		if resp.Limit != 99 {
			t.Errorf("limit = %d, want 99", resp.Limit)
		}

		var audit quota.QuotaAuditLog
		if err := f.db.First(&audit, "user_id = ? AND reason = ?", u.ID, "admin_set_limit").Error; err != nil {
			t.Errorf("missing admin_set_limit audit row: %v", err)
		}
	})

	t.Run("CreatesMissingBucketRow", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t, "bruno@example.com", user.FREE, time.Now())

		resp, err := f.svc.SetUserQuota(ctx, u.ID, quota.FILE_UPLOADS, 42)
		if err != nil {
			t.Fatalf("set quota: %v", err)
		}
		if resp.Limit != 42 || resp.Used != 0 {
			t.Errorf("resp = %+v, want fresh row with limit 42", resp)
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.SetUserQuota(ctx, uuid.New(), quota.LEARNING_INTERACTIONS, 10)
		if !errors.Is(err, user.ErrUserNotFound) {
			t.Fatalf("err = %v, want ErrUserNotFound", err)
		}
	})
}
