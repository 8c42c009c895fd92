package quota_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
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

	if err := db.AutoMigrate(&quota.Quota{}, &quota.QuotaAuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedQuota(t *testing.T, db *gorm.DB, userID uuid.UUID, bucket quota.Bucket, used, limit int, resetsAt time.Time) {
	t.Helper()
	q := quota.Quota{
		UserID:   userID,
		Bucket:   bucket,
		Used:     used,
		Limit:    limit,
		ResetsAt: resetsAt,
	}
	if err := db.Create(&q).Error; err != nil {
		t.Fatalf("seed quota: %v", err)
	}
}

func TestConsume(t *testing.T) {
	ctx := context.Background()

	t.Run("Allowed", func(t *testing.T) {
		db := newTestDB(t)
		svc := quota.NewService(quota.NewRepository(db))
		userID := uuid.New()
		seedQuota(t, db, userID, quota.LEARNING_INTERACTIONS, 0, 5, time.Now().Add(24*time.Hour))

		if err := svc.Consume(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "test_generation"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var q quota.Quota
		if err := db.First(&q, "user_id = ?", userID).Error; err != nil {
			t.Fatalf("find quota: %v", err)
		}
		if q.Used != 1 {
			t.Errorf("used = %d, want 1", q.Used)
		}
	})

	t.Run("Exhausted", func(t *testing.T) {
		db := newTestDB(t)
		svc := quota.NewService(quota.NewRepository(db))
		userID := uuid.New()
		seedQuota(t, db, userID, quota.LEARNING_INTERACTIONS, 5, 5, time.Now().Add(24*time.Hour))

		err := svc.Consume(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "test_generation")
		if !errors.Is(err, quota.ErrQuotaExceeded) {
			t.Fatalf("expected ErrQuotaExceeded, got %v", err)
		}
	})

	t.Run("MissingRowIsConfigError", func(t *testing.T) {
		db := newTestDB(t)
		svc := quota.NewService(quota.NewRepository(db))

		err := svc.Consume(ctx, uuid.New(), quota.LEARNING_INTERACTIONS, 1, "test_generation")
		if !errors.Is(err, quota.ErrQuotaNotConfigured) {
			t.Fatalf("expected ErrQuotaNotConfigured, got %v", err)
		}
	})

	t.Run("WritesAuditRow", func(t *testing.T) {
		db := newTestDB(t)
		svc := quota.NewService(quota.NewRepository(db))
		userID := uuid.New()
		seedQuota(t, db, userID, quota.FILE_UPLOADS, 0, 10, time.Now().Add(24*time.Hour))

		if err := svc.Consume(ctx, userID, quota.FILE_UPLOADS, 1, "file_upload"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var logs []quota.QuotaAuditLog
		if err := db.Find(&logs, "user_id = ?", userID).Error; err != nil {
			t.Fatalf("find audit logs: %v", err)
		}
		if len(logs) != 1 {
			t.Fatalf("audit rows = %d, want 1", len(logs))
		}
		if logs[0].Change != 1 || logs[0].Reason != "file_upload" {
			t.Errorf("audit row = {change:%d reason:%q}, want {change:1 reason:\"file_upload\"}", logs[0].Change, logs[0].Reason)
		}
	})

	t.Run("LazyReset", func(t *testing.T) {
		db := newTestDB(t)
		svc := quota.NewService(quota.NewRepository(db))
		userID := uuid.New()
		seedQuota(t, db, userID, quota.LEARNING_INTERACTIONS, 5, 5, time.Now().Add(-time.Hour))

		if err := svc.Consume(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "test_generation"); err != nil {
			t.Fatalf("expected consume after reset, got %v", err)
		}

		var q quota.Quota
		if err := db.First(&q, "user_id = ?", userID).Error; err != nil {
			t.Fatalf("find quota: %v", err)
		}
		if q.Used != 1 {
			t.Errorf("used = %d, want 1 (reset then consume)", q.Used)
		}
		if !q.ResetsAt.After(time.Now()) {
			t.Errorf("resets_at = %v, want future boundary", q.ResetsAt)
		}
	})
}

// Usage must never exceed the limit no matter how consume calls interleave:
// the check and the increment are one conditional UPDATE.
func TestConsume_ConcurrentNeverOverspends(t *testing.T) {
	db := newTestDB(t)
	svc := quota.NewService(quota.NewRepository(db))
	userID := uuid.New()
	seedQuota(t, db, userID, quota.LEARNING_INTERACTIONS, 0, 5, time.Now().Add(24*time.Hour))

	const callers = 20
	var allowed int32
	var wg sync.WaitGroup
	wg.Add(callers)

	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			err := svc.Consume(context.Background(), userID, quota.LEARNING_INTERACTIONS, 1, "test_generation")
			if err == nil {
				atomic.AddInt32(&allowed, 1)
			} else if !errors.Is(err, quota.ErrQuotaExceeded) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if allowed != 5 {
		t.Errorf("allowed = %d, want exactly 5", allowed)
	}

	var q quota.Quota
	if err := db.First(&q, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("find quota: %v", err)
	}
	if q.Used != 5 {
		t.Errorf("used = %d, want 5", q.Used)
	}
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("Decrements", func(t *testing.T) {
		db := newTestDB(t)
		svc := quota.NewService(quota.NewRepository(db))
		userID := uuid.New()
		seedQuota(t, db, userID, quota.LEARNING_INTERACTIONS, 3, 5, time.Now().Add(24*time.Hour))

		svc.Refund(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "generation_failed")

		var q quota.Quota
		if err := db.First(&q, "user_id = ?", userID).Error; err != nil {
			t.Fatalf("find quota: %v", err)
		}
		if q.Used != 2 {
			t.Errorf("used = %d, want 2", q.Used)
		}
	})

	t.Run("NeverGoesNegative", func(t *testing.T) {
		db := newTestDB(t)
		svc := quota.NewService(quota.NewRepository(db))
		userID := uuid.New()
		seedQuota(t, db, userID, quota.LEARNING_INTERACTIONS, 0, 5, time.Now().Add(24*time.Hour))

		svc.Refund(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "generation_failed")

		var q quota.Quota
		if err := db.First(&q, "user_id = ?", userID).Error; err != nil {
			t.Fatalf("find quota: %v", err)
		}
		if q.Used != 0 {
			t.Errorf("used = %d, want 0 (refund dropped)", q.Used)
		}
	})
}

func TestProvision(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := quota.NewService(quota.NewRepository(db))
	userID := uuid.New()

	if err := svc.Provision(ctx, userID); err != nil {
		t.Fatalf("provision: %v", err)
	}

	// Exhaust one bucket, then provision again: existing rows must survive.
	if err := db.Model(&quota.Quota{}).
		Where("user_id = ? AND bucket = ?", userID, quota.FILE_UPLOADS).
		Update("used", 7).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Provision(ctx, userID); err != nil {
		t.Fatalf("re-provision: %v", err)
	}

	var quotas []quota.Quota
	if err := db.Order("bucket").Find(&quotas, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("find quotas: %v", err)
	}
	if len(quotas) != len(quota.AllBuckets) {
		t.Fatalf("rows = %d, want %d", len(quotas), len(quota.AllBuckets))
	}
	for _, q := range quotas {
		if q.Bucket == quota.FILE_UPLOADS && q.Used != 7 {
			t.Errorf("re-provision overwrote used: got %d, want 7", q.Used)
		}
		if q.Limit != quota.DefaultLimits[q.Bucket] {
			t.Errorf("bucket %s limit = %d, want %d", q.Bucket, q.Limit, quota.DefaultLimits[q.Bucket])
		}
	}
}

func TestSetLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("UpdatesExisting", func(t *testing.T) {
		db := newTestDB(t)
		svc := quota.NewService(quota.NewRepository(db))
		userID := uuid.New()
		seedQuota(t, db, userID, quota.FILE_UPLOADS, 4, 10, time.Now().Add(24*time.Hour))

		resp, err := svc.SetLimit(ctx, userID, quota.FILE_UPLOADS, 25)
		if err != nil {
			t.Fatalf("set limit: %v", err)
		}
		if resp.Limit != 25 {
			t.Errorf("limit = %d, want 25", resp.Limit)
		}
		if resp.Used != 4 {
			t.Errorf("used = %d, want 4 (unchanged)", resp.Used)
		}
	})

	t.Run("CreatesMissingRow", func(t *testing.T) {
		db := newTestDB(t)
		svc := quota.NewService(quota.NewRepository(db))
		userID := uuid.New()

		resp, err := svc.SetLimit(ctx, userID, quota.LEARNING_INTERACTIONS, 100)
		if err != nil {
			t.Fatalf("set limit: %v", err)
		}
		if resp.Limit != 100 || resp.Used != 0 {
			t.Errorf("got {limit:%d used:%d}, want {limit:100 used:0}", resp.Limit, resp.Used)
		}
	})
}
