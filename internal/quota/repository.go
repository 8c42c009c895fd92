package quota

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	FindAllByUserID(userID uuid.UUID) ([]Quota, error)
	FindByUserAndBucket(userID uuid.UUID, bucket Bucket) (*Quota, error)
	TryConsume(userID uuid.UUID, bucket Bucket, amount int, reason string) (bool, error)
	Refund(userID uuid.UUID, bucket Bucket, amount int, reason string) (bool, error)
	ResetIfDue(userID uuid.UUID, bucket Bucket, now, nextReset time.Time) (bool, error)
	CreateMissing(quotas []Quota) error
	SetLimit(userID uuid.UUID, bucket Bucket, limit int, resetsAt time.Time) error
	TopConsumers(bucket Bucket, n int) ([]Quota, error)
	CreateAuditLog(entry *QuotaAuditLog) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAllByUserID(userID uuid.UUID) ([]Quota, error) {
	var quotas []Quota
	if err := r.db.Where("user_id = ?", userID).Order("bucket").Find(&quotas).Error; err != nil {
		return nil, err
	}
	return quotas, nil
}

func (r *repository) FindByUserAndBucket(userID uuid.UUID, bucket Bucket) (*Quota, error) {
	var q Quota
	if err := r.db.First(&q, "user_id = ? AND bucket = ?", userID, bucket).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// TryConsume performs the check and the increment as one conditional UPDATE.
// A separate read-then-write would let two concurrent requests both pass a
// stale check. RowsAffected == 0 means the consumption was denied.
func (r *repository) TryConsume(userID uuid.UUID, bucket Bucket, amount int, reason string) (bool, error) {
	allowed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Quota{}).
			Where("user_id = ? AND bucket = ? AND used + ? <= quota_limit", userID, bucket, amount).
			Update("used", gorm.Expr("used + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		allowed = true
		return tx.Create(&QuotaAuditLog{
			UserID: userID,
			Bucket: bucket,
			Change: amount,
			Reason: reason,
		}).Error
	})
	return allowed, err
}

// Refund decrements only while used stays non-negative. A refund that finds
// less usage than it returns is dropped, the counter never goes below zero.
func (r *repository) Refund(userID uuid.UUID, bucket Bucket, amount int, reason string) (bool, error) {
	refunded := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Quota{}).
			Where("user_id = ? AND bucket = ? AND used >= ?", userID, bucket, amount).
			Update("used", gorm.Expr("used - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		refunded = true
		return tx.Create(&QuotaAuditLog{
			UserID: userID,
			Bucket: bucket,
			Change: -amount,
			Reason: reason,
		}).Error
	})
	return refunded, err
}

// ResetIfDue zeroes the counter once its reset boundary has passed. The
// WHERE clause makes it idempotent under concurrent callers: only one of
// them observes resets_at <= now.
func (r *repository) ResetIfDue(userID uuid.UUID, bucket Bucket, now, nextReset time.Time) (bool, error) {
	reset := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Quota{}).
			Where("user_id = ? AND bucket = ? AND resets_at <= ?", userID, bucket, now).
			Updates(map[string]interface{}{"used": 0, "resets_at": nextReset})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		reset = true
		return tx.Create(&QuotaAuditLog{
			UserID: userID,
			Bucket: bucket,
			Change: 0,
			Reason: "daily_reset",
		}).Error
	})
	return reset, err
}

// CreateMissing inserts the given quota rows, silently skipping the ones
// whose (user_id, bucket) pair already exists.
func (r *repository) CreateMissing(quotas []Quota) error {
	if len(quotas) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&quotas).Error
}

func (r *repository) SetLimit(userID uuid.UUID, bucket Bucket, limit int, resetsAt time.Time) error {
	q := Quota{
		UserID:   userID,
		Bucket:   bucket,
		Used:     0,
		Limit:    limit,
		ResetsAt: resetsAt,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "bucket"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"quota_limit": limit}),
	}).Create(&q).Error
}

func (r *repository) TopConsumers(bucket Bucket, n int) ([]Quota, error) {
	var quotas []Quota
	if err := r.db.Where("bucket = ?", bucket).Order("used DESC").Limit(n).Find(&quotas).Error; err != nil {
		return nil, err
	}
	return quotas, nil
}

func (r *repository) CreateAuditLog(entry *QuotaAuditLog) error {
	return r.db.Create(entry).Error
}
