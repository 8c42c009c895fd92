package quota

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/config"
	util "github.com/saulo-duarte/luma-lambda/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrQuotaExceeded means the bucket has no allowance left until reset.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrQuotaNotConfigured means no quota row exists for the bucket. Rows
	// are provisioned at login and by admins, so this is a server-side
	// configuration error, not something the user can act on.
	ErrQuotaNotConfigured = errors.New("quota bucket not configured for user")
)

type Service interface {
	Provision(ctx context.Context, userID uuid.UUID) error
	Consume(ctx context.Context, userID uuid.UUID, bucket Bucket, amount int, reason string) error
	Refund(ctx context.Context, userID uuid.UUID, bucket Bucket, amount int, reason string)
	List(ctx context.Context, userID uuid.UUID) ([]QuotaResponse, error)
	SetLimit(ctx context.Context, userID uuid.UUID, bucket Bucket, limit int) (*QuotaResponse, error)
	TopConsumers(ctx context.Context, bucket Bucket, n int) ([]Quota, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Provision creates the default quota rows for a user. Existing rows are
// left untouched, so calling it on every login is safe.
func (s *service) Provision(ctx context.Context, userID uuid.UUID) error {
	resetsAt := util.StartOfNextDay(time.Now())

	quotas := make([]Quota, 0, len(AllBuckets))
	for _, bucket := range AllBuckets {
		quotas = append(quotas, Quota{
			UserID:   userID,
			Bucket:   bucket,
			Used:     0,
			Limit:    DefaultLimits[bucket],
			ResetsAt: resetsAt,
		})
	}

	if err := s.repo.CreateMissing(quotas); err != nil {
		return err
	}

	config.WithContext(ctx).Debugf("Quota buckets ensured for user %s", userID)
	return nil
}

func (s *service) Consume(ctx context.Context, userID uuid.UUID, bucket Bucket, amount int, reason string) error {
	log := config.WithContext(ctx)

	if err := s.ensureFresh(ctx, userID, bucket); err != nil {
		return err
	}

	allowed, err := s.repo.TryConsume(userID, bucket, amount, reason)
	if err != nil {
		return err
	}
	if allowed {
		return nil
	}

	// Denied: either the bucket is exhausted or it was never provisioned.
	if _, err := s.repo.FindByUserAndBucket(userID, bucket); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("Quota bucket %s not provisioned for user %s", bucket, userID)
			return ErrQuotaNotConfigured
		}
		return err
	}

	log.Infof("Quota %s exhausted for user %s (%s)", bucket, userID, reason)
	return ErrQuotaExceeded
}

// Refund gives back allowance after a failed downstream call. It is
// best-effort: a refund that cannot be applied is logged and dropped so
// the caller's own error handling is never derailed.
func (s *service) Refund(ctx context.Context, userID uuid.UUID, bucket Bucket, amount int, reason string) {
	log := config.WithContext(ctx)

	refunded, err := s.repo.Refund(userID, bucket, amount, reason)
	if err != nil {
		log.WithError(err).Warnf("Failed to refund %d on %s for user %s", amount, bucket, userID)
		return
	}
	if !refunded {
		log.Warnf("Refund of %d on %s for user %s dropped (usage lower than refund)", amount, bucket, userID)
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]QuotaResponse, error) {
	for _, bucket := range AllBuckets {
		if err := s.ensureFresh(ctx, userID, bucket); err != nil {
			return nil, err
		}
	}

	quotas, err := s.repo.FindAllByUserID(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]QuotaResponse, 0, len(quotas))
	for _, q := range quotas {
		responses = append(responses, toResponse(&q))
	}
	return responses, nil
}

func (s *service) SetLimit(ctx context.Context, userID uuid.UUID, bucket Bucket, limit int) (*QuotaResponse, error) {
	log := config.WithContext(ctx)

	oldLimit := 0
	existing, err := s.repo.FindByUserAndBucket(userID, bucket)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		oldLimit = existing.Limit
	}

	if err := s.repo.SetLimit(userID, bucket, limit, util.StartOfNextDay(time.Now())); err != nil {
		return nil, err
	}

	if err := s.repo.CreateAuditLog(&QuotaAuditLog{
		UserID: userID,
		Bucket: bucket,
		Change: limit - oldLimit,
		Reason: "admin_set_limit",
	}); err != nil {
		log.WithError(err).Warn("Failed to audit quota limit change")
	}

	updated, err := s.repo.FindByUserAndBucket(userID, bucket)
	if err != nil {
		return nil, err
	}
	resp := toResponse(updated)
	return &resp, nil
}

func (s *service) TopConsumers(ctx context.Context, bucket Bucket, n int) ([]Quota, error) {
	return s.repo.TopConsumers(bucket, n)
}

// ensureFresh applies the lazy daily reset before the counter is read or
// written. Boundary: next midnight in Sao Paulo.
func (s *service) ensureFresh(ctx context.Context, userID uuid.UUID, bucket Bucket) error {
	now := time.Now().In(util.Location())

	reset, err := s.repo.ResetIfDue(userID, bucket, now, util.StartOfNextDay(now))
	if err != nil {
		return err
	}
	if reset {
		config.WithContext(ctx).Infof("Quota %s reset for user %s", bucket, userID)
	}
	return nil
}

func toResponse(q *Quota) QuotaResponse {
	remaining := q.Limit - q.Used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaResponse{
		Bucket:    q.Bucket,
		Used:      q.Used,
		Limit:     q.Limit,
		Remaining: remaining,
		ResetsAt:  q.ResetsAt,
	}
}
