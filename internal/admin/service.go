package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/aiusage"
	"github.com/saulo-duarte/luma-lambda/internal/config"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/user"
	util "github.com/saulo-duarte/luma-lambda/internal/utils"
)

const topConsumerCount = 5

type Service interface {
	Stats(ctx context.Context) (*StatsResponse, error)
	ListUsers(ctx context.Context, page, size int) (*UserPageResponse, error)
	SetUserQuota(ctx context.Context, userID uuid.UUID, bucket quota.Bucket, limit int) (*quota.QuotaResponse, error)
}

type service struct {
	repo   Repository
	quotas quota.Service
	usage  aiusage.Repository
	users  user.UserRepository
}

func NewService(repo Repository, quotas quota.Service, usage aiusage.Repository, users user.UserRepository) Service {
	return &service{
		repo:   repo,
		quotas: quotas,
		usage:  usage,
		users:  users,
	}
}

func (s *service) Stats(ctx context.Context) (*StatsResponse, error) {
	log := config.WithContext(ctx)

	totalUsers, byPlan, err := s.repo.CountUsersByPlan()
	if err != nil {
		return nil, err
	}
	courses, err := s.repo.CountCourses()
	if err != nil {
		return nil, err
	}
	files, err := s.repo.CountFilesByStatus()
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.CountSessionsByStatus()
	if err != nil {
		return nil, err
	}
	weakTopics, err := s.repo.CountWeakPointTopics()
	if err != nil {
		return nil, err
	}

	allTime, err := s.usage.TotalsSince(time.Time{})
	if err != nil {
		return nil, err
	}
	month, err := s.usage.TotalsSince(util.StartOfMonth(time.Now()))
	if err != nil {
		return nil, err
	}

	consumers, err := s.quotas.TopConsumers(ctx, quota.LEARNING_INTERACTIONS, topConsumerCount)
	if err != nil {
		return nil, err
	}
	top := make([]TopConsumerDTO, 0, len(consumers))
	for _, q := range consumers {
		dto := TopConsumerDTO{
			UserID: q.UserID,
			Bucket: q.Bucket,
			Used:   q.Used,
			Limit:  q.Limit,
		}
		u, err := s.users.GetByID(q.UserID.String())
		if err != nil {
			return nil, err
		}
		if u == nil {
			log.Warnf("No user row for top consumer %s", q.UserID)
		} else {
			dto.Email = u.Email
			dto.Name = u.Name
		}
		top = append(top, dto)
	}

	return &StatsResponse{
		Users:            UserStats{Total: totalUsers, ByPlan: byPlan},
		Courses:          courses,
		FilesByStatus:    files,
		SessionsByStatus: sessions,
		WeakPointTopics:  weakTopics,
		AIUsage:          AIUsageStats{AllTime: *allTime, CurrentMonth: *month},
		TopConsumers:     top,
	}, nil
}

func (s *service) ListUsers(ctx context.Context, page, size int) (*UserPageResponse, error) {
	users, total, err := s.repo.ListUsers(page, size)
	if err != nil {
		return nil, err
	}

	dtos := make([]AdminUserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, toUserDTO(&users[i]))
	}

	return &UserPageResponse{
		Users: dtos,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

func (s *service) SetUserQuota(ctx context.Context, userID uuid.UUID, bucket quota.Bucket, limit int) (*quota.QuotaResponse, error) {
	u, err := s.users.GetByID(userID.String())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}

	return s.quotas.SetLimit(ctx, userID, bucket, limit)
}
