package admin

import (
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/aiusage"
	"github.com/saulo-duarte/luma-lambda/internal/file"
	"github.com/saulo-duarte/luma-lambda/internal/learning"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/user"
)

type StatsResponse struct {
	Users            UserStats                        `json:"users"`
	Courses          int64                            `json:"courses"`
	FilesByStatus    map[file.FileStatus]int64        `json:"files_by_status"`
	SessionsByStatus map[learning.SessionStatus]int64 `json:"sessions_by_status"`
	WeakPointTopics  int64                            `json:"weak_point_topics"`
	AIUsage          AIUsageStats                     `json:"ai_usage"`
	TopConsumers     []TopConsumerDTO                 `json:"top_consumers"`
}

type UserStats struct {
	Total  int64               `json:"total"`
	ByPlan map[user.Plan]int64 `json:"by_plan"`
}

type AIUsageStats struct {
	AllTime      aiusage.Totals `json:"all_time"`
	CurrentMonth aiusage.Totals `json:"current_month"`
}

type TopConsumerDTO struct {
	UserID uuid.UUID    `json:"user_id"`
	Email  string       `json:"email"`
	Name   string       `json:"name"`
	Bucket quota.Bucket `json:"bucket"`
	Used   int          `json:"used"`
	Limit  int          `json:"limit"`
}

type AdminUserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Plan      user.Plan `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

type UserPageResponse struct {
	Users []AdminUserDTO `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type SetQuotaDTO struct {
	Limit *int `json:"limit"`
}

func toUserDTO(u *user.User) AdminUserDTO {
	return AdminUserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Plan:      u.Plan,
		CreatedAt: u.CreatedAt,
	}
}
