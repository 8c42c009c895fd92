package admin

import (
	"github.com/saulo-duarte/luma-lambda/internal/course"
	"github.com/saulo-duarte/luma-lambda/internal/file"
	"github.com/saulo-duarte/luma-lambda/internal/learning"
	"github.com/saulo-duarte/luma-lambda/internal/user"
	"gorm.io/gorm"
)

// Repository runs the dashboard's aggregate queries. It reads the other
// features' tables but never writes them.
type Repository interface {
	CountUsersByPlan() (int64, map[user.Plan]int64, error)
	CountCourses() (int64, error)
	CountFilesByStatus() (map[file.FileStatus]int64, error)
	CountSessionsByStatus() (map[learning.SessionStatus]int64, error)
	CountWeakPointTopics() (int64, error)
	ListUsers(page, size int) ([]user.User, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountUsersByPlan() (int64, map[user.Plan]int64, error) {
	var rows []struct {
		Plan user.Plan
		N    int64
	}
	if err := r.db.Model(&user.User{}).
		Select("plan, count(*) as n").
		Group("plan").
		Scan(&rows).Error; err != nil {
		return 0, nil, err
	}

	var total int64
	byPlan := make(map[user.Plan]int64, len(rows))
	for _, row := range rows {
		byPlan[row.Plan] = row.N
		total += row.N
	}
	return total, byPlan, nil
}

func (r *repository) CountCourses() (int64, error) {
	var count int64
	err := r.db.Model(&course.Course{}).Count(&count).Error
	return count, err
}

func (r *repository) CountFilesByStatus() (map[file.FileStatus]int64, error) {
	var rows []struct {
		Status file.FileStatus
		N      int64
	}
	if err := r.db.Model(&file.CourseFile{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[file.FileStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *repository) CountSessionsByStatus() (map[learning.SessionStatus]int64, error) {
	var rows []struct {
		Status learning.SessionStatus
		N      int64
	}
	if err := r.db.Model(&learning.LearningSession{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[learning.SessionStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *repository) CountWeakPointTopics() (int64, error) {
	var count int64
	err := r.db.Model(&learning.TopicProgress{}).
		Where("is_weak_point = ?", true).
		Count(&count).Error
	return count, err
}

func (r *repository) ListUsers(page, size int) ([]user.User, int64, error) {
	var total int64
	if err := r.db.Model(&user.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []user.User
	err := r.db.
		Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&users).Error
	return users, total, err
}
