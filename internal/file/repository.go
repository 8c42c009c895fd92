package file

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(f *CourseFile) error
	FindByIDAndUser(id, userID uuid.UUID) (*CourseFile, error)
	FindByCourse(courseID, userID uuid.UUID) ([]CourseFile, error)
	UpdateStatus(id uuid.UUID, status FileStatus) error
	MarkReady(id uuid.UUID, pageCount int) error
	Delete(id, userID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(f *CourseFile) error {
	return r.db.Create(f).Error
}

// FindByIDAndUser scopes the lookup to the owner, so someone else's file
// is indistinguishable from a missing one.
func (r *repository) FindByIDAndUser(id, userID uuid.UUID) (*CourseFile, error) {
	var f CourseFile
	if err := r.db.First(&f, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) FindByCourse(courseID, userID uuid.UUID) ([]CourseFile, error) {
	var files []CourseFile
	if err := r.db.
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Order("created_at DESC").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *repository) UpdateStatus(id uuid.UUID, status FileStatus) error {
	return r.db.Model(&CourseFile{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) MarkReady(id uuid.UUID, pageCount int) error {
	return r.db.Model(&CourseFile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     READY,
			"page_count": pageCount,
		}).Error
}

func (r *repository) Delete(id, userID uuid.UUID) (int64, error) {
	res := r.db.Delete(&CourseFile{}, "id = ? AND user_id = ?", id, userID)
	return res.RowsAffected, res.Error
}
