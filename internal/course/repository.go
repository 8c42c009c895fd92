package course

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(course *Course) error
	FindAllByUserID(userID uuid.UUID) ([]Course, error)
	FindByIDAndUser(id, userID uuid.UUID) (*Course, error)
	Update(course *Course) error
	Delete(id, userID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(course *Course) error {
	return r.db.Create(course).Error
}

func (r *repository) FindAllByUserID(userID uuid.UUID) ([]Course, error) {
	var courses []Course
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// FindByIDAndUser scopes the lookup to the owner, so someone else's course
// is indistinguishable from a missing one.
func (r *repository) FindByIDAndUser(id, userID uuid.UUID) (*Course, error) {
	var course Course
	if err := r.db.First(&course, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *repository) Delete(id, userID uuid.UUID) (int64, error) {
	res := r.db.Delete(&Course{}, "id = ? AND user_id = ?", id, userID)
	return res.RowsAffected, res.Error
}

func (r *repository) Update(course *Course) error {
	return r.db.Save(course).Error
}
