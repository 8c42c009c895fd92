package testbank

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	FindByGroup(groupID uuid.UUID) ([]TopicTest, error)
	CreateAll(tests []TopicTest) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByGroup(groupID uuid.UUID) ([]TopicTest, error) {
	var tests []TopicTest
	if err := r.db.
		Where("topic_group_id = ?", groupID).
		Order("question_index ASC").
		Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

// CreateAll persists a full question set in one transaction, so a partial
// test can never be cached.
func (r *repository) CreateAll(tests []TopicTest) error {
	if len(tests) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&tests).Error
	})
}
