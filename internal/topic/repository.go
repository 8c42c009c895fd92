package topic

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateOutline(groups []TopicGroup) error
	FindByFileID(fileID uuid.UUID) ([]TopicGroup, error)
	FindGroupByID(id uuid.UUID) (*TopicGroup, error)
	CountByFileID(fileID uuid.UUID) (int64, error)
	FindSubTopicByID(id uuid.UUID) (*SubTopic, error)
	SetSubTopicExplanation(id uuid.UUID, explanation string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateOutline persists a whole outline in one transaction, subtopics
// included. Either every group lands or none do.
func (r *repository) CreateOutline(groups []TopicGroup) error {
	if len(groups) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&groups).Error
	})
}

func (r *repository) FindByFileID(fileID uuid.UUID) ([]TopicGroup, error) {
	var groups []TopicGroup
	err := r.db.
		Preload("SubTopics", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_topics.order_index ASC")
		}).
		Where("file_id = ?", fileID).
		Order("order_index ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *repository) FindGroupByID(id uuid.UUID) (*TopicGroup, error) {
	var group TopicGroup
	err := r.db.
		Preload("SubTopics", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_topics.order_index ASC")
		}).
		First(&group, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) CountByFileID(fileID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&TopicGroup{}).Where("file_id = ?", fileID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) FindSubTopicByID(id uuid.UUID) (*SubTopic, error) {
	var sub SubTopic
	if err := r.db.First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) SetSubTopicExplanation(id uuid.UUID, explanation string) error {
	return r.db.Model(&SubTopic{}).Where("id = ?", id).Update("explanation", explanation).Error
}
