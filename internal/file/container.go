package file

import (
	"github.com/saulo-duarte/luma-lambda/internal/aiusage"
	"github.com/saulo-duarte/luma-lambda/internal/course"
	"github.com/saulo-duarte/luma-lambda/internal/llm"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/storage"
	"github.com/saulo-duarte/luma-lambda/internal/topic"
	"gorm.io/gorm"
)

type FileContainer struct {
	Handler   *Handler
	Service   Service
	Repo      Repository
	TopicRepo topic.Repository
}

func NewFileContainer(
	db *gorm.DB,
	courses course.Service,
	store storage.Service,
	quotas quota.Service,
	provider llm.Provider,
	usage aiusage.Recorder,
) *FileContainer {
	repo := NewRepository(db)
	topicRepo := topic.NewRepository(db)
	service := NewService(repo, topicRepo, courses, store, quotas, provider, usage)
	handler := NewHandler(service)

	return &FileContainer{
		Handler:   handler,
		Service:   service,
		Repo:      repo,
		TopicRepo: topicRepo,
	}
}
