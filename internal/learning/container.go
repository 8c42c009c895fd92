package learning

import (
	"github.com/saulo-duarte/luma-lambda/internal/aiusage"
	"github.com/saulo-duarte/luma-lambda/internal/file"
	"github.com/saulo-duarte/luma-lambda/internal/llm"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/testbank"
	"github.com/saulo-duarte/luma-lambda/internal/topic"
	"gorm.io/gorm"
)

type LearningContainer struct {
	Handler *Handler
	Service Service
	Repo    Repository
}

func NewLearningContainer(
	db *gorm.DB,
	files file.Service,
	tests *testbank.TestBankContainer,
	quotas quota.Service,
	provider llm.Provider,
	usage aiusage.Recorder,
) *LearningContainer {
	repo := NewRepository(db)
	topicRepo := topic.NewRepository(db)
	service := NewService(repo, topicRepo, files, tests.Service, tests.Repo, quotas, provider, usage)
	handler := NewHandler(service)

	return &LearningContainer{
		Handler: handler,
		Service: service,
		Repo:    repo,
	}
}
