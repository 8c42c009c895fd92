package testbank

import (
	"github.com/saulo-duarte/luma-lambda/internal/aiusage"
	"github.com/saulo-duarte/luma-lambda/internal/llm"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"gorm.io/gorm"
)

type TestBankContainer struct {
	Service Service
	Repo    Repository
}

func NewTestBankContainer(db *gorm.DB, quotas quota.Service, provider llm.Provider, usage aiusage.Recorder) *TestBankContainer {
	repo := NewRepository(db)
	service := NewService(repo, quotas, provider, usage)

	return &TestBankContainer{
		Service: service,
		Repo:    repo,
	}
}
