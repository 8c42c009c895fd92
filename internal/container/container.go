package container

import (
	"context"
	"log"
	"os"

	"github.com/saulo-duarte/luma-lambda/internal/admin"
	"github.com/saulo-duarte/luma-lambda/internal/aiusage"
	"github.com/saulo-duarte/luma-lambda/internal/auth"
	"github.com/saulo-duarte/luma-lambda/internal/config"
	"github.com/saulo-duarte/luma-lambda/internal/course"
	"github.com/saulo-duarte/luma-lambda/internal/file"
	"github.com/saulo-duarte/luma-lambda/internal/learning"
	"github.com/saulo-duarte/luma-lambda/internal/llm"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/storage"
	"github.com/saulo-duarte/luma-lambda/internal/testbank"
	"github.com/saulo-duarte/luma-lambda/internal/topic"
	"github.com/saulo-duarte/luma-lambda/internal/user"
)

type Container struct {
	UserContainer     *user.UserContainer
	CourseContainer   *course.CourseContainer
	FileContainer     *file.FileContainer
	QuotaContainer    *quota.QuotaContainer
	TestBankContainer *testbank.TestBankContainer
	LearningContainer *learning.LearningContainer
	AIUsageContainer  *aiusage.AIUsageContainer
	AdminContainer    *admin.AdminContainer
}

func New() *Container {
	config.Init()
	auth.Init()
	config.InitCrypto()

	ctx := context.Background()
	dsn := os.Getenv("DATABASE_DSN")
	if err := config.Connect(ctx, dsn); err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	if err := migrate(); err != nil {
		log.Fatalf("failed to migrate DB: %v", err)
	}

	store, err := storage.NewGCSService(ctx)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}
	provider, err := llm.NewProviderFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to init AI provider: %v", err)
	}

	quotaContainer := quota.NewQuotaContainer(config.DB)
	userContainer := user.NewUserContainer(config.DB, quotaContainer.Service)
	usageContainer := aiusage.NewAIUsageContainer(config.DB)
	courseContainer := course.NewCourseContainer(config.DB)

	fileContainer := file.NewFileContainer(
		config.DB,
		courseContainer.Service,
		store,
		quotaContainer.Service,
		provider,
		usageContainer.Recorder,
	)
	testBankContainer := testbank.NewTestBankContainer(
		config.DB,
		quotaContainer.Service,
		provider,
		usageContainer.Recorder,
	)
	learningContainer := learning.NewLearningContainer(
		config.DB,
		fileContainer.Service,
		testBankContainer,
		quotaContainer.Service,
		provider,
		usageContainer.Recorder,
	)
	adminContainer := admin.NewAdminContainer(
		config.DB,
		quotaContainer.Service,
		usageContainer.Repo,
		userContainer.Repo,
	)

	return &Container{
		UserContainer:     userContainer,
		CourseContainer:   courseContainer,
		FileContainer:     fileContainer,
		QuotaContainer:    quotaContainer,
		TestBankContainer: testBankContainer,
		LearningContainer: learningContainer,
		AIUsageContainer:  usageContainer,
		AdminContainer:    adminContainer,
	}
}

func migrate() error {
	return config.DB.AutoMigrate(
		&user.User{},
		&course.Course{},
		&file.CourseFile{},
		&topic.TopicGroup{},
		&topic.SubTopic{},
		&testbank.TopicTest{},
		&learning.LearningSession{},
		&learning.SubTopicProgress{},
		&learning.TopicProgress{},
		&learning.TestAnswer{},
		&quota.Quota{},
		&quota.QuotaAuditLog{},
		&aiusage.AIUsageLog{},
	)
}
