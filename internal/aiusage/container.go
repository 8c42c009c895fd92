package aiusage

import (
	"gorm.io/gorm"
)

type AIUsageContainer struct {
	Recorder Recorder
	Repo     Repository
}

func NewAIUsageContainer(db *gorm.DB) *AIUsageContainer {
	repo := NewRepository(db)

	return &AIUsageContainer{
		Recorder: NewRecorder(repo),
		Repo:     repo,
	}
}
