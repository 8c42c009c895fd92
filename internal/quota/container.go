package quota

import "gorm.io/gorm"

type QuotaContainer struct {
	Handler *Handler
	Service Service
	Repo    Repository
}

func NewQuotaContainer(db *gorm.DB) *QuotaContainer {
	repo := NewRepository(db)
	service := NewService(repo)
	handler := NewHandler(service)

	return &QuotaContainer{
		Handler: handler,
		Service: service,
		Repo:    repo,
	}
}
