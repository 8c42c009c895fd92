package admin

import (
	"github.com/saulo-duarte/luma-lambda/internal/aiusage"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/user"
	"gorm.io/gorm"
)

type AdminContainer struct {
	Handler *Handler
	Service Service
}

func NewAdminContainer(db *gorm.DB, quotas quota.Service, usage aiusage.Repository, users user.UserRepository) *AdminContainer {
	repo := NewRepository(db)
	service := NewService(repo, quotas, usage, users)
	handler := NewHandler(service)

	return &AdminContainer{
		Handler: handler,
		Service: service,
	}
}
