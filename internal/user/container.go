package user

import (
	"os"

	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
	"gorm.io/gorm"
)

type UserContainer struct {
	Handler *Handler
	Service Service
	Repo    UserRepository
}

func NewUserContainer(db *gorm.DB, quotaService quota.Service) *UserContainer {
	oauthConfig := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		Scopes:       []string{goauth2.OpenIDScope, goauth2.UserinfoEmailScope, goauth2.UserinfoProfileScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}

	repo := NewUserRepository(db)
	service := NewService(repo, quotaService, oauthConfig)
	handler := NewHandler(service)

	return &UserContainer{
		Handler: handler,
		Service: service,
		Repo:    repo,
	}
}
