package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/saulo-duarte/luma-lambda/internal/admin"
	"github.com/saulo-duarte/luma-lambda/internal/auth"
	"github.com/saulo-duarte/luma-lambda/internal/course"
	"github.com/saulo-duarte/luma-lambda/internal/file"
	"github.com/saulo-duarte/luma-lambda/internal/learning"
	"github.com/saulo-duarte/luma-lambda/internal/middlewares"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/user"
)

type RouterConfig struct {
	UserHandler     *user.Handler
	CourseHandler   *course.Handler
	FileHandler     *file.Handler
	QuotaHandler    *quota.Handler
	LearningHandler *learning.Handler
	AdminHandler    *admin.Handler
}

func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware)

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", cfg.UserHandler.GoogleLogin)
		r.Post("/refresh", cfg.UserHandler.RefreshToken)
		r.Post("/logout", auth.NewHandler().Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Mount("/users", user.Routes(cfg.UserHandler))
		r.Mount("/courses", course.Routes(cfg.CourseHandler))
		r.Mount("/files", file.Routes(cfg.FileHandler))
		r.Mount("/quotas", quota.Routes(cfg.QuotaHandler))
		r.Mount("/learning", learning.Routes(cfg.LearningHandler))

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.AdminMiddleware)
			r.Mount("/", admin.Routes(cfg.AdminHandler))
		})
	})
	return r
}
