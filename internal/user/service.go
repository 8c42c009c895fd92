package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/saulo-duarte/luma-lambda/internal/auth"
	"github.com/saulo-duarte/luma-lambda/internal/config"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAuthCode     = errors.New("invalid google authorization code")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

type Service interface {
	GoogleLogin(ctx context.Context, code string) (*UserResponse, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	GetByID(ctx context.Context, id string) (*UserResponse, error)
}

type service struct {
	repo         UserRepository
	quotaService quota.Service
	oauthConfig  *oauth2.Config
}

func NewService(repo UserRepository, quotaService quota.Service, oauthConfig *oauth2.Config) Service {
	return &service{
		repo:         repo,
		quotaService: quotaService,
		oauthConfig:  oauthConfig,
	}
}

// GoogleLogin exchanges the authorization code, upserts the user by their
// Google ID and returns the user plus a fresh JWT pair. Google tokens are
// stored encrypted so later API calls can act on the user's behalf.
func (s *service) GoogleLogin(ctx context.Context, code string) (*UserResponse, string, string, error) {
	log := config.WithContext(ctx)

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		log.WithError(err).Warn("Google code exchange failed")
		return nil, "", "", ErrInvalidAuthCode
	}

	client := oauth2.NewClient(ctx, s.oauthConfig.TokenSource(ctx, token))
	oauthService, err := goauth2.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, "", "", fmt.Errorf("create oauth2 service: %w", err)
	}

	info, err := oauthService.Userinfo.Get().Do()
	if err != nil {
		log.WithError(err).Error("Failed to fetch Google userinfo")
		return nil, "", "", fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Id == "" || info.Email == "" {
		return nil, "", "", errors.New("google userinfo missing id or email")
	}

	encryptedAccess, err := config.Encrypt(token.AccessToken)
	if err != nil {
		return nil, "", "", fmt.Errorf("encrypt access token: %w", err)
	}

	u, err := s.repo.GetByGoogleID(info.Id)
	if err != nil {
		return nil, "", "", err
	}

	if u == nil {
		u = &User{
			GoogleID:                   info.Id,
			Email:                      info.Email,
			Name:                       info.Name,
			AvatarURL:                  info.Picture,
			Role:                       auth.RoleUser,
			Plan:                       FREE,
			EncryptedGoogleAccessToken: encryptedAccess,
		}
		if token.RefreshToken != "" {
			encryptedRefresh, err := config.Encrypt(token.RefreshToken)
			if err != nil {
				return nil, "", "", fmt.Errorf("encrypt refresh token: %w", err)
			}
			u.EncryptedGoogleRefreshToken = encryptedRefresh
		}
		if err := s.repo.Create(u); err != nil {
			return nil, "", "", err
		}
		log.Infof("New user registered: %s", u.Email)
	} else {
		u.Email = info.Email
		u.Name = info.Name
		u.AvatarURL = info.Picture
		u.EncryptedGoogleAccessToken = encryptedAccess
		if token.RefreshToken != "" {
			encryptedRefresh, err := config.Encrypt(token.RefreshToken)
			if err != nil {
				return nil, "", "", fmt.Errorf("encrypt refresh token: %w", err)
			}
			u.EncryptedGoogleRefreshToken = encryptedRefresh
		}
		if err := s.repo.Update(u); err != nil {
			return nil, "", "", err
		}
	}

	if err := s.quotaService.Provision(ctx, u.ID); err != nil {
		return nil, "", "", fmt.Errorf("provision quotas: %w", err)
	}

	accessToken, refreshToken, err := s.issueTokens(u)
	if err != nil {
		return nil, "", "", err
	}
	return s.toResponse(u), accessToken, refreshToken, nil
}

// Refresh validates the refresh token and issues a new JWT pair. The role
// is re-read from the database so revoked admins lose access on refresh.
func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := auth.ValidateJWT(refreshToken)
	if err != nil {
		return "", "", ErrInvalidRefreshToken
	}

	u, err := s.repo.GetByID(claims.UserID)
	if err != nil {
		return "", "", err
	}
	if u == nil {
		return "", "", ErrUserNotFound
	}

	return s.issueTokens(u)
}

func (s *service) GetByID(ctx context.Context, id string) (*UserResponse, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return s.toResponse(u), nil
}

func (s *service) issueTokens(u *User) (string, string, error) {
	accessToken, err := auth.GenerateJWT(u.ID.String(), u.Role, auth.AccessTokenDuration)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, err := auth.GenerateJWT(u.ID.String(), u.Role, auth.RefreshTokenDuration)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}

func (s *service) toResponse(u *User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
		Plan:      u.Plan,
		CreatedAt: u.CreatedAt,
	}
}
