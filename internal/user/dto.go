package user

import (
	"time"

	"github.com/google/uuid"
)

type GoogleLoginDTO struct {
	Code string `json:"code"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role"`
	Plan      Plan      `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}
