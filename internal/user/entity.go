package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GoogleID                    string    `gorm:"column:google_id;uniqueIndex;not null" json:"-"`
	Email                       string    `gorm:"uniqueIndex;not null" json:"email"`
	Name                        string    `json:"name"`
	AvatarURL                   string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Role                        string    `gorm:"not null;default:user" json:"role"`
	Plan                        Plan      `gorm:"not null;default:FREE" json:"plan"`
	EncryptedGoogleAccessToken  string    `json:"-"`
	EncryptedGoogleRefreshToken string    `json:"-"`
	CreatedAt                   time.Time `json:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
