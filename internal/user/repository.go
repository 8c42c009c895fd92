package user

import (
	"errors"

	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(id string) (*User, error)
	GetByGoogleID(googleID string) (*User, error)
	Create(u *User) error
	Update(u *User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID returns (nil, nil) when no user exists, not an error. Callers
// treat the nil user as not-found.
func (r *userRepository) GetByID(id string) (*User, error) {
	var u User
	if err := r.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByGoogleID(googleID string) (*User, error) {
	var u User
	if err := r.db.First(&u, "google_id = ?", googleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(u *User) error {
	return r.db.Create(u).Error
}

func (r *userRepository) Update(u *User) error {
	return r.db.Save(u).Error
}
