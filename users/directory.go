package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tech-arch1tect/rememberable/services/remember"
	"gorm.io/gorm"
)

// GormDirectory looks users up in the users table.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) Find(ctx context.Context, userID string) (any, error) {
	var user User
	if err := d.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, remember.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// FindForAuthentication resolves a login (email, case-insensitive).
func (d *GormDirectory) FindForAuthentication(ctx context.Context, login string) (any, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return nil, remember.ErrUserNotFound
	}

	var user User
	if err := d.db.WithContext(ctx).Where("email = ?", login).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, remember.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (d *GormDirectory) Create(ctx context.Context, email, password string, cost int) (*User, error) {
	user := &User{Email: strings.ToLower(strings.TrimSpace(email))}
	if password != "" {
		hash, err := HashPassword(password, cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
