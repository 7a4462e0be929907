package users

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:36"`
	Email              string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash       string    `json:"-" gorm:"size:255"`
	RememberForSeconds int64     `json:"-"`
	ExtendRemember     bool      `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) RememberID() string {
	return u.ID
}

// RememberFor returns the per-user remember period; zero means the
// configured default applies.
func (u *User) RememberFor() time.Duration {
	return time.Duration(u.RememberForSeconds) * time.Second
}

func (u *User) ExtendRememberPeriod() bool {
	return u.ExtendRemember
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
// Users without a password never verify.
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
