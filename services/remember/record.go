package remember

import (
	"time"
)

// DefaultTTL is used when neither the caller nor the user class names a period.
const DefaultTTL = 14 * 24 * time.Hour

// Record is the single active remember token of a user.
type Record struct {
	UserID      string        `json:"user_id" gorm:"primaryKey;size:191"`
	Token       string        `json:"token" gorm:"size:255;not null"`
	CreatedAt   time.Time     `json:"created_at" gorm:"not null;autoCreateTime:false"`
	ExtendOnUse bool          `json:"extend_on_use" gorm:"not null"`
	TTL         time.Duration `json:"ttl" gorm:"not null"`
	ExpiresAt   time.Time     `json:"expires_at" gorm:"not null;index"`
}

func (Record) TableName() string {
	return "remember_records"
}

// Expired reports whether now is at or past CreatedAt + TTL.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.CreatedAt.Add(r.TTL))
}

func (r *Record) touch(now time.Time) {
	r.CreatedAt = now
	r.ExpiresAt = now.Add(r.TTL)
}

type IssueOptions struct {
	ExtendOnUse bool
	TTL         time.Duration
}

// Rememberable is implemented by user types that can be remembered.
type Rememberable interface {
	RememberID() string
}

// RememberPeriodProvider lets a user class override the remember TTL.
type RememberPeriodProvider interface {
	RememberFor() time.Duration
}

// ExtendOnUseProvider lets a user class opt into sliding expiry.
type ExtendOnUseProvider interface {
	ExtendRememberPeriod() bool
}
