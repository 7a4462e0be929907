package remember

import "errors"

var (
	ErrNotFound         = errors.New("remember record not found")
	ErrExpired          = errors.New("remember record has expired")
	ErrMismatch         = errors.New("remember token does not match")
	ErrStoreUnavailable = errors.New("remember store unavailable")
	ErrUserNotFound     = errors.New("remembered user not found")
	ErrDisabled         = errors.New("remember me functionality is disabled")
	ErrEmptyUserID      = errors.New("user id is required")
)

// IsRecoverable reports whether err is an expected outcome after which the
// caller should fall back to full credential authentication.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrMismatch) ||
		errors.Is(err, ErrUserNotFound)
}
