package strategy

import (
	"context"
	"errors"

	"github.com/tech-arch1tect/rememberable/services/remember"
)

const (
	PasswordStrategyName     = "database_authenticatable"
	PasswordlessStrategyName = "passwordless_authenticatable"
)

// Authenticator resolves a login to a user.
type Authenticator interface {
	FindForAuthentication(ctx context.Context, login string) (any, error)
}

// PasswordVerifier is implemented by users that can check a password.
type PasswordVerifier interface {
	VerifyPassword(password string) bool
}

type PasswordStrategy struct {
	authenticator Authenticator
	passwordless  bool
}

func NewPasswordStrategy(authenticator Authenticator) *PasswordStrategy {
	return &PasswordStrategy{authenticator: authenticator}
}

// NewPasswordlessStrategy accepts any user the login resolves to.
func NewPasswordlessStrategy(authenticator Authenticator) *PasswordStrategy {
	return &PasswordStrategy{authenticator: authenticator, passwordless: true}
}

func (s *PasswordStrategy) Name() string {
	if s.passwordless {
		return PasswordlessStrategyName
	}
	return PasswordStrategyName
}

func (s *PasswordStrategy) Valid(req *Request) bool {
	if req.Login == "" {
		return false
	}
	return s.passwordless || req.Password != ""
}

func (s *PasswordStrategy) Authenticate(ctx context.Context, req *Request) (Result, error) {
	user, err := s.authenticator.FindForAuthentication(ctx, req.Login)
	if err != nil {
		if errors.Is(err, remember.ErrUserNotFound) {
			return FailResult(ReasonInvalid), nil
		}
		return Result{}, err
	}

	if !s.passwordless {
		verifier, ok := user.(PasswordVerifier)
		if !ok || !verifier.VerifyPassword(req.Password) {
			return FailResult(ReasonInvalid), nil
		}
	}

	return SuccessResult(user), nil
}
