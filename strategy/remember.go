package strategy

import (
	"context"
	"errors"

	"github.com/tech-arch1tect/rememberable/services/remember"
)

const RememberStrategyName = "rememberable"

// RememberStrategy authenticates from a remember credential. Stale or
// unknown credentials pass to the next strategy and are flagged for removal.
type RememberStrategy struct {
	service *remember.Service
}

func NewRememberStrategy(service *remember.Service) *RememberStrategy {
	return &RememberStrategy{service: service}
}

func (s *RememberStrategy) Name() string {
	return RememberStrategyName
}

func (s *RememberStrategy) Valid(req *Request) bool {
	return req.Remember != nil && req.Remember.UserID != "" && req.Remember.Token != ""
}

func (s *RememberStrategy) Authenticate(ctx context.Context, req *Request) (Result, error) {
	user, record, err := s.service.ValidateRecord(ctx, req.Remember.UserID, req.Remember.Token)
	if err != nil {
		if remember.IsRecoverable(err) || errors.Is(err, remember.ErrDisabled) {
			result := PassResult()
			result.ClearRemember = true
			return result, nil
		}
		return Result{}, err
	}

	result := SuccessResult(user)
	if record.ExtendOnUse {
		result.Issued = grantFor(record)
	}
	return result, nil
}

func grantFor(record *remember.Record) *RememberGrant {
	return &RememberGrant{
		UserID:    record.UserID,
		Token:     record.Token,
		ExpiresAt: record.ExpiresAt.Unix(),
	}
}

// RememberHook issues a remember token after a successful login when the
// request asked to be remembered. Logins made from a remember credential
// keep their existing token.
func RememberHook(service *remember.Service) Hook {
	return func(ctx context.Context, req *Request, result *Result) error {
		if !req.RememberMe || result.Strategy == RememberStrategyName || !service.IsEnabled() {
			return nil
		}

		user, ok := result.User.(remember.Rememberable)
		if !ok {
			return nil
		}

		record, err := service.IssueFor(ctx, user)
		if err != nil {
			return err
		}

		result.Issued = grantFor(record)
		result.ClearRemember = false
		return nil
	}
}
