package remember

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"go.uber.org/zap"
)

// Directory materializes users for successful validations. Find returns
// ErrUserNotFound when the user no longer exists.
type Directory interface {
	Find(ctx context.Context, userID string) (any, error)
}

// Service issues, validates and revokes remember tokens. It holds no
// per-user state of its own: every call goes to the store.
type Service struct {
	config    *config.RememberConfig
	store     Store
	directory Directory
	logger    *logging.Service
	now       func() time.Time
}

func NewService(cfg *config.RememberConfig, store Store, directory Directory, logger *logging.Service) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.TokenLength <= 0 {
		cfg.TokenLength = 32
	}
	return &Service{
		config:    cfg,
		store:     store,
		directory: directory,
		logger:    logger.Named("remember"),
		now:       time.Now,
	}
}

// SetClock replaces the time source used for issuance and expiry checks.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) IsEnabled() bool {
	return s.config.Enabled
}

func (s *Service) DefaultTTL() time.Duration {
	return s.config.TTL
}

func (s *Service) generateToken() (string, error) {
	bytes := make([]byte, s.config.TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func storeFailure(err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// Issue replaces any record held for userID with a freshly generated token.
func (s *Service) Issue(ctx context.Context, userID string, opts IssueOptions) (*Record, error) {
	if !s.config.Enabled {
		s.logger.Warn("remember token issuance attempted but feature is disabled", zap.String("user_id", userID))
		return nil, ErrDisabled
	}
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = s.config.TTL
	}

	token, err := s.generateToken()
	if err != nil {
		s.logger.Error("failed to generate remember token", zap.Error(err), zap.String("user_id", userID))
		return nil, err
	}

	record := &Record{
		UserID:      userID,
		Token:       token,
		ExtendOnUse: opts.ExtendOnUse,
		TTL:         ttl,
	}
	record.touch(s.now().UTC())

	if err := s.store.Put(ctx, record); err != nil {
		s.logger.Error("failed to persist remember record", zap.Error(err), zap.String("user_id", userID))
		return nil, storeFailure(err)
	}

	s.logger.Info("remember token issued",
		zap.String("user_id", userID),
		zap.Bool("extend_on_use", record.ExtendOnUse),
		zap.Time("expires_at", record.ExpiresAt))
	return record, nil
}

// IssueFor issues a token using the user's own remember policy when the user
// type provides one, and the configured defaults otherwise.
func (s *Service) IssueFor(ctx context.Context, user Rememberable) (*Record, error) {
	opts := IssueOptions{
		ExtendOnUse: s.config.ExtendOnUse,
		TTL:         s.config.TTL,
	}
	if p, ok := user.(RememberPeriodProvider); ok {
		if ttl := p.RememberFor(); ttl > 0 {
			opts.TTL = ttl
		}
	}
	if p, ok := user.(ExtendOnUseProvider); ok {
		opts.ExtendOnUse = p.ExtendRememberPeriod()
	}
	return s.Issue(ctx, user.RememberID(), opts)
}

// Validate checks the presented token against the stored record and returns
// the remembered user. Expired records are deleted. When the record extends
// on use its timestamp is refreshed.
func (s *Service) Validate(ctx context.Context, userID, token string) (any, error) {
	user, _, err := s.ValidateRecord(ctx, userID, token)
	return user, err
}

// ValidateRecord is Validate that also returns the record as stored after
// the call, so callers can see a refreshed expiry.
func (s *Service) ValidateRecord(ctx context.Context, userID, token string) (any, *Record, error) {
	if !s.config.Enabled {
		return nil, nil, ErrDisabled
	}
	if s.directory == nil {
		return nil, nil, errors.New("user directory is required for remember validation")
	}

	record, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Debug("no remember record for user", zap.String("user_id", userID))
			return nil, nil, ErrNotFound
		}
		s.logger.Error("failed to read remember record", zap.Error(err), zap.String("user_id", userID))
		return nil, nil, storeFailure(err)
	}

	now := s.now().UTC()

	if record.Expired(now) {
		s.logger.Info("expired remember token presented, purging",
			zap.String("user_id", userID),
			zap.Time("expired_at", record.CreatedAt.Add(record.TTL)))
		if err := s.store.Delete(ctx, userID); err != nil {
			s.logger.Error("failed to purge expired remember record", zap.Error(err), zap.String("user_id", userID))
			return nil, nil, storeFailure(err)
		}
		return nil, nil, ErrExpired
	}

	if subtle.ConstantTimeCompare([]byte(record.Token), []byte(token)) != 1 {
		s.logger.Warn("remember token mismatch", zap.String("user_id", userID))
		return nil, nil, ErrMismatch
	}

	if record.ExtendOnUse {
		record.touch(now)
		if err := s.store.Touch(ctx, record); err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.Info("remember record revoked or replaced during validation", zap.String("user_id", userID))
				return nil, nil, ErrNotFound
			}
			s.logger.Error("failed to extend remember record", zap.Error(err), zap.String("user_id", userID))
			return nil, nil, storeFailure(err)
		}
		s.logger.Debug("remember period extended",
			zap.String("user_id", userID),
			zap.Time("expires_at", record.ExpiresAt))
	}

	user, err := s.directory.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Warn("remembered user no longer exists", zap.String("user_id", userID))
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to load remembered user: %w", err)
	}

	s.logger.Debug("remember token validated", zap.String("user_id", userID))
	return user, record, nil
}

// Revoke removes the record for userID. Revoking an absent record succeeds.
func (s *Service) Revoke(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		s.logger.Error("failed to revoke remember record", zap.Error(err), zap.String("user_id", userID))
		return storeFailure(err)
	}

	s.logger.Info("remember token revoked", zap.String("user_id", userID))
	return nil
}

// PurgeExpired removes expired records from stores that keep them around.
// Stores with native expiry report zero.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	purger, ok := s.store.(ExpiredPurger)
	if !ok {
		return 0, nil
	}

	removed, err := purger.PurgeExpired(ctx, s.now().UTC())
	if err != nil {
		s.logger.Error("failed to purge expired remember records", zap.Error(err))
		return 0, storeFailure(err)
	}

	if removed > 0 {
		s.logger.Info("expired remember records purged", zap.Int64("records_removed", removed))
	}
	return removed, nil
}

// StartCleanupWorker runs PurgeExpired every interval until ctx is done.
func (s *Service) StartCleanupWorker(ctx context.Context, interval time.Duration) {
	if _, ok := s.store.(ExpiredPurger); !ok || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
					s.logger.Error("remember cleanup worker failed", zap.Error(err))
				}
			}
		}
	}()

	s.logger.Info("started remember cleanup worker", zap.Duration("interval", interval))
}
