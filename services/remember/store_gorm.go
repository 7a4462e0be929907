package remember

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps records in the remember_records table keyed by user_id.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, userID string) (*Record, error) {
	var record Record
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load remember record: %w", err)
	}
	return &record, nil
}

func (s *GormStore) Put(ctx context.Context, record *Record) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "created_at", "extend_on_use", "ttl", "expires_at"}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to store remember record: %w", err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Record{}).Error; err != nil {
		return fmt.Errorf("failed to delete remember record: %w", err)
	}
	return nil
}

func (s *GormStore) Touch(ctx context.Context, record *Record) error {
	result := s.db.WithContext(ctx).Model(&Record{}).
		Where("user_id = ? AND token = ?", record.UserID, record.Token).
		Updates(map[string]any{
			"created_at": record.CreatedAt,
			"expires_at": record.ExpiresAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to refresh remember record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&Record{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired remember records: %w", result.Error)
	}
	return result.RowsAffected, nil
}
