package remember

import (
	"context"
	"sync"
	"time"
)

// Store persists one Record per user id. Get returns ErrNotFound when no
// record exists; Delete of an absent record is not an error. Implementations
// must be read-after-write consistent for a single key and last-writer-wins
// for concurrent Puts.
type Store interface {
	Get(ctx context.Context, userID string) (*Record, error)
	Put(ctx context.Context, record *Record) error
	Delete(ctx context.Context, userID string) error
	// Touch copies CreatedAt and ExpiresAt onto the stored record only while
	// it still holds record.Token. A revoked or replaced record yields
	// ErrNotFound and is left untouched.
	Touch(ctx context.Context, record *Record) error
}

// ExpiredPurger is implemented by stores that cannot evict expired records
// on their own.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

func (m *MemoryStore) Get(ctx context.Context, userID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	record, ok := m.records[userID]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (m *MemoryStore) Put(ctx context.Context, record *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.records[record.UserID] = *record
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.records, userID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Touch(ctx context.Context, record *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[record.UserID]
	if !ok || current.Token != record.Token {
		return ErrNotFound
	}
	current.CreatedAt = record.CreatedAt
	current.ExpiresAt = record.ExpiresAt
	m.records[record.UserID] = current
	return nil
}

func (m *MemoryStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for userID, record := range m.records {
		if record.Expired(now) {
			delete(m.records, userID)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
