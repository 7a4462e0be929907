package ratelimit

import (
	"sync"
	"time"
)

// Store keeps one fixed window counter per key. Close releases whatever the
// store runs in the background.
type Store interface {
	Get(key string) (count int, resetTime time.Time, exists bool)
	Set(key string, count int, resetTime time.Time)
	Increment(key string, resetTime time.Time) (count int)
	Reset(key string)
	Close() error
}

// DefaultSweepInterval is how often a MemoryStore drops closed windows.
const DefaultSweepInterval = time.Minute

type window struct {
	count     int
	resetTime time.Time
}

// MemoryStore is a per-process Store. Closed windows are ignored on read and
// dropped by a sweeper that runs until Close.
type MemoryStore struct {
	mu      sync.RWMutex
	windows map[string]*window
	now     func() time.Time

	stop     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithInterval(DefaultSweepInterval)
}

// NewMemoryStoreWithInterval sweeps every interval. An interval <= 0 starts
// no sweeper; windows are then only replaced when their key is hit again.
func NewMemoryStoreWithInterval(interval time.Duration) *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	if interval > 0 {
		go s.sweepEvery(interval)
	} else {
		close(s.stopped)
	}

	return s
}

func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *MemoryStore) open(w *window) bool {
	return w != nil && s.now().Before(w.resetTime)
}

func (s *MemoryStore) Get(key string) (int, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if w := s.windows[key]; s.open(w) {
		return w.count, w.resetTime, true
	}
	return 0, time.Time{}, false
}

func (s *MemoryStore) Set(key string, count int, resetTime time.Time) {
	s.mu.Lock()
	s.windows[key] = &window{count: count, resetTime: resetTime}
	s.mu.Unlock()
}

func (s *MemoryStore) Increment(key string, resetTime time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w := s.windows[key]; s.open(w) {
		w.count++
		return w.count
	}

	s.windows[key] = &window{count: 1, resetTime: resetTime}
	return 1
}

func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	delete(s.windows, key)
	s.mu.Unlock()
}

// Len counts stored windows, closed ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows)
}

// Close stops the sweeper and waits for it to exit. It is safe to call more
// than once.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.stopped
	return nil
}

func (s *MemoryStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		if !s.open(w) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) sweepEvery(interval time.Duration) {
	defer close(s.stopped)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}
