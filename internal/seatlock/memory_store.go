package seatlock

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memoryRecord struct {
	userID     int64
	scheduleID int64
	expiresAt  time.Time
}

// MemoryStore is a single-process Store. Locks held here are invisible to
// other instances, so it only suits local runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

func (s *MemoryStore) CreateIfAbsent(ctx context.Context, key string, scheduleID, userID int64, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if rec, ok := s.records[key]; ok && now.Before(rec.expiresAt) {
		return false, nil
	}

	s.records[key] = memoryRecord{
		userID:     userID,
		scheduleID: scheduleID,
		expiresAt:  now.Add(ttl),
	}
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) KeysBySchedule(ctx context.Context, scheduleID int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	keys := make([]string, 0)
	for key, rec := range s.records {
		if !now.Before(rec.expiresAt) {
			delete(s.records, key)
			continue
		}
		if rec.scheduleID == scheduleID {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Holder returns the user holding key, if any.
func (s *MemoryStore) Holder(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || !s.now().Before(rec.expiresAt) {
		return "", false
	}
	return strconv.FormatInt(rec.userID, 10), true
}
