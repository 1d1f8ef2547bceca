package codestore

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/foodduck/internal/common"
	"github.com/dmitrijs2005/foodduck/internal/timex"
)

type memoryItem struct {
	value   string
	expires time.Time // zero means no expiry
}

// sweepInterval bounds how often Set scans for expired keys that are never
// read again, such as revoked token ids.
const sweepInterval = time.Minute

// MemoryStore is an in-process Store used when no redis address is configured.
type MemoryStore struct {
	mu        sync.Mutex
	items     map[string]memoryItem
	now       timex.Clock
	nextSweep time.Time
}

func NewMemoryStore(now timex.Clock) *MemoryStore {
	if now == nil {
		now = timex.Now
	}
	return &MemoryStore{items: make(map[string]memoryItem), now: now}
}

func (s *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

// live returns the item under key, dropping it if expired. Caller holds mu.
func (s *MemoryStore) live(key string) (memoryItem, bool) {
	it, ok := s.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !it.expires.IsZero() && !s.now().Before(it.expires) {
		delete(s.items, key)
		return memoryItem{}, false
	}
	return it, true
}

// sweep drops every expired item. Caller holds mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	if now.Before(s.nextSweep) {
		return
	}
	for k, it := range s.items {
		if !it.expires.IsZero() && !now.Before(it.expires) {
			delete(s.items, k)
		}
	}
	s.nextSweep = now.Add(sweepInterval)
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	s.items[key] = memoryItem{value: value, expires: s.expiry(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.live(key)
	if !ok {
		return "", common.ErrorNotFound
	}
	return it.value, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.live(key)
	if !ok {
		return nil
	}
	if ttl <= 0 {
		delete(s.items, key)
		return nil
	}
	it.expires = s.expiry(ttl)
	s.items[key] = it
	return nil
}
