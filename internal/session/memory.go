package session

import (
	"context"
	"sync"
	"time"

	"resumechat/internal/config"
	"resumechat/internal/conversation"
	"resumechat/internal/errors"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps encoded sessions in process. Entries expire after the TTL
// and a janitor goroutine sweeps them.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	logger   *errors.Logger
}

// NewMemoryStore creates an in-memory store; ttl 0 means sessions never expire
func NewMemoryStore(ttl time.Duration, logger *errors.Logger) *MemoryStore {
	if logger == nil {
		logger = errors.Discard()
	}
	ms := &MemoryStore{
		entries:  make(map[string]memoryEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
		logger:   logger,
	}
	if ttl > 0 {
		go ms.janitor(janitorInterval(ttl))
	}
	return ms
}

func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// Load implements Store
func (ms *MemoryStore) Load(_ context.Context, id string) (*conversation.Session, error) {
	ms.mu.RLock()
	entry, ok := ms.entries[id]
	ms.mu.RUnlock()

	if !ok || ms.expired(entry, time.Now()) {
		return nil, notFound(id)
	}
	return decode(entry.data)
}

// Save implements Store; every save refreshes the expiry
func (ms *MemoryStore) Save(_ context.Context, s *conversation.Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data}
	if ms.ttl > 0 {
		entry.expiresAt = time.Now().Add(ms.ttl)
	}

	ms.mu.Lock()
	ms.entries[s.ID] = entry
	ms.mu.Unlock()
	return nil
}

// Delete implements Store
func (ms *MemoryStore) Delete(_ context.Context, id string) error {
	ms.mu.Lock()
	delete(ms.entries, id)
	ms.mu.Unlock()
	return nil
}

// Kind implements Store
func (ms *MemoryStore) Kind() string {
	return config.StoreMemory
}

// Len returns the number of stored sessions, expired or not
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.entries)
}

// Close stops the janitor
func (ms *MemoryStore) Close() error {
	ms.stopOnce.Do(func() { close(ms.stopChan) })
	return nil
}

func (ms *MemoryStore) expired(entry memoryEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && now.After(entry.expiresAt)
}

func (ms *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.sweep(time.Now())
		case <-ms.stopChan:
			return
		}
	}
}

func (ms *MemoryStore) sweep(now time.Time) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	removed := 0
	for id, entry := range ms.entries {
		if ms.expired(entry, now) {
			delete(ms.entries, id)
			removed++
		}
	}
	if removed > 0 {
		ms.logger.Debug("Expired sessions removed", "count", removed)
	}
}
