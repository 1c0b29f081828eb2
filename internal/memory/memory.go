// Package memory provides an in-memory Storage implementation with TTL
// support, used as the default backend for sessions.
package memory

import (
	"context"
	"sync"
	"time"

	leanhttp "github.com/kaito2/lean-http"
)

// item is a stored value with its expiration time.
type item struct {
	value    []byte
	expireAt time.Time
}

// Storage implements the leanhttp.Storage interface over a mutex-guarded
// map. Expired items are dropped lazily on access and periodically by a
// cleanup goroutine.
type Storage struct {
	mu    sync.RWMutex
	items map[string]item

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

// New creates a memory storage. cleanupInterval controls how often
// expired items are swept; zero or negative disables the sweeper.
func New(cleanupInterval time.Duration) *Storage {
	s := &Storage{items: make(map[string]item)}

	if cleanupInterval > 0 {
		s.cleanupTicker = time.NewTicker(cleanupInterval)
		s.stopCleanup = make(chan struct{})
		go func() {
			for {
				select {
				case <-s.cleanupTicker.C:
					s.cleanup()
				case <-s.stopCleanup:
					s.cleanupTicker.Stop()
					return
				}
			}
		}()
	}

	return s
}

func (s *Storage) cleanup() {
	now := time.Now()
	s.mu.Lock()
	for key, it := range s.items {
		if !it.expireAt.IsZero() && now.After(it.expireAt) {
			delete(s.items, key)
		}
	}
	s.mu.Unlock()
}

// Get retrieves a value for the given key.
func (s *Storage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, leanhttp.ErrKeyNotFound
	}
	if !it.expireAt.IsZero() && time.Now().After(it.expireAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, leanhttp.ErrKeyNotFound
	}
	return it.value, nil
}

// Set stores a value for the given key with an optional TTL.
func (s *Storage) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	it := item{value: value}
	if ttl > 0 {
		it.expireAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
	return nil
}

// Delete removes a key.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Clear removes all keys.
func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	s.items = make(map[string]item)
	s.mu.Unlock()
	return nil
}

// Has checks if a key exists and has not expired.
func (s *Storage) Has(_ context.Context, key string) (bool, error) {
	_, err := s.Get(context.Background(), key)
	if err == leanhttp.ErrKeyNotFound {
		return false, nil
	}
	return err == nil, err
}

// Close stops the cleanup goroutine.
func (s *Storage) Close() {
	if s.stopCleanup != nil {
		close(s.stopCleanup)
		s.stopCleanup = nil
	}
}
