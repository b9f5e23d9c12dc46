// Package session keeps the signed-in identity of a dashboard client: the
// bearer token and user record, stored under the same keys the browser
// front end keeps in local storage.
package session

import (
	"sync"
)

// Storage keys.
const (
	KeyAccessToken     = "accessToken"
	KeyUser            = "user"
	KeyIsAuthenticated = "isAuthenticated"
)

// Storage is a flat string key/value store, the shape of browser local storage.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStorage is a Storage that lives as long as the process or, on the
// web server, as long as one browser session.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
