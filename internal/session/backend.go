package session

import (
	"errors"
	"sync"
)

// Well-known keys of the session record.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeyRole         = "userRole"
)

// Keys lists every key of the session record.
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyUser, KeyRole}

// ErrNotFound is returned by a Backend when a key has no value.
var ErrNotFound = errors.New("session key not found")

// Backend is durable, synchronous key-value storage. Implementations may fail
// (disk full, permissions, server down); callers treat failures as absence.
type Backend interface {
	Load(key string) (string, error)
	Save(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// MemoryBackend keeps the record in process memory.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Load(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryBackend) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
