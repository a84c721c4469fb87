package db

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MockRedisClient simulates a Redis client for testing purposes. Expiry is
// evaluated against NowFunc so tests can control TTL behavior.
type MockRedisClient struct {
	data    map[string]string
	expiry  map[string]time.Time
	mu      sync.RWMutex
	context context.Context

	// NowFunc supplies the clock used for TTL checks.
	NowFunc func() time.Time

	// Error overrides to simulate an unavailable cache.
	GetErr error
	SetErr error
	DelErr error
}

// NewMockRedisClient initializes a new MockRedisClient.
func NewMockRedisClient(ctx context.Context) *MockRedisClient {
	return &MockRedisClient{
		data:    make(map[string]string),
		expiry:  make(map[string]time.Time),
		context: ctx,
		NowFunc: time.Now,
	}
}

// Set stores a key-value pair without expiry.
func (m *MockRedisClient) Set(key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	delete(m.expiry, key)
	return nil
}

// SetWithTTL stores a key-value pair expiring after ttl.
func (m *MockRedisClient) SetWithTTL(key, value string, ttl time.Duration) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.expiry[key] = m.NowFunc().Add(ttl)
	return nil
}

// Get retrieves a value for a given key, honoring expiry.
func (m *MockRedisClient) Get(key string) (string, error) {
	if m.GetErr != nil {
		return "", m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.data[key]
	if !exists {
		return "", ErrCacheMiss
	}
	if deadline, ok := m.expiry[key]; ok && m.NowFunc().After(deadline) {
		return "", ErrCacheMiss
	}
	return value, nil
}

// Keys lists stored keys matching the pattern. Only the trailing-* form used
// by the DAOs is supported.
func (m *MockRedisClient) Keys(pattern string) ([]string, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := strings.TrimSuffix(pattern, "*")
	keys := []string{}
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Del deletes the given keys.
func (m *MockRedisClient) Del(keys ...string) error {
	if m.DelErr != nil {
		return m.DelErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		delete(m.expiry, k)
	}
	return nil
}

// DeleteByPrefix deletes every key matching the prefix pattern.
func (m *MockRedisClient) DeleteByPrefix(prefixPattern string) (int, error) {
	keys, err := m.Keys(prefixPattern)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := m.Del(keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// GetContext returns the mock Redis client's context.
func (m *MockRedisClient) GetContext() context.Context {
	return m.context
}

// Ping simulates a Redis Ping operation.
func (m *MockRedisClient) Ping() error {
	return nil
}
