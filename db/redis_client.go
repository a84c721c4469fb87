package db

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist (or has
// expired). Callers treat it as a miss, never as a failure.
var ErrCacheMiss = errors.New("cache miss")

// RedisClient defines the methods available in the Redis client.
type RedisClient interface {
	Set(key, value string) error
	SetWithTTL(key, value string, ttl time.Duration) error
	Get(key string) (string, error)
	Keys(pattern string) ([]string, error)
	Del(keys ...string) error
	DeleteByPrefix(prefixPattern string) (int, error)
	GetContext() context.Context
	Ping() error
}
