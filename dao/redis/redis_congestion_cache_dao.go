package redis

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"congestion-server/db"
)

// CONGESTION_BASE_KEY_FORMAT keys a cached base score by place id, weekday
// (0=Monday..6=Sunday) and hour (0-23).
const CONGESTION_BASE_KEY_FORMAT = "congestion_base_v1:%s:%d:%d"

// CONGESTION_BASE_VENUE_PREFIX_FORMAT matches every cached bucket of a venue.
const CONGESTION_BASE_VENUE_PREFIX_FORMAT = "congestion_base_v1:%s:*"

// RedisCongestionCacheDAO stores cached base congestion scores in Redis.
type RedisCongestionCacheDAO struct {
	client db.RedisClient
}

// NewRedisCongestionCacheDAO initializes the cache DAO with the Redis client.
func NewRedisCongestionCacheDAO(client db.RedisClient) *RedisCongestionCacheDAO {
	return &RedisCongestionCacheDAO{client: client}
}

// GetBaseScore retrieves the cached base score for a bucket. The second
// return value reports a hit; errors other than a miss are surfaced so the
// caller can decide to degrade.
func (dao *RedisCongestionCacheDAO) GetBaseScore(placeID string, weekday, hour int) (int, bool, error) {
	key := fmt.Sprintf(CONGESTION_BASE_KEY_FORMAT, placeID, weekday, hour)
	str, err := dao.client.Get(key)
	if errors.Is(err, db.ErrCacheMiss) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get base score from redis: %w", err)
	}
	score, err := strconv.Atoi(str)
	if err != nil {
		// A corrupt entry behaves like a miss; it will be overwritten.
		return 0, false, nil
	}
	return score, true, nil
}

// SetBaseScore caches the base score for a bucket with the given TTL.
func (dao *RedisCongestionCacheDAO) SetBaseScore(placeID string, weekday, hour, score int, ttl time.Duration) error {
	key := fmt.Sprintf(CONGESTION_BASE_KEY_FORMAT, placeID, weekday, hour)
	if err := dao.client.SetWithTTL(key, strconv.Itoa(score), ttl); err != nil {
		return fmt.Errorf("failed to set base score in redis: %w", err)
	}
	return nil
}

// InvalidateVenue deletes every cached base-score bucket for a venue and
// returns the number of keys removed. Idempotent; zero matches is fine.
func (dao *RedisCongestionCacheDAO) InvalidateVenue(placeID string) (int, error) {
	pattern := fmt.Sprintf(CONGESTION_BASE_VENUE_PREFIX_FORMAT, placeID)
	deleted, err := dao.client.DeleteByPrefix(pattern)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate base scores for %s: %w", placeID, err)
	}
	return deleted, nil
}
