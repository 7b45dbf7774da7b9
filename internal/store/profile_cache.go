package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/models"
)

const profileKeyPrefix = "profile:"

// CachedProfiles reads profiles through Redis. Cache failures never fail a
// read; they fall through to the repository.
type CachedProfiles struct {
	repo   ProfileReader
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedProfiles(repo ProfileReader, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedProfiles {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedProfiles{repo: repo, redis: rdb, ttl: ttl, logger: log}
}

func ProfileKey(studentID string) string {
	return profileKeyPrefix + studentID
}

func (c *CachedProfiles) Get(ctx context.Context, studentID string) (*models.Profile, error) {
	key := ProfileKey(studentID)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var p models.Profile
		if err := json.Unmarshal([]byte(val), &p); err == nil {
			return &p, nil
		}
		c.logger.Warn("discarding unreadable cached profile", map[string]interface{}{"studentId": studentID})
	case !errors.Is(err, redis.Nil):
		c.logger.Debug("profile cache unavailable", map[string]interface{}{
			"studentId": studentID,
			"error":     err.Error(),
		})
	}

	p, err := c.repo.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Debug("failed to cache profile", map[string]interface{}{
				"studentId": studentID,
				"error":     err.Error(),
			})
		}
	}
	return p, nil
}

// Invalidate drops the cached snapshot so the next read goes to Postgres.
func (c *CachedProfiles) Invalidate(ctx context.Context, studentID string) error {
	return c.redis.Del(ctx, ProfileKey(studentID)).Err()
}
