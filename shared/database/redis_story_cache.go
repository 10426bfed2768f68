package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fallen-dragon-server/shared/interfaces"
	"fallen-dragon-server/shared/models"
)

var (
	_ interfaces.StoryRepository = (*RedisStoryCache)(nil)
	_ interfaces.StoryCache      = (*RedisStoryCache)(nil)
)

// RedisStoryCache caches act lookups of a StoryRepository in Redis.
// Every other method goes straight to the wrapped repository.
// Redis failures are logged and the lookup falls back to the database.
type RedisStoryCache struct {
	interfaces.StoryRepository

	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStoryCache wraps next with a Redis read-through cache for acts.
func NewRedisStoryCache(next interfaces.StoryRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStoryCache {
	return &RedisStoryCache{
		StoryRepository: next,
		client:          client,
		ttl:             ttl,
		logger:          logger.Named("RedisStoryCache"),
	}
}

func actCacheKey(storyID int64, actNumber int) string {
	return fmt.Sprintf("story:%d:act:%d", storyID, actNumber)
}

func storyActsIndexKey(storyID int64) string {
	return fmt.Sprintf("story:%d:acts", storyID)
}

// GetActByNumber serves the act from Redis when cached, otherwise loads it
// from the wrapped repository and caches it.
func (c *RedisStoryCache) GetActByNumber(ctx context.Context, querier interfaces.DBTX, storyID int64, actNumber int) (*models.Act, error) {
	key := actCacheKey(storyID, actNumber)
	logFields := []zap.Field{zap.String("key", key)}

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var act models.Act
		jsonErr := json.Unmarshal(data, &act)
		if jsonErr == nil {
			return &act, nil
		}
		c.logger.Warn("Dropping undecodable cached act", append(logFields, zap.Error(jsonErr))...)
	case errors.Is(err, redis.Nil):
		// miss
	default:
		c.logger.Warn("Redis get failed, falling back to database", append(logFields, zap.Error(err))...)
	}

	act, err := c.StoryRepository.GetActByNumber(ctx, querier, storyID, actNumber)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, act)
	return act, nil
}

func (c *RedisStoryCache) store(ctx context.Context, key string, act *models.Act) {
	data, err := json.Marshal(act)
	if err != nil {
		c.logger.Error("Failed to marshal act for cache", zap.String("key", key), zap.Error(err))
		return
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, string(data), c.ttl)
	pipe.SAdd(ctx, storyActsIndexKey(act.StoryID), key)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("Failed to cache act", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateStory drops every cached act of the story.
func (c *RedisStoryCache) InvalidateStory(ctx context.Context, storyID int64) error {
	indexKey := storyActsIndexKey(storyID)

	keys, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		c.logger.Error("Failed to read story cache index", zap.Int64("storyID", storyID), zap.Error(err))
		return fmt.Errorf("failed to read story cache index: %w", err)
	}
	keys = append(keys, indexKey)

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("Failed to invalidate story cache", zap.Int64("storyID", storyID), zap.Error(err))
		return fmt.Errorf("failed to invalidate story cache: %w", err)
	}
	c.logger.Info("Story cache invalidated", zap.Int64("storyID", storyID), zap.Int("keys", len(keys)))
	return nil
}
