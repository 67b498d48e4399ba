package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mrpcore/backend/internal/domain/planning"
)

const defaultSettingsTTL = 5 * time.Minute

// RedisSettingsCache is a read-through cache in front of a SettingsProvider.
// Organization workflow settings are read on every submit and on every bulk
// run, so they are cached with a short TTL. Cache failures fall through to
// the inner provider: a broken Redis never blocks the workflow.
type RedisSettingsCache struct {
	client *redis.Client
	inner  planning.SettingsProvider
	ttl    time.Duration
	logger *zap.Logger
}

// RedisSettingsCacheOption is a functional option for configuring the cache
type RedisSettingsCacheOption func(*RedisSettingsCache)

// WithSettingsTTL sets the cache entry lifetime
func WithSettingsTTL(ttl time.Duration) RedisSettingsCacheOption {
	return func(c *RedisSettingsCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSettingsLogger sets the logger for the cache
func WithSettingsLogger(logger *zap.Logger) RedisSettingsCacheOption {
	return func(c *RedisSettingsCache) {
		c.logger = logger
	}
}

// NewRedisSettingsCache creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisSettingsCache(client *redis.Client, inner planning.SettingsProvider, opts ...RedisSettingsCacheOption) *RedisSettingsCache {
	cache := &RedisSettingsCache{
		client: client,
		inner:  inner,
		ttl:    defaultSettingsTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

func settingsCacheKey(orgID uuid.UUID) string {
	return fmt.Sprintf("planning_settings:%s", orgID)
}

// GetPlanningSettings returns the organization's workflow settings,
// serving from cache when possible
func (c *RedisSettingsCache) GetPlanningSettings(ctx context.Context, orgID uuid.UUID) (*planning.PlanningSettings, error) {
	key := settingsCacheKey(orgID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var settings planning.PlanningSettings
		if jsonErr := json.Unmarshal(data, &settings); jsonErr == nil {
			return &settings, nil
		}
		// Corrupted entry, drop it and reload
		c.logger.Warn("Dropping corrupted settings cache entry",
			zap.String("org_id", orgID.String()))
		_ = c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Error("Failed to read settings from cache",
			zap.String("org_id", orgID.String()),
			zap.Error(err))
	}

	settings, err := c.inner.GetPlanningSettings(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(settings); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			c.logger.Error("Failed to cache settings",
				zap.String("org_id", orgID.String()),
				zap.Error(setErr))
		}
	}
	return settings, nil
}

// Invalidate removes the cached settings for one organization. Called when
// the organization changes its approval configuration.
func (c *RedisSettingsCache) Invalidate(ctx context.Context, orgID uuid.UUID) error {
	if err := c.client.Del(ctx, settingsCacheKey(orgID)).Err(); err != nil {
		c.logger.Error("Failed to invalidate settings cache",
			zap.String("org_id", orgID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to invalidate settings cache: %w", err)
	}
	return nil
}

var _ planning.SettingsProvider = (*RedisSettingsCache)(nil)
