package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrpcore/backend/internal/domain/planning"
)

// InMemorySettingsCache is a process-local read-through cache over a
// SettingsProvider. Used when no Redis is configured, e.g. in development
// and in single-instance deployments.
type InMemorySettingsCache struct {
	entries sync.Map // map[uuid.UUID]*settingsEntry
	inner   planning.SettingsProvider
	ttl     time.Duration
	logger  *zap.Logger

	hits   int64
	misses int64
}

type settingsEntry struct {
	value     *planning.PlanningSettings
	expiresAt time.Time
}

func (e *settingsEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemorySettingsCacheOption is a functional option for configuring the cache
type InMemorySettingsCacheOption func(*InMemorySettingsCache)

// WithInMemorySettingsTTL sets the cache entry lifetime
func WithInMemorySettingsTTL(ttl time.Duration) InMemorySettingsCacheOption {
	return func(c *InMemorySettingsCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemorySettingsLogger sets the logger for the cache
func WithInMemorySettingsLogger(logger *zap.Logger) InMemorySettingsCacheOption {
	return func(c *InMemorySettingsCache) {
		c.logger = logger
	}
}

// NewInMemorySettingsCache creates a new in-memory settings cache
func NewInMemorySettingsCache(inner planning.SettingsProvider, opts ...InMemorySettingsCacheOption) *InMemorySettingsCache {
	cache := &InMemorySettingsCache{
		inner:  inner,
		ttl:    defaultSettingsTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// GetPlanningSettings returns the organization's workflow settings,
// serving from cache when possible
func (c *InMemorySettingsCache) GetPlanningSettings(ctx context.Context, orgID uuid.UUID) (*planning.PlanningSettings, error) {
	if value, ok := c.entries.Load(orgID); ok {
		entry := value.(*settingsEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.value, nil
		}
		c.entries.Delete(orgID)
	}
	atomic.AddInt64(&c.misses, 1)

	settings, err := c.inner.GetPlanningSettings(ctx, orgID)
	if err != nil {
		return nil, err
	}
	c.entries.Store(orgID, &settingsEntry{
		value:     settings,
		expiresAt: time.Now().Add(c.ttl),
	})
	return settings, nil
}

// Invalidate removes the cached settings for one organization
func (c *InMemorySettingsCache) Invalidate(ctx context.Context, orgID uuid.UUID) error {
	c.entries.Delete(orgID)
	return nil
}

// Stats returns hit and miss counters
func (c *InMemorySettingsCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

var _ planning.SettingsProvider = (*InMemorySettingsCache)(nil)
