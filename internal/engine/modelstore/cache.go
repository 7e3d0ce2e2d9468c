// internal/engine/modelstore/cache.go
package modelstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"scholarship-engine/internal/common/logger"
	"scholarship-engine/internal/common/metrics"
	"scholarship-engine/internal/models"
)

// CachedStore wraps a Store with a read-through Redis cache of the active
// model per scope. Activation and deactivation go through this type and evict
// the affected scope key in the same call, so cache invalidation is
// structurally tied to the only write paths; callers never clear the cache
// by hand.
type CachedStore struct {
	store  Store
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(store Store, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		store:  store,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "modelcache"}),
	}
}

func cacheKey(scope models.Scope) string {
	return "model:active:" + scope.Key()
}

// Activate persists the model as the single active model of its scope and
// evicts the cached entry for that scope.
func (c *CachedStore) Activate(ctx context.Context, model *models.TrainedModel) error {
	if err := c.store.SaveAndActivate(ctx, model); err != nil {
		return err
	}

	if err := c.redis.Del(ctx, cacheKey(model.Scope)).Err(); err != nil {
		// The DB swap already happened; the stale entry expires with its TTL.
		c.logger.Warn("failed to evict cached model", map[string]interface{}{
			"scope": model.Scope.Key(),
			"error": err,
		})
	}

	metrics.ModelActivationsTotal.WithLabelValues(model.Scope.Key()).Inc()
	return nil
}

// Deactivate administratively deactivates a model and evicts its scope entry.
func (c *CachedStore) Deactivate(ctx context.Context, modelID string) error {
	scope, err := c.store.Deactivate(ctx, modelID)
	if err != nil {
		return err
	}

	if err := c.redis.Del(ctx, cacheKey(scope)).Err(); err != nil {
		c.logger.Warn("failed to evict cached model", map[string]interface{}{
			"scope": scope.Key(),
			"error": err,
		})
	}

	return nil
}

// ActiveModel returns the active model for the scope through the cache, or
// nil when the scope has none. Cache failures fall back to storage.
func (c *CachedStore) ActiveModel(ctx context.Context, scope models.Scope) (*models.TrainedModel, error) {
	key := cacheKey(scope)

	if val, err := c.redis.Get(ctx, key).Result(); err == nil {
		var model models.TrainedModel
		if err := json.Unmarshal([]byte(val), &model); err == nil {
			metrics.WeightCacheHits.Inc()
			return &model, nil
		}
	}
	metrics.WeightCacheMisses.Inc()

	model, err := c.store.ActiveModel(ctx, scope)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, nil
	}

	if data, err := json.Marshal(model); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("failed to cache model", map[string]interface{}{
				"scope": scope.Key(),
				"error": err,
			})
		}
	}

	return model, nil
}

// ListByScope passes through to storage; listings are admin traffic and not
// worth caching.
func (c *CachedStore) ListByScope(ctx context.Context, scope models.Scope) ([]models.TrainedModel, error) {
	return c.store.ListByScope(ctx, scope)
}
