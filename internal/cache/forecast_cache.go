package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/smarttransit/revenue-backend/internal/models"
	"github.com/smarttransit/revenue-backend/internal/revenue"
)

const keyPrefix = "revenue:forecast:"

// ForecastCache stores forecast results keyed by their complete input
type ForecastCache struct {
	cache *cache.Cache[string]
}

// NewForecastCache creates a forecast cache on top of a redis client
func NewForecastCache(client *redis.Client, ttl time.Duration) *ForecastCache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(ttl))

	return &ForecastCache{cache: cache.New[string](redisStore)}
}

// ForecastInput is everything a forecast depends on
type ForecastInput struct {
	ServiceID   string
	Origin      string
	Destination string
	History     []revenue.DataPoint
	Pricing     []models.PricingTier
	Demand      []models.DemandEntry
}

// Key derives the cache key of a forecast input. Pricing and demand rows
// must already be in a canonical order.
func Key(input ForecastInput) (string, error) {
	payload, err := json.Marshal(struct {
		History []revenue.DataPoint  `json:"h"`
		Pricing []models.PricingTier `json:"p"`
		Demand  []models.DemandEntry `json:"d"`
	}{input.History, input.Pricing, input.Demand})
	if err != nil {
		return "", fmt.Errorf("failed to encode forecast input: %w", err)
	}

	digest := sha256.Sum256(payload)
	return fmt.Sprintf("%s%s:%s-%s:%s", keyPrefix, input.ServiceID, input.Origin, input.Destination,
		hex.EncodeToString(digest[:])), nil
}

// Get returns the cached result for key. A miss returns nil and no error.
func (c *ForecastCache) Get(ctx context.Context, key string) (*models.ForecastResult, error) {
	value, err := c.cache.Get(ctx, key)
	if err != nil {
		var notFound *store.NotFound
		if errors.As(err, &notFound) || errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read forecast cache: %w", err)
	}

	result := &models.ForecastResult{}
	if err := json.Unmarshal([]byte(value), result); err != nil {
		return nil, fmt.Errorf("failed to decode cached forecast: %w", err)
	}

	return result, nil
}

// Set stores a result under key
func (c *ForecastCache) Set(ctx context.Context, key string, result *models.ForecastResult) error {
	value, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode forecast: %w", err)
	}

	if err := c.cache.Set(ctx, key, string(value)); err != nil {
		return fmt.Errorf("failed to write forecast cache: %w", err)
	}

	return nil
}

// Invalidate drops a cached result
func (c *ForecastCache) Invalidate(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}
