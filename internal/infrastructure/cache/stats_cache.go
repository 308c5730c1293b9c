package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appreport "github.com/sparesuite/backend/internal/application/report"
	"github.com/sparesuite/backend/internal/infrastructure/config"
)

// RedisStatsCache caches assembled purchase stats snapshots per tenant.
// A miss or redis failure is always treated as a miss so the service can
// fall back to the database.
type RedisStatsCache struct {
	client     *redis.Client
	ttl        time.Duration
	ownsClient bool
	logger     *zap.Logger
}

// NewRedisStatsCache connects to redis and returns a stats cache
func NewRedisStatsCache(cfg config.RedisConfig, logger *zap.Logger) (*RedisStatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStatsCache{
		client:     client,
		ttl:        cfg.StatsTTL,
		ownsClient: true,
		logger:     logger,
	}, nil
}

// NewRedisStatsCacheWithClient wraps an existing client. The caller keeps
// ownership and closes it.
func NewRedisStatsCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStatsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStatsCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func statsKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("purchase_stats:%s", tenantID)
}

// GetStats loads a cached snapshot into out, reporting whether it hit
func (c *RedisStatsCache) GetStats(ctx context.Context, tenantID uuid.UUID, out *appreport.PurchaseStatsResponse) (bool, error) {
	data, err := c.client.Get(ctx, statsKey(tenantID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.logger.Warn("stats cache read failed", zap.Error(err))
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// SetStats stores the snapshot with the configured TTL
func (c *RedisStatsCache) SetStats(ctx context.Context, tenantID uuid.UUID, stats *appreport.PurchaseStatsResponse) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(tenantID), data, c.ttl).Err()
}

// InvalidateTenant drops the tenant's snapshot after a write
func (c *RedisStatsCache) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	return c.client.Del(ctx, statsKey(tenantID)).Err()
}

// Close closes the redis client if this cache owns it
func (c *RedisStatsCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}
