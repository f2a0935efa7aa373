package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mesa/internal/models"
)

type CacheService interface {
	// Item caching
	GetItem(ctx context.Context, businessID, itemID uuid.UUID) (*models.InventoryItem, error)
	SetItem(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem, ttl time.Duration) error
	DeleteItem(ctx context.Context, businessID, itemID uuid.UUID) error

	// Dashboard stats caching
	GetStats(ctx context.Context, businessID uuid.UUID) (*models.InventoryStats, error)
	SetStats(ctx context.Context, businessID uuid.UUID, stats *models.InventoryStats, ttl time.Duration) error
	DeleteStats(ctx context.Context, businessID uuid.UUID) error

	// Cache invalidation
	InvalidateBusinessCache(ctx context.Context, businessID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations for refresh-token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	// Ping reports cache reachability for health checks.
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		zap.L().Warn("Redis ping failed on initialization", zap.String("addr", parsedAddr), zap.Error(pingErr))
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetItem(ctx context.Context, businessID, itemID uuid.UUID) (*models.InventoryItem, error) {
	key := fmt.Sprintf("mesa:item:%s:%s", businessID.String(), itemID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var item models.InventoryItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *redisCacheService) SetItem(ctx context.Context, businessID uuid.UUID, item *models.InventoryItem, ttl time.Duration) error {
	key := fmt.Sprintf("mesa:item:%s:%s", businessID.String(), item.ID.String())
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteItem(ctx context.Context, businessID, itemID uuid.UUID) error {
	key := fmt.Sprintf("mesa:item:%s:%s", businessID.String(), itemID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetStats(ctx context.Context, businessID uuid.UUID) (*models.InventoryStats, error) {
	key := fmt.Sprintf("mesa:stats:%s", businessID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var stats models.InventoryStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetStats(ctx context.Context, businessID uuid.UUID, stats *models.InventoryStats, ttl time.Duration) error {
	key := fmt.Sprintf("mesa:stats:%s", businessID.String())
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteStats(ctx context.Context, businessID uuid.UUID) error {
	key := fmt.Sprintf("mesa:stats:%s", businessID.String())
	return r.client.Del(ctx, key).Err()
}

// InvalidateBusinessCache drops every cached item and the stats entry for a
// business. Keys are walked with SCAN so a large keyspace never blocks redis.
func (r *redisCacheService) InvalidateBusinessCache(ctx context.Context, businessID uuid.UUID) error {
	patterns := []string{
		fmt.Sprintf("mesa:item:%s:*", businessID.String()),
		fmt.Sprintf("mesa:stats:%s", businessID.String()),
	}
	for _, pattern := range patterns {
		iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("mesa:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
