package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AniTopia/anitopia-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// versionKey 是媒体类型命名空间版本号的Redis键前缀。
const versionKeyPrefix = "toplist:ver:"

// RedisCache 是Cache的Redis实现。
// 它在每次操作前检查健康状态，Redis不可用时退化为全程未命中，
// 绝不让缓存故障阻塞主数据路径。
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache 基于全局Redis客户端创建缓存实例。
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Get 实现Cache接口。
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	if !database.IsRedisHealthy() {
		return "", false, nil
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("读取缓存键 %s 失败: %w", key, err)
	}
	return val, true, nil
}

// Set 实现Cache接口。
func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if !database.IsRedisHealthy() {
		return nil
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("写入缓存键 %s 失败: %w", key, err)
	}
	return nil
}

// InvalidateMediaType 实现Cache接口：递增命名空间版本号。
func (c *RedisCache) InvalidateMediaType(ctx context.Context, mediaType string) error {
	if !database.IsRedisHealthy() {
		return nil
	}
	if err := c.rdb.Incr(ctx, versionKeyPrefix+mediaType).Err(); err != nil {
		return fmt.Errorf("递增缓存版本号失败: %w", err)
	}
	return nil
}

// Version 实现Cache接口。版本键不存在时视为0。
func (c *RedisCache) Version(ctx context.Context, mediaType string) (int64, error) {
	if !database.IsRedisHealthy() {
		return 0, nil
	}
	ver, err := c.rdb.Get(ctx, versionKeyPrefix+mediaType).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("读取缓存版本号失败: %w", err)
	}
	return ver, nil
}
