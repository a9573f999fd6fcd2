package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"maily/backend/internal/domain"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

// Cache Redis 缓存实现
type Cache struct {
	client *redis.Client
	ctx    context.Context
}

// NewCache 创建 Redis 缓存实例
func NewCache(addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newCache(client), nil
}

func newCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		ctx:    context.Background(),
	}
}

// Ping 测试 Redis 连接
func (c *Cache) Ping() error {
	return c.client.Ping(c.ctx).Err()
}

// Close 关闭 Redis 连接
func (c *Cache) Close() error {
	return c.client.Close()
}

// ========== 聚合订阅缓存 ==========

func aggregateKey(id string) string {
	return fmt.Sprintf("aggregate:%s", id)
}

// CacheAggregate 缓存聚合订阅
func (c *Cache) CacheAggregate(agg *domain.AggregatedSubscription, ttl time.Duration) error {
	data, err := json.Marshal(agg)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, aggregateKey(agg.ID), data, ttl).Err()
}

// GetCachedAggregate 获取缓存的聚合订阅
func (c *Cache) GetCachedAggregate(id string) (*domain.AggregatedSubscription, error) {
	data, err := c.client.Get(c.ctx, aggregateKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var agg domain.AggregatedSubscription
	if err := json.Unmarshal([]byte(data), &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}

// DeleteCachedAggregate 删除缓存的聚合订阅
func (c *Cache) DeleteCachedAggregate(id string) error {
	return c.client.Del(c.ctx, aggregateKey(id)).Err()
}

// ========== 序列缓存 ==========

func sequenceKey(name string) string {
	return fmt.Sprintf("sequence:%s", name)
}

// CacheSequence 按名称缓存序列
func (c *Cache) CacheSequence(seq *domain.Sequence, ttl time.Duration) error {
	data, err := json.Marshal(seq)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, sequenceKey(seq.Name), data, ttl).Err()
}

// GetCachedSequence 获取缓存的序列
func (c *Cache) GetCachedSequence(name string) (*domain.Sequence, error) {
	data, err := c.client.Get(c.ctx, sequenceKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var seq domain.Sequence
	if err := json.Unmarshal([]byte(data), &seq); err != nil {
		return nil, err
	}
	return &seq, nil
}

// DeleteCachedSequence 删除缓存的序列
func (c *Cache) DeleteCachedSequence(name string) error {
	return c.client.Del(c.ctx, sequenceKey(name)).Err()
}
