package hybrid

import (
	"fmt"
	"time"

	"maily/backend/internal/domain"
	"maily/backend/internal/storage/postgres"
	"maily/backend/internal/storage/redis"
)

// Cache 混合存储使用的缓存接口，由 redis.Cache 和 cache.LocalCache 实现
type Cache interface {
	CacheAggregate(agg *domain.AggregatedSubscription, ttl time.Duration) error
	GetCachedAggregate(id string) (*domain.AggregatedSubscription, error)
	DeleteCachedAggregate(id string) error
	CacheSequence(seq *domain.Sequence, ttl time.Duration) error
	GetCachedSequence(name string) (*domain.Sequence, error)
	DeleteCachedSequence(name string) error
	Ping() error
	Close() error
}

// Store 混合存储实现，结合 SQL 数据库和 Redis
//
// 未覆盖的方法直接由 SQL 存储处理。
type Store struct {
	*postgres.Store
	cache Cache
	ttl   time.Duration
}

// NewStoreWithType 创建混合存储实例（指定数据库类型）
func NewStoreWithType(dbType, dsn string, pool postgres.PoolConfig, redisAddr, redisPassword string, redisDB int, ttl time.Duration) (*Store, error) {
	dbStore, err := postgres.Open(dbType, dsn, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisCache, err := redis.NewCache(redisAddr, redisPassword, redisDB)
	if err != nil {
		dbStore.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	return NewStore(dbStore, redisCache, ttl), nil
}

// NewStore 使用已有的 SQL 存储和缓存创建混合存储
func NewStore(db *postgres.Store, cache Cache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Store{
		Store: db,
		cache: cache,
		ttl:   ttl,
	}
}

// ========== Sequence Repository ==========

// GetSequenceByName 先查缓存，未命中时回源数据库
func (s *Store) GetSequenceByName(name string) (*domain.Sequence, error) {
	if seq, err := s.cache.GetCachedSequence(name); err == nil {
		return seq, nil
	}

	seq, err := s.Store.GetSequenceByName(name)
	if err != nil {
		return nil, err
	}

	s.cache.CacheSequence(seq, s.ttl)
	return seq, nil
}

// UpdateSequence 更新数据库并使缓存失效
func (s *Store) UpdateSequence(sequence *domain.Sequence) error {
	old, err := s.Store.GetSequence(sequence.ID)
	if err != nil {
		return err
	}
	if err := s.Store.UpdateSequence(sequence); err != nil {
		return err
	}

	s.cache.DeleteCachedSequence(old.Name)
	s.cache.DeleteCachedSequence(sequence.Name)
	return nil
}

// ========== Aggregated Subscription Repository ==========

// GetAggregateByID 先查缓存，未命中时回源数据库
func (s *Store) GetAggregateByID(id string) (*domain.AggregatedSubscription, error) {
	if agg, err := s.cache.GetCachedAggregate(id); err == nil {
		return agg, nil
	}

	agg, err := s.Store.GetAggregateByID(id)
	if err != nil {
		return nil, err
	}

	s.cache.CacheAggregate(agg, s.ttl)
	return agg, nil
}

// UpdateAggregate 更新数据库并使缓存失效
//
// 先删缓存再写库之后再删一次，避免并发读把旧值写回缓存。
func (s *Store) UpdateAggregate(agg *domain.AggregatedSubscription) error {
	s.cache.DeleteCachedAggregate(agg.ID)
	if err := s.Store.UpdateAggregate(agg); err != nil {
		return err
	}
	return s.cache.DeleteCachedAggregate(agg.ID)
}

// ========== 工具方法 ==========

// Health 检查数据库与 Redis
func (s *Store) Health() error {
	if err := s.Store.Health(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := s.cache.Ping(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// Close 关闭数据库与 Redis 连接
func (s *Store) Close() error {
	dbErr := s.Store.Close()
	cacheErr := s.cache.Close()
	if dbErr != nil {
		return dbErr
	}
	return cacheErr
}
