package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"maily/backend/internal/domain"
)

// ErrCacheMiss 缓存未命中或已过期
var ErrCacheMiss = errors.New("local cache miss")

// LocalCache 进程内缓存，实现混合存储的缓存接口
//
// 特点：
// - 使用 sync.Map 实现无锁读取
// - 支持 TTL 过期
// - 后台定期清理过期条目
// - 容量限制：已满时先清理过期条目，仍满则放弃写入
type LocalCache struct {
	data    sync.Map
	size    atomic.Int64
	maxSize int
	ttl     time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	now      func() time.Time
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewLocalCache 创建本地缓存
//
// 参数:
//   - maxSize: 最大缓存条目数
//   - ttl: 默认过期时间
func NewLocalCache(maxSize int, ttl time.Duration) *LocalCache {
	if maxSize <= 0 {
		maxSize = 10000
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	c := &LocalCache{
		maxSize: maxSize,
		ttl:     ttl,
		stop:    make(chan struct{}),
		now:     time.Now,
	}

	go c.cleanupLoop(time.Minute)

	return c
}

// ========== Aggregated Subscription ==========

// CacheAggregate 缓存聚合订阅
func (c *LocalCache) CacheAggregate(agg *domain.AggregatedSubscription, ttl time.Duration) error {
	stored := *agg
	c.set(aggregateKey(agg.ID), &stored, ttl)
	return nil
}

// GetCachedAggregate 获取缓存的聚合订阅
func (c *LocalCache) GetCachedAggregate(id string) (*domain.AggregatedSubscription, error) {
	val, ok := c.get(aggregateKey(id))
	if !ok {
		return nil, ErrCacheMiss
	}
	out := *val.(*domain.AggregatedSubscription)
	return &out, nil
}

// DeleteCachedAggregate 删除缓存的聚合订阅
func (c *LocalCache) DeleteCachedAggregate(id string) error {
	c.delete(aggregateKey(id))
	return nil
}

// ========== Sequence ==========

// CacheSequence 按名称缓存序列
func (c *LocalCache) CacheSequence(seq *domain.Sequence, ttl time.Duration) error {
	c.set(sequenceKey(seq.Name), copySequence(seq), ttl)
	return nil
}

// GetCachedSequence 获取缓存的序列
func (c *LocalCache) GetCachedSequence(name string) (*domain.Sequence, error) {
	val, ok := c.get(sequenceKey(name))
	if !ok {
		return nil, ErrCacheMiss
	}
	return copySequence(val.(*domain.Sequence)), nil
}

// DeleteCachedSequence 删除缓存的序列
func (c *LocalCache) DeleteCachedSequence(name string) error {
	c.delete(sequenceKey(name))
	return nil
}

// Ping 本地缓存始终可用
func (c *LocalCache) Ping() error {
	return nil
}

// Close 停止后台清理并清空缓存
func (c *LocalCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	c.data.Range(func(key, _ interface{}) bool {
		c.delete(key.(string))
		return true
	})
	return nil
}

// Len 返回当前条目数（含尚未清理的过期条目）
func (c *LocalCache) Len() int {
	return int(c.size.Load())
}

// get 获取缓存值
func (c *LocalCache) get(key string) (interface{}, bool) {
	val, ok := c.data.Load(key)
	if !ok {
		return nil, false
	}

	entry := val.(*cacheEntry)

	// 检查是否过期
	if c.now().After(entry.expiresAt) {
		c.delete(key)
		return nil, false
	}

	return entry.value, true
}

// set 设置缓存值
func (c *LocalCache) set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	if _, exists := c.data.Load(key); !exists && c.Len() >= c.maxSize {
		c.purgeExpired()
		if c.Len() >= c.maxSize {
			return
		}
	}

	entry := &cacheEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}

	if _, loaded := c.data.Swap(key, entry); !loaded {
		c.size.Add(1)
	}
}

func (c *LocalCache) delete(key string) {
	if _, loaded := c.data.LoadAndDelete(key); loaded {
		c.size.Add(-1)
	}
}

// purgeExpired 清理过期条目
func (c *LocalCache) purgeExpired() {
	now := c.now()
	c.data.Range(func(key, value interface{}) bool {
		if now.After(value.(*cacheEntry).expiresAt) {
			c.delete(key.(string))
		}
		return true
	})
}

// cleanupLoop 定期清理过期条目，直到 Close 被调用
func (c *LocalCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purgeExpired()
		}
	}
}

func aggregateKey(id string) string {
	return "aggregate:" + id
}

func sequenceKey(name string) string {
	return "sequence:" + name
}

func copySequence(seq *domain.Sequence) *domain.Sequence {
	out := *seq
	if seq.GroupID != nil {
		groupID := *seq.GroupID
		out.GroupID = &groupID
	}
	return &out
}
