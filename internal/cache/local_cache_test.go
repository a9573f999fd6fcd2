package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maily/backend/internal/domain"
)

func TestLocalCache_Aggregate(t *testing.T) {
	c := NewLocalCache(10, time.Minute)
	defer c.Close()

	agg := &domain.AggregatedSubscription{ID: "agg-1", EntityID: "user-1", GroupID: "group-1", Active: true}
	require.NoError(t, c.CacheAggregate(agg, 0))

	// 缓存的是副本
	agg.Active = false
	cached, err := c.GetCachedAggregate("agg-1")
	require.NoError(t, err)
	assert.True(t, cached.Active)

	require.NoError(t, c.DeleteCachedAggregate("agg-1"))
	_, err = c.GetCachedAggregate("agg-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, c.Len())
}

func TestLocalCache_Sequence(t *testing.T) {
	c := NewLocalCache(10, time.Minute)
	defer c.Close()

	groupID := "group-1"
	require.NoError(t, c.CacheSequence(&domain.Sequence{ID: "seq-1", Name: "newsletters", GroupID: &groupID}, 0))

	cached, err := c.GetCachedSequence("newsletters")
	require.NoError(t, err)
	require.NotNil(t, cached.GroupID)
	assert.Equal(t, "group-1", *cached.GroupID)

	// 修改返回值不影响缓存
	*cached.GroupID = "other"
	again, err := c.GetCachedSequence("newsletters")
	require.NoError(t, err)
	assert.Equal(t, "group-1", *again.GroupID)
}

func TestLocalCache_Expiry(t *testing.T) {
	c := NewLocalCache(10, time.Minute)
	defer c.Close()

	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.CacheAggregate(&domain.AggregatedSubscription{ID: "agg-1"}, time.Second))

	now = now.Add(2 * time.Second)
	_, err := c.GetCachedAggregate("agg-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, c.Len())
}

func TestLocalCache_Capacity(t *testing.T) {
	c := NewLocalCache(2, time.Minute)
	defer c.Close()

	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.CacheAggregate(&domain.AggregatedSubscription{ID: "a"}, time.Second))
	require.NoError(t, c.CacheAggregate(&domain.AggregatedSubscription{ID: "b"}, time.Hour))

	t.Run("已满时放弃写入", func(t *testing.T) {
		require.NoError(t, c.CacheAggregate(&domain.AggregatedSubscription{ID: "c"}, time.Hour))
		_, err := c.GetCachedAggregate("c")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("覆盖已有条目不受容量限制", func(t *testing.T) {
		require.NoError(t, c.CacheAggregate(&domain.AggregatedSubscription{ID: "b", Active: true}, time.Hour))
		cached, err := c.GetCachedAggregate("b")
		require.NoError(t, err)
		assert.True(t, cached.Active)
	})

	t.Run("过期条目被清理后可写入", func(t *testing.T) {
		now = now.Add(2 * time.Second)
		require.NoError(t, c.CacheAggregate(&domain.AggregatedSubscription{ID: "c"}, time.Hour))
		_, err := c.GetCachedAggregate("c")
		assert.NoError(t, err)
		assert.Equal(t, 2, c.Len())
	})
}
