package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"maily/backend/internal/domain"
)

// poolStats 由 SQL 存储实现，用于上报连接池状态
type poolStats interface {
	Stats() (open, inUse int)
}

// Collector 定期从存储采集业务指标
type Collector struct {
	store     domain.Store
	metrics   *Metrics
	logger    *zap.Logger
	startTime time.Time
}

// NewCollector 创建指标采集器
func NewCollector(store domain.Store, metrics *Metrics, logger *zap.Logger) *Collector {
	return &Collector{
		store:     store,
		metrics:   metrics,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Collect 采集一次指标
func (c *Collector) Collect() {
	c.metrics.UpdateSystemUptime(time.Since(c.startTime))

	subscriptions, err := c.store.CountSubscriptions()
	if err != nil {
		c.metrics.RecordError("count_subscriptions", "collector")
		c.logger.Warn("Failed to count subscriptions", zap.Error(err))
		return
	}
	aggregates, err := c.store.CountAggregates()
	if err != nil {
		c.metrics.RecordError("count_aggregates", "collector")
		c.logger.Warn("Failed to count aggregates", zap.Error(err))
		return
	}
	c.metrics.UpdateSubscriptionCounts(subscriptions, aggregates)

	if stats, ok := c.store.(poolStats); ok {
		open, inUse := stats.Stats()
		c.metrics.UpdateDatabaseConnections(open, inUse)
	}
}

// Start 按固定间隔采集指标，直到 ctx 结束
func (c *Collector) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Collect()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Collect()
		}
	}
}
