package domain

import "time"

// AggregatedSubscription 聚合订阅：某个订阅者在某个订阅组上的整体订阅状态
type AggregatedSubscription struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	EntityID  string    `json:"entityId" gorm:"type:varchar(36);not null;uniqueIndex:idx_aggregate_entity_group"`
	GroupID   string    `json:"groupId" gorm:"type:varchar(36);not null;uniqueIndex:idx_aggregate_entity_group;index"`
	Active    bool      `json:"active" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 返回表名
func (AggregatedSubscription) TableName() string {
	return "aggregated_subscriptions"
}

// NewAggregatedSubscription 按订阅组的 autosubscribe 初始化聚合订阅
func NewAggregatedSubscription(id, entityID string, group *SubscriptionGroup) *AggregatedSubscription {
	return &AggregatedSubscription{
		ID:       id,
		EntityID: entityID,
		GroupID:  group.ID,
		Active:   group.Autosubscribe,
	}
}
