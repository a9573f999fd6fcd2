package domain

import "time"

// SequenceSubscription 订阅者与序列之间的订阅记录
//
// Active、Aggregated、AggregateID 三个字段只用于持久化，
// 业务代码应通过 State() 读取订阅状态。
type SequenceSubscription struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	EntityID    string    `json:"entityId" gorm:"type:varchar(36);not null;uniqueIndex:idx_subscription_entity_sequence"`
	SequenceID  string    `json:"sequenceId" gorm:"type:varchar(36);not null;uniqueIndex:idx_subscription_entity_sequence;index"`
	Active      bool      `json:"-" gorm:"not null;default:false"`
	Aggregated  bool      `json:"aggregated" gorm:"not null;default:false"`
	AggregateID *string   `json:"aggregateId,omitempty" gorm:"type:varchar(36);index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName 返回表名
func (SequenceSubscription) TableName() string {
	return "sequence_subscriptions"
}

// SubscriptionState 订阅状态：StandaloneState 或 AggregatedState
type SubscriptionState interface {
	subscriptionState()
}

// StandaloneState 独立订阅，状态保存在订阅记录自身
type StandaloneState struct {
	Active bool
}

// AggregatedState 聚合订阅，状态委托给订阅组的聚合订阅
type AggregatedState struct {
	AggregateID string
}

func (StandaloneState) subscriptionState() {}
func (AggregatedState) subscriptionState() {}

// State 返回订阅状态
func (s *SequenceSubscription) State() SubscriptionState {
	if s.Aggregated && s.AggregateID != nil {
		return AggregatedState{AggregateID: *s.AggregateID}
	}
	return StandaloneState{Active: s.Active}
}

// SetState 写入订阅状态
func (s *SequenceSubscription) SetState(state SubscriptionState) {
	switch st := state.(type) {
	case StandaloneState:
		s.Aggregated = false
		s.AggregateID = nil
		s.Active = st.Active
	case AggregatedState:
		id := st.AggregateID
		s.Aggregated = true
		s.AggregateID = &id
		s.Active = false
	}
}

// NewStandaloneSubscription 为未分组的序列创建订阅，状态取自序列的 autosubscribe
func NewStandaloneSubscription(id, entityID string, sequence *Sequence) *SequenceSubscription {
	sub := &SequenceSubscription{
		ID:         id,
		EntityID:   entityID,
		SequenceID: sequence.ID,
	}
	sub.SetState(StandaloneState{Active: sequence.Autosubscribe})
	return sub
}

// NewAggregatedSubscriptionLink 为已分组的序列创建订阅并关联聚合订阅
func NewAggregatedSubscriptionLink(id, entityID string, sequence *Sequence, aggregate *AggregatedSubscription) *SequenceSubscription {
	sub := &SequenceSubscription{
		ID:         id,
		EntityID:   entityID,
		SequenceID: sequence.ID,
	}
	sub.SetState(AggregatedState{AggregateID: aggregate.ID})
	return sub
}

// SubscriptionStatus 订阅记录及其生效状态
type SubscriptionStatus struct {
	Subscription *SequenceSubscription   `json:"subscription"`
	Aggregate    *AggregatedSubscription `json:"aggregate,omitempty"`
	Active       bool                    `json:"active"` // 生效的订阅状态
}
