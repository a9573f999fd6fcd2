package domain

// Store 聚合所有存储接口
type Store interface {
	// ========== Subscription Group Repository ==========
	CreateGroup(group *SubscriptionGroup) error
	GetGroup(id string) (*SubscriptionGroup, error)
	GetGroupByName(name string) (*SubscriptionGroup, error)
	ListGroups() ([]SubscriptionGroup, error)
	UpdateGroup(group *SubscriptionGroup) error

	// ========== Sequence Repository ==========
	CreateSequence(sequence *Sequence) error
	GetSequence(id string) (*Sequence, error)
	GetSequenceByName(name string) (*Sequence, error)
	ListSequences() ([]Sequence, error)
	ListSequencesByGroup(groupID string) ([]Sequence, error)
	UpdateSequence(sequence *Sequence) error

	// ========== Mailing Repository ==========
	CreateMailing(mailing *Mailing) error
	GetMailingByName(name string) (*Mailing, error)
	ListMailingsByGroup(groupID string) ([]Mailing, error)

	// ========== Subscriber Repository ==========
	CreateSubscriber(subscriber *Subscriber) error
	GetSubscriber(id string) (*Subscriber, error)

	// ========== Sequence Subscription Repository ==========
	// FindOrCreateSubscription 原子地查找或创建 (entity, sequence) 的订阅；
	// 返回已存在或新建的记录，以及是否新建
	FindOrCreateSubscription(sub *SequenceSubscription) (*SequenceSubscription, bool, error)
	GetSubscription(entityID, sequenceID string) (*SequenceSubscription, error)
	ListSubscriptionsByEntity(entityID string) ([]SequenceSubscription, error)
	UpdateSubscription(sub *SequenceSubscription) error
	CountSubscriptions() (int64, error)

	// ========== Aggregated Subscription Repository ==========
	// FindOrCreateAggregate 原子地查找或创建 (entity, group) 的聚合订阅
	FindOrCreateAggregate(agg *AggregatedSubscription) (*AggregatedSubscription, bool, error)
	GetAggregate(entityID, groupID string) (*AggregatedSubscription, error)
	GetAggregateByID(id string) (*AggregatedSubscription, error)
	ListAggregatesByGroup(groupID string) ([]AggregatedSubscription, error)
	UpdateAggregate(agg *AggregatedSubscription) error
	CountAggregates() (int64, error)

	// 工具方法
	Close() error
	Health() error
}
