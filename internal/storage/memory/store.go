package memory

import (
	"sync"

	"maily/backend/internal/domain"
)

// Store 使用内存保存订阅数据，主要用于开发验证和测试。
//
// 所有读操作返回记录副本，修改必须通过 Update* 方法写回。
type Store struct {
	mu sync.RWMutex

	groups       map[string]*domain.SubscriptionGroup // groupID -> group
	groupsByName map[string]string                    // name -> groupID

	sequences       map[string]*domain.Sequence // sequenceID -> sequence
	sequencesByName map[string]string           // name -> sequenceID

	mailings       map[string]*domain.Mailing
	mailingsByName map[string]string

	subscribers map[string]*domain.Subscriber // subscriberID -> subscriber
	byEmail     map[string]string             // email -> subscriberID

	// 订阅存储
	subscriptions map[string]*domain.SequenceSubscription   // "entityID:sequenceID" -> subscription
	aggregates    map[string]*domain.AggregatedSubscription // "entityID:groupID" -> aggregate
	aggregateKeys map[string]string                         // aggregateID -> "entityID:groupID"
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		groups:          make(map[string]*domain.SubscriptionGroup),
		groupsByName:    make(map[string]string),
		sequences:       make(map[string]*domain.Sequence),
		sequencesByName: make(map[string]string),
		mailings:        make(map[string]*domain.Mailing),
		mailingsByName:  make(map[string]string),
		subscribers:     make(map[string]*domain.Subscriber),
		byEmail:         make(map[string]string),
		subscriptions:   make(map[string]*domain.SequenceSubscription),
		aggregates:      make(map[string]*domain.AggregatedSubscription),
		aggregateKeys:   make(map[string]string),
	}
}

// Close 内存存储无需释放资源
func (s *Store) Close() error {
	return nil
}

// Health 内存存储始终可用
func (s *Store) Health() error {
	return nil
}

func pairKey(entityID, targetID string) string {
	return entityID + ":" + targetID
}

func cloneStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
