package memory

import (
	"sort"
	"time"

	"maily/backend/internal/domain"
)

// ========== Sequence Subscription Repository ==========

// FindOrCreateSubscription 在写锁内完成查找与创建，保证每个 (entity, sequence) 只有一条记录
func (s *Store) FindOrCreateSubscription(sub *domain.SequenceSubscription) (*domain.SequenceSubscription, bool, error) {
	if err := sub.Validate(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(sub.EntityID, sub.SequenceID)
	if existing, ok := s.subscriptions[key]; ok {
		return copySubscription(existing), false, nil
	}

	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	s.subscriptions[key] = copySubscription(sub)

	return copySubscription(sub), true, nil
}

// GetSubscription 获取 (entity, sequence) 的订阅
func (s *Store) GetSubscription(entityID, sequenceID string) (*domain.SequenceSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[pairKey(entityID, sequenceID)]
	if !ok {
		return nil, domain.ErrSubscriptionNotFound
	}
	return copySubscription(sub), nil
}

// ListSubscriptionsByEntity 返回订阅者的全部序列订阅
func (s *Store) ListSubscriptionsByEntity(entityID string) ([]domain.SequenceSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.SequenceSubscription, 0)
	for _, sub := range s.subscriptions {
		if sub.EntityID == entityID {
			result = append(result, *copySubscription(sub))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// UpdateSubscription 更新订阅状态
func (s *Store) UpdateSubscription(sub *domain.SequenceSubscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(sub.EntityID, sub.SequenceID)
	existing, ok := s.subscriptions[key]
	if !ok || existing.ID != sub.ID {
		return domain.ErrSubscriptionNotFound
	}

	sub.CreatedAt = existing.CreatedAt
	sub.UpdatedAt = time.Now()
	s.subscriptions[key] = copySubscription(sub)
	return nil
}

// CountSubscriptions 返回序列订阅总数
func (s *Store) CountSubscriptions() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.subscriptions)), nil
}

func copySubscription(sub *domain.SequenceSubscription) *domain.SequenceSubscription {
	out := *sub
	out.AggregateID = cloneStringPtr(sub.AggregateID)
	return &out
}

// ========== Aggregated Subscription Repository ==========

// FindOrCreateAggregate 在写锁内完成查找与创建，保证每个 (entity, group) 只有一条记录
func (s *Store) FindOrCreateAggregate(agg *domain.AggregatedSubscription) (*domain.AggregatedSubscription, bool, error) {
	if err := agg.Validate(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(agg.EntityID, agg.GroupID)
	if existing, ok := s.aggregates[key]; ok {
		out := *existing
		return &out, false, nil
	}

	now := time.Now()
	agg.CreatedAt = now
	agg.UpdatedAt = now

	stored := *agg
	s.aggregates[key] = &stored
	s.aggregateKeys[agg.ID] = key

	out := *agg
	return &out, true, nil
}

// GetAggregate 获取 (entity, group) 的聚合订阅
func (s *Store) GetAggregate(entityID, groupID string) (*domain.AggregatedSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg, ok := s.aggregates[pairKey(entityID, groupID)]
	if !ok {
		return nil, domain.ErrAggregateNotFound
	}
	out := *agg
	return &out, nil
}

// GetAggregateByID 根据 ID 获取聚合订阅
func (s *Store) GetAggregateByID(id string) (*domain.AggregatedSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.aggregateKeys[id]
	if !ok {
		return nil, domain.ErrAggregateNotFound
	}
	out := *s.aggregates[key]
	return &out, nil
}

// ListAggregatesByGroup 返回订阅组下的全部聚合订阅
func (s *Store) ListAggregatesByGroup(groupID string) ([]domain.AggregatedSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AggregatedSubscription, 0)
	for _, agg := range s.aggregates {
		if agg.GroupID == groupID {
			result = append(result, *agg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// UpdateAggregate 更新聚合订阅状态
func (s *Store) UpdateAggregate(agg *domain.AggregatedSubscription) error {
	if err := agg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.aggregateKeys[agg.ID]
	if !ok {
		return domain.ErrAggregateNotFound
	}

	existing := s.aggregates[key]
	if existing.EntityID != agg.EntityID || existing.GroupID != agg.GroupID {
		return domain.ErrAggregateNotFound
	}
	agg.CreatedAt = existing.CreatedAt
	agg.UpdatedAt = time.Now()

	stored := *agg
	s.aggregates[key] = &stored
	return nil
}

// CountAggregates 返回聚合订阅总数
func (s *Store) CountAggregates() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.aggregates)), nil
}
