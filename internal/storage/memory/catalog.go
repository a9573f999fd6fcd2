package memory

import (
	"sort"
	"time"

	"maily/backend/internal/domain"
)

// ========== Subscription Group Repository ==========

// CreateGroup 创建订阅组
func (s *Store) CreateGroup(group *domain.SubscriptionGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groupsByName[group.Name]; exists {
		return domain.ErrGroupExists
	}

	now := time.Now()
	group.CreatedAt = now
	group.UpdatedAt = now

	stored := *group
	s.groups[group.ID] = &stored
	s.groupsByName[group.Name] = group.ID
	return nil
}

// GetGroup 根据 ID 获取订阅组
func (s *Store) GetGroup(id string) (*domain.SubscriptionGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	out := *group
	return &out, nil
}

// GetGroupByName 根据名称获取订阅组
func (s *Store) GetGroupByName(name string) (*domain.SubscriptionGroup, error) {
	s.mu.RLock()
	id, ok := s.groupsByName[name]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	return s.GetGroup(id)
}

// ListGroups 按名称排序返回全部订阅组
func (s *Store) ListGroups() ([]domain.SubscriptionGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.SubscriptionGroup, 0, len(s.groups))
	for _, g := range s.groups {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// UpdateGroup 更新订阅组
func (s *Store) UpdateGroup(group *domain.SubscriptionGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.groups[group.ID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	if id, taken := s.groupsByName[group.Name]; taken && id != group.ID {
		return domain.ErrGroupExists
	}

	delete(s.groupsByName, existing.Name)
	group.CreatedAt = existing.CreatedAt
	group.UpdatedAt = time.Now()

	stored := *group
	s.groups[group.ID] = &stored
	s.groupsByName[group.Name] = group.ID
	return nil
}

// ========== Sequence Repository ==========

// CreateSequence 创建序列
func (s *Store) CreateSequence(sequence *domain.Sequence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sequencesByName[sequence.Name]; exists {
		return domain.ErrSequenceExists
	}

	now := time.Now()
	sequence.CreatedAt = now
	sequence.UpdatedAt = now

	s.sequences[sequence.ID] = copySequence(sequence)
	s.sequencesByName[sequence.Name] = sequence.ID
	return nil
}

// GetSequence 根据 ID 获取序列
func (s *Store) GetSequence(id string) (*domain.Sequence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sequence, ok := s.sequences[id]
	if !ok {
		return nil, domain.ErrSequenceNotFound
	}
	return copySequence(sequence), nil
}

// GetSequenceByName 根据名称获取序列
func (s *Store) GetSequenceByName(name string) (*domain.Sequence, error) {
	s.mu.RLock()
	id, ok := s.sequencesByName[name]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSequenceNotFound
	}
	return s.GetSequence(id)
}

// ListSequences 按名称排序返回全部序列
func (s *Store) ListSequences() ([]domain.Sequence, error) {
	return s.listSequences(func(*domain.Sequence) bool { return true }), nil
}

// ListSequencesByGroup 返回属于指定订阅组的序列
func (s *Store) ListSequencesByGroup(groupID string) ([]domain.Sequence, error) {
	return s.listSequences(func(seq *domain.Sequence) bool {
		return seq.GroupID != nil && *seq.GroupID == groupID
	}), nil
}

func (s *Store) listSequences(match func(*domain.Sequence) bool) []domain.Sequence {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Sequence, 0)
	for _, seq := range s.sequences {
		if match(seq) {
			result = append(result, *copySequence(seq))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// UpdateSequence 更新序列（包括分组变更）
func (s *Store) UpdateSequence(sequence *domain.Sequence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sequences[sequence.ID]
	if !ok {
		return domain.ErrSequenceNotFound
	}
	if id, taken := s.sequencesByName[sequence.Name]; taken && id != sequence.ID {
		return domain.ErrSequenceExists
	}

	delete(s.sequencesByName, existing.Name)
	sequence.CreatedAt = existing.CreatedAt
	sequence.UpdatedAt = time.Now()

	s.sequences[sequence.ID] = copySequence(sequence)
	s.sequencesByName[sequence.Name] = sequence.ID
	return nil
}

func copySequence(seq *domain.Sequence) *domain.Sequence {
	out := *seq
	out.GroupID = cloneStringPtr(seq.GroupID)
	return &out
}

// ========== Mailing Repository ==========

// CreateMailing 创建单次邮件
func (s *Store) CreateMailing(mailing *domain.Mailing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.mailingsByName[mailing.Name]; exists {
		return domain.ErrMailingExists
	}

	now := time.Now()
	mailing.CreatedAt = now
	mailing.UpdatedAt = now

	stored := *mailing
	stored.GroupID = cloneStringPtr(mailing.GroupID)
	s.mailings[mailing.ID] = &stored
	s.mailingsByName[mailing.Name] = mailing.ID
	return nil
}

// GetMailingByName 根据名称获取单次邮件
func (s *Store) GetMailingByName(name string) (*domain.Mailing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.mailingsByName[name]
	if !ok {
		return nil, domain.ErrMailingNotFound
	}
	out := *s.mailings[id]
	out.GroupID = cloneStringPtr(out.GroupID)
	return &out, nil
}

// ListMailingsByGroup 返回属于指定订阅组的单次邮件
func (s *Store) ListMailingsByGroup(groupID string) ([]domain.Mailing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Mailing, 0)
	for _, m := range s.mailings {
		if m.GroupID != nil && *m.GroupID == groupID {
			out := *m
			out.GroupID = cloneStringPtr(m.GroupID)
			result = append(result, out)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ========== Subscriber Repository ==========

// CreateSubscriber 创建订阅者
func (s *Store) CreateSubscriber(subscriber *domain.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[subscriber.Email]; exists {
		return domain.ErrSubscriberExists
	}

	subscriber.CreatedAt = time.Now()
	stored := *subscriber
	s.subscribers[subscriber.ID] = &stored
	s.byEmail[subscriber.Email] = subscriber.ID
	return nil
}

// GetSubscriber 根据 ID 获取订阅者
func (s *Store) GetSubscriber(id string) (*domain.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscriber, ok := s.subscribers[id]
	if !ok {
		return nil, domain.ErrSubscriberNotFound
	}
	out := *subscriber
	return &out, nil
}
