package postgres

import (
	"time"

	"maily/backend/internal/domain"
)

// ========== Subscription Group Repository ==========

// CreateGroup 创建订阅组
func (s *Store) CreateGroup(group *domain.SubscriptionGroup) error {
	return duplicated(s.db.Create(group).Error, domain.ErrGroupExists)
}

// GetGroup 根据 ID 获取订阅组
func (s *Store) GetGroup(id string) (*domain.SubscriptionGroup, error) {
	var group domain.SubscriptionGroup
	if err := s.db.Where("id = ?", id).First(&group).Error; err != nil {
		return nil, notFound(err, domain.ErrGroupNotFound)
	}
	return &group, nil
}

// GetGroupByName 根据名称获取订阅组
func (s *Store) GetGroupByName(name string) (*domain.SubscriptionGroup, error) {
	var group domain.SubscriptionGroup
	if err := s.db.Where("name = ?", name).First(&group).Error; err != nil {
		return nil, notFound(err, domain.ErrGroupNotFound)
	}
	return &group, nil
}

// ListGroups 按名称排序返回全部订阅组
func (s *Store) ListGroups() ([]domain.SubscriptionGroup, error) {
	var groups []domain.SubscriptionGroup
	err := s.db.Order("name").Find(&groups).Error
	return groups, err
}

// UpdateGroup 更新订阅组
func (s *Store) UpdateGroup(group *domain.SubscriptionGroup) error {
	result := s.db.Model(&domain.SubscriptionGroup{}).
		Where("id = ?", group.ID).
		Updates(map[string]interface{}{
			"name":          group.Name,
			"title":         group.Title,
			"autosubscribe": group.Autosubscribe,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return duplicated(result.Error, domain.ErrGroupExists)
	}
	if result.RowsAffected == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

// ========== Sequence Repository ==========

// CreateSequence 创建序列
func (s *Store) CreateSequence(sequence *domain.Sequence) error {
	return duplicated(s.db.Create(sequence).Error, domain.ErrSequenceExists)
}

// GetSequence 根据 ID 获取序列
func (s *Store) GetSequence(id string) (*domain.Sequence, error) {
	var sequence domain.Sequence
	if err := s.db.Where("id = ?", id).First(&sequence).Error; err != nil {
		return nil, notFound(err, domain.ErrSequenceNotFound)
	}
	return &sequence, nil
}

// GetSequenceByName 根据名称获取序列
func (s *Store) GetSequenceByName(name string) (*domain.Sequence, error) {
	var sequence domain.Sequence
	if err := s.db.Where("name = ?", name).First(&sequence).Error; err != nil {
		return nil, notFound(err, domain.ErrSequenceNotFound)
	}
	return &sequence, nil
}

// ListSequences 按名称排序返回全部序列
func (s *Store) ListSequences() ([]domain.Sequence, error) {
	var sequences []domain.Sequence
	err := s.db.Order("name").Find(&sequences).Error
	return sequences, err
}

// ListSequencesByGroup 返回属于指定订阅组的序列
func (s *Store) ListSequencesByGroup(groupID string) ([]domain.Sequence, error) {
	var sequences []domain.Sequence
	err := s.db.Where("group_id = ?", groupID).Order("name").Find(&sequences).Error
	return sequences, err
}

// UpdateSequence 更新序列（包括分组变更，group_id 可被置空）
func (s *Store) UpdateSequence(sequence *domain.Sequence) error {
	result := s.db.Model(&domain.Sequence{}).
		Where("id = ?", sequence.ID).
		Updates(map[string]interface{}{
			"name":          sequence.Name,
			"title":         sequence.Title,
			"group_id":      sequence.GroupID,
			"autosubscribe": sequence.Autosubscribe,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return duplicated(result.Error, domain.ErrSequenceExists)
	}
	if result.RowsAffected == 0 {
		return domain.ErrSequenceNotFound
	}
	return nil
}

// ========== Mailing Repository ==========

// CreateMailing 创建单次邮件
func (s *Store) CreateMailing(mailing *domain.Mailing) error {
	return duplicated(s.db.Create(mailing).Error, domain.ErrMailingExists)
}

// GetMailingByName 根据名称获取单次邮件
func (s *Store) GetMailingByName(name string) (*domain.Mailing, error) {
	var mailing domain.Mailing
	if err := s.db.Where("name = ?", name).First(&mailing).Error; err != nil {
		return nil, notFound(err, domain.ErrMailingNotFound)
	}
	return &mailing, nil
}

// ListMailingsByGroup 返回属于指定订阅组的单次邮件
func (s *Store) ListMailingsByGroup(groupID string) ([]domain.Mailing, error) {
	var mailings []domain.Mailing
	err := s.db.Where("group_id = ?", groupID).Order("name").Find(&mailings).Error
	return mailings, err
}

// ========== Subscriber Repository ==========

// CreateSubscriber 创建订阅者
func (s *Store) CreateSubscriber(subscriber *domain.Subscriber) error {
	return duplicated(s.db.Create(subscriber).Error, domain.ErrSubscriberExists)
}

// GetSubscriber 根据 ID 获取订阅者
func (s *Store) GetSubscriber(id string) (*domain.Subscriber, error) {
	var subscriber domain.Subscriber
	if err := s.db.Where("id = ?", id).First(&subscriber).Error; err != nil {
		return nil, notFound(err, domain.ErrSubscriberNotFound)
	}
	return &subscriber, nil
}
