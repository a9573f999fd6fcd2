package postgres

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"maily/backend/internal/domain"
)

// ========== Sequence Subscription Repository ==========

// FindOrCreateSubscription 使用 ON CONFLICT DO NOTHING 插入后重新读取，
// 依靠 (entity_id, sequence_id) 唯一索引保证并发下只有一条记录
func (s *Store) FindOrCreateSubscription(sub *domain.SequenceSubscription) (*domain.SequenceSubscription, bool, error) {
	if err := sub.Validate(); err != nil {
		return nil, false, err
	}

	var (
		row     domain.SequenceSubscription
		created bool
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_id"}, {Name: "sequence_id"}},
			DoNothing: true,
		}).Create(sub)
		if result.Error != nil {
			return result.Error
		}
		created = result.RowsAffected == 1

		return tx.Where("entity_id = ? AND sequence_id = ?", sub.EntityID, sub.SequenceID).First(&row).Error
	})
	if err != nil {
		return nil, false, notFound(err, domain.ErrSubscriptionNotFound)
	}
	return &row, created, nil
}

// GetSubscription 获取 (entity, sequence) 的订阅
func (s *Store) GetSubscription(entityID, sequenceID string) (*domain.SequenceSubscription, error) {
	var sub domain.SequenceSubscription
	err := s.db.Where("entity_id = ? AND sequence_id = ?", entityID, sequenceID).First(&sub).Error
	if err != nil {
		return nil, notFound(err, domain.ErrSubscriptionNotFound)
	}
	return &sub, nil
}

// ListSubscriptionsByEntity 返回订阅者的全部序列订阅
func (s *Store) ListSubscriptionsByEntity(entityID string) ([]domain.SequenceSubscription, error) {
	var subs []domain.SequenceSubscription
	err := s.db.Where("entity_id = ?", entityID).Order("created_at").Find(&subs).Error
	return subs, err
}

// UpdateSubscription 更新订阅状态
func (s *Store) UpdateSubscription(sub *domain.SequenceSubscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	result := s.db.Model(&domain.SequenceSubscription{}).
		Where("id = ? AND entity_id = ? AND sequence_id = ?", sub.ID, sub.EntityID, sub.SequenceID).
		Updates(map[string]interface{}{
			"active":       sub.Active,
			"aggregated":   sub.Aggregated,
			"aggregate_id": sub.AggregateID,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

// CountSubscriptions 返回序列订阅总数
func (s *Store) CountSubscriptions() (int64, error) {
	var count int64
	err := s.db.Model(&domain.SequenceSubscription{}).Count(&count).Error
	return count, err
}

// ========== Aggregated Subscription Repository ==========

// FindOrCreateAggregate 依靠 (entity_id, group_id) 唯一索引原子地查找或创建聚合订阅
func (s *Store) FindOrCreateAggregate(agg *domain.AggregatedSubscription) (*domain.AggregatedSubscription, bool, error) {
	if err := agg.Validate(); err != nil {
		return nil, false, err
	}

	var (
		row     domain.AggregatedSubscription
		created bool
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_id"}, {Name: "group_id"}},
			DoNothing: true,
		}).Create(agg)
		if result.Error != nil {
			return result.Error
		}
		created = result.RowsAffected == 1

		return tx.Where("entity_id = ? AND group_id = ?", agg.EntityID, agg.GroupID).First(&row).Error
	})
	if err != nil {
		return nil, false, notFound(err, domain.ErrAggregateNotFound)
	}
	return &row, created, nil
}

// GetAggregate 获取 (entity, group) 的聚合订阅
func (s *Store) GetAggregate(entityID, groupID string) (*domain.AggregatedSubscription, error) {
	var agg domain.AggregatedSubscription
	err := s.db.Where("entity_id = ? AND group_id = ?", entityID, groupID).First(&agg).Error
	if err != nil {
		return nil, notFound(err, domain.ErrAggregateNotFound)
	}
	return &agg, nil
}

// GetAggregateByID 根据 ID 获取聚合订阅
func (s *Store) GetAggregateByID(id string) (*domain.AggregatedSubscription, error) {
	var agg domain.AggregatedSubscription
	if err := s.db.Where("id = ?", id).First(&agg).Error; err != nil {
		return nil, notFound(err, domain.ErrAggregateNotFound)
	}
	return &agg, nil
}

// ListAggregatesByGroup 返回订阅组下的全部聚合订阅
func (s *Store) ListAggregatesByGroup(groupID string) ([]domain.AggregatedSubscription, error) {
	var aggs []domain.AggregatedSubscription
	err := s.db.Where("group_id = ?", groupID).Order("created_at").Find(&aggs).Error
	return aggs, err
}

// UpdateAggregate 更新聚合订阅状态
func (s *Store) UpdateAggregate(agg *domain.AggregatedSubscription) error {
	if err := agg.Validate(); err != nil {
		return err
	}

	result := s.db.Model(&domain.AggregatedSubscription{}).
		Where("id = ? AND entity_id = ? AND group_id = ?", agg.ID, agg.EntityID, agg.GroupID).
		Updates(map[string]interface{}{
			"active":     agg.Active,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAggregateNotFound
	}
	return nil
}

// CountAggregates 返回聚合订阅总数
func (s *Store) CountAggregates() (int64, error) {
	var count int64
	err := s.db.Model(&domain.AggregatedSubscription{}).Count(&count).Error
	return count, err
}
