package service

import (
	"github.com/google/uuid"

	"maily/backend/internal/domain"
)

// GroupService 订阅组服务
type GroupService struct {
	store         domain.Store
	subscriptions *SubscriptionService
}

// NewGroupService 创建订阅组服务
func NewGroupService(store domain.Store, subscriptions *SubscriptionService) *GroupService {
	return &GroupService{
		store:         store,
		subscriptions: subscriptions,
	}
}

// CreateGroupInput 创建订阅组输入
type CreateGroupInput struct {
	Name          string `json:"name" binding:"required,max=64"`
	Title         string `json:"title" binding:"omitempty,max=200"`
	Autosubscribe bool   `json:"autosubscribe"`
}

// UpdateGroupInput 更新订阅组输入
type UpdateGroupInput struct {
	Title         *string `json:"title" binding:"omitempty,max=200"`
	Autosubscribe *bool   `json:"autosubscribe"`
}

// Create 创建订阅组
//
// 参数:
//   - input: 创建订阅组输入
//
// 返回值:
//   - *domain.SubscriptionGroup: 创建的订阅组
//   - error: 名称非法返回 ErrValidation，重名返回 ErrGroupExists
func (s *GroupService) Create(input CreateGroupInput) (*domain.SubscriptionGroup, error) {
	group := &domain.SubscriptionGroup{
		ID:            uuid.New().String(),
		Name:          input.Name,
		Title:         input.Title,
		Autosubscribe: input.Autosubscribe,
	}

	if err := group.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateGroup(group); err != nil {
		return nil, err
	}
	return group, nil
}

// Get 按名称获取订阅组
func (s *GroupService) Get(name string) (*domain.SubscriptionGroup, error) {
	return s.store.GetGroupByName(name)
}

// Detail 获取订阅组及其序列和单次邮件
func (s *GroupService) Detail(name string) (*domain.GroupDetail, error) {
	group, err := s.store.GetGroupByName(name)
	if err != nil {
		return nil, err
	}

	sequences, err := s.store.ListSequencesByGroup(group.ID)
	if err != nil {
		return nil, err
	}
	mailings, err := s.store.ListMailingsByGroup(group.ID)
	if err != nil {
		return nil, err
	}

	return &domain.GroupDetail{
		SubscriptionGroup: *group,
		Sequences:         sequences,
		Mailings:          mailings,
	}, nil
}

// List 列出全部订阅组
func (s *GroupService) List() ([]domain.SubscriptionGroup, error) {
	return s.store.ListGroups()
}

// Update 更新订阅组
//
// 修改 autosubscribe 只影响之后新建的聚合订阅。
func (s *GroupService) Update(name string, input UpdateGroupInput) (*domain.SubscriptionGroup, error) {
	group, err := s.store.GetGroupByName(name)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		group.Title = *input.Title
	}
	if input.Autosubscribe != nil {
		group.Autosubscribe = *input.Autosubscribe
	}

	if err := s.store.UpdateGroup(group); err != nil {
		return nil, err
	}
	return group, nil
}

// SetAutosubscribe 设置订阅组的 autosubscribe
func (s *GroupService) SetAutosubscribe(name string, autosubscribe bool) (*domain.SubscriptionGroup, error) {
	return s.Update(name, UpdateGroupInput{Autosubscribe: &autosubscribe})
}

// Sequences 列出订阅组下的序列
func (s *GroupService) Sequences(name string) ([]domain.Sequence, error) {
	group, err := s.store.GetGroupByName(name)
	if err != nil {
		return nil, err
	}
	return s.store.ListSequencesByGroup(group.ID)
}

// Mailings 列出订阅组下的单次邮件
func (s *GroupService) Mailings(name string) ([]domain.Mailing, error) {
	group, err := s.store.GetGroupByName(name)
	if err != nil {
		return nil, err
	}
	return s.store.ListMailingsByGroup(group.ID)
}

// Aggregates 列出订阅组下的聚合订阅
func (s *GroupService) Aggregates(name string) ([]domain.AggregatedSubscription, error) {
	group, err := s.store.GetGroupByName(name)
	if err != nil {
		return nil, err
	}
	return s.store.ListAggregatesByGroup(group.ID)
}

// AggregateFor 获取或创建订阅者在该订阅组上的聚合订阅
func (s *GroupService) AggregateFor(name, entityID string) (*domain.AggregatedSubscription, error) {
	group, err := s.store.GetGroupByName(name)
	if err != nil {
		return nil, err
	}
	return s.subscriptions.AggregateFor(entityID, group.ID)
}

// SetAggregateActive 设置订阅者在该订阅组上的聚合订阅状态
func (s *GroupService) SetAggregateActive(name, entityID string, active bool) (*domain.AggregatedSubscription, error) {
	group, err := s.store.GetGroupByName(name)
	if err != nil {
		return nil, err
	}
	return s.subscriptions.SetAggregateActive(entityID, group.ID, active)
}

// resolveGroupID 将订阅组名称解析为 ID；空名称表示不分组
func resolveGroupID(store domain.Store, name string) (*string, error) {
	if name == "" {
		return nil, nil
	}
	group, err := store.GetGroupByName(name)
	if err != nil {
		return nil, err
	}
	id := group.ID
	return &id, nil
}
