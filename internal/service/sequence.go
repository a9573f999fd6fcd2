package service

import (
	"github.com/google/uuid"

	"maily/backend/internal/domain"
)

// SequenceService 序列服务
type SequenceService struct {
	store         domain.Store
	subscriptions *SubscriptionService
}

// NewSequenceService 创建序列服务
func NewSequenceService(store domain.Store, subscriptions *SubscriptionService) *SequenceService {
	return &SequenceService{
		store:         store,
		subscriptions: subscriptions,
	}
}

// CreateSequenceInput 创建序列输入
type CreateSequenceInput struct {
	Name          string `json:"name" binding:"required,max=64"`
	Title         string `json:"title" binding:"omitempty,max=200"`
	Group         string `json:"group" binding:"omitempty,max=64"` // 订阅组名称，为空表示不分组
	Autosubscribe bool   `json:"autosubscribe"`
}

// UpdateSequenceInput 更新序列输入
type UpdateSequenceInput struct {
	Title         *string `json:"title" binding:"omitempty,max=200"`
	Group         *string `json:"group" binding:"omitempty,max=64"` // 空字符串表示移出订阅组
	Autosubscribe *bool   `json:"autosubscribe"`
}

// Create 创建序列
func (s *SequenceService) Create(input CreateSequenceInput) (*domain.Sequence, error) {
	groupID, err := resolveGroupID(s.store, input.Group)
	if err != nil {
		return nil, err
	}

	sequence := &domain.Sequence{
		ID:            uuid.New().String(),
		Name:          input.Name,
		Title:         input.Title,
		GroupID:       groupID,
		Autosubscribe: input.Autosubscribe,
	}

	if err := sequence.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateSequence(sequence); err != nil {
		return nil, err
	}
	return sequence, nil
}

// Get 按名称获取序列
func (s *SequenceService) Get(name string) (*domain.Sequence, error) {
	return s.store.GetSequenceByName(name)
}

// List 列出全部序列
func (s *SequenceService) List() ([]domain.Sequence, error) {
	return s.store.ListSequences()
}

// Update 更新序列
//
// 修改所属订阅组后，已有订阅在下一次读取时重新关联。
func (s *SequenceService) Update(name string, input UpdateSequenceInput) (*domain.Sequence, error) {
	found, err := s.store.GetSequenceByName(name)
	if err != nil {
		return nil, err
	}
	// 按名称读取可能命中缓存，写回前按 ID 重新读取最新记录
	sequence, err := s.store.GetSequence(found.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		sequence.Title = *input.Title
	}
	if input.Group != nil {
		groupID, err := resolveGroupID(s.store, *input.Group)
		if err != nil {
			return nil, err
		}
		sequence.GroupID = groupID
	}
	if input.Autosubscribe != nil {
		sequence.Autosubscribe = *input.Autosubscribe
	}

	if err := s.store.UpdateSequence(sequence); err != nil {
		return nil, err
	}
	return sequence, nil
}

// SubscriptionFor 获取或创建订阅者在该序列上的订阅
func (s *SequenceService) SubscriptionFor(name, entityID string) (*domain.SequenceSubscription, error) {
	sequence, err := s.store.GetSequenceByName(name)
	if err != nil {
		return nil, err
	}
	return s.subscriptions.SubscriptionFor(entityID, sequence.ID)
}

// Status 获取订阅者在该序列上的订阅及其生效状态
func (s *SequenceService) Status(name, entityID string) (*domain.SubscriptionStatus, error) {
	sequence, err := s.store.GetSequenceByName(name)
	if err != nil {
		return nil, err
	}
	return s.subscriptions.Status(entityID, sequence.ID)
}

// SetActive 激活或停用订阅者在该序列上的订阅，返回更新后的状态
func (s *SequenceService) SetActive(name, entityID string, active bool) (*domain.SubscriptionStatus, error) {
	sub, err := s.SubscriptionFor(name, entityID)
	if err != nil {
		return nil, err
	}

	if active {
		err = s.subscriptions.Activate(sub)
	} else {
		err = s.subscriptions.Deactivate(sub)
	}
	if err != nil {
		return nil, err
	}
	return s.subscriptions.statusOf(sub)
}
