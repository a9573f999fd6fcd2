package service

import (
	"github.com/google/uuid"

	"maily/backend/internal/domain"
)

// SubscriberService 订阅者服务
type SubscriberService struct {
	store domain.Store
}

// NewSubscriberService 创建订阅者服务
func NewSubscriberService(store domain.Store) *SubscriberService {
	return &SubscriberService{store: store}
}

// Create 创建订阅者，邮箱会先规范化再校验
func (s *SubscriberService) Create(email string) (*domain.Subscriber, error) {
	subscriber := &domain.Subscriber{
		ID:    uuid.New().String(),
		Email: domain.NormalizeEmail(email),
	}
	if err := subscriber.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateSubscriber(subscriber); err != nil {
		return nil, err
	}
	return subscriber, nil
}

// Get 获取订阅者
func (s *SubscriberService) Get(id string) (*domain.Subscriber, error) {
	return s.store.GetSubscriber(id)
}
