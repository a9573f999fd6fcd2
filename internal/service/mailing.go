package service

import (
	"github.com/google/uuid"

	"maily/backend/internal/domain"
)

// MailingService 单次邮件服务
type MailingService struct {
	store domain.Store
}

// NewMailingService 创建单次邮件服务
func NewMailingService(store domain.Store) *MailingService {
	return &MailingService{store: store}
}

// CreateMailingInput 创建单次邮件输入
type CreateMailingInput struct {
	Name  string `json:"name" binding:"required,max=64"`
	Title string `json:"title" binding:"omitempty,max=200"`
	Group string `json:"group" binding:"omitempty,max=64"`
}

// Create 创建单次邮件
func (s *MailingService) Create(input CreateMailingInput) (*domain.Mailing, error) {
	groupID, err := resolveGroupID(s.store, input.Group)
	if err != nil {
		return nil, err
	}

	mailing := &domain.Mailing{
		ID:      uuid.New().String(),
		Name:    input.Name,
		Title:   input.Title,
		GroupID: groupID,
	}
	if err := mailing.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateMailing(mailing); err != nil {
		return nil, err
	}
	return mailing, nil
}

// Get 按名称获取单次邮件
func (s *MailingService) Get(name string) (*domain.Mailing, error) {
	return s.store.GetMailingByName(name)
}
