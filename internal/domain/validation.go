package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// 验证相关的错误定义
var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmailTooLong     = errors.New("email address too long")
	ErrLocalPartTooLong = errors.New("local part too long (max 64 chars)")
	ErrDomainTooLong    = errors.New("domain too long (max 253 chars)")
	ErrInvalidName      = errors.New("invalid name (lowercase letters, digits and underscore, must start with a letter)")
	ErrNameTooLong      = errors.New("name too long (max 64 chars)")
)

// 验证常量
const (
	// RFC 5322 邮箱地址长度限制
	MaxEmailLength     = 254
	MaxLocalPartLength = 64
	MaxDomainLength    = 253

	// 组、序列、单次邮件的标识符长度
	MaxNameLength = 64
)

var (
	// 标识符与 symbol 一致：小写字母开头
	nameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

	domainRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,61}[a-zA-Z0-9]?(\.[a-zA-Z0-9][a-zA-Z0-9-]{0,61}[a-zA-Z0-9]?)*$`)
)

// EmailValidator 邮箱验证器
type EmailValidator struct{}

// NewEmailValidator 创建邮箱验证器
func NewEmailValidator() *EmailValidator {
	return &EmailValidator{}
}

// ValidateEmail 验证订阅者邮箱地址
func (v *EmailValidator) ValidateEmail(email string) error {
	email = NormalizeEmail(email)

	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidEmail
	}

	if len(email[:at]) > MaxLocalPartLength {
		return ErrLocalPartTooLong
	}

	return v.ValidateDomain(email[at+1:])
}

// ValidateDomain 验证域名
func (v *EmailValidator) ValidateDomain(domain string) error {
	if len(domain) > MaxDomainLength {
		return ErrDomainTooLong
	}
	if !domainRegex.MatchString(domain) || !strings.Contains(domain, ".") {
		return ErrInvalidEmail
	}
	return nil
}

// NormalizeEmail 去除空白并转为小写
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// ValidateName 验证组、序列、单次邮件的标识符
func ValidateName(name string) error {
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !nameRegex.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// Validate 验证订阅组
func (g *SubscriptionGroup) Validate() error {
	if err := ValidateName(g.Name); err != nil {
		return fmt.Errorf("%w: group name: %v", ErrValidation, err)
	}
	return nil
}

// Validate 验证序列
func (s *Sequence) Validate() error {
	if err := ValidateName(s.Name); err != nil {
		return fmt.Errorf("%w: sequence name: %v", ErrValidation, err)
	}
	return nil
}

// Validate 验证单次邮件
func (m *Mailing) Validate() error {
	if err := ValidateName(m.Name); err != nil {
		return fmt.Errorf("%w: mailing name: %v", ErrValidation, err)
	}
	return nil
}

// Validate 验证订阅者
func (s *Subscriber) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: subscriber id is required", ErrValidation)
	}
	if err := NewEmailValidator().ValidateEmail(s.Email); err != nil {
		return fmt.Errorf("%w: subscriber email: %v", ErrValidation, err)
	}
	return nil
}

// Validate 验证序列订阅：必须有订阅者和序列，聚合订阅必须关联聚合记录
func (s *SequenceSubscription) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: subscription id is required", ErrValidation)
	}
	if s.EntityID == "" {
		return fmt.Errorf("%w: subscription entity is required", ErrValidation)
	}
	if s.SequenceID == "" {
		return fmt.Errorf("%w: subscription sequence is required", ErrValidation)
	}
	if s.Aggregated && (s.AggregateID == nil || *s.AggregateID == "") {
		return fmt.Errorf("%w: aggregated subscription requires an aggregate", ErrValidation)
	}
	return nil
}

// Validate 验证聚合订阅
func (a *AggregatedSubscription) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: aggregate id is required", ErrValidation)
	}
	if a.EntityID == "" {
		return fmt.Errorf("%w: aggregate entity is required", ErrValidation)
	}
	if a.GroupID == "" {
		return fmt.Errorf("%w: aggregate group is required", ErrValidation)
	}
	return nil
}
