package domain

import "errors"

// 记录不存在
var (
	ErrGroupNotFound        = errors.New("subscription group not found")
	ErrSequenceNotFound     = errors.New("sequence not found")
	ErrMailingNotFound      = errors.New("mailing not found")
	ErrSubscriberNotFound   = errors.New("subscriber not found")
	ErrSubscriptionNotFound = errors.New("sequence subscription not found")
	ErrAggregateNotFound    = errors.New("aggregated subscription not found")
)

// 唯一性冲突
var (
	ErrGroupExists      = errors.New("subscription group already exists")
	ErrSequenceExists   = errors.New("sequence already exists")
	ErrMailingExists    = errors.New("mailing already exists")
	ErrSubscriberExists = errors.New("subscriber already exists")
)

// ErrValidation 校验失败，具体字段通过 fmt.Errorf("%w: ...") 附加
var ErrValidation = errors.New("validation failed")
