package httptransport

import (
	"errors"
	"net/http"

	"maily/backend/internal/auth/token"
	"maily/backend/internal/domain"
)

// errorMapping 业务错误到 HTTP 状态码和中文消息的映射
type errorMapping struct {
	err    error
	status int
	msg    string
}

// 错误消息映射表（业务错误 -> 状态码、中文消息）
var errorMappings = []errorMapping{
	// 资源不存在
	{domain.ErrGroupNotFound, http.StatusNotFound, "订阅组不存在"},
	{domain.ErrSequenceNotFound, http.StatusNotFound, "序列不存在"},
	{domain.ErrMailingNotFound, http.StatusNotFound, "单次邮件不存在"},
	{domain.ErrSubscriberNotFound, http.StatusNotFound, "订阅者不存在"},
	{domain.ErrSubscriptionNotFound, http.StatusNotFound, "订阅不存在"},
	{domain.ErrAggregateNotFound, http.StatusNotFound, "聚合订阅不存在"},

	// 资源冲突
	{domain.ErrGroupExists, http.StatusConflict, "订阅组已存在"},
	{domain.ErrSequenceExists, http.StatusConflict, "序列已存在"},
	{domain.ErrMailingExists, http.StatusConflict, "单次邮件已存在"},
	{domain.ErrSubscriberExists, http.StatusConflict, "订阅者邮箱已存在"},

	// 退订令牌
	{token.ErrExpiredToken, http.StatusUnauthorized, "退订链接已过期"},
	{token.ErrInvalidToken, http.StatusUnauthorized, "退订链接无效"},
}

// lookupError 查找错误对应的状态码和中文消息；未知错误返回 false
func lookupError(err error) (int, string, bool) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.msg, true
		}
	}
	if errors.Is(err, domain.ErrValidation) {
		return http.StatusBadRequest, err.Error(), true
	}
	return 0, "", false
}

// GetErrorMessage 获取错误的中文消息
func GetErrorMessage(err error) string {
	if _, msg, ok := lookupError(err); ok {
		return msg
	}
	return err.Error()
}

// 通用错误消息
const (
	MsgInvalidRequest = "请求参数格式错误"
	MsgInternalError  = "服务器内部错误"
	MsgTokenRequired  = "缺少退订令牌"
)
