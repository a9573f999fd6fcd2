package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maily/backend/internal/auth/token"
	"maily/backend/internal/monitoring"
	"maily/backend/internal/service"
)

// Handler 聚合所有 HTTP 处理逻辑。
type Handler struct {
	groups        *service.GroupService
	sequences     *service.SequenceService
	mailings      *service.MailingService
	subscribers   *service.SubscriberService
	subscriptions *service.SubscriptionService
	tokens        *token.Manager
	metrics       *monitoring.Metrics
	logger        *zap.Logger
}

// fail 将业务错误写入统一响应；未知错误按 500 处理并记录日志
func (h *Handler) fail(c *gin.Context, err error) {
	if status, msg, ok := lookupError(err); ok {
		Error(c, status, msg)
		return
	}

	_ = c.Error(err)
	h.logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalError(c, MsgInternalError)
}
