package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maily/backend/internal/auth/token"
)

// unsubscribe godoc
// @Summary 一键退订
// @Description 使用退订令牌停用订阅；已分组序列会停用整个订阅组
// @Tags Public
// @Produce json
// @Param token query string true "退订令牌"
// @Success 200 {object} Response{data=domain.SubscriptionStatus}
// @Failure 401 {object} Response
// @Failure 429 {object} Response
// @Router /v1/unsubscribe [post]
func (h *Handler) unsubscribe(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		h.metrics.RecordUnsubscribe("missing")
		BadRequest(c, MsgTokenRequired)
		return
	}

	claims, err := h.tokens.Parse(raw)
	if err != nil {
		result := "invalid"
		if errors.Is(err, token.ErrExpiredToken) {
			result = "expired"
		}
		h.metrics.RecordUnsubscribe(result)
		h.fail(c, err)
		return
	}

	sub, err := h.subscriptions.SubscriptionFor(claims.EntityID, claims.SequenceID)
	if err != nil {
		h.metrics.RecordUnsubscribe("error")
		h.fail(c, err)
		return
	}
	if err := h.subscriptions.Deactivate(sub); err != nil {
		h.metrics.RecordUnsubscribe("error")
		h.fail(c, err)
		return
	}

	status, err := h.subscriptions.Status(claims.EntityID, claims.SequenceID)
	if err != nil {
		h.metrics.RecordUnsubscribe("error")
		h.fail(c, err)
		return
	}

	h.metrics.RecordUnsubscribe("ok")
	h.logger.Info("unsubscribed via token",
		zap.String("entity_id", claims.EntityID),
		zap.String("sequence_id", claims.SequenceID),
		zap.Bool("aggregated", sub.Aggregated),
	)
	Success(c, status)
}
