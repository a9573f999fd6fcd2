package httptransport

import (
	"time"

	"github.com/gin-gonic/gin"

	"maily/backend/internal/service"
)

// ========== Sequence Handlers ==========

func (h *Handler) createSequence(c *gin.Context) {
	var input service.CreateSequenceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	sequence, err := h.sequences.Create(input)
	if err != nil {
		h.fail(c, err)
		return
	}
	Created(c, sequence)
}

func (h *Handler) listSequences(c *gin.Context) {
	sequences, err := h.sequences.List()
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, sequences)
}

func (h *Handler) getSequence(c *gin.Context) {
	sequence, err := h.sequences.Get(c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, sequence)
}

// updateSequence 修改序列的订阅组或 autosubscribe
//
// 已有订阅在下一次访问时按新的分组重新关联。
func (h *Handler) updateSequence(c *gin.Context) {
	var input service.UpdateSequenceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	sequence, err := h.sequences.Update(c.Param("name"), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, sequence)
}

// getSubscription godoc
// @Summary 获取或创建序列订阅
// @Description 返回订阅记录及其生效状态；已分组序列的状态取自聚合订阅
// @Tags Sequences
// @Produce json
// @Param name path string true "序列名称"
// @Param entityId path string true "订阅者ID"
// @Success 200 {object} Response{data=domain.SubscriptionStatus}
// @Failure 404 {object} Response
// @Security ApiKeyAuth
// @Router /v1/sequences/{name}/subscriptions/{entityId} [get]
func (h *Handler) getSubscription(c *gin.Context) {
	status, err := h.sequences.Status(c.Param("name"), c.Param("entityId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, status)
}

func (h *Handler) activateSubscription(c *gin.Context) {
	h.setSubscriptionActive(c, true)
}

func (h *Handler) deactivateSubscription(c *gin.Context) {
	h.setSubscriptionActive(c, false)
}

func (h *Handler) setSubscriptionActive(c *gin.Context, active bool) {
	status, err := h.sequences.SetActive(c.Param("name"), c.Param("entityId"), active)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, status)
}

// tokenResponse 退订令牌响应
type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// issueToken 为订阅签发退订令牌
func (h *Handler) issueToken(c *gin.Context) {
	sub, err := h.sequences.SubscriptionFor(c.Param("name"), c.Param("entityId"))
	if err != nil {
		h.fail(c, err)
		return
	}

	signed, expiresAt, err := h.tokens.Issue(sub.EntityID, sub.SequenceID)
	if err != nil {
		h.fail(c, err)
		return
	}

	Created(c, tokenResponse{Token: signed, ExpiresAt: expiresAt})
}
