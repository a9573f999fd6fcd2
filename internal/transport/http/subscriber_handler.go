package httptransport

import (
	"github.com/gin-gonic/gin"

	"maily/backend/internal/service"
)

// ========== Subscriber & Mailing Handlers ==========

type createSubscriberRequest struct {
	Email string `json:"email" binding:"required,max=254"`
}

func (h *Handler) createSubscriber(c *gin.Context) {
	var req createSubscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	subscriber, err := h.subscribers.Create(req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	Created(c, subscriber)
}

func (h *Handler) getSubscriber(c *gin.Context) {
	subscriber, err := h.subscribers.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, subscriber)
}

// listSubscriberSubscriptions 列出订阅者的全部订阅及生效状态
func (h *Handler) listSubscriberSubscriptions(c *gin.Context) {
	statuses, err := h.subscriptions.ListForEntity(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, statuses)
}

func (h *Handler) createMailing(c *gin.Context) {
	var input service.CreateMailingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	mailing, err := h.mailings.Create(input)
	if err != nil {
		h.fail(c, err)
		return
	}
	Created(c, mailing)
}

func (h *Handler) getMailing(c *gin.Context) {
	mailing, err := h.mailings.Get(c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, mailing)
}
