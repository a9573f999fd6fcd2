package httptransport

import (
	"github.com/gin-gonic/gin"

	"maily/backend/internal/service"
)

// ========== Subscription Group Handlers ==========

// createGroup godoc
// @Summary 创建订阅组
// @Tags Groups
// @Accept json
// @Produce json
// @Param group body service.CreateGroupInput true "订阅组信息"
// @Success 201 {object} Response{data=domain.SubscriptionGroup}
// @Failure 400 {object} Response
// @Failure 409 {object} Response
// @Security ApiKeyAuth
// @Router /v1/groups [post]
func (h *Handler) createGroup(c *gin.Context) {
	var input service.CreateGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	group, err := h.groups.Create(input)
	if err != nil {
		h.fail(c, err)
		return
	}

	Created(c, group)
}

func (h *Handler) listGroups(c *gin.Context) {
	groups, err := h.groups.List()
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, groups)
}

// getGroup 返回订阅组及其序列和单次邮件
func (h *Handler) getGroup(c *gin.Context) {
	detail, err := h.groups.Detail(c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, detail)
}

func (h *Handler) updateGroup(c *gin.Context) {
	var input service.UpdateGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	group, err := h.groups.Update(c.Param("name"), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, group)
}

func (h *Handler) listGroupAggregates(c *gin.Context) {
	aggregates, err := h.groups.Aggregates(c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, aggregates)
}

// getAggregate godoc
// @Summary 获取或创建聚合订阅
// @Description 订阅者在订阅组上的聚合订阅，首次访问时按订阅组的 autosubscribe 创建
// @Tags Groups
// @Produce json
// @Param name path string true "订阅组名称"
// @Param entityId path string true "订阅者ID"
// @Success 200 {object} Response{data=domain.AggregatedSubscription}
// @Failure 404 {object} Response
// @Security ApiKeyAuth
// @Router /v1/groups/{name}/aggregates/{entityId} [get]
func (h *Handler) getAggregate(c *gin.Context) {
	aggregate, err := h.groups.AggregateFor(c.Param("name"), c.Param("entityId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, aggregate)
}

func (h *Handler) activateAggregate(c *gin.Context) {
	h.setAggregateActive(c, true)
}

func (h *Handler) deactivateAggregate(c *gin.Context) {
	h.setAggregateActive(c, false)
}

func (h *Handler) setAggregateActive(c *gin.Context, active bool) {
	aggregate, err := h.groups.SetAggregateActive(c.Param("name"), c.Param("entityId"), active)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, aggregate)
}
