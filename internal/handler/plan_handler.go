package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onething/internal/service"
)

type planActionRequest struct {
	Text string `json:"text" binding:"required"`
}

type togglePlanActionRequest struct {
	Completed bool `json:"completed"`
}

// GeneratePlan 为任务生成 AI 行动计划并写回任务存储
func (a *API) GeneratePlan(c *gin.Context) {
	item, err := a.tasks.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "任务不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取任务失败")
		return
	}

	plan, err := a.plans.GeneratePlan(c.Request.Context(), item.Text)
	if err != nil {
		if errors.Is(err, service.ErrAIAPIKeyMissing) {
			respondError(c, http.StatusBadRequest, "请先在设置中配置 AI API Key")
			return
		}
		respondError(c, http.StatusBadGateway, "生成行动计划失败")
		return
	}

	updated, err := a.tasks.AttachPlan(item.ID, plan)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存行动计划失败")
		return
	}

	a.syncFocus(c)
	c.JSON(http.StatusOK, gin.H{"message": "行动计划生成成功", "task": taskView(*updated)})
}

// ExtendPlan 在已有计划的基础上追加 AI 建议的步骤
func (a *API) ExtendPlan(c *gin.Context) {
	item, err := a.tasks.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "任务不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取任务失败")
		return
	}

	if item.Plan == nil {
		respondError(c, http.StatusBadRequest, "任务还没有行动计划")
		return
	}

	actions, err := a.plans.ExtendPlan(c.Request.Context(), item.Text, *item.Plan)
	if err != nil {
		if errors.Is(err, service.ErrAIAPIKeyMissing) {
			respondError(c, http.StatusBadRequest, "请先在设置中配置 AI API Key")
			return
		}
		respondError(c, http.StatusBadGateway, "扩展行动计划失败")
		return
	}

	plan := *item.Plan
	plan.KeyActions = append(plan.KeyActions, actions...)

	updated, err := a.tasks.AttachPlan(item.ID, plan)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存行动计划失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "行动计划已扩展", "task": taskView(*updated)})
}

// AddPlanAction 手动追加一条计划项
func (a *API) AddPlanAction(c *gin.Context) {
	var req planActionRequest
	if !bindJSON(c, &req, "计划项内容不能为空") {
		return
	}

	item, err := a.tasks.AddPlanAction(c.Param("id"), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			respondError(c, http.StatusNotFound, "任务不存在")
		case errors.Is(err, service.ErrTaskTextRequired):
			respondError(c, http.StatusBadRequest, "计划项内容不能为空")
		default:
			respondError(c, http.StatusInternalServerError, "添加计划项失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskView(*item)})
}

// TogglePlanAction 设置计划项的完成状态
func (a *API) TogglePlanAction(c *gin.Context) {
	var req togglePlanActionRequest
	if !bindJSON(c, &req, "请求格式错误") {
		return
	}

	item, err := a.tasks.TogglePlanAction(c.Param("id"), c.Param("actionID"), req.Completed)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			respondError(c, http.StatusNotFound, "任务不存在")
		case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrPlanActionNotFound):
			respondError(c, http.StatusNotFound, "计划项不存在")
		default:
			respondError(c, http.StatusInternalServerError, "更新计划项失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskView(*item)})
}

// RemovePlanAction 删除计划项
func (a *API) RemovePlanAction(c *gin.Context) {
	item, err := a.tasks.RemovePlanAction(c.Param("id"), c.Param("actionID"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			respondError(c, http.StatusNotFound, "任务不存在")
		case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrPlanActionNotFound):
			respondError(c, http.StatusNotFound, "计划项不存在")
		default:
			respondError(c, http.StatusInternalServerError, "删除计划项失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskView(*item)})
}
