package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/onething/internal/db"
	"github.com/onething/internal/service"
)

type createTaskRequest struct {
	Text string `json:"text" binding:"required"`
}

type updateTaskRequest struct {
	Text      string         `json:"text" binding:"required"`
	Category  string         `json:"category"`
	Rating    int            `json:"rating"`
	Delegated bool           `json:"delegated"`
	Automated bool           `json:"automated"`
	Completed bool           `json:"completed"`
	Batched   bool           `json:"batched"`
	IsRoutine bool           `json:"isRoutine"`
	SubTasks  []db.SubTask   `json:"subTasks"`
	Plan      *db.ActionPlan `json:"actionPlan"`
}

type routineLogRequest struct {
	Date string `json:"date"`
}

// GetTasks 获取任务列表
func (a *API) GetTasks(c *gin.Context) {
	filter := service.TaskFilter{
		Category:       strings.TrimSpace(c.Query("category")),
		Search:         strings.TrimSpace(c.Query("search")),
		IncludeIgnored: c.Query("include_ignored") == "true",
	}

	items, err := a.tasks.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取任务列表失败")
		return
	}

	response := make([]gin.H, 0, len(items))
	for _, item := range items {
		response = append(response, taskView(item))
	}

	c.JSON(http.StatusOK, gin.H{"tasks": response})
}

// GetTask 获取单个任务
func (a *API) GetTask(c *gin.Context) {
	item, err := a.tasks.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "任务不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取任务失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskView(*item)})
}

// CreateTask 创建新任务
func (a *API) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if !bindJSON(c, &req, "任务内容不能为空") {
		return
	}

	item, err := a.tasks.Create(req.Text)
	if err != nil {
		if errors.Is(err, service.ErrTaskTextRequired) {
			respondError(c, http.StatusBadRequest, "任务内容不能为空")
			return
		}
		respondError(c, http.StatusInternalServerError, "创建任务失败")
		return
	}

	a.syncFocus(c)
	c.JSON(http.StatusOK, gin.H{"message": "任务创建成功", "task": taskView(*item)})
}

// UpdateTask 整体替换任务字段
func (a *API) UpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if !bindJSON(c, &req, "任务内容不能为空") {
		return
	}

	item, err := a.tasks.Update(c.Param("id"), service.TaskInput{
		Text:      req.Text,
		Category:  req.Category,
		Rating:    req.Rating,
		Delegated: req.Delegated,
		Automated: req.Automated,
		Completed: req.Completed,
		Batched:   req.Batched,
		IsRoutine: req.IsRoutine,
		SubTasks:  req.SubTasks,
		Plan:      req.Plan,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			respondError(c, http.StatusNotFound, "任务不存在")
		case errors.Is(err, service.ErrTaskTextRequired):
			respondError(c, http.StatusBadRequest, "任务内容不能为空")
		default:
			respondError(c, http.StatusInternalServerError, "更新任务失败")
		}
		return
	}

	a.syncFocus(c)
	c.JSON(http.StatusOK, gin.H{"message": "任务更新成功", "task": taskView(*item)})
}

// DeleteTask 彻底删除任务
func (a *API) DeleteTask(c *gin.Context) {
	if err := a.tasks.Delete(c.Param("id")); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "任务不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除任务失败")
		return
	}

	a.syncFocus(c)
	c.JSON(http.StatusOK, gin.H{"message": "任务删除成功"})
}

// IgnoreTask 将任务移入忽略列表
func (a *API) IgnoreTask(c *gin.Context) {
	item, err := a.tasks.Ignore(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "任务不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "忽略任务失败")
		return
	}

	a.syncFocus(c)
	c.JSON(http.StatusOK, gin.H{"message": "任务已忽略", "task": taskView(*item)})
}

// RestoreTask 恢复已忽略的任务
func (a *API) RestoreTask(c *gin.Context) {
	item, err := a.tasks.Restore(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "任务不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "恢复任务失败")
		return
	}

	a.syncFocus(c)
	c.JSON(http.StatusOK, gin.H{"message": "任务已恢复", "task": taskView(*item)})
}

// ToggleRoutineLog 翻转例行任务指定日期的打卡状态，日期缺省为今天
func (a *API) ToggleRoutineLog(c *gin.Context) {
	var req routineLogRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, http.StatusBadRequest, "请求格式错误")
		return
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else {
		normalized, err := parseLocalDate(date)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的日期格式")
			return
		}
		date = normalized
	}

	item, logged, err := a.tasks.ToggleRoutineLog(c.Param("id"), date)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "任务不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "打卡失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskView(*item), "logged": logged, "date": date})
}

// syncFocus 在任务存储变更后重新推导焦点并同步账本。
// 同步失败不影响本次请求结果，留给下一次读取时重试。
func (a *API) syncFocus(c *gin.Context) {
	if _, err := a.history.SyncToday(time.Now()); err != nil {
		c.Error(err)
	}
}
