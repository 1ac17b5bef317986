package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/onething/internal/db"
	"github.com/onething/internal/service"
)

type reflectionRequest struct {
	Survey map[string]string `json:"survey"`
	Notes  string            `json:"notes"`
}

// GetOneThing 返回当前的"每日一事"及今天的账本记录。
// 每次读取都重新从任务存储推导焦点并同步账本，保证派生值不落后于存储。
func (a *API) GetOneThing(c *gin.Context) {
	now := time.Now()

	selected, err := a.history.SyncToday(now)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取每日一事失败")
		return
	}

	response := gin.H{"oneThing": nil, "today": nil}
	if selected != nil {
		response["oneThing"] = taskView(*selected)
	}

	entry, err := a.history.GetByDate(now.Format("2006-01-02"))
	if err == nil {
		response["today"] = entryView(*entry)
	} else if !errors.Is(err, service.ErrEntryNotFound) {
		respondError(c, http.StatusInternalServerError, "获取今日记录失败")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetFocusHistory 按日期倒序返回历史账本
func (a *API) GetFocusHistory(c *gin.Context) {
	entries, err := a.history.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取历史记录失败")
		return
	}

	response := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		response = append(response, entryView(entry))
	}

	c.JSON(http.StatusOK, gin.H{"history": response})
}

// SaveReflection 保存今天的复盘数据。
// 今天没有焦点记录时按无操作处理，返回 204 而非错误。
func (a *API) SaveReflection(c *gin.Context) {
	var req reflectionRequest
	if !bindJSON(c, &req, "复盘数据格式错误") {
		return
	}

	reflection := db.Reflection{
		Survey: req.Survey,
		Notes:  req.Notes,
	}
	if reflection.Survey == nil {
		reflection.Survey = map[string]string{}
	}

	if err := a.history.SaveReflection(reflection, time.Now()); err != nil {
		if errors.Is(err, service.ErrNoFocusToday) {
			c.Status(http.StatusNoContent)
			return
		}
		respondError(c, http.StatusInternalServerError, "保存复盘失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "复盘保存成功"})
}
