package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetWeeklyAnalytics 返回最近 7 天的专注统计
func (a *API) GetWeeklyAnalytics(c *gin.Context) {
	settings, err := a.settings.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "读取设置失败")
		return
	}

	summary, err := a.analytics.WeeklySummary(time.Now(), settings.HourlyRate)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取周统计失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"successRate":      summary.SuccessRate,
		"focusDays":        summary.FocusDays,
		"completedActions": summary.CompletedActions,
		"potentialValue":   summary.PotentialValue,
	})
}

// GetTrendAnalytics 返回最近 4 周的完成率趋势
func (a *API) GetTrendAnalytics(c *gin.Context) {
	points, err := a.analytics.Trend(time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取趋势统计失败")
		return
	}

	response := make([]gin.H, 0, len(points))
	for _, point := range points {
		response = append(response, gin.H{
			"label": point.Label,
			"value": point.Value,
			"count": point.Count,
		})
	}

	c.JSON(http.StatusOK, gin.H{"trend": response})
}

// GetFocusBreakdown 返回最近专注记录的分类分布
func (a *API) GetFocusBreakdown(c *gin.Context) {
	breakdown, err := a.analytics.Breakdown()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取分类统计失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"makeMoney":    breakdown.MakeMoney,
		"increaseRate": breakdown.IncreaseRate,
		"giveEnergy":   breakdown.GiveEnergy,
	})
}
