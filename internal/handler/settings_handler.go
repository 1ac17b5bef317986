package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onething/internal/service"
)

type rateRequest struct {
	AnnualIncome string `json:"annualIncome" binding:"required"`
}

type aiSettingsRequest struct {
	Provider       string `json:"provider"`
	OpenAIAPIKey   string `json:"openaiApiKey"`
	DeepSeekAPIKey string `json:"deepseekApiKey"`
}

type aiTestRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey" binding:"required"`
}

// GetRate 返回当前的收入与时薪设置
func (a *API) GetRate(c *gin.Context) {
	settings, err := a.settings.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "读取设置失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"annualIncome": settings.AnnualIncome,
		"hourlyRate":   settings.HourlyRate,
	})
}

// SetRate 根据年收入换算并保存时薪
func (a *API) SetRate(c *gin.Context) {
	var req rateRequest
	if !bindJSON(c, &req, "请输入年收入") {
		return
	}

	settings, err := a.settings.SetRate(req.AnnualIncome)
	if err != nil {
		if errors.Is(err, service.ErrInvalidIncome) {
			respondError(c, http.StatusBadRequest, "请输入有效的年收入")
			return
		}
		respondError(c, http.StatusInternalServerError, "保存时薪失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"annualIncome": settings.AnnualIncome,
		"hourlyRate":   settings.HourlyRate,
	})
}

// GetAISettings 返回 AI 平台配置
func (a *API) GetAISettings(c *gin.Context) {
	settings, err := a.settings.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "读取设置失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provider":       settings.AIProvider,
		"openaiApiKey":   settings.OpenAIAPIKey,
		"deepseekApiKey": settings.DeepSeekAPIKey,
	})
}

// UpdateAISettings 保存 AI 平台配置
func (a *API) UpdateAISettings(c *gin.Context) {
	var req aiSettingsRequest
	if !bindJSON(c, &req, "请求格式错误") {
		return
	}

	settings, err := a.settings.UpdateAISettings(service.AISettingsInput{
		Provider:       req.Provider,
		OpenAIAPIKey:   req.OpenAIAPIKey,
		DeepSeekAPIKey: req.DeepSeekAPIKey,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存设置失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "设置保存成功", "provider": settings.AIProvider})
}

// TestAIConnection 验证 API Key 是否可用
func (a *API) TestAIConnection(c *gin.Context) {
	var req aiTestRequest
	if !bindJSON(c, &req, "请提供 API Key") {
		return
	}

	if err := a.settings.TestAIConnection(c.Request.Context(), req.Provider, req.APIKey); err != nil {
		if errors.Is(err, service.ErrAIAPIKeyMissing) {
			respondError(c, http.StatusBadRequest, "请提供 API Key")
			return
		}
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "连接测试成功"})
}

// ResetData 清空全部数据（任务、历史账本、设置），等价于前端的"重新开始"。
func (a *API) ResetData(c *gin.Context) {
	if err := a.tasks.DeleteAll(); err != nil {
		respondError(c, http.StatusInternalServerError, "清空任务失败")
		return
	}
	if err := a.history.DeleteAll(); err != nil {
		respondError(c, http.StatusInternalServerError, "清空历史记录失败")
		return
	}
	if err := a.settings.ResetAll(); err != nil {
		respondError(c, http.StatusInternalServerError, "清空设置失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "数据已重置"})
}
