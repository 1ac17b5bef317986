package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// 浏览器偏好保存在会话 Cookie 中，与业务数据隔离
const (
	prefKeyTheme       = "theme"
	prefKeyIdeasLayout = "ideasLayout"
	prefKeyLanguage    = "language"

	defaultTheme       = "system"
	defaultIdeasLayout = "categorized"
	defaultLanguage    = "en"
)

type preferencesRequest struct {
	Theme       string `json:"theme"`
	IdeasLayout string `json:"ideasLayout"`
	Language    string `json:"language"`
}

// GetPreferences 返回当前浏览器的界面偏好
func (a *API) GetPreferences(c *gin.Context) {
	session := sessions.Default(c)

	c.JSON(http.StatusOK, gin.H{
		"theme":       sessionString(session, prefKeyTheme, defaultTheme),
		"ideasLayout": sessionString(session, prefKeyIdeasLayout, defaultIdeasLayout),
		"language":    sessionString(session, prefKeyLanguage, defaultLanguage),
	})
}

// UpdatePreferences 保存界面偏好，未识别的取值回退默认
func (a *API) UpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if !bindJSON(c, &req, "请求格式错误") {
		return
	}

	session := sessions.Default(c)
	session.Set(prefKeyTheme, normalizeTheme(req.Theme))
	session.Set(prefKeyIdeasLayout, normalizeIdeasLayout(req.IdeasLayout))
	session.Set(prefKeyLanguage, normalizeLanguage(req.Language))

	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "保存偏好失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "偏好保存成功"})
}

func sessionString(session sessions.Session, key, fallback string) string {
	if value, ok := session.Get(key).(string); ok && value != "" {
		return value
	}
	return fallback
}

func normalizeTheme(theme string) string {
	switch strings.TrimSpace(strings.ToLower(theme)) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	default:
		return defaultTheme
	}
}

func normalizeIdeasLayout(layout string) string {
	if strings.TrimSpace(strings.ToLower(layout)) == "simple" {
		return "simple"
	}
	return defaultIdeasLayout
}

func normalizeLanguage(language string) string {
	if strings.TrimSpace(strings.ToLower(language)) == "zh" {
		return "zh"
	}
	return defaultLanguage
}
