package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onething/internal/service"
)

type visionPayload struct {
	Title     string `json:"title" binding:"required"`
	Note      string `json:"note"`
	ImageURL  string `json:"imageUrl"`
	SortOrder int    `json:"sortOrder"`
}

func (p visionPayload) toInput() service.VisionInput {
	return service.VisionInput{
		Title:     p.Title,
		Note:      p.Note,
		ImageURL:  p.ImageURL,
		SortOrder: p.SortOrder,
	}
}

// ListVisionItems 返回全部愿景卡片
func (a *API) ListVisionItems(c *gin.Context) {
	items, err := a.vision.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取愿景板失败")
		return
	}

	response := make([]gin.H, 0, len(items))
	for _, item := range items {
		response = append(response, visionView(item))
	}

	c.JSON(http.StatusOK, gin.H{"items": response})
}

// CreateVisionItem 新建愿景卡片
func (a *API) CreateVisionItem(c *gin.Context) {
	var payload visionPayload
	if !bindJSON(c, &payload, "标题不能为空") {
		return
	}

	item, err := a.vision.Create(payload.toInput())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "创建愿景卡片失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "创建成功", "item": visionView(*item)})
}

// UpdateVisionItem 更新愿景卡片
func (a *API) UpdateVisionItem(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的卡片ID")
		return
	}

	var payload visionPayload
	if !bindJSON(c, &payload, "标题不能为空") {
		return
	}

	item, err := a.vision.Update(id, payload.toInput())
	if err != nil {
		if errors.Is(err, service.ErrVisionNotFound) {
			respondError(c, http.StatusNotFound, "卡片不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "更新愿景卡片失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "更新成功", "item": visionView(*item)})
}

// DeleteVisionItem 删除愿景卡片
func (a *API) DeleteVisionItem(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的卡片ID")
		return
	}

	if err := a.vision.Delete(id); err != nil {
		if errors.Is(err, service.ErrVisionNotFound) {
			respondError(c, http.StatusNotFound, "卡片不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "删除愿景卡片失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}
