package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/onething/internal/db"
	"github.com/onething/internal/service"
)

// taskView 输出与前端一致的 camelCase 字段
func taskView(item db.TaskItem) gin.H {
	view := gin.H{
		"id":                item.ID,
		"text":              item.Text,
		"category":          item.Category,
		"rating":            item.Rating,
		"delegated":         item.Delegated,
		"automated":         item.Automated,
		"completed":         item.Completed,
		"batched":           item.Batched,
		"isRoutine":         item.IsRoutine,
		"createdAt":         item.CreatedAt.UnixMilli(),
		"subTasks":          []db.SubTask(item.SubTasks),
		"completionHistory": []string(item.CompletionHistory),
	}
	if item.Plan != nil {
		view["actionPlan"] = item.Plan
	}
	return view
}

func entryView(entry db.FocusEntry) gin.H {
	view := gin.H{
		"date": entry.EntryDate,
		"task": entry.Task.Data(),
	}
	if entry.Reflection != nil {
		view["reflection"] = entry.Reflection
		view["notesHtml"] = service.RenderMarkdown(entry.Reflection.Notes)
	}
	return view
}

func visionView(item db.VisionItem) gin.H {
	return gin.H{
		"id":        item.ID,
		"title":     item.Title,
		"note":      item.Note,
		"noteHtml":  service.RenderMarkdown(item.Note),
		"imageUrl":  item.ImageURL,
		"sortOrder": item.SortOrder,
	}
}
