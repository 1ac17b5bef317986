package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/onething/internal/config"
	"github.com/onething/internal/handler"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件，用于保存浏览器界面偏好
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("onething_session", store))

	// 静态文件服务（前端资源与上传的图片）
	r.Static("/static", "./web/static")

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	a := handler.NewAPI(gdb, cfg.UploadDir, cfg.UploadURLPath)

	api := r.Group("/api")
	{
		tasks := api.Group("/tasks")
		{
			tasks.GET("", a.GetTasks)
			tasks.POST("", a.CreateTask)
			tasks.GET("/:id", a.GetTask)
			tasks.PUT("/:id", a.UpdateTask)
			tasks.DELETE("/:id", a.DeleteTask)
			tasks.POST("/:id/ignore", a.IgnoreTask)
			tasks.POST("/:id/restore", a.RestoreTask)
			tasks.POST("/:id/routine-log", a.ToggleRoutineLog)

			tasks.POST("/:id/plan/generate", a.GeneratePlan)
			tasks.POST("/:id/plan/extend", a.ExtendPlan)
			tasks.POST("/:id/plan/actions", a.AddPlanAction)
			tasks.PUT("/:id/plan/actions/:actionID", a.TogglePlanAction)
			tasks.DELETE("/:id/plan/actions/:actionID", a.RemovePlanAction)
		}

		focus := api.Group("/one-thing")
		{
			focus.GET("", a.GetOneThing)
			focus.GET("/history", a.GetFocusHistory)
			focus.POST("/reflection", a.SaveReflection)
		}

		analytics := api.Group("/analytics")
		{
			analytics.GET("/weekly", a.GetWeeklyAnalytics)
			analytics.GET("/trend", a.GetTrendAnalytics)
			analytics.GET("/focus", a.GetFocusBreakdown)
		}

		settings := api.Group("/settings")
		{
			settings.GET("/rate", a.GetRate)
			settings.PUT("/rate", a.SetRate)
			settings.GET("/ai", a.GetAISettings)
			settings.PUT("/ai", a.UpdateAISettings)
			settings.POST("/ai/test", a.TestAIConnection)
			settings.POST("/reset", a.ResetData)
		}

		vision := api.Group("/vision")
		{
			vision.GET("", a.ListVisionItems)
			vision.POST("", a.CreateVisionItem)
			vision.PUT("/:id", a.UpdateVisionItem)
			vision.DELETE("/:id", a.DeleteVisionItem)
		}

		api.POST("/upload/image", a.UploadImage)

		api.GET("/preferences", a.GetPreferences)
		api.PUT("/preferences", a.UpdatePreferences)
	}

	return r
}
