package handler

import (
	"github.com/onething/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	tasks     *service.TaskService
	history   *service.HistoryService
	analytics *service.AnalyticsService
	settings  *service.SettingsService
	vision    *service.VisionService
	plans     service.PlanGenerator
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, uploadDir, uploadURL string) *API {
	settingsService := service.NewSettingsService(gdb)

	return &API{
		db:        gdb,
		tasks:     service.NewTaskService(gdb),
		history:   service.NewHistoryService(gdb),
		analytics: service.NewAnalyticsService(gdb),
		settings:  settingsService,
		vision:    service.NewVisionService(gdb),
		plans:     service.NewAIPlanService(settingsService),
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}

// SetPlanGenerator 替换计划生成实现，主要面向测试场景。
func (a *API) SetPlanGenerator(generator service.PlanGenerator) {
	if generator != nil {
		a.plans = generator
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}
