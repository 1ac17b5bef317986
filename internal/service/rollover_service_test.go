package service

import (
	"io"
	"testing"
	"time"

	"github.com/onething/internal/db"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRolloverTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.TaskItem{}, &db.FocusEntry{}, &db.SystemSetting{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seedMarker(t *testing.T, date string) {
	t.Helper()
	if err := db.DB.Create(&db.SystemSetting{Key: db.SettingKeyLastVisitDate, Value: date}).Error; err != nil {
		t.Fatalf("failed to seed marker: %v", err)
	}
}

func currentMarker(t *testing.T) string {
	t.Helper()
	var setting db.SystemSetting
	if err := db.DB.Where("key = ?", db.SettingKeyLastVisitDate).First(&setting).Error; err != nil {
		return ""
	}
	return setting.Value
}

func TestRolloverResetsPreviousFocusTask(t *testing.T) {
	cleanup := setupRolloverTestDB(t)
	defer cleanup()

	task := db.TaskItem{
		ID:        "7",
		Text:      "ship the feature",
		Category:  db.CategoryTask,
		Rating:    5,
		Completed: true,
		Plan: &db.ActionPlan{
			Framework: "GTD",
			KeyActions: []db.ActionPlanItem{
				{ID: "a", Text: "step a", Completed: true},
				{ID: "b", Text: "step b", Completed: false},
			},
		},
	}
	if err := db.DB.Create(&task).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	history := NewHistoryService(db.DB)
	yesterday := time.Date(2024, 1, 9, 9, 0, 0, 0, time.Local)
	if err := history.UpsertToday(&task, yesterday); err != nil {
		t.Fatalf("failed to seed ledger entry: %v", err)
	}
	seedMarker(t, "2024-01-09")

	svc := NewRolloverService(db.DB, quietLogger())
	today := time.Date(2024, 1, 10, 0, 30, 0, 0, time.Local)
	if err := svc.Run(today); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var reset db.TaskItem
	if err := db.DB.First(&reset, "id = ?", "7").Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}

	if reset.Completed {
		t.Fatal("task should be eligible again after rollover")
	}
	if reset.Text != "ship the feature" {
		t.Fatalf("task text must be untouched, got %q", reset.Text)
	}
	if reset.Plan == nil || reset.Plan.Framework != "GTD" {
		t.Fatalf("plan framework must be preserved, got %+v", reset.Plan)
	}
	for _, action := range reset.Plan.KeyActions {
		if action.Completed {
			t.Fatalf("checklist item %s should be reset", action.ID)
		}
	}

	if got := currentMarker(t); got != "2024-01-10" {
		t.Fatalf("marker should advance to today, got %q", got)
	}
}

func TestRolloverIdempotentSameDay(t *testing.T) {
	cleanup := setupRolloverTestDB(t)
	defer cleanup()

	task := db.TaskItem{
		ID:       "7",
		Text:     "deep work",
		Category: db.CategoryTask,
		Rating:   4,
		Plan: &db.ActionPlan{
			KeyActions: []db.ActionPlanItem{{ID: "a", Text: "step", Completed: false}},
		},
	}
	if err := db.DB.Create(&task).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	history := NewHistoryService(db.DB)
	if err := history.UpsertToday(&task, time.Date(2024, 1, 9, 9, 0, 0, 0, time.Local)); err != nil {
		t.Fatalf("failed to seed ledger entry: %v", err)
	}
	seedMarker(t, "2024-01-09")

	svc := NewRolloverService(db.DB, quietLogger())
	today := time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)
	if err := svc.Run(today); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// 第一次重置后用户完成了一个计划项，再次启动不得重置它
	if _, err := NewTaskService(db.DB).TogglePlanAction("7", "a", true); err != nil {
		t.Fatalf("failed to complete plan action: %v", err)
	}

	if err := svc.Run(today.Add(2 * time.Hour)); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	var reloaded db.TaskItem
	if err := db.DB.First(&reloaded, "id = ?", "7").Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if !reloaded.Plan.KeyActions[0].Completed {
		t.Fatal("same-day second run must be a no-op")
	}
}

func TestRolloverSkipsDeletedTask(t *testing.T) {
	cleanup := setupRolloverTestDB(t)
	defer cleanup()

	task := db.TaskItem{ID: "gone", Text: "deleted later", Category: db.CategoryTask, Rating: 3}
	if err := db.DB.Create(&task).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	history := NewHistoryService(db.DB)
	if err := history.UpsertToday(&task, time.Date(2024, 1, 9, 9, 0, 0, 0, time.Local)); err != nil {
		t.Fatalf("failed to seed ledger entry: %v", err)
	}
	seedMarker(t, "2024-01-09")

	if err := db.DB.Delete(&db.TaskItem{}, "id = ?", "gone").Error; err != nil {
		t.Fatalf("failed to delete task: %v", err)
	}

	svc := NewRolloverService(db.DB, quietLogger())
	if err := svc.Run(time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)); err != nil {
		t.Fatalf("Run should silently skip a deleted task: %v", err)
	}

	if got := currentMarker(t); got != "2024-01-10" {
		t.Fatalf("marker should still advance, got %q", got)
	}
}

func TestRolloverEmptyMarkerJustAdvances(t *testing.T) {
	cleanup := setupRolloverTestDB(t)
	defer cleanup()

	task := db.TaskItem{ID: "1", Text: "untouched", Category: db.CategoryTask, Rating: 3, Completed: true}
	if err := db.DB.Create(&task).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	svc := NewRolloverService(db.DB, quietLogger())
	if err := svc.Run(time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var reloaded db.TaskItem
	if err := db.DB.First(&reloaded, "id = ?", "1").Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if !reloaded.Completed {
		t.Fatal("first-ever run must not reset anything")
	}
	if got := currentMarker(t); got != "2024-01-10" {
		t.Fatalf("marker should be initialized to today, got %q", got)
	}
}

func TestRolloverSameDayMarkerIsNoop(t *testing.T) {
	cleanup := setupRolloverTestDB(t)
	defer cleanup()

	seedMarker(t, "2024-01-10")

	svc := NewRolloverService(db.DB, quietLogger())
	if err := svc.Run(time.Date(2024, 1, 10, 23, 59, 0, 0, time.Local)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := currentMarker(t); got != "2024-01-10" {
		t.Fatalf("marker should be unchanged, got %q", got)
	}
}

func TestRolloverSkipsMissingLedgerEntry(t *testing.T) {
	cleanup := setupRolloverTestDB(t)
	defer cleanup()

	// 标记日期当天没有账本记录（比如多天未打开应用）
	seedMarker(t, "2024-01-05")

	svc := NewRolloverService(db.DB, quietLogger())
	if err := svc.Run(time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := currentMarker(t); got != "2024-01-10" {
		t.Fatalf("marker should advance past the gap, got %q", got)
	}
}
