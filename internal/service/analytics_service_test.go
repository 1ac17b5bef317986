package service

import (
	"math"
	"testing"
	"time"

	"github.com/onething/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAnalyticsTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.TaskItem{}, &db.FocusEntry{}); err != nil {
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

func seedEntry(t *testing.T, day time.Time, rating int, plan *db.ActionPlan) {
	t.Helper()
	task := db.TaskItem{
		ID:       "task-" + day.Format("20060102"),
		Text:     "focus of " + day.Format("2006-01-02"),
		Category: db.CategoryTask,
		Rating:   rating,
		Plan:     plan,
	}
	if err := NewHistoryService(db.DB).UpsertToday(&task, day); err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}
}

func TestWeeklySummary(t *testing.T) {
	cleanup := setupAnalyticsTestDB(t)
	defer cleanup()

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)

	seedEntry(t, now, 5, &db.ActionPlan{KeyActions: []db.ActionPlanItem{
		{ID: "a", Completed: true},
		{ID: "b", Completed: true},
		{ID: "c", Completed: false},
	}})
	seedEntry(t, now.AddDate(0, 0, -1), 4, &db.ActionPlan{KeyActions: []db.ActionPlanItem{
		{ID: "d", Completed: true},
	}})
	// 窗口之外的记录不参与统计
	seedEntry(t, now.AddDate(0, 0, -9), 5, &db.ActionPlan{KeyActions: []db.ActionPlanItem{
		{ID: "e", Completed: true},
	}})

	svc := NewAnalyticsService(db.DB)
	summary, err := svc.WeeklySummary(now, 50)
	if err != nil {
		t.Fatalf("WeeklySummary returned error: %v", err)
	}

	if summary.FocusDays != 2 {
		t.Fatalf("expected 2 focus days, got %d", summary.FocusDays)
	}
	if summary.CompletedActions != 3 {
		t.Fatalf("expected 3 completed actions, got %d", summary.CompletedActions)
	}

	wantRate := (2.0/3.0*100 + 100) / 2
	if math.Abs(summary.SuccessRate-wantRate) > 0.01 {
		t.Fatalf("expected success rate %.2f, got %.2f", wantRate, summary.SuccessRate)
	}

	wantValue := (2.0/3.0 + 1.0) * 8 * 50
	if math.Abs(summary.PotentialValue-wantValue) > 0.01 {
		t.Fatalf("expected potential value %.2f, got %.2f", wantValue, summary.PotentialValue)
	}
}

func TestWeeklySummaryEmptyLedger(t *testing.T) {
	cleanup := setupAnalyticsTestDB(t)
	defer cleanup()

	svc := NewAnalyticsService(db.DB)
	summary, err := svc.WeeklySummary(time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local), 50)
	if err != nil {
		t.Fatalf("WeeklySummary returned error: %v", err)
	}

	if summary.FocusDays != 0 || summary.SuccessRate != 0 || summary.PotentialValue != 0 {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
}

func TestTrendCountsFullyCompletedPlans(t *testing.T) {
	cleanup := setupAnalyticsTestDB(t)
	defer cleanup()

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)

	seedEntry(t, now, 5, &db.ActionPlan{KeyActions: []db.ActionPlanItem{
		{ID: "a", Completed: true},
	}})
	seedEntry(t, now.AddDate(0, 0, -1), 4, &db.ActionPlan{KeyActions: []db.ActionPlanItem{
		{ID: "b", Completed: false},
	}})

	svc := NewAnalyticsService(db.DB)
	points, err := svc.Trend(now)
	if err != nil {
		t.Fatalf("Trend returned error: %v", err)
	}

	if len(points) != 4 {
		t.Fatalf("expected 4 trend points, got %d", len(points))
	}

	latest := points[3]
	if latest.Count != 2 {
		t.Fatalf("expected 2 planned entries this week, got %d", latest.Count)
	}
	if math.Abs(latest.Value-50) > 0.01 {
		t.Fatalf("expected 50%% completion, got %.2f", latest.Value)
	}
}

func TestBreakdownClassifiesByRating(t *testing.T) {
	cleanup := setupAnalyticsTestDB(t)
	defer cleanup()

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)

	seedEntry(t, now, 5, nil)
	seedEntry(t, now.AddDate(0, 0, -1), 4, nil)
	seedEntry(t, now.AddDate(0, 0, -2), 1, nil)

	svc := NewAnalyticsService(db.DB)
	breakdown, err := svc.Breakdown()
	if err != nil {
		t.Fatalf("Breakdown returned error: %v", err)
	}

	if breakdown.MakeMoney != 1 || breakdown.IncreaseRate != 1 || breakdown.GiveEnergy != 1 {
		t.Fatalf("unexpected breakdown: %+v", breakdown)
	}
}
