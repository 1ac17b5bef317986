package service

import (
	"fmt"
	"time"

	"github.com/onething/internal/db"
	"gorm.io/gorm"
)

const (
	// 每个专注日按 8 小时折算潜在价值
	focusHoursPerDay = 8
	trendWeeks       = 4
	breakdownEntries = 30
)

// AnalyticsService 基于历史账本计算趋势统计。
// 所有指标都从账本快照推导，不回读存量任务。
type AnalyticsService struct {
	db *gorm.DB
}

// WeeklySummary 汇总最近 7 天的专注表现
type WeeklySummary struct {
	SuccessRate      float64
	FocusDays        int
	CompletedActions int
	PotentialValue   float64
}

// TrendPoint 表示趋势图中一周的数据
type TrendPoint struct {
	Label string
	Value float64
	Count int
}

// FocusBreakdown 按评分分类统计最近的专注去向
type FocusBreakdown struct {
	MakeMoney    int
	IncreaseRate int
	GiveEnergy   int
}

// NewAnalyticsService 构造 AnalyticsService
func NewAnalyticsService(gdb *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: gdb}
}

// WeeklySummary 计算最近 7 天的成功率、专注天数、完成步骤数与潜在价值。
// 单日成功率 = 计划中已完成项的占比，没有计划的日子记 0；
// 潜在价值 = Σ 单日完成比例 × 8 小时 × 时薪。
func (s *AnalyticsService) WeeklySummary(now time.Time, hourlyRate float64) (*WeeklySummary, error) {
	start := localDate(now.AddDate(0, 0, -6))
	today := localDate(now)

	var entries []db.FocusEntry
	if err := s.db.Where("entry_date BETWEEN ? AND ?", start, today).
		Order("entry_date ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list weekly entries: %w", err)
	}

	summary := &WeeklySummary{FocusDays: len(entries)}

	totalPercentage := 0.0
	for _, entry := range entries {
		fraction := planCompletionFraction(entry.Task.Data().Plan)
		totalPercentage += fraction * 100
		summary.CompletedActions += completedActionCount(entry.Task.Data().Plan)
		summary.PotentialValue += fraction * focusHoursPerDay * hourlyRate
	}

	if summary.FocusDays > 0 {
		summary.SuccessRate = totalPercentage / float64(summary.FocusDays)
	}

	return summary, nil
}

// Trend 返回最近 4 周每周计划全部完成的比例。
func (s *AnalyticsService) Trend(now time.Time) ([]TrendPoint, error) {
	points := []TrendPoint{
		{Label: "-4w"},
		{Label: "-3w"},
		{Label: "-2w"},
		{Label: "today"},
	}

	start := localDate(now.AddDate(0, 0, -trendWeeks*7+1))
	today := localDate(now)

	var entries []db.FocusEntry
	if err := s.db.Where("entry_date BETWEEN ? AND ?", start, today).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list trend entries: %w", err)
	}

	completed := make([]int, trendWeeks)
	for _, entry := range entries {
		entryDay, err := time.ParseInLocation("2006-01-02", entry.EntryDate, now.Location())
		if err != nil {
			continue
		}
		diffWeeks := int(now.Sub(entryDay).Hours() / 24 / 7)
		if diffWeeks < 0 || diffWeeks >= trendWeeks {
			continue
		}

		plan := entry.Task.Data().Plan
		if plan == nil || len(plan.KeyActions) == 0 {
			continue
		}

		index := trendWeeks - 1 - diffWeeks
		points[index].Count++
		if completedActionCount(plan) == len(plan.KeyActions) {
			completed[index]++
		}
	}

	for i := range points {
		if points[i].Count > 0 {
			points[i].Value = float64(completed[i]) / float64(points[i].Count) * 100
		}
	}

	return points, nil
}

// Breakdown 按评分分类统计最近 30 条专注记录的去向。
func (s *AnalyticsService) Breakdown() (*FocusBreakdown, error) {
	var entries []db.FocusEntry
	if err := s.db.Order("entry_date DESC").
		Limit(breakdownEntries).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list breakdown entries: %w", err)
	}

	breakdown := &FocusBreakdown{}
	for _, entry := range entries {
		switch CategoryFromRating(entry.Task.Data().Rating) {
		case db.CategoryMakeMoney:
			breakdown.MakeMoney++
		case db.CategoryIncreaseRate:
			breakdown.IncreaseRate++
		case db.CategoryGiveEnergy:
			breakdown.GiveEnergy++
		}
	}

	return breakdown, nil
}

func planCompletionFraction(plan *db.ActionPlan) float64 {
	if plan == nil || len(plan.KeyActions) == 0 {
		return 0
	}
	return float64(completedActionCount(plan)) / float64(len(plan.KeyActions))
}

func completedActionCount(plan *db.ActionPlan) int {
	if plan == nil {
		return 0
	}
	count := 0
	for _, action := range plan.KeyActions {
		if action.Completed {
			count++
		}
	}
	return count
}
