package service

import (
	"sort"
	"time"

	"github.com/onething/internal/db"
)

// SelectOneThing 从任务集合中推导当前的"每日一事"。
// 纯函数：过滤出 rating>0、未委派、未自动化、未完成、非例行且未忽略的任务，
// 按评分降序排列，评分相同时新创建的优先；时间戳也相同时按 ID 降序兜底，
// 保证任意固定输入都有确定的全序结果。无可选任务时返回 nil。
func SelectOneThing(items []db.TaskItem) *db.TaskItem {
	candidates := make([]db.TaskItem, 0, len(items))
	for _, item := range items {
		if item.Rating > 0 &&
			!item.Delegated &&
			!item.Automated &&
			!item.Completed &&
			!item.IsRoutine &&
			item.Category != db.CategoryIgnored {
			candidates = append(candidates, item)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	selected := candidates[0]
	return &selected
}

// CategoryFromRating 根据星级评分推导任务的语义分类。
// 5 星对应 make-money，3-4 星对应 increase-rate，1-2 星对应 give-energy，
// 0 星返回空字符串。仅供统计分析使用，不参与选择逻辑。
func CategoryFromRating(rating int) string {
	switch {
	case rating >= 5:
		return db.CategoryMakeMoney
	case rating >= 3:
		return db.CategoryIncreaseRate
	case rating > 0:
		return db.CategoryGiveEnergy
	default:
		return ""
	}
}

// localDate 返回本地时区的日历日期字符串。
// 全部日期键必须使用本地时间而非 UTC，避免临近午夜时跨天偏移。
func localDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func clampRating(rating int) int {
	if rating < 0 {
		return 0
	}
	if rating > 5 {
		return 5
	}
	return rating
}
