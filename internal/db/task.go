package db

import (
	"time"

	"gorm.io/datatypes"
)

// 任务分类。IGNORED 表示软删除，任何活动视图都不会展示。
const (
	CategoryTask         = "task"
	CategoryMakeMoney    = "make-money"
	CategoryIncreaseRate = "increase-rate"
	CategoryGiveEnergy   = "give-energy"
	CategoryIgnored      = "ignored"
)

// SubTask 表示任务下的一个子步骤
type SubTask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// ActionPlanItem 表示行动计划清单中的一项
type ActionPlanItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// ActionPlan 表示基于某个生产力框架生成的行动计划
// Framework 记录框架名称，KeyActions 保持生成时的顺序
type ActionPlan struct {
	Framework  string           `json:"framework,omitempty"`
	KeyActions []ActionPlanItem `json:"keyActions"`
}

// TaskItem 定义了想法/任务模型
// ID 使用 UUID 字符串，创建后不可变，作为全局关联键。
// Rating 取值 0-5；SubTasks/Plan/CompletionHistory 以 JSON 列存储。
// CompletionHistory 仅供例行任务打卡日历使用，保存 YYYY-MM-DD 日期集合。
type TaskItem struct {
	ID                string `gorm:"primaryKey;size:36"`
	Text              string `gorm:"type:text;not null"`
	Category          string `gorm:"size:20;index;default:task"`
	Rating            int
	Delegated         bool
	Automated         bool
	Completed         bool
	Batched           bool
	IsRoutine         bool
	CreatedAt         time.Time `gorm:"index"`
	UpdatedAt         time.Time
	SubTasks          datatypes.JSONSlice[SubTask]
	Plan              *ActionPlan `gorm:"type:text;serializer:json"`
	CompletionHistory datatypes.JSONSlice[string]
}

// HasPlan 判断任务是否已有行动计划
func (t *TaskItem) HasPlan() bool {
	return t.Plan != nil && len(t.Plan.KeyActions) > 0
}
