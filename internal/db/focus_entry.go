package db

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskSnapshot 是任务在被选为"每日一事"时的不可变副本。
// 与存量 TaskItem 区分开：历史条目持有副本而非引用，
// 凡是需要回写存量任务的逻辑必须通过 ID 重新定位。
type TaskSnapshot struct {
	ID        string           `json:"id"`
	Text      string           `json:"text"`
	Category  string           `json:"category"`
	Rating    int              `json:"rating"`
	IsRoutine bool             `json:"isRoutine"`
	CreatedAt int64            `json:"createdAt"`
	SubTasks  []SubTask        `json:"subTasks,omitempty"`
	Plan      *ActionPlan      `json:"actionPlan,omitempty"`
}

// SnapshotOf 从存量任务生成快照副本
func SnapshotOf(task TaskItem) TaskSnapshot {
	snap := TaskSnapshot{
		ID:        task.ID,
		Text:      task.Text,
		Category:  task.Category,
		Rating:    task.Rating,
		IsRoutine: task.IsRoutine,
		CreatedAt: task.CreatedAt.UnixMilli(),
		SubTasks:  append([]SubTask(nil), task.SubTasks...),
	}
	if task.Plan != nil {
		plan := ActionPlan{
			Framework:  task.Plan.Framework,
			KeyActions: append([]ActionPlanItem(nil), task.Plan.KeyActions...),
		}
		snap.Plan = &plan
	}
	return snap
}

// Reflection 表示某一天的复盘数据
// Survey 为固定问卷键到答案的映射，键包括
// satisfaction/focusFactor/improvement/timeWasted/trigger/strategy。
type Reflection struct {
	Survey map[string]string `json:"survey"`
	Notes  string            `json:"notes"`
}

// FocusEntry 表示"每日一事"历史账本中的一条记录
// EntryDate 使用本地时区日期（YYYY-MM-DD），每个日期至多一条。
// 对外按日期倒序呈现，等价于原始设计的头部插入顺序。
type FocusEntry struct {
	gorm.Model
	EntryDate  string `gorm:"size:10;uniqueIndex;not null"`
	Task       datatypes.JSONType[TaskSnapshot]
	Reflection *Reflection `gorm:"type:text;serializer:json"`
}

// TableName 自定义表名以保持命名一致。
func (FocusEntry) TableName() string {
	return "focus_entries"
}
