package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/onething/internal/db"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RolloverService 实现跨天重置状态机。
// 标记 last_visit_date 记录重置逻辑最后一次执行的本地日期：
// 标记等于今天时整个流程为无操作，因此同一天内重复调用是幂等的。
// 必须在任何选择派生逻辑之前执行且仅执行一次（进程启动时）。
type RolloverService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewRolloverService 构造 RolloverService
func NewRolloverService(gdb *gorm.DB, logger *logrus.Logger) *RolloverService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RolloverService{db: gdb, log: logger}
}

// Run 执行一次跨天检查。
// 标记与今天不同（跨天）时，定位标记日期对应的账本记录，按记录中
// 快照的任务 ID 回查存量任务（快照可能已过期，必须操作存量数据）：
// 清除任务自身的完成标记，并将行动计划中每一项的完成状态重置为
// 未完成，计划文本与顺序保持不变。任务已被删除时静默跳过。
// 无论是否找到任何记录，只要跨天就把标记推进到今天。
// 标记缺失或损坏按"从未检查"处理，不视为错误。
func (s *RolloverService) Run(now time.Time) error {
	today := localDate(now)

	return s.db.Transaction(func(tx *gorm.DB) error {
		marker := readMarker(tx)
		if marker == today {
			return nil
		}

		if marker != "" {
			if err := s.resetPreviousFocus(tx, marker); err != nil {
				return err
			}
		}

		if err := writeMarker(tx, today); err != nil {
			return err
		}

		s.log.WithFields(logrus.Fields{
			"previous": marker,
			"today":    today,
		}).Info("daily rollover completed")
		return nil
	})
}

func (s *RolloverService) resetPreviousFocus(tx *gorm.DB, marker string) error {
	var entry db.FocusEntry
	if err := tx.Where("entry_date = ?", marker).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 标记日期当天没有焦点记录，无需重置
			return nil
		}
		return fmt.Errorf("find previous focus entry: %w", err)
	}

	taskID := entry.Task.Data().ID

	var task db.TaskItem
	if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 存量任务已被删除，静默跳过
			s.log.WithField("task_id", taskID).Debug("previous focus task no longer exists")
			return nil
		}
		return fmt.Errorf("find previous focus task: %w", err)
	}

	task.Completed = false
	if task.Plan != nil {
		for i := range task.Plan.KeyActions {
			task.Plan.KeyActions[i].Completed = false
		}
	}

	if err := tx.Save(&task).Error; err != nil {
		return fmt.Errorf("reset previous focus task: %w", err)
	}
	return nil
}

func readMarker(tx *gorm.DB) string {
	var setting db.SystemSetting
	if err := tx.Where("key = ?", db.SettingKeyLastVisitDate).First(&setting).Error; err != nil {
		return ""
	}
	return setting.Value
}

func writeMarker(tx *gorm.DB, today string) error {
	setting := db.SystemSetting{Key: db.SettingKeyLastVisitDate, Value: today}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      today,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("advance last visit date: %w", err)
	}
	return nil
}
