package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/onething/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrEntryNotFound 在指定日期没有历史记录时返回
	ErrEntryNotFound = errors.New("focus entry not found")
	// ErrNoFocusToday 在今天尚无历史记录、复盘无处附着时返回。
	// 调用方应将其处理为静默丢弃而非失败。
	ErrNoFocusToday = errors.New("no focus entry for today")
)

// HistoryService 维护"每日一事"历史账本
// 每个本地日历日期至多一条记录，内嵌任务快照与可选复盘。
type HistoryService struct {
	db *gorm.DB
}

// NewHistoryService 构造 HistoryService
func NewHistoryService(gdb *gorm.DB) *HistoryService {
	return &HistoryService{db: gdb}
}

// UpsertToday 使今天的账本记录与当前选择结果保持同步。
//   - selected 为 nil 时不做任何事（没有焦点的日子不产生记录）；
//   - 今天已有记录且任务 ID 相同时不做任何事，避免冗余写入；
//   - 任务 ID 变化时仅替换快照，已保存的复盘原样保留；
//   - 今天没有记录时新建一条。
func (s *HistoryService) UpsertToday(selected *db.TaskItem, now time.Time) error {
	if selected == nil {
		return nil
	}

	today := localDate(now)
	snapshot := db.SnapshotOf(*selected)

	return s.db.Transaction(func(tx *gorm.DB) error {
		var entry db.FocusEntry
		err := tx.Where("entry_date = ?", today).First(&entry).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			entry = db.FocusEntry{
				EntryDate: today,
				Task:      datatypes.NewJSONType(snapshot),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("create focus entry: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("find focus entry: %w", err)
		}

		if entry.Task.Data().ID == selected.ID {
			return nil
		}

		entry.Task = datatypes.NewJSONType(snapshot)
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("update focus entry: %w", err)
		}
		return nil
	})
}

// SyncToday 重新从任务存储推导当前焦点并同步今天的账本记录。
// 选择结果是派生值，每次存储变更后都应重新计算，绝不落库为独立字段。
func (s *HistoryService) SyncToday(now time.Time) (*db.TaskItem, error) {
	var items []db.TaskItem
	if err := s.db.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	selected := SelectOneThing(items)
	if err := s.UpsertToday(selected, now); err != nil {
		return nil, err
	}
	return selected, nil
}

// SaveReflection 将复盘数据写入今天的账本记录。
// 今天没有记录时返回 ErrNoFocusToday，调用方按无操作处理。
func (s *HistoryService) SaveReflection(data db.Reflection, now time.Time) error {
	today := localDate(now)

	return s.db.Transaction(func(tx *gorm.DB) error {
		var entry db.FocusEntry
		if err := tx.Where("entry_date = ?", today).First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoFocusToday
			}
			return fmt.Errorf("find focus entry: %w", err)
		}

		reflection := data
		entry.Reflection = &reflection
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("save reflection: %w", err)
		}
		return nil
	})
}

// List 按日期倒序返回全部历史记录（最近的在前）
func (s *HistoryService) List() ([]db.FocusEntry, error) {
	var entries []db.FocusEntry
	if err := s.db.Order("entry_date DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list focus entries: %w", err)
	}
	return entries, nil
}

// GetByDate 返回指定日期的历史记录
func (s *HistoryService) GetByDate(date string) (*db.FocusEntry, error) {
	var entry db.FocusEntry
	if err := s.db.Where("entry_date = ?", date).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("get focus entry: %w", err)
	}
	return &entry, nil
}

// DeleteAll 清空历史账本，仅供数据重置使用
func (s *HistoryService) DeleteAll() error {
	if err := s.db.Where("1 = 1").Delete(&db.FocusEntry{}).Error; err != nil {
		return fmt.Errorf("delete all focus entries: %w", err)
	}
	return nil
}
