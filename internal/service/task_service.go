package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/onething/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound 在指定任务不存在时返回
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskTextRequired 在任务内容为空时返回
	ErrTaskTextRequired = errors.New("task text is required")
	// ErrPlanNotFound 在任务没有行动计划时返回
	ErrPlanNotFound = errors.New("task has no action plan")
	// ErrPlanActionNotFound 在指定计划项不存在时返回
	ErrPlanActionNotFound = errors.New("action plan item not found")
)

// TaskService 负责任务数据的增删改查
// 任务存储拥有任务的唯一正本；历史账本只保存快照副本。
type TaskService struct {
	db *gorm.DB
}

// TaskFilter 描述任务列表的过滤条件
type TaskFilter struct {
	Category       string
	Search         string
	IncludeIgnored bool
}

// TaskInput 定义更新任务时可配置的字段，整体替换对应任务。
// Plan 为 nil 时清除行动计划。
type TaskInput struct {
	Text      string
	Category  string
	Rating    int
	Delegated bool
	Automated bool
	Completed bool
	Batched   bool
	IsRoutine bool
	SubTasks  []db.SubTask
	Plan      *db.ActionPlan
}

// NewTaskService 构造 TaskService
func NewTaskService(gdb *gorm.DB) *TaskService {
	return &TaskService{db: gdb}
}

// List 返回任务集合，支持基本筛选。默认不包含已忽略的任务。
func (s *TaskService) List(filter TaskFilter) ([]db.TaskItem, error) {
	var items []db.TaskItem

	query := s.db.Model(&db.TaskItem{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	} else if !filter.IncludeIgnored {
		query = query.Where("category != ?", db.CategoryIgnored)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Search))
		query = query.Where("text LIKE ?", like)
	}

	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return items, nil
}

// ListAll 返回包含已忽略任务在内的全部任务，供选择器推导使用。
func (s *TaskService) ListAll() ([]db.TaskItem, error) {
	return s.List(TaskFilter{IncludeIgnored: true})
}

// Get 根据 ID 获取任务
func (s *TaskService) Get(id string) (*db.TaskItem, error) {
	var item db.TaskItem
	if err := s.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &item, nil
}

// Create 新建任务，初始评分为 0、分类为 task
func (s *TaskService) Create(text string) (*db.TaskItem, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrTaskTextRequired
	}

	item := db.TaskItem{
		ID:       uuid.New().String(),
		Text:     trimmed,
		Category: db.CategoryTask,
		SubTasks: datatypes.JSONSlice[db.SubTask]{},
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &item, nil
}

// Update 按 ID 整体替换任务的可变字段，评分越界时收敛到 [0,5]
func (s *TaskService) Update(id string, input TaskInput) (*db.TaskItem, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrTaskTextRequired
	}

	var existing db.TaskItem
	if err := s.db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	existing.Text = strings.TrimSpace(input.Text)
	existing.Category = normalizeCategory(input.Category)
	existing.Rating = clampRating(input.Rating)
	existing.Delegated = input.Delegated
	existing.Automated = input.Automated
	existing.Completed = input.Completed
	existing.Batched = input.Batched
	existing.IsRoutine = input.IsRoutine
	existing.SubTasks = datatypes.NewJSONSlice(input.SubTasks)
	existing.Plan = input.Plan

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &existing, nil
}

// Ignore 将任务软删除（分类置为 ignored）
func (s *TaskService) Ignore(id string) (*db.TaskItem, error) {
	return s.setCategory(id, db.CategoryIgnored)
}

// Restore 将已忽略的任务恢复为普通任务
func (s *TaskService) Restore(id string) (*db.TaskItem, error) {
	return s.setCategory(id, db.CategoryTask)
}

func (s *TaskService) setCategory(id, category string) (*db.TaskItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.Category = category
	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("update task category: %w", err)
	}
	return item, nil
}

// Delete 彻底删除任务
func (s *TaskService) Delete(id string) error {
	result := s.db.Delete(&db.TaskItem{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteAll 清空全部任务，仅供数据重置使用
func (s *TaskService) DeleteAll() error {
	if err := s.db.Where("1 = 1").Delete(&db.TaskItem{}).Error; err != nil {
		return fmt.Errorf("delete all tasks: %w", err)
	}
	return nil
}

// AttachPlan 为任务写入行动计划，走与普通编辑相同的更新路径
func (s *TaskService) AttachPlan(id string, plan db.ActionPlan) (*db.TaskItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.Plan = &plan
	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("attach plan: %w", err)
	}
	return item, nil
}

// AddPlanAction 在行动计划末尾追加一项
func (s *TaskService) AddPlanAction(id, text string) (*db.TaskItem, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrTaskTextRequired
	}

	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if item.Plan == nil {
		item.Plan = &db.ActionPlan{}
	}
	item.Plan.KeyActions = append(item.Plan.KeyActions, db.ActionPlanItem{
		ID:   uuid.New().String(),
		Text: trimmed,
	})

	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("add plan action: %w", err)
	}
	return item, nil
}

// TogglePlanAction 设置计划项的完成状态
func (s *TaskService) TogglePlanAction(id, actionID string, completed bool) (*db.TaskItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if item.Plan == nil {
		return nil, ErrPlanNotFound
	}

	found := false
	for i := range item.Plan.KeyActions {
		if item.Plan.KeyActions[i].ID == actionID {
			item.Plan.KeyActions[i].Completed = completed
			found = true
			break
		}
	}
	if !found {
		return nil, ErrPlanActionNotFound
	}

	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("toggle plan action: %w", err)
	}
	return item, nil
}

// RemovePlanAction 删除指定计划项
func (s *TaskService) RemovePlanAction(id, actionID string) (*db.TaskItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if item.Plan == nil {
		return nil, ErrPlanNotFound
	}

	actions := item.Plan.KeyActions[:0]
	found := false
	for _, action := range item.Plan.KeyActions {
		if action.ID == actionID {
			found = true
			continue
		}
		actions = append(actions, action)
	}
	if !found {
		return nil, ErrPlanActionNotFound
	}
	item.Plan.KeyActions = actions

	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("remove plan action: %w", err)
	}
	return item, nil
}

// ToggleRoutineLog 翻转例行任务在指定日期的打卡状态，返回翻转后是否已打卡
func (s *TaskService) ToggleRoutineLog(id, date string) (*db.TaskItem, bool, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, false, err
	}

	history := []string(item.CompletionHistory)
	logged := false
	filtered := history[:0]
	for _, d := range history {
		if d == date {
			logged = true
			continue
		}
		filtered = append(filtered, d)
	}
	if !logged {
		filtered = append(filtered, date)
	}
	item.CompletionHistory = datatypes.NewJSONSlice(filtered)

	if err := s.db.Save(item).Error; err != nil {
		return nil, false, fmt.Errorf("toggle routine log: %w", err)
	}
	return item, !logged, nil
}

func normalizeCategory(category string) string {
	switch strings.TrimSpace(strings.ToLower(category)) {
	case db.CategoryMakeMoney:
		return db.CategoryMakeMoney
	case db.CategoryIncreaseRate:
		return db.CategoryIncreaseRate
	case db.CategoryGiveEnergy:
		return db.CategoryGiveEnergy
	case db.CategoryIgnored:
		return db.CategoryIgnored
	default:
		return db.CategoryTask
	}
}
