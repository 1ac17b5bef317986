package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/onething/internal/db"
	"gorm.io/gorm"
)

// ErrVisionNotFound 在指定愿景卡片不存在时返回
var ErrVisionNotFound = errors.New("vision item not found")

// VisionService 负责愿景板卡片的增删改查
type VisionService struct {
	db *gorm.DB
}

// VisionInput 定义创建/更新愿景卡片时可配置字段
type VisionInput struct {
	Title     string
	Note      string
	ImageURL  string
	SortOrder int
}

// NewVisionService 构造 VisionService
func NewVisionService(gdb *gorm.DB) *VisionService {
	return &VisionService{db: gdb}
}

// List 按排序权重返回全部愿景卡片
func (s *VisionService) List() ([]db.VisionItem, error) {
	var items []db.VisionItem
	if err := s.db.Order("sort_order ASC, created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list vision items: %w", err)
	}
	return items, nil
}

// Create 新建愿景卡片
func (s *VisionService) Create(input VisionInput) (*db.VisionItem, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("vision title is required")
	}

	item := db.VisionItem{
		Title:     title,
		Note:      strings.TrimSpace(input.Note),
		ImageURL:  strings.TrimSpace(input.ImageURL),
		SortOrder: input.SortOrder,
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create vision item: %w", err)
	}
	return &item, nil
}

// Update 更新愿景卡片
func (s *VisionService) Update(id uint, input VisionInput) (*db.VisionItem, error) {
	var existing db.VisionItem
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisionNotFound
		}
		return nil, fmt.Errorf("find vision item: %w", err)
	}

	existing.Title = strings.TrimSpace(input.Title)
	existing.Note = strings.TrimSpace(input.Note)
	existing.ImageURL = strings.TrimSpace(input.ImageURL)
	existing.SortOrder = input.SortOrder

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update vision item: %w", err)
	}
	return &existing, nil
}

// Delete 删除愿景卡片
func (s *VisionService) Delete(id uint) error {
	result := s.db.Delete(&db.VisionItem{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete vision item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVisionNotFound
	}
	return nil
}
