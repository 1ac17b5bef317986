package db

import "gorm.io/gorm"

// VisionItem 定义了愿景板卡片模型
// ImageURL 指向上传后的图片地址，SortOrder 控制展示顺序
type VisionItem struct {
	gorm.Model
	Title     string `gorm:"size:200"`
	Note      string `gorm:"type:text"`
	ImageURL  string `gorm:"size:500"`
	SortOrder int    `gorm:"index"`
}
