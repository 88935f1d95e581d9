package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 商品分类，ParentID 为空表示顶级
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	NameJSON  JSON           `gorm:"type:json;not null" json:"name"`
	Icon      string         `gorm:"type:varchar(500)" json:"icon"`
	IsActive  bool           `gorm:"not null;index" json:"is_active"`
	SortOrder int            `gorm:"default:0;index" json:"sort_order"` // 越大越靠前
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}
