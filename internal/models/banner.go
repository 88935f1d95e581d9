package models

import (
	"time"

	"gorm.io/gorm"
)

// Banner 促销投放位。CouponCode 非空时前台只在该优惠码仍可用期间展示。
type Banner struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	Name       string `gorm:"type:varchar(120);not null;index" json:"name"`
	Position   string `gorm:"type:varchar(32);not null;index:idx_banner_slot,priority:1" json:"position"`
	SortOrder  int    `gorm:"not null;default:0;index:idx_banner_slot,priority:2" json:"sort_order"`
	CouponCode string `gorm:"type:varchar(64);index" json:"coupon_code,omitempty"`

	TitleJSON    JSON   `gorm:"type:json" json:"title"`
	SubtitleJSON JSON   `gorm:"type:json" json:"subtitle"`
	Image        string `gorm:"type:varchar(500);not null" json:"image"`
	MobileImage  string `gorm:"type:varchar(500)" json:"mobile_image"`

	LinkType     string `gorm:"type:varchar(20);not null;default:'none'" json:"link_type"`
	LinkValue    string `gorm:"type:varchar(1000)" json:"link_value"` // 商品/分类 slug、外链或优惠码
	OpenInNewTab bool   `gorm:"not null" json:"open_in_new_tab"`

	IsActive bool       `gorm:"not null;index" json:"is_active"`
	StartAt  *time.Time `json:"start_at"`
	EndAt    *time.Time `json:"end_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Banner) TableName() string {
	return "banners"
}

// LiveAt 是否处于启用状态且在投放窗口内（端点含）
func (b *Banner) LiveAt(now time.Time) bool {
	if b == nil || !b.IsActive {
		return false
	}
	if b.StartAt != nil && now.Before(*b.StartAt) {
		return false
	}
	return b.EndAt == nil || !now.After(*b.EndAt)
}
