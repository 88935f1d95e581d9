package models

import (
	"time"

	"gorm.io/datatypes"
)

// Coupon 优惠券
type Coupon struct {
	ID                   uint                      `gorm:"primarykey" json:"id"`                                      // 主键
	Code                 string                    `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`         // 优惠码（统一大写）
	Type                 string                    `gorm:"type:varchar(20);not null" json:"type"`                     // 类型（PERCENTAGE/FLAT）
	Discount             Money                     `gorm:"type:decimal(20,2);not null" json:"discount"`               // 折扣值（百分点或固定金额）
	MinPurchase          Money                     `gorm:"type:decimal(20,2);not null;default:0" json:"min_purchase"` // 最低消费（0 表示不限制）
	MaxDiscount          Money                     `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"` // 最高优惠（仅百分比，0 表示不封顶）
	ExpiresAt            *time.Time                `gorm:"index" json:"expires_at"`                                   // 过期时间
	UsageLimit           int                       `gorm:"not null;default:0" json:"usage_limit"`                     // 总使用上限（0 表示不限制）
	UsedCount            int                       `gorm:"not null;default:0" json:"used_count"`                      // 已使用次数
	ApplicableProducts   datatypes.JSONSlice[uint] `json:"applicable_products"`                                       // 适用商品ID
	ApplicableCategories datatypes.JSONSlice[uint] `json:"applicable_categories"`                                     // 适用分类ID
	EligibleUsers        datatypes.JSONSlice[uint] `json:"eligible_users"`                                            // 指定用户ID
	IsActive             bool                      `gorm:"not null;index" json:"is_active"`                           // 是否启用
	Description          string                    `gorm:"type:text" json:"description"`                              // 描述
	CreatedAt            time.Time                 `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt            time.Time                 `gorm:"index" json:"updated_at"`                                   // 更新时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
