package models

import "time"

// CouponUsage 优惠券使用记录（每个用户每张券最多一条）
type CouponUsage struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                   // 主键
	CouponID  uint      `gorm:"not null;uniqueIndex:idx_coupon_usage_coupon_user" json:"coupon_id"`     // 优惠券ID
	UserID    uint      `gorm:"not null;uniqueIndex:idx_coupon_usage_coupon_user;index" json:"user_id"` // 用户ID
	OrderID   *uint     `gorm:"index" json:"order_id,omitempty"`                                        // 订单ID
	UsedAt    time.Time `gorm:"not null;index" json:"used_at"`                                          // 使用时间
	CreatedAt time.Time `json:"created_at"`                                                             // 创建时间

	Coupon *Coupon `gorm:"foreignKey:CouponID" json:"coupon,omitempty"` // 关联优惠券
}

// TableName 指定表名
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
