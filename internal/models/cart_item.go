package models

import "time"

// CartItem 购物车项
type CartItem struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                         // 主键
	UserID          uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`    // 用户ID
	ProductID       uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"` // 商品ID
	Quantity        int       `gorm:"not null" json:"quantity"`                                     // 数量
	CouponID        *uint     `gorm:"index" json:"coupon_id,omitempty"`                             // 已应用优惠券ID
	CouponCode      string    `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`                // 优惠码快照
	OriginalPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"original_price"`  // 原单价快照
	DiscountedPrice *Money    `gorm:"type:decimal(20,2)" json:"discounted_price"`                   // 折后单价（未产生优惠时为空）
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt       time.Time `gorm:"index" json:"updated_at"`                                      // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// EffectiveUnitPrice 返回实际结算单价
func (c *CartItem) EffectiveUnitPrice() Money {
	if c.DiscountedPrice != nil {
		return *c.DiscountedPrice
	}
	return c.OriginalPrice
}
