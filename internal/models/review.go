package models

import "time"

// Review 商品评价
type Review struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                                 // 主键
	ProductID        uint      `gorm:"not null;uniqueIndex:idx_review_product_user;index" json:"product_id"` // 商品ID
	UserID           uint      `gorm:"not null;uniqueIndex:idx_review_product_user" json:"user_id"`          // 用户ID
	Rating           int       `gorm:"not null" json:"rating"`                                               // 评分（1-5）
	Title            string    `gorm:"type:varchar(200)" json:"title"`                                       // 标题
	Content          string    `gorm:"type:text" json:"content"`                                             // 内容
	VerifiedPurchase bool      `gorm:"not null;default:false" json:"verified_purchase"`                      // 是否已购
	IsVisible        bool      `gorm:"not null;index" json:"is_visible"`                                     // 是否展示
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                                              // 创建时间
	UpdatedAt        time.Time `json:"updated_at"`                                                           // 更新时间

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`       // 评价用户
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 评价商品
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}

// ReviewSummary 评价汇总
type ReviewSummary struct {
	ProductID     uint    `json:"product_id"`
	ReviewCount   int64   `json:"review_count"`
	AverageRating float64 `json:"average_rating"`
}
