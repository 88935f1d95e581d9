package repository

import "time"

// Paging 页码从 1 开始；PageSize <= 0 时返回全部
type Paging struct {
	Page     int
	PageSize int
}

type ProductListFilter struct {
	Paging
	CategoryID   uint
	Search       string
	StockStatus  string // constants.ProductStockStatus*
	OnlyActive   bool
	WithCategory bool
	OrderBy      string
}

type CategoryListFilter struct {
	OnlyActive bool
	ParentID   *uint // 指向 0 表示只取顶级
}

type BannerListFilter struct {
	Paging
	Position string
	Search   string
	IsActive *bool
}

// OrderListFilter UserID 非零时只查该用户的订单
type OrderListFilter struct {
	Paging
	UserID      uint
	Status      string
	OrderNo     string
	CouponID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CouponListFilter Expired 需要配合 Now 使用
type CouponListFilter struct {
	Paging
	Code      string
	IsActive  *bool
	ProductID uint
	Expired   *bool
	Now       time.Time
}

type CouponUsageListFilter struct {
	Paging
	CouponID uint
	UserID   uint
}

type UserListFilter struct {
	Paging
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ReviewListFilter OnlyVisible 优先于 IsVisible
type ReviewListFilter struct {
	Paging
	ProductID   uint
	UserID      uint
	Rating      int
	OnlyVisible bool
	IsVisible   *bool
}

// ReportRange 左闭右开
type ReportRange struct {
	From  time.Time
	To    time.Time
	Limit int
}
