package repository

import (
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单与订单项存取
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	GetByOrderNoAndUser(orderNo string, userID uint) (*models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatus(id uint, fromStatus, toStatus string, updates map[string]interface{}) (bool, error)
	HasPurchasedProduct(userID, productID uint, statuses []string) (bool, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) OrderRepository
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 先写订单拿到 ID，再批量写订单项；调用方应在事务内调用
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit("Items", "User").Create(order).Error; err != nil {
		return err
	}
	if len(items) > 0 {
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	return firstOrNil[models.Order](r.db.Preload("Items").Preload("User"), id)
}

func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	return firstOrNil[models.Order](r.db.Preload("Items").Where("id = ? AND user_id = ?", id, userID))
}

func (r *GormOrderRepository) GetByOrderNoAndUser(orderNo string, userID uint) (*models.Order, error) {
	return firstOrNil[models.Order](r.db.Preload("Items").Where("order_no = ? AND user_id = ?", orderNo, userID))
}

// ListByUser 未指定用户时返回空列表，不退化为全表
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return []models.Order{}, 0, nil
	}
	return findPage[models.Order](r.filtered(filter), filter.Paging, "id DESC", "Items")
}

func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	return findPage[models.Order](r.filtered(filter), filter.Paging, "id DESC", "Items", "User")
}

// filtered CouponID 同时匹配整单券与行券
func (r *GormOrderRepository) filtered(filter OrderListFilter) *gorm.DB {
	query := r.db.Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.CouponID != 0 {
		lines := r.db.Model(&models.OrderItem{}).Select("order_id").Where("coupon_id = ?", filter.CouponID)
		query = query.Where("(coupon_id = ? OR id IN (?))", filter.CouponID, lines)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return query
}

// UpdateStatus fromStatus 非空时作为条件，返回是否有行被更新
func (r *GormOrderRepository) UpdateStatus(id uint, fromStatus, toStatus string, updates map[string]interface{}) (bool, error) {
	values := make(map[string]interface{}, len(updates)+1)
	for key, value := range updates {
		values[key] = value
	}
	values["status"] = toStatus

	query := r.db.Model(&models.Order{}).Where("id = ?", id)
	if fromStatus != "" {
		query = query.Where("status = ?", fromStatus)
	}
	result := query.Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// HasPurchasedProduct statuses 为计入“已购买”的订单状态
func (r *GormOrderRepository) HasPurchasedProduct(userID, productID uint, statuses []string) (bool, error) {
	var count int64
	err := r.db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL").
		Where("orders.user_id = ? AND order_items.product_id = ? AND orders.status IN ?", userID, productID, statuses).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}
