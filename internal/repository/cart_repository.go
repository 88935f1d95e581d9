package repository

import (
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车行，(user_id, product_id) 唯一
type CartRepository interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	GetByUserAndProduct(userID, productID uint) (*models.CartItem, error)
	Upsert(item *models.CartItem) error
	DeleteByUserAndProduct(userID, productID uint) error
	ClearByUser(userID uint) error
	WithTx(tx *gorm.DB) CartRepository
}

type GormCartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 下单时与订单写入共用事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	err := r.db.Preload("Product").
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&items).Error
	return items, err
}

func (r *GormCartRepository) GetByUserAndProduct(userID, productID uint) (*models.CartItem, error) {
	return firstOrNil[models.CartItem](r.db.Where("user_id = ? AND product_id = ?", userID, productID))
}

// cartUpsertColumns 已存在的行整体覆盖数量、价格与优惠券快照
var cartUpsertColumns = []string{"quantity", "coupon_id", "coupon_code", "original_price", "discounted_price", "updated_at"}

// Upsert 写入后回读 ID 与创建时间；冲突更新时驱动返回的自增 ID 不可靠
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns(cartUpsertColumns),
	}).Create(item).Error
	if err != nil {
		return err
	}
	stored, err := r.GetByUserAndProduct(item.UserID, item.ProductID)
	if err != nil {
		return err
	}
	if stored != nil {
		item.ID = stored.ID
		item.CreatedAt = stored.CreatedAt
	}
	return nil
}

func (r *GormCartRepository) DeleteByUserAndProduct(userID, productID uint) error {
	return r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{}).Error
}

func (r *GormCartRepository) ClearByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
