package repository

import (
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistRepository 收藏夹数据访问接口
type WishlistRepository interface {
	Add(item *models.WishlistItem) error
	Remove(userID, productID uint) error
	ListByUser(userID uint, page, pageSize int) ([]models.WishlistItem, int64, error)
	Exists(userID, productID uint) (bool, error)
}

// GormWishlistRepository GORM 实现
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository 创建收藏夹仓库
func NewWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// Add 添加收藏，重复添加不报错
func (r *GormWishlistRepository) Add(item *models.WishlistItem) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(item).Error
}

// Remove 取消收藏
func (r *GormWishlistRepository) Remove(userID, productID uint) error {
	return r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{}).Error
}

// ListByUser 获取用户收藏列表
func (r *GormWishlistRepository) ListByUser(userID uint, page, pageSize int) ([]models.WishlistItem, int64, error) {
	query := r.db.Model(&models.WishlistItem{}).Where("user_id = ?", userID)
	return findPage[models.WishlistItem](query, Paging{Page: page, PageSize: pageSize}, "created_at DESC, id DESC", "Product")
}

// Exists 是否已收藏
func (r *GormWishlistRepository) Exists(userID, productID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
