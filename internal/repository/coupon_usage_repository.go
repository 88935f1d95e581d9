package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// CouponUsageRepository 优惠券使用记录数据访问接口
type CouponUsageRepository interface {
	Create(usage *models.CouponUsage) error
	GetByCouponAndUser(couponID, userID uint) (*models.CouponUsage, error)
	CountByCoupon(couponID uint) (int64, error)
	List(filter CouponUsageListFilter) ([]models.CouponUsage, int64, error)
	DeleteByCoupon(couponID uint) (int64, error)
	WithTx(tx *gorm.DB) CouponUsageRepository
}

// GormCouponUsageRepository GORM 实现
type GormCouponUsageRepository struct {
	db *gorm.DB
}

// NewCouponUsageRepository 创建优惠券使用记录仓库
func NewCouponUsageRepository(db *gorm.DB) *GormCouponUsageRepository {
	return &GormCouponUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponUsageRepository) WithTx(tx *gorm.DB) CouponUsageRepository {
	if tx == nil {
		return r
	}
	return &GormCouponUsageRepository{db: tx}
}

// Create 写入使用记录，唯一约束冲突原样返回由调用方判断
func (r *GormCouponUsageRepository) Create(usage *models.CouponUsage) error {
	return r.db.Create(usage).Error
}

// GetByCouponAndUser 获取用户对某张券的使用记录
func (r *GormCouponUsageRepository) GetByCouponAndUser(couponID, userID uint) (*models.CouponUsage, error) {
	var usage models.CouponUsage
	err := r.db.Where("coupon_id = ? AND user_id = ?", couponID, userID).First(&usage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// CountByCoupon 统计优惠券的使用记录数
func (r *GormCouponUsageRepository) CountByCoupon(couponID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.CouponUsage{}).
		Where("coupon_id = ?", couponID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List 获取使用记录列表
func (r *GormCouponUsageRepository) List(filter CouponUsageListFilter) ([]models.CouponUsage, int64, error) {
	query := r.db.Model(&models.CouponUsage{})
	if filter.CouponID > 0 {
		query = query.Where("coupon_id = ?", filter.CouponID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	return findPage[models.CouponUsage](query, filter.Paging, "id DESC", "Coupon")
}

// DeleteByCoupon 批量清理某张券的使用记录
func (r *GormCouponUsageRepository) DeleteByCoupon(couponID uint) (int64, error) {
	result := r.db.Where("coupon_id = ?", couponID).Delete(&models.CouponUsage{})
	return result.RowsAffected, result.Error
}
