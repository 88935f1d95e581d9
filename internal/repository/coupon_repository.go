package repository

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券存取。used_count 只通过 IncrementUsedCount 与 SetUsedCount 修改
type CouponRepository interface {
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	Create(coupon *models.Coupon) error
	Update(coupon *models.Coupon) error
	Delete(id uint) error
	List(filter CouponListFilter) ([]models.Coupon, int64, error)
	ListIDs() ([]uint, error)
	IncrementUsedCount(id uint) (bool, error)
	SetUsedCount(id uint, count int64) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CouponRepository
}

type GormCouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

func (r *GormCouponRepository) WithTx(tx *gorm.DB) CouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

func (r *GormCouponRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	return firstOrNil[models.Coupon](r.db, id)
}

// GetByCode code 需已归一化为大写
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	return firstOrNil[models.Coupon](r.db.Where("code = ?", code))
}

func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

func (r *GormCouponRepository) Update(coupon *models.Coupon) error {
	return r.db.Save(coupon).Error
}

// Delete 硬删除；使用记录由调用方在同一事务内清理
func (r *GormCouponRepository) Delete(id uint) error {
	return r.db.Delete(&models.Coupon{}, id).Error
}

func (r *GormCouponRepository) List(filter CouponListFilter) ([]models.Coupon, int64, error) {
	d := dialectOf(r.db)
	query := r.db.Model(&models.Coupon{})
	if code := strings.TrimSpace(filter.Code); code != "" {
		query = query.Where("code "+d.like()+" ?", likePattern(strings.ToUpper(code)))
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.ProductID > 0 {
		condition, arg := d.jsonArrayContains("applicable_products", filter.ProductID)
		query = query.Where(condition, arg)
	}
	if filter.Expired != nil && !filter.Now.IsZero() {
		query = applyExpiry(query, *filter.Expired, filter.Now)
	}
	return findPage[models.Coupon](query, filter.Paging, "id DESC")
}

// applyExpiry 截止时间严格早于 now 才算过期
func applyExpiry(query *gorm.DB, expired bool, now time.Time) *gorm.DB {
	if expired {
		return query.Where("expires_at IS NOT NULL AND expires_at < ?", now)
	}
	return query.Where("(expires_at IS NULL OR expires_at >= ?)", now)
}

func (r *GormCouponRepository) ListIDs() ([]uint, error) {
	ids := make([]uint, 0)
	err := r.db.Model(&models.Coupon{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

// IncrementUsedCount 条件更新，达到总量上限时返回 false
func (r *GormCouponRepository) IncrementUsedCount(id uint) (bool, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetUsedCount 校准用，直接覆盖
func (r *GormCouponRepository) SetUsedCount(id uint, count int64) error {
	return r.db.Model(&models.Coupon{}).Where("id = ?", id).UpdateColumn("used_count", count).Error
}
