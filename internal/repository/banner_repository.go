package repository

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

const bannerOrder = "sort_order DESC, id DESC"

type BannerRepository interface {
	List(filter BannerListFilter) ([]models.Banner, int64, error)
	ListLive(position string, limit int, now time.Time) ([]models.Banner, error)
	GetByID(id uint) (*models.Banner, error)
	// Save ID 为 0 时插入，否则整行覆盖
	Save(banner *models.Banner) error
	Delete(id uint) error
}

type GormBannerRepository struct {
	db *gorm.DB
}

func NewBannerRepository(db *gorm.DB) *GormBannerRepository {
	return &GormBannerRepository{db: db}
}

func (r *GormBannerRepository) List(filter BannerListFilter) ([]models.Banner, int64, error) {
	query := r.db.Model(&models.Banner{})
	if filter.Position != "" {
		query = query.Where("position = ?", filter.Position)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, args := dialectOf(r.db).localizedSearch(search, []string{"name"}, []string{"title_json"})
		query = query.Where(condition, args...)
	}
	return findPage[models.Banner](query, filter.Paging, bannerOrder)
}

// ListLive 启用且处于投放窗口内的 Banner，窗口两端均包含，与 models.Banner.LiveAt 一致
func (r *GormBannerRepository) ListLive(position string, limit int, now time.Time) ([]models.Banner, error) {
	query := r.db.Where("is_active = ?", true).
		Where("start_at IS NULL OR start_at <= ?", now).
		Where("end_at IS NULL OR end_at >= ?", now)
	if position != "" {
		query = query.Where("position = ?", position)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	banners := []models.Banner{}
	if err := query.Order(bannerOrder).Find(&banners).Error; err != nil {
		return nil, err
	}
	return banners, nil
}

func (r *GormBannerRepository) GetByID(id uint) (*models.Banner, error) {
	return firstOrNil[models.Banner](r.db, id)
}

func (r *GormBannerRepository) Save(banner *models.Banner) error {
	return r.db.Save(banner).Error
}

func (r *GormBannerRepository) Delete(id uint) error {
	return r.db.Delete(&models.Banner{}, id).Error
}
