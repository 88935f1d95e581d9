package repository

import (
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository 分类数据访问
type CategoryRepository interface {
	List(filter CategoryListFilter) ([]models.Category, error)
	GetByID(id uint) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	Create(category *models.Category) error
	Update(category *models.Category) error
	Delete(id uint) error
	SlugTaken(slug string, excludeID uint) (bool, error)
	CountProducts(categoryID uint) (int64, error)
}

type GormCategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// List ParentID 指向 0 时只取顶级分类
func (r *GormCategoryRepository) List(filter CategoryListFilter) ([]models.Category, error) {
	query := r.db.Model(&models.Category{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	switch {
	case filter.ParentID == nil:
	case *filter.ParentID == 0:
		query = query.Where("parent_id IS NULL")
	default:
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	categories := make([]models.Category, 0)
	err := query.Order("sort_order DESC, id ASC").Find(&categories).Error
	return categories, err
}

func (r *GormCategoryRepository) GetByID(id uint) (*models.Category, error) {
	return firstOrNil[models.Category](r.db, id)
}

func (r *GormCategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	return firstOrNil[models.Category](r.db.Where("slug = ?", slug))
}

func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *GormCategoryRepository) Update(category *models.Category) error {
	return r.db.Save(category).Error
}

func (r *GormCategoryRepository) Delete(id uint) error {
	return r.db.Delete(&models.Category{}, id).Error
}

// SlugTaken 唯一索引覆盖已软删除的行，这里一并统计
func (r *GormCategoryRepository) SlugTaken(slug string, excludeID uint) (bool, error) {
	query := r.db.Unscoped().Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormCategoryRepository) CountProducts(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
