package repository

import (
	"errors"
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// lowStockThreshold 库存 1..5 视为低库存，报表与列表筛选共用
const lowStockThreshold = 5

var errInvalidStockChange = errors.New("invalid stock change")

// productOrders 前台排序参数到 ORDER BY 的映射
var productOrders = map[string]string{
	"price_asc":    "price_amount ASC, id DESC",
	"price_desc":   "price_amount DESC, id DESC",
	"newest":       "created_at DESC, id DESC",
	"best_selling": "sold_count DESC, id DESC",
}

const defaultProductOrder = "sort_order DESC, created_at DESC"

// ProductRepository 商品存取；库存变更只走 DeductStock 与 RestoreStock
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetBySlug(slug string, onlyActive bool) (*models.Product, error)
	GetByID(id uint) (*models.Product, error)
	ListByIDs(ids []uint) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
	SlugTaken(slug string, excludeID uint) (bool, error)
	DeductStock(productID uint, quantity int) (bool, error)
	RestoreStock(productID uint, quantity int) error
	WithTx(tx *gorm.DB) ProductRepository
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID > 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, args := dialectOf(r.db).localizedSearch(search, []string{"slug", "sku"}, []string{"title_json", "description_json"})
		query = query.Where(condition, args...)
	}
	query = withStockStatus(query, strings.ToLower(strings.TrimSpace(filter.StockStatus)))

	order, ok := productOrders[strings.ToLower(strings.TrimSpace(filter.OrderBy))]
	if !ok {
		order = defaultProductOrder
	}
	var preloads []string
	if filter.WithCategory {
		preloads = append(preloads, "Category")
	}
	products, total, err := findPage[models.Product](query, filter.Paging, order, preloads...)
	if err != nil {
		return nil, 0, err
	}
	for i := range products {
		products[i].StockStatus = ResolveStockStatus(products[i].Stock)
	}
	return products, total, nil
}

func withStockStatus(query *gorm.DB, status string) *gorm.DB {
	switch status {
	case constants.ProductStockStatusUnlimited:
		return query.Where("stock = ?", constants.StockUnlimited)
	case constants.ProductStockStatusOutOfStock:
		return query.Where("stock = 0")
	case constants.ProductStockStatusLowStock:
		return query.Where("stock > 0 AND stock <= ?", lowStockThreshold)
	case constants.ProductStockStatusInStock:
		return query.Where("stock > ?", lowStockThreshold)
	default:
		return query
	}
}

// ResolveStockStatus 负数库存一律按不限量处理
func ResolveStockStatus(stock int) string {
	switch {
	case stock == constants.StockUnlimited || stock < 0:
		return constants.ProductStockStatusUnlimited
	case stock == 0:
		return constants.ProductStockStatusOutOfStock
	case stock <= lowStockThreshold:
		return constants.ProductStockStatusLowStock
	default:
		return constants.ProductStockStatusInStock
	}
}

func withStockStatusField(product *models.Product, err error) (*models.Product, error) {
	if product != nil {
		product.StockStatus = ResolveStockStatus(product.Stock)
	}
	return product, err
}

func (r *GormProductRepository) GetBySlug(slug string, onlyActive bool) (*models.Product, error) {
	query := r.db.Preload("Category").Where("slug = ?", slug)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	return withStockStatusField(firstOrNil[models.Product](query))
}

func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	return withStockStatusField(firstOrNil[models.Product](r.db.Preload("Category"), id))
}

func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	products := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 不级联写分类
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Omit("Category").Save(product).Error
}

func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// SlugTaken 软删除的商品仍占用唯一索引
func (r *GormProductRepository) SlugTaken(slug string, excludeID uint) (bool, error) {
	query := r.db.Unscoped().Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeductStock 库存不足返回 false；不限库存的商品只累加销量
func (r *GormProductRepository) DeductStock(productID uint, quantity int) (bool, error) {
	if productID == 0 || quantity <= 0 {
		return false, errInvalidStockChange
	}
	sold := gorm.Expr("sold_count + ?", quantity)
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND stock = ?", productID, constants.StockUnlimited).
		UpdateColumn("sold_count", sold)
	if result.Error != nil || result.RowsAffected > 0 {
		return result.Error == nil, result.Error
	}
	result = r.db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumns(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"sold_count": sold,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RestoreStock 取消订单时归还库存并回退销量，销量不会减成负数
func (r *GormProductRepository) RestoreStock(productID uint, quantity int) error {
	if productID == 0 || quantity <= 0 {
		return nil
	}
	err := r.db.Model(&models.Product{}).
		Where("id = ? AND stock >= 0", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity)).Error
	if err != nil {
		return err
	}
	return r.db.Model(&models.Product{}).
		Where("id = ? AND sold_count >= ?", productID, quantity).
		UpdateColumn("sold_count", gorm.Expr("sold_count - ?", quantity)).Error
}
