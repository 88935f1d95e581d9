package service

import (
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	reviewRepo   repository.ReviewRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository, reviewRepo repository.ReviewRepository) *ProductService {
	return &ProductService{
		repo:         repo,
		categoryRepo: categoryRepo,
		reviewRepo:   reviewRepo,
	}
}

// CreateProductInput 创建/更新商品输入
type CreateProductInput struct {
	CategoryID      uint
	Slug            string
	SKU             string
	TitleJSON       map[string]interface{}
	DescriptionJSON map[string]interface{}
	PriceAmount     decimal.Decimal
	Images          []string
	Tags            []string
	Stock           *int
	IsActive        *bool
	SortOrder       int
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(categoryID uint, search string, page, pageSize int) ([]models.Product, int64, error) {
	products, total, err := s.repo.List(repository.ProductListFilter{
		Paging:       repository.Paging{Page: page, PageSize: pageSize},
		CategoryID:   categoryID,
		Search:       search,
		OnlyActive:   true,
		WithCategory: true,
	})
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachReviewSummaries(products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetPublicBySlug 获取公开商品详情（含评价汇总）
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	list := []models.Product{*product}
	if err := s.attachReviewSummaries(list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *ProductService) attachReviewSummaries(products []models.Product) error {
	if s.reviewRepo == nil || len(products) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(products))
	for _, product := range products {
		ids = append(ids, product.ID)
	}
	summaries, err := s.reviewRepo.SummaryByProductIDs(ids)
	if err != nil {
		return err
	}
	for i := range products {
		summary, ok := summaries[products[i].ID]
		if !ok {
			summary = models.ReviewSummary{ProductID: products[i].ID}
		}
		products[i].ReviewSummary = &summary
	}
	return nil
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = false
	filter.WithCategory = true
	filter.StockStatus = normalizeStockStatusFilter(filter.StockStatus)
	return s.repo.List(filter)
}

// GetAdminByID 获取后台商品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *ProductService) validateInput(input CreateProductInput, excludeID uint) (decimal.Decimal, string, error) {
	priceAmount := input.PriceAmount.Round(2)
	if priceAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, "", ErrProductPriceInvalid
	}
	if input.Stock != nil && *input.Stock < constants.StockUnlimited {
		return decimal.Zero, "", ErrProductStockInvalid
	}
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if slug == "" || len(input.TitleJSON) == 0 {
		return decimal.Zero, "", ErrInvalidInput
	}
	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return decimal.Zero, "", err
	}
	if category == nil {
		return decimal.Zero, "", ErrCategoryNotFound
	}
	taken, err := s.repo.SlugTaken(slug, excludeID)
	if err != nil {
		return decimal.Zero, "", err
	}
	if taken {
		return decimal.Zero, "", ErrSlugExists
	}
	return priceAmount, slug, nil
}

// Create 创建商品
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	priceAmount, slug, err := s.validateInput(input, 0)
	if err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}

	product := models.Product{
		CategoryID:      input.CategoryID,
		Slug:            slug,
		SKU:             strings.TrimSpace(input.SKU),
		TitleJSON:       models.JSON(input.TitleJSON),
		DescriptionJSON: models.JSON(input.DescriptionJSON),
		PriceAmount:     models.MoneyOf(priceAmount),
		Images:          models.StringArray(input.Images),
		Tags:            models.StringArray(input.Tags),
		Stock:           stock,
		IsActive:        isActive,
		SortOrder:       input.SortOrder,
	}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	product.StockStatus = repository.ResolveStockStatus(product.Stock)
	return &product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input CreateProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	priceAmount, slug, err := s.validateInput(input, id)
	if err != nil {
		return nil, err
	}

	product.CategoryID = input.CategoryID
	product.Slug = slug
	product.SKU = strings.TrimSpace(input.SKU)
	product.TitleJSON = models.JSON(input.TitleJSON)
	product.DescriptionJSON = models.JSON(input.DescriptionJSON)
	product.PriceAmount = models.MoneyOf(priceAmount)
	product.Images = models.StringArray(input.Images)
	product.Tags = models.StringArray(input.Tags)
	product.SortOrder = input.SortOrder
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	product.StockStatus = repository.ResolveStockStatus(product.Stock)
	return product, nil
}

func normalizeStockStatusFilter(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case constants.ProductStockStatusUnlimited,
		constants.ProductStockStatusInStock,
		constants.ProductStockStatusLowStock,
		constants.ProductStockStatusOutOfStock:
		return value
	default:
		return ""
	}
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.repo.Delete(id)
}
