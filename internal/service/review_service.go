package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

const reviewContentMaxRunes = 2000

// ReviewService 商品评价服务
type ReviewService struct {
	repo        repository.ReviewRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

// NewReviewService 创建评价服务
func NewReviewService(repo repository.ReviewRepository, productRepo repository.ProductRepository, orderRepo repository.OrderRepository) *ReviewService {
	return &ReviewService{
		repo:        repo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// CreateReviewInput 创建评价输入
type CreateReviewInput struct {
	UserID    uint
	ProductID uint
	Rating    int
	Title     string
	Content   string
}

// ProductReviews 商品评价列表与汇总
type ProductReviews struct {
	Items   []models.Review      `json:"items"`
	Total   int64                `json:"total"`
	Summary models.ReviewSummary `json:"summary"`
}

// Create 用户创建评价，每个商品限一条
func (s *ReviewService) Create(input CreateReviewInput) (*models.Review, error) {
	if input.UserID == 0 || input.ProductID == 0 {
		return nil, ErrInvalidInput
	}
	if input.Rating < constants.ReviewRatingMin || input.Rating > constants.ReviewRatingMax {
		return nil, ErrReviewRatingInvalid
	}
	content := strings.TrimSpace(input.Content)
	if utf8.RuneCountInString(content) > reviewContentMaxRunes {
		return nil, ErrInvalidInput
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	existing, err := s.repo.GetByProductAndUser(input.ProductID, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReviewExists
	}

	verified, err := s.orderRepo.HasPurchasedProduct(input.UserID, input.ProductID, repository.PaidOrderStatuses())
	if err != nil {
		return nil, err
	}
	now := time.Now()
	review := &models.Review{
		ProductID:        input.ProductID,
		UserID:           input.UserID,
		Rating:           input.Rating,
		Title:            strings.TrimSpace(input.Title),
		Content:          content,
		VerifiedPurchase: verified,
		IsVisible:        true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(review); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrReviewExists
		}
		return nil, err
	}
	return review, nil
}

// ListByProduct 前台评价列表
func (s *ReviewService) ListByProduct(productID uint, page, pageSize int) (*ProductReviews, error) {
	if productID == 0 {
		return nil, ErrProductNotFound
	}
	items, total, err := s.repo.List(repository.ReviewListFilter{
		Paging:      repository.Paging{Page: page, PageSize: pageSize},
		ProductID:   productID,
		OnlyVisible: true,
	})
	if err != nil {
		return nil, err
	}
	summaries, err := s.repo.SummaryByProductIDs([]uint{productID})
	if err != nil {
		return nil, err
	}
	summary, ok := summaries[productID]
	if !ok {
		summary = models.ReviewSummary{ProductID: productID}
	}
	return &ProductReviews{Items: items, Total: total, Summary: summary}, nil
}

// ListAdmin 后台评价列表
func (s *ReviewService) ListAdmin(filter repository.ReviewListFilter) ([]models.Review, int64, error) {
	filter.OnlyVisible = false
	return s.repo.List(filter)
}

// SetVisible 后台显示/隐藏评价
func (s *ReviewService) SetVisible(id uint, visible bool) (*models.Review, error) {
	review, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	review.IsVisible = visible
	review.UpdatedAt = time.Now()
	if err := s.repo.Update(review); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete 后台删除评价
func (s *ReviewService) Delete(id uint) error {
	review, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrReviewNotFound
	}
	return s.repo.Delete(id)
}
