package service

import (
	"time"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// WishlistService 收藏夹服务
type WishlistService struct {
	repo        repository.WishlistRepository
	productRepo repository.ProductRepository
}

// NewWishlistService 创建收藏夹服务
func NewWishlistService(repo repository.WishlistRepository, productRepo repository.ProductRepository) *WishlistService {
	return &WishlistService{repo: repo, productRepo: productRepo}
}

// Add 收藏商品，重复收藏视为成功
func (s *WishlistService) Add(userID, productID uint) error {
	if userID == 0 || productID == 0 {
		return ErrInvalidInput
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductNotAvailable
	}
	return s.repo.Add(&models.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	})
}

// Remove 取消收藏
func (s *WishlistService) Remove(userID, productID uint) error {
	if userID == 0 || productID == 0 {
		return ErrInvalidInput
	}
	return s.repo.Remove(userID, productID)
}

// List 收藏列表
func (s *WishlistService) List(userID uint, page, pageSize int) ([]models.WishlistItem, int64, error) {
	if userID == 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.repo.ListByUser(userID, page, pageSize)
}

// Contains 是否已收藏
func (s *WishlistService) Contains(userID, productID uint) (bool, error) {
	if userID == 0 || productID == 0 {
		return false, nil
	}
	return s.repo.Exists(userID, productID)
}
