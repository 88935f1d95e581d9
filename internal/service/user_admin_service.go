package service

import (
	"context"
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// UserAdminService 后台顾客管理服务
type UserAdminService struct {
	userRepo  repository.UserRepository
	orderRepo repository.OrderRepository
}

// NewUserAdminService 创建顾客管理服务
func NewUserAdminService(userRepo repository.UserRepository, orderRepo repository.OrderRepository) *UserAdminService {
	return &UserAdminService{userRepo: userRepo, orderRepo: orderRepo}
}

// UserDetail 顾客详情
type UserDetail struct {
	User         *models.User   `json:"user"`
	RecentOrders []models.Order `json:"recent_orders"`
	OrderCount   int64          `json:"order_count"`
}

// List 顾客列表
func (s *UserAdminService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	if filter.Status != "" && filter.Status != constants.UserStatusActive && filter.Status != constants.UserStatusDisabled {
		return nil, 0, ErrUserStatusInvalid
	}
	return s.userRepo.List(filter)
}

// Detail 顾客详情（含最近订单）
func (s *UserAdminService) Detail(userID uint) (*UserDetail, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	orders, total, err := s.orderRepo.ListByUser(repository.OrderListFilter{
		UserID: userID,
		Paging: repository.Paging{Page: 1, PageSize: 5},
	})
	if err != nil {
		return nil, err
	}
	return &UserDetail{User: user, RecentOrders: orders, OrderCount: total}, nil
}

// SetStatus 启用/禁用顾客，禁用时踢出全部会话
func (s *UserAdminService) SetStatus(userID uint, status string) (*models.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return nil, ErrUserStatusInvalid
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status == status {
		return user, nil
	}

	user.Status = status
	if status == constants.UserStatusDisabled {
		now := time.Now()
		user.TokenVersion++
		user.TokenInvalidBefore = &now
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if err := cache.DropAuthState(context.Background(), cache.SubjectUser, user.ID); err != nil {
		logger.Warnw("user_auth_state_invalidate_failed", "user_id", user.ID, "error", err)
	}
	logger.Infow("user_status_updated", "user_id", user.ID, "status", status)
	return user, nil
}
