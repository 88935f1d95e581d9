package service

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// settleExpired 读到已过支付期限的待支付订单时顺手取消，队列缺席时靠它兜底
func (s *OrderService) settleExpired(orders ...*models.Order) {
	now := time.Now()
	for _, order := range orders {
		if !isOrderExpired(order, now) {
			continue
		}
		if err := s.cancelOrder(order); err != nil {
			logger.Warnw("order_lazy_cancel_failed", "order_id", order.ID, "error", err)
		}
	}
}

func (s *OrderService) settleExpiredList(orders []models.Order) {
	for i := range orders {
		s.settleExpired(&orders[i])
	}
}

// foundOrder 统一处理查询结果：不存在映射为 ErrOrderNotFound
func (s *OrderService) foundOrder(order *models.Order, err error) (*models.Order, error) {
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	s.settleExpired(order)
	return order, nil
}

// GetOrderByUser 只能读到自己的订单
func (s *OrderService) GetOrderByUser(orderID uint, userID uint) (*models.Order, error) {
	if orderID == 0 || userID == 0 {
		return nil, ErrOrderNotFound
	}
	return s.foundOrder(s.orderRepo.GetByIDAndUser(orderID, userID))
}

func (s *OrderService) GetOrderByUserOrderNo(orderNo string, userID uint) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" || userID == 0 {
		return nil, ErrOrderNotFound
	}
	return s.foundOrder(s.orderRepo.GetByOrderNoAndUser(orderNo, userID))
}

func (s *OrderService) GetOrderForAdmin(orderID uint) (*models.Order, error) {
	return s.foundOrder(s.orderRepo.GetByID(orderID))
}

func (s *OrderService) ListOrdersByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	orders, total, err := s.orderRepo.ListByUser(filter)
	if err != nil {
		return nil, 0, err
	}
	s.settleExpiredList(orders)
	return orders, total, nil
}

// ListOrdersForAdmin 状态筛选值必须是已知状态
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.Status != "" && !IsValidOrderStatus(filter.Status) {
		return nil, 0, ErrOrderStatusInvalid
	}
	orders, total, err := s.orderRepo.ListAdmin(filter)
	if err != nil {
		return nil, 0, err
	}
	s.settleExpiredList(orders)
	return orders, total, nil
}
