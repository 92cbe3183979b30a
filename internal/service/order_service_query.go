package service

import (
	"time"

	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

// ensureNotExpired lazily cancels a pending order whose payment window has
// already closed, so reads never hand out a payable order that the sweep
// just has not reached yet.
func (s *OrderService) ensureNotExpired(order *models.Order) *models.Order {
	if order == nil || order.Status != constants.OrderStatusPending {
		return order
	}
	if order.ExpiresAt == nil || order.ExpiresAt.After(time.Now()) {
		return order
	}
	if err := s.CancelExpiredOrder(order.ID); err != nil {
		return order
	}
	current, err := s.orderRepo.GetByID(order.ID)
	if err != nil || current == nil {
		return order
	}
	return current
}

// GetUserOrder returns one of the user's orders.
func (s *OrderService) GetUserOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.ensureNotExpired(order), nil
}

// GetUserOrderByNo returns one of the user's orders by order number.
func (s *OrderService) GetUserOrderByNo(userID uint, orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNoAndUser(orderNo, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.ensureNotExpired(order), nil
}

// ListUserOrders returns a page of the user's orders.
func (s *OrderService) ListUserOrders(userID uint, page, pageSize int, status string) ([]models.Order, int64, error) {
	orders, total, err := s.orderRepo.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   status,
	})
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}

// GetOrder returns any order for the admin backend.
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns a filtered page for the admin backend.
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	orders, total, err := s.orderRepo.ListAdmin(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}
