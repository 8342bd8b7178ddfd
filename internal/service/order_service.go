package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultOrdersPerPage = 10
	maxOrdersPerPage     = 100
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// GetOrderByNumber hides orders owned by other users behind ErrOrderNotFound.
func (s *orderService) GetOrderByNumber(ctx context.Context, orderNumber string, userID int64) (*model.Order, error) {
	order, err := s.load(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		s.logger.Warn().
			Str("order_number", order.OrderNumber).
			Int64("user_id", userID).
			Msg("order requested by non-owner")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID int64, page, perPage int) (*model.OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultOrdersPerPage
	}
	if perPage > maxOrdersPerPage {
		perPage = maxOrdersPerPage
	}

	orders, total, err := s.orderRepo.ListByUser(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &model.OrderPage{
		Orders:  orders,
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}, nil
}

// UpdateStatus changes only the status column. Stock and items are never
// touched here, cancellations included.
func (s *orderService) UpdateStatus(ctx context.Context, orderNumber, status string) (*model.Order, error) {
	parsed, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, strings.TrimSpace(orderNumber), parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !ok {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().
		Str("order_number", orderNumber).
		Str("status", string(parsed)).
		Msg("order status updated")

	return s.load(ctx, orderNumber)
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderNumber, status string) (*model.Order, error) {
	parsed, err := model.ParsePaymentStatus(status)
	if err != nil {
		return nil, err
	}

	ok, err := s.orderRepo.UpdatePaymentStatus(ctx, strings.TrimSpace(orderNumber), parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	if !ok {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().
		Str("order_number", orderNumber).
		Str("payment_status", string(parsed)).
		Msg("order payment status updated")

	return s.load(ctx, orderNumber)
}

func (s *orderService) load(ctx context.Context, orderNumber string) (*model.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, model.ErrOrderNotFound
	}

	order, err := s.orderRepo.GetByNumber(ctx, orderNumber)
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}
