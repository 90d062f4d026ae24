package service

import (
	"context"
	"fmt"

	"github.com/acostajs/vanier-ceramic-shop/internal/clients"
	"github.com/acostajs/vanier-ceramic-shop/internal/config"
	"github.com/acostajs/vanier-ceramic-shop/internal/errs"
	"github.com/acostajs/vanier-ceramic-shop/internal/events"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/metrics"
	"github.com/acostajs/vanier-ceramic-shop/internal/models"
	"github.com/acostajs/vanier-ceramic-shop/internal/repository"
)

// OrderService owns order reads, fulfillment and status transitions.
type OrderService struct {
	orders    repository.OrderRepository
	catalog   *CatalogService
	publisher events.OrderEventPublisher
	notifier  clients.NotificationSender
	config    *config.Config
	logger    *logging.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	catalog *CatalogService,
	publisher events.OrderEventPublisher,
	notifier clients.NotificationSender,
	cfg *config.Config,
) *OrderService {
	return &OrderService{
		orders:    orders,
		catalog:   catalog,
		publisher: publisher,
		notifier:  notifier,
		config:    cfg,
		logger:    logging.New("order-service"),
	}
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) Items(ctx context.Context, orderID string) ([]*models.OrderItem, error) {
	return s.orders.ItemsByOrder(ctx, orderID)
}

func (s *OrderService) ListByAccount(ctx context.Context, accountID string) ([]*models.Order, error) {
	return s.orders.ListByAccount(ctx, accountID)
}

// Fulfill writes the fulfillment snapshot onto the order in one atomic
// update. It does not change status; re-running with identical details is a
// no-op in effect.
func (s *OrderService) Fulfill(ctx context.Context, orderID string, details models.FulfillmentDetails) error {
	return s.orders.Fulfill(ctx, orderID, details)
}

// SetStatus validates and applies a status transition. Setting the current
// status again succeeds without effect, which keeps webhook redelivery safe.
// On the pending -> paid transition it decrements inventory, publishes the
// paid event and queues the confirmation notification.
func (s *OrderService) SetStatus(ctx context.Context, orderID string, raw string) (*models.Order, error) {
	status, err := models.ParseOrderStatus(raw)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == status {
		return order, nil
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, errs.NewValidationError("status", fmt.Sprintf(
			"invalid status transition from %s to %s", order.Status, status,
		))
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	order.Status = status
	metrics.OrdersByStatus.WithLabelValues(string(status)).Inc()

	switch status {
	case models.OrderStatusPaid:
		s.handlePaid(ctx, order)
	case models.OrderStatusCancelled:
		s.handleCancelled(ctx, order)
	}

	return order, nil
}

func (s *OrderService) handlePaid(ctx context.Context, order *models.Order) {
	items, err := s.orders.ItemsByOrder(ctx, order.ID)
	if err != nil {
		s.logger.Error("Failed to load items for inventory decrement", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
	for _, item := range items {
		if err := s.catalog.DecrementInventory(ctx, item.ProductID, item.Quantity); err != nil {
			// The payment is already confirmed; a stock shortfall here is an
			// oversell, flagged for operators rather than failing the webhook.
			s.logger.Error("Inventory decrement failed after payment", logging.Fields{
				"order_id":   order.ID,
				"product_id": item.ProductID,
				"quantity":   item.Quantity,
				"error":      err.Error(),
			})
		}
	}

	if s.config.Features.EnableOrderEvents {
		if err := s.publisher.PublishOrderPaid(ctx, order); err != nil {
			s.logger.Error("Failed to publish order paid event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	if s.config.Features.EnableNotifications {
		go s.sendPaymentConfirmation(context.Background(), order)
	}
}

func (s *OrderService) handleCancelled(ctx context.Context, order *models.Order) {
	if s.config.Features.EnableOrderEvents {
		if err := s.publisher.PublishOrderCancelled(ctx, order); err != nil {
			s.logger.Error("Failed to publish order cancelled event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}
}

func (s *OrderService) sendPaymentConfirmation(ctx context.Context, order *models.Order) {
	if order.CustomerEmail == "" {
		return
	}

	notification := &clients.Notification{
		Type:      "order_confirmation",
		Recipient: order.CustomerEmail,
		Subject:   "Your order has been placed",
		Body:      fmt.Sprintf("Thank you! Your order %s (%s) is confirmed.", order.ID, order.TotalDollars()),
		Metadata: map[string]string{
			"order_id": order.ID,
		},
	}

	if err := s.notifier.Send(ctx, notification); err != nil {
		s.logger.Error("Failed to send order confirmation", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
}
