package service

import (
	"context"
	"time"

	"github.com/acostajs/vanier-ceramic-shop/internal/config"
	"github.com/acostajs/vanier-ceramic-shop/internal/errs"
	"github.com/acostajs/vanier-ceramic-shop/internal/events"
	"github.com/acostajs/vanier-ceramic-shop/internal/gateway"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/metrics"
	"github.com/acostajs/vanier-ceramic-shop/internal/models"
	"github.com/acostajs/vanier-ceramic-shop/internal/repository"
)

// CheckoutService turns a mutable cart into an immutable priced order and
// hands off to the hosted payment session.
type CheckoutService struct {
	carts     repository.CartRepository
	orders    repository.OrderRepository
	accounts  repository.AccountRepository
	gateway   gateway.PaymentGateway
	publisher events.OrderEventPublisher
	config    *config.Config
	logger    *logging.Logger
}

func NewCheckoutService(
	carts repository.CartRepository,
	orders repository.OrderRepository,
	accounts repository.AccountRepository,
	gw gateway.PaymentGateway,
	publisher events.OrderEventPublisher,
	cfg *config.Config,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		orders:    orders,
		accounts:  accounts,
		gateway:   gw,
		publisher: publisher,
		config:    cfg,
		logger:    logging.New("checkout-service"),
	}
}

// CreateFromCart snapshots the cart into a pending order with frozen prices,
// then requests a hosted payment session carrying the order ID as the
// client reference.
//
// An empty cart returns (nil, nil, nil): checkout is a no-op, not an error.
// The cart is NOT cleared and the order is NOT marked paid here; both happen
// on the asynchronous payment confirmation. If the gateway call fails the
// pending order is kept as the recovery anchor and returned with the error.
func (s *CheckoutService) CreateFromCart(ctx context.Context, accountID string) (*gateway.CheckoutSession, *models.Order, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	if !account.HasCompleteAddresses() {
		return nil, nil, errs.NewValidationError("address", "billing and shipping addresses must be complete before checkout")
	}

	cart, err := s.carts.GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	cartItems, err := s.carts.Items(ctx, cart.ID)
	if err != nil {
		return nil, nil, err
	}

	if len(cartItems) == 0 {
		metrics.CheckoutSessions.WithLabelValues("empty_cart").Inc()
		return nil, nil, nil
	}

	order := &models.Order{
		ID:         models.NewID("ord"),
		AccountID:  accountID,
		Status:     models.OrderStatusPending,
		TotalCents: models.SubtotalCents(cartItems),
		CreatedAt:  time.Now(),
	}

	orderItems := make([]*models.OrderItem, 0, len(cartItems))
	lineItems := make([]gateway.SessionLineItem, 0, len(cartItems))
	for _, item := range cartItems {
		orderItems = append(orderItems, &models.OrderItem{
			OrderID:        order.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
		lineItems = append(lineItems, gateway.SessionLineItem{
			Name:           item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	if err := s.orders.Create(ctx, order, orderItems); err != nil {
		return nil, nil, err
	}

	if s.config.Features.EnableOrderEvents {
		if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
			// Log but don't fail; the order row is the source of truth.
			s.logger.Error("Failed to publish order created event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, gateway.SessionParams{
		TotalCents:        order.TotalCents,
		Currency:          s.config.Checkout.Currency,
		LineItems:         lineItems,
		ClientReferenceID: order.ID,
		SuccessURL:        s.config.Checkout.SuccessURL,
		CancelURL:         s.config.Checkout.CancelURL,
	})
	if err != nil {
		// No rollback: the pending order stays and is reconciled by gateway
		// cancellation events or operator cleanup.
		metrics.CheckoutSessions.WithLabelValues("gateway_error").Inc()
		s.logger.Error("Checkout session request failed, pending order kept", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return nil, order, err
	}

	metrics.CheckoutSessions.WithLabelValues("created").Inc()
	s.logger.Info("Checkout session created", logging.Fields{
		"order_id":    order.ID,
		"session_id":  session.ID,
		"total_cents": order.TotalCents,
	})

	return session, order, nil
}
