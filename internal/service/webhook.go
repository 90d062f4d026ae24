package service

import (
	"context"
	"errors"

	"github.com/acostajs/vanier-ceramic-shop/internal/errs"
	"github.com/acostajs/vanier-ceramic-shop/internal/gateway"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/metrics"
	"github.com/acostajs/vanier-ceramic-shop/internal/models"
	"github.com/acostajs/vanier-ceramic-shop/internal/repository"
)

// WebhookService reconciles verified gateway events against orders.
// Delivery is at-least-once and may be out of order, so every path here must
// be idempotent and must treat terminal states as floors: an order never
// regresses out of paid or cancelled.
type WebhookService struct {
	orders   repository.OrderRepository
	accounts repository.AccountRepository
	orderSvc *OrderService
	logger   *logging.Logger
}

func NewWebhookService(
	orders repository.OrderRepository,
	accounts repository.AccountRepository,
	orderSvc *OrderService,
) *WebhookService {
	return &WebhookService{
		orders:   orders,
		accounts: accounts,
		orderSvc: orderSvc,
		logger:   logging.New("webhook-service"),
	}
}

// Process applies a verified event. The returned error communicates only the
// webhook-channel outcome: errs.ErrNotFound means the referenced order is
// missing on a completion event, a ValidationError means the delivery was
// well-formed but the server-side state is broken, nil means acknowledged.
func (s *WebhookService) Process(ctx context.Context, event *gateway.Event) error {
	switch event.Type {
	case gateway.EventCheckoutCompleted, gateway.EventAsyncPaymentSucceeded:
		return s.handleCheckoutCompleted(ctx, event)
	case gateway.EventPaymentFailed, gateway.EventPaymentCanceled:
		return s.handlePaymentFailed(ctx, event)
	default:
		// Unknown types are acknowledged without action so the gateway
		// doesn't retry them.
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "ignored").Inc()
		s.logger.Debug("Ignoring unhandled event type", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
		})
		return nil
	}
}

func (s *WebhookService) handleCheckoutCompleted(ctx context.Context, event *gateway.Event) error {
	session := event.CheckoutSession
	orderID := session.ClientReferenceID

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			metrics.WebhookEvents.WithLabelValues(string(event.Type), "order_not_found").Inc()
			s.logger.Warn("Completion event references unknown order", logging.Fields{
				"event_id": event.ID,
				"order_id": orderID,
			})
		}
		return err
	}

	account, err := s.accounts.GetByID(ctx, order.AccountID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			metrics.WebhookEvents.WithLabelValues(string(event.Type), "anomaly").Inc()
			s.logger.Error("Order has no account", logging.Fields{
				"event_id": event.ID,
				"order_id": order.ID,
			})
			return errs.NewValidationError("account", "order has no associated account")
		}
		return err
	}

	// The total is the order's frozen total, never the event's. Re-running
	// fulfill on redelivery rewrites identical values.
	details := models.FulfillmentDetails{
		CustomerName:    account.DisplayName(),
		CustomerEmail:   account.Email,
		PaymentID:       session.PaymentIntentID,
		TotalCents:      order.TotalCents,
		BillingAddress:  account.BillingAddress,
		ShippingAddress: account.ShippingAddress,
	}
	if err := s.orderSvc.Fulfill(ctx, order.ID, details); err != nil {
		return err
	}

	if _, err := s.orderSvc.SetStatus(ctx, order.ID, string(models.OrderStatusPaid)); err != nil {
		return err
	}

	metrics.WebhookEvents.WithLabelValues(string(event.Type), "processed").Inc()
	s.logger.Info("Order fulfilled from completion event", logging.Fields{
		"event_id":   event.ID,
		"order_id":   order.ID,
		"payment_id": session.PaymentIntentID,
	})
	return nil
}

func (s *WebhookService) handlePaymentFailed(ctx context.Context, event *gateway.Event) error {
	paymentID := event.PaymentIntent.ID

	order, err := s.orders.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			// Unknown payment intent on a failure event is acknowledged, so
			// the gateway never retries it indefinitely.
			metrics.WebhookEvents.WithLabelValues(string(event.Type), "ignored").Inc()
			s.logger.Info("Failure event for unknown payment intent", logging.Fields{
				"event_id":   event.ID,
				"payment_id": paymentID,
			})
			return nil
		}
		return err
	}

	if order.Status == models.OrderStatusPaid {
		// Paid is sticky; a late failure event never regresses it.
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "anomaly").Inc()
		s.logger.Warn("Failure event arrived after order was paid", logging.Fields{
			"event_id":   event.ID,
			"order_id":   order.ID,
			"payment_id": paymentID,
		})
		return nil
	}

	if order.Status == models.OrderStatusCancelled {
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "ignored").Inc()
		return nil
	}

	if _, err := s.orderSvc.SetStatus(ctx, order.ID, string(models.OrderStatusCancelled)); err != nil {
		return err
	}

	metrics.WebhookEvents.WithLabelValues(string(event.Type), "processed").Inc()
	s.logger.Info("Order cancelled from failure event", logging.Fields{
		"event_id": event.ID,
		"order_id": order.ID,
	})
	return nil
}
