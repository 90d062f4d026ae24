// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckoutSessions counts hosted checkout sessions by outcome
	// ("created", "empty_cart", "gateway_error").
	CheckoutSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_checkout_sessions_total",
			Help: "Checkout sessions requested, by outcome.",
		},
		[]string{"outcome"},
	)

	// WebhookEvents counts webhook deliveries by event type and outcome
	// ("processed", "ignored", "invalid_signature", "order_not_found",
	// "anomaly").
	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_webhook_events_total",
			Help: "Payment webhook events received, by type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	// OrdersByStatus counts status transitions applied to orders.
	OrdersByStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_order_status_transitions_total",
			Help: "Order status transitions applied.",
		},
		[]string{"status"},
	)
)
