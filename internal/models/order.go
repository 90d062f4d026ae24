package models

import (
	"fmt"
	"time"

	"github.com/acostajs/vanier-ceramic-shop/internal/errs"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus validates a raw status value.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled:
		return OrderStatus(s), nil
	}
	return "", errs.NewValidationError("status", fmt.Sprintf("unknown order status %q", s))
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

// CanTransitionTo reports whether from -> to is an allowed move. Re-setting
// the current status is allowed; webhook redelivery depends on it.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	if s == to {
		return true
	}
	return s == OrderStatusPending
}

// Order is an immutable priced snapshot of a cart. TotalCents is authoritative
// from the moment of creation; it is never re-derived from items.
type Order struct {
	ID              string      `json:"id"`
	AccountID       string      `json:"account_id"`
	Status          OrderStatus `json:"status"`
	TotalCents      int64       `json:"total_cents"`
	PaymentID       string      `json:"payment_id,omitempty"`
	CustomerName    string      `json:"customer_name,omitempty"`
	CustomerEmail   string      `json:"customer_email,omitempty"`
	BillingAddress  Address     `json:"billing_address"`
	ShippingAddress Address     `json:"shipping_address"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TotalDollars formats the order total as a dollar string.
func (o *Order) TotalDollars() string {
	return fmt.Sprintf("$%.2f", float64(o.TotalCents)/100)
}

// OrderItem is a line frozen at order creation. UnitPriceCents is the
// product's price at that instant; later catalog edits never touch it.
type OrderItem struct {
	OrderID        string `json:"order_id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// LineTotalCents is quantity times the frozen unit price.
func (i *OrderItem) LineTotalCents() int64 {
	return int64(i.Quantity) * i.UnitPriceCents
}

// FulfillmentDetails is everything fulfill writes onto an order in one atomic
// update. Status is deliberately not part of it.
type FulfillmentDetails struct {
	CustomerName    string
	CustomerEmail   string
	PaymentID       string
	TotalCents      int64
	BillingAddress  Address
	ShippingAddress Address
}
