// Package repository holds the persistence interfaces and their PostgreSQL,
// Redis and in-memory implementations.
package repository

import (
	"context"

	"github.com/acostajs/vanier-ceramic-shop/internal/models"
)

// ProductRepository reads the catalog and applies inventory decrements.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	ListByCollection(ctx context.Context, collectionID string) ([]*models.Product, error)

	// DecrementQuantity subtracts qty from stock as a conditional update.
	// Insufficient stock is a validation error and leaves the row untouched.
	DecrementQuantity(ctx context.Context, id string, qty int) error
}

// AccountRepository reads customer accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// CartRepository mutates the per-account cart. Implementations must keep the
// one-cart-per-account and one-item-per-(cart,product) uniqueness guarantees
// and perform increments atomically.
type CartRepository interface {
	GetOrCreate(ctx context.Context, accountID string) (*models.Cart, error)
	UpsertItem(ctx context.Context, cartID, productID string, quantity int, replace bool) error
	RemoveItem(ctx context.Context, cartID, productID string) error
	Clear(ctx context.Context, cartID string) error

	// Items returns materialized cart lines joined with live product names
	// and discounted unit prices.
	Items(ctx context.Context, cartID string) ([]*models.CartItem, error)
}

// OrderRepository persists orders and their frozen line items.
type OrderRepository interface {
	// Create writes the order and all items in a single transaction.
	Create(ctx context.Context, order *models.Order, items []*models.OrderItem) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	ListByAccount(ctx context.Context, accountID string) ([]*models.Order, error)
	ItemsByOrder(ctx context.Context, orderID string) ([]*models.OrderItem, error)

	// Fulfill writes the fulfillment fields in one atomic update. It never
	// touches status.
	Fulfill(ctx context.Context, orderID string, details models.FulfillmentDetails) error
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error
}

// ProductCache caches catalog read models.
type ProductCache interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	Set(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}
