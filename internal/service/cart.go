package service

import (
	"context"

	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/models"
	"github.com/acostajs/vanier-ceramic-shop/internal/repository"
)

// CartService operates on the account's single mutable cart. All prices it
// reports are live catalog prices; nothing is frozen until checkout.
type CartService struct {
	carts   repository.CartRepository
	catalog *CatalogService
	logger  *logging.Logger
}

func NewCartService(carts repository.CartRepository, catalog *CatalogService) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		logger:  logging.New("cart-service"),
	}
}

// ClampQuantity normalizes a caller-supplied quantity to at least 1.
// Non-positive input is a defensive default, not a validation error.
func ClampQuantity(qty int) int {
	if qty < 1 {
		return 1
	}
	return qty
}

// Add puts the product in the cart. An existing line is incremented, or
// overwritten when replace is set. Returns the product for display.
func (s *CartService) Add(ctx context.Context, accountID, productID string, quantity int, replace bool) (*models.Product, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	quantity = ClampQuantity(quantity)
	if err := s.carts.UpsertItem(ctx, cart.ID, productID, quantity, replace); err != nil {
		return nil, err
	}

	s.logger.Info("Cart item upserted", logging.Fields{
		"cart_id":    cart.ID,
		"product_id": productID,
		"quantity":   quantity,
		"replace":    replace,
	})

	return product, nil
}

// Remove deletes the product's line. Absent products are a no-op.
func (s *CartService) Remove(ctx context.Context, accountID, productID string) error {
	cart, err := s.carts.GetOrCreate(ctx, accountID)
	if err != nil {
		return err
	}
	return s.carts.RemoveItem(ctx, cart.ID, productID)
}

// Clear removes every line from the cart.
func (s *CartService) Clear(ctx context.Context, accountID string) error {
	cart, err := s.carts.GetOrCreate(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.carts.Clear(ctx, cart.ID); err != nil {
		return err
	}

	s.logger.Info("Cart cleared", logging.Fields{"cart_id": cart.ID})
	return nil
}

// Items returns the materialized cart lines with live prices.
func (s *CartService) Items(ctx context.Context, accountID string) ([]*models.CartItem, error) {
	cart, err := s.carts.GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.carts.Items(ctx, cart.ID)
}

// Count is the sum of quantities across lines; 0 for an empty cart.
func (s *CartService) Count(ctx context.Context, accountID string) (int, error) {
	items, err := s.Items(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return models.CountItems(items), nil
}

// SubtotalCents sums quantity times live unit price across lines.
func (s *CartService) SubtotalCents(ctx context.Context, accountID string) (int64, error) {
	items, err := s.Items(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return models.SubtotalCents(items), nil
}
