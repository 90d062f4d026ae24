package service

import (
	"context"

	"github.com/acostajs/vanier-ceramic-shop/internal/config"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/models"
	"github.com/acostajs/vanier-ceramic-shop/internal/repository"
)

// CatalogService serves product reads through the cache.
type CatalogService struct {
	products repository.ProductRepository
	cache    repository.ProductCache
	config   *config.Config
	logger   *logging.Logger
}

func NewCatalogService(
	products repository.ProductRepository,
	cache repository.ProductCache,
	cfg *config.Config,
) *CatalogService {
	return &CatalogService{
		products: products,
		cache:    cache,
		config:   cfg,
		logger:   logging.New("catalog-service"),
	}
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if s.cachingEnabled() {
		if product, err := s.cache.Get(ctx, id); err == nil && product != nil {
			return product, nil
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cachingEnabled() {
		if err := s.cache.Set(ctx, product); err != nil {
			// Cache failures never fail the read.
			s.logger.Warn("Failed to cache product", logging.Fields{
				"product_id": product.ID,
				"error":      err.Error(),
			})
		}
	}

	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return s.products.List(ctx)
}

func (s *CatalogService) ListByCollection(ctx context.Context, collectionID string) ([]*models.Product, error) {
	return s.products.ListByCollection(ctx, collectionID)
}

// DecrementInventory applies a stock decrement and invalidates the cached
// read model.
func (s *CatalogService) DecrementInventory(ctx context.Context, productID string, qty int) error {
	if err := s.products.DecrementQuantity(ctx, productID, qty); err != nil {
		return err
	}

	if s.cachingEnabled() {
		if err := s.cache.Delete(ctx, productID); err != nil {
			s.logger.Warn("Failed to invalidate product cache", logging.Fields{
				"product_id": productID,
				"error":      err.Error(),
			})
		}
	}

	return nil
}

func (s *CatalogService) cachingEnabled() bool {
	return s.cache != nil && s.config.Features.EnableProductCaching
}
