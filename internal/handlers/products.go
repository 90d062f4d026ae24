package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListProducts handles GET /api/v1/products
func (h *Handlers) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct handles GET /api/v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":                product,
		"available":              product.IsAvailable(),
		"discounted_price_cents": product.DiscountedPriceCents(),
	})
}

// ListCollectionProducts handles GET /api/v1/collections/:id/products
func (h *Handlers) ListCollectionProducts(c *gin.Context) {
	products, err := h.catalog.ListByCollection(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}
