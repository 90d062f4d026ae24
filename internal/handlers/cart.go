package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acostajs/vanier-ceramic-shop/internal/models"
	"github.com/acostajs/vanier-ceramic-shop/internal/service"
)

type cartItemRequest struct {
	Quantity int  `json:"quantity"`
	Replace  bool `json:"replace"`
}

// GetCart handles GET /api/v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	items, err := h.carts.Items(c.Request.Context(), accountID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":            items,
		"count":            models.CountItems(items),
		"subtotal_cents":   models.SubtotalCents(items),
		"subtotal_display": models.SubtotalDollars(items),
	})
}

// AddCartItem handles POST /api/v1/cart/items/:product_id
func (h *Handlers) AddCartItem(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	productID := c.Param("product_id")

	// A missing or malformed body falls back to quantity 1, matching the
	// clamp-not-reject contract for cart quantities.
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = cartItemRequest{Quantity: 1}
	}
	req.Quantity = service.ClampQuantity(req.Quantity)

	product, err := h.carts.Add(c.Request.Context(), accountID, productID, req.Quantity, req.Replace)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": product.ID,
		"name":       product.Name,
		"quantity":   req.Quantity,
		"replace":    req.Replace,
	})
}

// RemoveCartItem handles DELETE /api/v1/cart/items/:product_id
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	if err := h.carts.Remove(c.Request.Context(), accountID, c.Param("product_id")); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// ClearCart handles DELETE /api/v1/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	if err := h.carts.Clear(c.Request.Context(), accountID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
