package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListOrders handles GET /api/v1/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}
	orderID := c.Param("id")

	order, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		handleError(c, err)
		return
	}

	// Orders are only visible to their owner.
	if order.AccountID != accountID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	items, err := h.orders.Items(c.Request.Context(), orderID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"items": items,
	})
}
