package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
)

// CreateCheckoutSession handles POST /api/v1/checkout
//
// On success the client is expected to redirect the customer to checkout_url.
// A gateway failure returns 502; the pending order already exists and is
// reconciled by later gateway events or operator cleanup.
func (h *Handlers) CreateCheckoutSession(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	session, order, err := h.checkout.CreateFromCart(c.Request.Context(), accountID)
	if err != nil {
		if order != nil {
			h.logger.Error("Gateway call failed, pending order kept", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
			c.JSON(http.StatusBadGateway, gin.H{
				"error":    "payment gateway unavailable",
				"order_id": order.ID,
			})
			return
		}
		handleError(c, err)
		return
	}

	if session == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout_url": session.URL,
		"session_id":   session.ID,
		"order_id":     order.ID,
	})
}

// CheckoutSuccess handles POST /api/v1/checkout/success
//
// Called from the success redirect page. Clears the cart; the order itself
// is only marked paid by the webhook, never here.
func (h *Handlers) CheckoutSuccess(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	if err := h.carts.Clear(c.Request.Context(), accountID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
