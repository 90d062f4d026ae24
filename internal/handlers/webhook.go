package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acostajs/vanier-ceramic-shop/internal/errs"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/metrics"
)

// PaymentWebhook handles POST /webhooks/stripe
//
// The response status communicates only whether the delivery was accepted:
// 400 for verification failures and malformed payloads, 404 when a
// completion event references a missing order, 200 otherwise. Verification
// happens before anything else; nothing downstream runs on an unverified
// payload.
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	event, err := h.gateway.VerifyEvent(payload, signature)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidSignature) {
			metrics.WebhookEvents.WithLabelValues("unknown", "invalid_signature").Inc()
		}
		h.logger.Warn("Rejected webhook delivery", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.webhooks.Process(c.Request.Context(), event); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
