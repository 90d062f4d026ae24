// Package handlers holds the HTTP layer: request binding, identity
// extraction and error-to-status mapping around the services.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acostajs/vanier-ceramic-shop/internal/config"
	"github.com/acostajs/vanier-ceramic-shop/internal/errs"
	"github.com/acostajs/vanier-ceramic-shop/internal/gateway"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/service"
)

const accountIDKey = "account_id"

// Handlers holds all HTTP handlers for the shop service.
type Handlers struct {
	catalog  *service.CatalogService
	carts    *service.CartService
	checkout *service.CheckoutService
	orders   *service.OrderService
	webhooks *service.WebhookService
	gateway  gateway.PaymentGateway
	config   *config.Config
	logger   *logging.Logger
}

func NewHandlers(
	catalog *service.CatalogService,
	carts *service.CartService,
	checkout *service.CheckoutService,
	orders *service.OrderService,
	webhooks *service.WebhookService,
	gw gateway.PaymentGateway,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		catalog:  catalog,
		carts:    carts,
		checkout: checkout,
		orders:   orders,
		webhooks: webhooks,
		gateway:  gw,
		config:   cfg,
		logger:   logging.New("handlers"),
	}
}

// AccountIdentity resolves the authenticated account from the X-Account-ID
// header into the request context. Authentication itself is handled upstream;
// this service only needs an explicit account id, never an ambient user.
func AccountIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if accountID := c.GetHeader("X-Account-ID"); accountID != "" {
			c.Set(accountIDKey, accountID)
		}
		c.Next()
	}
}

// requireAccountID returns the request's account id or writes a 401.
func requireAccountID(c *gin.Context) (string, bool) {
	accountID := c.GetString(accountIDKey)
	if accountID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account identity required"})
		return "", false
	}
	return accountID, true
}

func handleError(c *gin.Context, err error) {
	var ve *errs.ValidationError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, errs.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
