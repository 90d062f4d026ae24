package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acostajs/vanier-ceramic-shop/internal/clients"
	"github.com/acostajs/vanier-ceramic-shop/internal/config"
	"github.com/acostajs/vanier-ceramic-shop/internal/events"
	"github.com/acostajs/vanier-ceramic-shop/internal/gateway"
	"github.com/acostajs/vanier-ceramic-shop/internal/logging"
	"github.com/acostajs/vanier-ceramic-shop/internal/models"
	"github.com/acostajs/vanier-ceramic-shop/internal/repository"
	"github.com/acostajs/vanier-ceramic-shop/internal/service"
)

const testWebhookSecret = "whsec_test"

type testApp struct {
	handlers *Handlers
	router   *gin.Engine
	products *repository.MemoryProductRepository
	accounts *repository.MemoryAccountRepository
	orders   *repository.MemoryOrderRepository
	verifier *gateway.StripeClient
}

func newTestApp() *testApp {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Stripe: config.StripeConfig{WebhookSecret: testWebhookSecret},
		Checkout: config.CheckoutConfig{
			Currency:   "usd",
			SuccessURL: "https://shop.test/checkout/success",
			CancelURL:  "https://shop.test/checkout/cancel",
		},
		Features: config.FeatureFlags{EnableOrderEvents: true},
	}

	products := repository.NewMemoryProductRepository()
	accounts := repository.NewMemoryAccountRepository()
	carts := repository.NewMemoryCartRepository(products)
	orders := repository.NewMemoryOrderRepository()

	mockGateway := gateway.NewMockGateway()
	verifier := gateway.NewStripeClient(cfg.Stripe, logging.New("test"))
	publisher := events.NewMockEventPublisher()
	notifier := clients.NewMockNotificationSender()

	catalogSvc := service.NewCatalogService(products, nil, cfg)
	cartSvc := service.NewCartService(carts, catalogSvc)
	orderSvc := service.NewOrderService(orders, catalogSvc, publisher, notifier, cfg)
	checkoutSvc := service.NewCheckoutService(carts, orders, accounts, mockGateway, publisher, cfg)
	webhookSvc := service.NewWebhookService(orders, accounts, orderSvc)

	h := NewHandlers(catalogSvc, cartSvc, checkoutSvc, orderSvc, webhookSvc, verifier, cfg)

	router := gin.New()
	router.POST("/webhooks/stripe", h.PaymentWebhook)
	v1 := router.Group("/api/v1")
	v1.Use(AccountIdentity())
	{
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/cart", h.GetCart)
		v1.POST("/cart/items/:product_id", h.AddCartItem)
		v1.POST("/checkout", h.CreateCheckoutSession)
		v1.POST("/checkout/success", h.CheckoutSuccess)
		v1.GET("/orders/:id", h.GetOrder)
	}

	return &testApp{
		handlers: h,
		router:   router,
		products: products,
		accounts: accounts,
		orders:   orders,
		verifier: verifier,
	}
}

func (a *testApp) seed() {
	addr := models.Address{
		Line1:      "12 Rue des Potiers",
		City:       "Montreal",
		PostalCode: "H2X 1Y4",
		Country:    "CA",
	}
	a.accounts.Put(&models.Account{
		ID:              "acct_1",
		Email:           "marie@example.com",
		FirstName:       "Marie",
		LastName:        "Tremblay",
		BillingAddress:  addr,
		ShippingAddress: addr,
	})
	a.products.Put(&models.Product{
		ID:         "prod_mug",
		Name:       "Glazed Mug",
		PriceCents: 1500,
		Quantity:   10,
	})
}

func (a *testApp) do(method, path, accountID string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if accountID != "" {
		req.Header.Set("X-Account-ID", accountID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func signedWebhook(payload []byte) (string, []byte) {
	ts := time.Now().Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, gateway.ComputeSignature(testWebhookSecret, ts, payload))
	return header, payload
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Health(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}
}

func TestCartRequiresAccountHeader(t *testing.T) {
	app := newTestApp()

	w := app.do(http.MethodGet, "/api/v1/cart", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestAddAndGetCart(t *testing.T) {
	app := newTestApp()
	app.seed()

	body, _ := json.Marshal(map[string]interface{}{"quantity": 2})
	w := app.do(http.MethodPost, "/api/v1/cart/items/prod_mug", "acct_1", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = app.do(http.MethodGet, "/api/v1/cart", "acct_1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Count         int   `json:"count"`
		SubtotalCents int64 `json:"subtotal_cents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("Expected count 2, got %d", resp.Count)
	}
	if resp.SubtotalCents != 3000 {
		t.Errorf("Expected subtotal 3000, got %d", resp.SubtotalCents)
	}
}

func TestAddCartItemMalformedBodyDefaultsToOne(t *testing.T) {
	app := newTestApp()
	app.seed()

	w := app.do(http.MethodPost, "/api/v1/cart/items/prod_mug", "acct_1", []byte("not json"))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w = app.do(http.MethodGet, "/api/v1/cart", "acct_1", nil)
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("Expected count 1, got %d", resp.Count)
	}
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	app := newTestApp()
	app.seed()

	w := app.do(http.MethodPost, "/api/v1/cart/items/prod_missing", "acct_1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	app := newTestApp()
	app.seed()

	w := app.do(http.MethodPost, "/api/v1/checkout", "acct_1", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCheckoutReturnsSession(t *testing.T) {
	app := newTestApp()
	app.seed()

	app.do(http.MethodPost, "/api/v1/cart/items/prod_mug", "acct_1", nil)

	w := app.do(http.MethodPost, "/api/v1/checkout", "acct_1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		CheckoutURL string `json:"checkout_url"`
		SessionID   string `json:"session_id"`
		OrderID     string `json:"order_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.CheckoutURL == "" || resp.SessionID == "" || resp.OrderID == "" {
		t.Errorf("Incomplete checkout response: %+v", resp)
	}
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	app := newTestApp()
	app.seed()

	app.do(http.MethodPost, "/api/v1/cart/items/prod_mug", "acct_1", nil)
	app.do(http.MethodPost, "/api/v1/checkout", "acct_1", nil)

	w := app.do(http.MethodPost, "/api/v1/checkout/success", "acct_1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w = app.do(http.MethodGet, "/api/v1/cart", "acct_1", nil)
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("Expected empty cart after success redirect, got count %d", resp.Count)
	}
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	app := newTestApp()

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1700000000,v1=deadbeef")
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestWebhookCompletionMarksOrderPaid(t *testing.T) {
	app := newTestApp()
	app.seed()

	app.do(http.MethodPost, "/api/v1/cart/items/prod_mug", "acct_1", nil)
	w := app.do(http.MethodPost, "/api/v1/checkout", "acct_1", nil)
	var checkout struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &checkout); err != nil {
		t.Fatalf("Failed to parse checkout response: %v", err)
	}

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","client_reference_id":%q,"payment_intent":"pi_123"}}}`,
		checkout.OrderID,
	))
	header, payload := signedWebhook(payload)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", header)
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = app.do(http.MethodGet, "/api/v1/orders/"+checkout.OrderID, "acct_1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Order struct {
			Status string `json:"status"`
		} `json:"order"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Order.Status != "paid" {
		t.Errorf("Expected order status paid, got %q", resp.Order.Status)
	}
}

func TestWebhookCompletionUnknownOrder(t *testing.T) {
	app := newTestApp()

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","client_reference_id":"ord_missing","payment_intent":"pi_123"}}}`)
	header, payload := signedWebhook(payload)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", header)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestWebhookCompletionOrderWithoutAccount(t *testing.T) {
	app := newTestApp()

	order := &models.Order{
		ID:         models.NewID("ord"),
		AccountID:  "acct_ghost",
		Status:     models.OrderStatusPending,
		TotalCents: 1500,
		CreatedAt:  time.Now(),
	}
	if err := app.orders.Create(context.Background(), order, nil); err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","client_reference_id":%q,"payment_intent":"pi_123"}}}`,
		order.ID,
	))
	header, payload := signedWebhook(payload)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", header)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
	}

	stored, err := app.orders.GetByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Failed to fetch order: %v", err)
	}
	if stored.Status != models.OrderStatusPending {
		t.Errorf("Expected order to stay pending, got %s", stored.Status)
	}
	if stored.PaymentID != "" {
		t.Errorf("Expected no payment id, got %q", stored.PaymentID)
	}
}

func TestWebhookUnknownEventTypeAcknowledged(t *testing.T) {
	app := newTestApp()

	payload := []byte(`{"id":"evt_1","type":"invoice.finalized","data":{"object":{}}}`)
	header, payload := signedWebhook(payload)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", header)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestGetOrderHidesOtherAccounts(t *testing.T) {
	app := newTestApp()
	app.seed()

	app.do(http.MethodPost, "/api/v1/cart/items/prod_mug", "acct_1", nil)
	w := app.do(http.MethodPost, "/api/v1/checkout", "acct_1", nil)
	var checkout struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &checkout); err != nil {
		t.Fatalf("Failed to parse checkout response: %v", err)
	}

	w = app.do(http.MethodGet, "/api/v1/orders/"+checkout.OrderID, "acct_2", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
