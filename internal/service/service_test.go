package service

import (
	"github.com/acostajs/vanier-ceramic-shop/internal/clients"
	"github.com/acostajs/vanier-ceramic-shop/internal/config"
	"github.com/acostajs/vanier-ceramic-shop/internal/events"
	"github.com/acostajs/vanier-ceramic-shop/internal/gateway"
	"github.com/acostajs/vanier-ceramic-shop/internal/models"
	"github.com/acostajs/vanier-ceramic-shop/internal/repository"
)

// testEnv wires every service onto in-memory repositories and mocks.
type testEnv struct {
	products  *repository.MemoryProductRepository
	accounts  *repository.MemoryAccountRepository
	carts     *repository.MemoryCartRepository
	orders    *repository.MemoryOrderRepository
	gateway   *gateway.MockGateway
	publisher *events.MockEventPublisher
	notifier  *clients.MockNotificationSender

	catalog  *CatalogService
	cart     *CartService
	checkout *CheckoutService
	order    *OrderService
	webhook  *WebhookService
}

func newTestEnv() *testEnv {
	cfg := &config.Config{
		Checkout: config.CheckoutConfig{
			Currency:   "usd",
			SuccessURL: "https://shop.test/checkout/success",
			CancelURL:  "https://shop.test/checkout/cancel",
		},
		Features: config.FeatureFlags{
			EnableOrderEvents: true,
			// Notifications run on a background goroutine; keep tests
			// deterministic by leaving them off.
			EnableNotifications: false,
		},
	}

	env := &testEnv{
		products:  repository.NewMemoryProductRepository(),
		accounts:  repository.NewMemoryAccountRepository(),
		orders:    repository.NewMemoryOrderRepository(),
		gateway:   gateway.NewMockGateway(),
		publisher: events.NewMockEventPublisher(),
		notifier:  clients.NewMockNotificationSender(),
	}
	env.carts = repository.NewMemoryCartRepository(env.products)

	env.catalog = NewCatalogService(env.products, nil, cfg)
	env.cart = NewCartService(env.carts, env.catalog)
	env.order = NewOrderService(env.orders, env.catalog, env.publisher, env.notifier, cfg)
	env.checkout = NewCheckoutService(env.carts, env.orders, env.accounts, env.gateway, env.publisher, cfg)
	env.webhook = NewWebhookService(env.orders, env.accounts, env.order)

	return env
}

func (e *testEnv) seedProduct(id, name string, priceCents int64, quantity int) {
	e.products.Put(&models.Product{
		ID:         id,
		Name:       name,
		PriceCents: priceCents,
		Quantity:   quantity,
	})
}

func (e *testEnv) seedAccount(id string) {
	addr := models.Address{
		Line1:      "12 Rue des Potiers",
		City:       "Montreal",
		PostalCode: "H2X 1Y4",
		Country:    "CA",
	}
	e.accounts.Put(&models.Account{
		ID:              id,
		Email:           id + "@example.com",
		FirstName:       "Marie",
		LastName:        "Tremblay",
		BillingAddress:  addr,
		ShippingAddress: addr,
	})
}
