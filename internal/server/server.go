package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acostajs/vanier-ceramic-shop/internal/config"
	"github.com/acostajs/vanier-ceramic-shop/internal/handlers"
)

type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	httpSrv  *http.Server
}

func New(h *handlers.Handlers, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
	}

	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Webhook deliveries are authenticated by signature, not by account.
	s.router.POST("/webhooks/stripe", s.handlers.PaymentWebhook)

	v1 := s.router.Group("/api/v1")
	v1.Use(handlers.AccountIdentity())
	{
		v1.GET("/products", s.handlers.ListProducts)
		v1.GET("/products/:id", s.handlers.GetProduct)
		v1.GET("/collections/:id/products", s.handlers.ListCollectionProducts)

		v1.GET("/cart", s.handlers.GetCart)
		v1.POST("/cart/items/:product_id", s.handlers.AddCartItem)
		v1.DELETE("/cart/items/:product_id", s.handlers.RemoveCartItem)
		v1.DELETE("/cart", s.handlers.ClearCart)

		v1.POST("/checkout", s.handlers.CreateCheckoutSession)
		v1.POST("/checkout/success", s.handlers.CheckoutSuccess)

		v1.GET("/orders", s.handlers.ListOrders)
		v1.GET("/orders/:id", s.handlers.GetOrder)
	}
}

func (s *Server) Start() error {
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
