package main

import (
	"context"
	"net/http"
	"time"

	"github.com/ashendes/checkout-demo/internal/config"
	"github.com/ashendes/checkout-demo/internal/gateway"
	"github.com/ashendes/checkout-demo/internal/metrics"
	"github.com/ashendes/checkout-demo/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	config.SetupLogging(cfg.LogLevel)

	client := gateway.NewClient(gateway.Options{
		BaseURL:        cfg.GatewayURL,
		Timeout:        cfg.GatewayTimeout,
		CircuitBreaker: cfg.CircuitBreakerEnabled,
	})
	store := web.NewStore(cfg.MerchantID, client, cfg.SessionTTL)
	handler := web.NewHandler(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.Run(ctx, time.Minute)

	router := gin.Default()

	// Add Prometheus middleware
	router.Use(metrics.PrometheusMiddleware("checkout-web"))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Checkout pages
	handler.RegisterRoutes(router)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.WithFields(log.Fields{
		"gateway_url":     cfg.GatewayURL,
		"merchant_id":     cfg.MerchantID,
		"circuit_breaker": cfg.CircuitBreakerEnabled,
		"session_ttl":     cfg.SessionTTL.String(),
	}).Info("Checkout web starting on ", cfg.ListenAddr)

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
