package main

import (
	"github.com/ashendes/checkout-demo/internal/config"
	"github.com/ashendes/checkout-demo/internal/gatewaystub"
	"github.com/ashendes/checkout-demo/internal/metrics"
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

	router := gin.Default()

	// Add Prometheus middleware
	router.Use(metrics.PrometheusMiddleware("payment-gateway"))

	stub := gatewaystub.NewServer(gatewaystub.Settlement{
		TestMode: cfg.TestMode,
		Delay:    cfg.ProcessingDelay,
		Success:  cfg.PaymentSucceeds,
	})
	defer stub.Close()
	stub.RegisterRoutes(router)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info("Payment gateway stub starting on ", cfg.StubListenAddr)
	if err := router.Run(cfg.StubListenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
