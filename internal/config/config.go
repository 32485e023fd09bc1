package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ashendes/checkout-demo/internal/patterns"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds settings for the checkout web server and the gateway stub
type Config struct {
	GatewayURL            string
	MerchantID            int
	ListenAddr            string
	StubListenAddr        string
	GatewayTimeout        time.Duration
	CircuitBreakerEnabled bool
	SessionTTL            time.Duration
	LogLevel              log.Level

	// Settlement of stub payments. Outside test mode the stub picks a
	// random delay and outcome per payment.
	TestMode        bool
	ProcessingDelay time.Duration
	PaymentSucceeds bool
}

// Load reads configuration from the environment, after loading a .env file if one exists
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Config{
		GatewayURL:     getEnv("GATEWAY_URL", "http://localhost:8080/api"),
		ListenAddr:     getEnv("LISTEN_ADDR", ":3000"),
		StubListenAddr: getEnv("STUB_LISTEN_ADDR", ":8080"),
	}

	var err error
	if cfg.MerchantID, err = strconv.Atoi(getEnv("MERCHANT_ID", "1")); err != nil {
		return Config{}, fmt.Errorf("invalid MERCHANT_ID: %w", err)
	}
	if cfg.GatewayTimeout, err = time.ParseDuration(getEnv("GATEWAY_TIMEOUT", patterns.DefaultTimeout.String())); err != nil {
		return Config{}, fmt.Errorf("invalid GATEWAY_TIMEOUT: %w", err)
	}
	if cfg.CircuitBreakerEnabled, err = strconv.ParseBool(getEnv("CIRCUIT_BREAKER_ENABLED", "false")); err != nil {
		return Config{}, fmt.Errorf("invalid CIRCUIT_BREAKER_ENABLED: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "30m")); err != nil {
		return Config{}, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.TestMode, err = strconv.ParseBool(getEnv("TEST_MODE", "false")); err != nil {
		return Config{}, fmt.Errorf("invalid TEST_MODE: %w", err)
	}
	delayMs, err := strconv.Atoi(getEnv("TEST_PROCESSING_DELAY", "1000"))
	if err != nil || delayMs < 0 {
		return Config{}, fmt.Errorf("invalid TEST_PROCESSING_DELAY: %q is not a number of milliseconds", getEnv("TEST_PROCESSING_DELAY", ""))
	}
	cfg.ProcessingDelay = time.Duration(delayMs) * time.Millisecond
	if cfg.PaymentSucceeds, err = strconv.ParseBool(getEnv("TEST_PAYMENT_SUCCESS", "true")); err != nil {
		return Config{}, fmt.Errorf("invalid TEST_PAYMENT_SUCCESS: %w", err)
	}
	if cfg.LogLevel, err = log.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// SetupLogging configures the global logger the way every service logs
func SetupLogging(level log.Level) {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(level)
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
