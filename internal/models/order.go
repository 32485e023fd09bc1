package models

import (
	"fmt"
	"strings"
)

// Currency is a currency code accepted by the payment gateway
type Currency string

// Supported currencies
const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Currencies lists the supported currencies in display order
var Currencies = []Currency{CurrencyINR, CurrencyUSD, CurrencyEUR}

// ParseCurrency converts a currency code into a Currency
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unsupported currency %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the supported currencies
func (c Currency) Valid() bool {
	switch c {
	case CurrencyINR, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

// Order is a gateway-issued reservation for an amount pending payment
type Order struct {
	OrderID  string   `json:"orderId"`
	Amount   float64  `json:"amount"`
	Currency Currency `json:"currency"`
}

// CreateOrderRequest represents the request to create a new order
type CreateOrderRequest struct {
	MerchantID int      `json:"merchantId" binding:"required"`
	Amount     float64  `json:"amount" binding:"required,gt=0"`
	Currency   Currency `json:"currency" binding:"required"`
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
}

// APIError is the error body returned by the gateway
type APIError struct {
	Error APIErrorDetail `json:"error"`
}

// APIErrorDetail carries the gateway error code and description
type APIErrorDetail struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Gateway error codes
const (
	ErrorCodeBadRequest    = "BAD_REQUEST_ERROR"
	ErrorCodeNotFound      = "NOT_FOUND_ERROR"
	ErrorCodeInvalidVPA    = "INVALID_VPA"
	ErrorCodeInvalidCard   = "INVALID_CARD"
	ErrorCodeExpiredCard   = "EXPIRED_CARD"
	ErrorCodePaymentFailed = "PAYMENT_FAILED"
	ErrorCodeUnavailable   = "SERVICE_UNAVAILABLE"
)
