// Package gateway is the HTTP client for the external payment gateway.
//
// Every call is attempted exactly once. Transport errors are returned as-is
// and non-2xx answers become a *StatusError carrying the gateway's message.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ashendes/checkout-demo/internal/metrics"
	"github.com/ashendes/checkout-demo/internal/models"
	"github.com/ashendes/checkout-demo/internal/patterns"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// Gateway endpoints, relative to the base URL
const (
	CreateOrderPath    = "/payments/create-order"
	ProcessPaymentPath = "/payments/process"
	PaymentStatusPath  = "/payments/{paymentId}"
)

// StatusError is returned when the gateway answers with a non-2xx status
type StatusError struct {
	StatusCode  int
	Status      string
	Code        string
	Description string
}

func (e *StatusError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return "gateway returned status " + e.Status
}

// Options configures a Client
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	CircuitBreaker bool
}

// Client calls the payment gateway
type Client struct {
	client  *resty.Client
	breaker *patterns.CircuitBreakerWrapper
}

// NewClient creates a gateway client
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = patterns.DefaultTimeout
	}

	c := &Client{
		client: resty.New().
			SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json"),
	}
	if opts.CircuitBreaker {
		c.breaker = patterns.NewCircuitBreaker("Gateway", "checkout-web")
	}
	return c
}

// CreateOrder asks the gateway for a new order
func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.Order, error) {
	var resp models.CreateOrderResponse
	err := c.call(ctx, "create_order", &resp, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).Post(CreateOrderPath)
	})
	if err != nil {
		return models.Order{}, err
	}
	if resp.OrderID == "" {
		return models.Order{}, errors.New("gateway response carried no orderId")
	}

	return models.Order{
		OrderID:  resp.OrderID,
		Amount:   req.Amount,
		Currency: req.Currency,
	}, nil
}

// ProcessPayment submits a payment and returns the gateway transaction id
func (c *Client) ProcessPayment(ctx context.Context, req models.PaymentRequest) (string, error) {
	var resp models.ProcessPaymentResponse
	err := c.call(ctx, "process_payment", &resp, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).Post(ProcessPaymentPath)
	})
	if err != nil {
		return "", err
	}
	if resp.TransactionID == "" {
		return "", errors.New("gateway response carried no transactionId")
	}
	return resp.TransactionID, nil
}

// GetPaymentStatus looks up a payment by id
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (models.Payment, error) {
	var payment models.Payment
	err := c.call(ctx, "payment_status", &payment, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("paymentId", paymentID).Get(PaymentStatusPath)
	})
	return payment, err
}

func (c *Client) call(ctx context.Context, endpoint string, result interface{}, send func(*resty.Request) (*resty.Response, error)) error {
	start := time.Now()
	log.WithField("endpoint", endpoint).Debug("Gateway call started")

	raw, err := c.execute(func() (interface{}, error) {
		resp, err := send(c.client.R().SetContext(ctx))
		if err != nil {
			return nil, err
		}
		// 4xx answers are the caller's fault and must not trip the breaker
		if resp.StatusCode() >= http.StatusInternalServerError {
			return nil, newStatusError(resp)
		}
		return resp, nil
	})
	metrics.GatewayCallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err == nil {
		resp := raw.(*resty.Response)
		if !resp.IsSuccess() {
			err = newStatusError(resp)
		} else if decodeErr := json.Unmarshal(resp.Body(), result); decodeErr != nil {
			err = fmt.Errorf("failed to parse gateway response: %w", decodeErr)
		}
	}

	if err != nil {
		metrics.GatewayCallsTotal.WithLabelValues(endpoint, outcome(err)).Inc()
		log.WithFields(log.Fields{
			"endpoint": endpoint,
			"error":    err.Error(),
		}).Warn("Gateway call failed")
		return err
	}

	metrics.GatewayCallsTotal.WithLabelValues(endpoint, "success").Inc()
	log.WithFields(log.Fields{
		"endpoint":    endpoint,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Gateway call completed")
	return nil
}

func (c *Client) execute(fn func() (interface{}, error)) (interface{}, error) {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

func newStatusError(resp *resty.Response) *StatusError {
	e := &StatusError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
	}
	if e.Status == "" {
		e.Status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}

	var body models.APIError
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		e.Code = body.Error.Code
		e.Description = body.Error.Description
	}
	return e
}

func outcome(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode >= http.StatusInternalServerError {
			return "server_error"
		}
		return "rejected"
	}
	return "transport_error"
}
