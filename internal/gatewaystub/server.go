// Package gatewaystub is a development stand-in for the external payment
// gateway. It keeps orders and payments in memory and can simulate outages.
package gatewaystub

import (
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/ashendes/checkout-demo/internal/metrics"
	"github.com/ashendes/checkout-demo/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	serviceName = "payment-gateway"
	idAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var errChaos = errors.New("simulated gateway failure")

// Settlement controls how an accepted payment moves out of processing
type Settlement struct {
	// TestMode settles every payment after Delay with the Success outcome.
	// Otherwise each payment waits 5-10s and succeeds 90% (UPI) or 95% (card) of the time.
	TestMode bool
	Delay    time.Duration
	Success  bool
}

func (st Settlement) outcome(method models.PaymentMethod) (time.Duration, bool) {
	if st.TestMode {
		return st.Delay, st.Success
	}
	delay := time.Duration(5000+rand.Intn(5000)) * time.Millisecond
	successRate := 0.95
	if method == models.PaymentMethodUPI {
		successRate = 0.9
	}
	return delay, rand.Float64() < successRate
}

// chaosMode names a simulated outage that can be switched on and off
type chaosMode string

const (
	chaosFailures chaosMode = "failures"
	chaosSlow     chaosMode = "slow"
)

// Server manages stub orders and payments
type Server struct {
	orders   map[string]*models.Order
	payments map[string]*models.Payment
	timers   map[string]*time.Timer
	mutex    sync.RWMutex

	settlement Settlement

	chaosEnabled  bool
	chaosSlowMode bool
	failureRate   float32
	chaosMutex    sync.RWMutex

	now func() time.Time
}

// NewServer creates an empty stub gateway
func NewServer(settlement Settlement) *Server {
	return &Server{
		orders:      make(map[string]*models.Order),
		payments:    make(map[string]*models.Payment),
		timers:      make(map[string]*time.Timer),
		settlement:  settlement,
		failureRate: 0.4,
		now:         time.Now,
	}
}

// Close stops pending settlements. Payments still processing stay that way.
func (s *Server) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// RegisterRoutes mounts the gateway API under /api plus health and chaos endpoints
func (s *Server) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/gateway/status", s.getStatus)

	api := r.Group("/api")
	api.POST("/payments/create-order", s.createOrder)
	api.POST("/payments/process", s.processPayment)
	api.GET("/payments/:paymentId", s.getPayment)

	// Chaos engineering endpoints
	r.POST("/chaos/gateway/enable", s.toggleChaos(chaosFailures, true))
	r.POST("/chaos/gateway/disable", s.toggleChaos(chaosFailures, false))
	r.POST("/chaos/gateway/slow", s.toggleChaos(chaosSlow, true))
	r.POST("/chaos/gateway/slow/disable", s.toggleChaos(chaosSlow, false))
}

func (s *Server) getStatus(c *gin.Context) {
	failures, slow, _ := s.chaosState()
	c.JSON(http.StatusOK, gin.H{
		"service":         serviceName,
		"status":          "healthy",
		"chaos_enabled":   failures,
		"chaos_slow_mode": slow,
		"timestamp":       s.now().Format(time.RFC3339),
	})
}

func (s *Server) createOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid request: "+err.Error())
		return
	}
	if !req.Currency.Valid() {
		abortWithError(c, http.StatusBadRequest, models.ErrorCodeBadRequest, "currency must be one of INR, USD, EUR")
		return
	}

	if err := s.simulateChaos(c); err != nil {
		abortWithError(c, http.StatusServiceUnavailable, models.ErrorCodeUnavailable, "Gateway temporarily unavailable")
		return
	}

	order := &models.Order{
		OrderID:  newID("order_"),
		Amount:   req.Amount,
		Currency: req.Currency,
	}

	s.mutex.Lock()
	s.orders[order.OrderID] = order
	s.mutex.Unlock()

	metrics.StubOrdersTotal.WithLabelValues(string(order.Currency)).Inc()

	log.WithFields(log.Fields{
		"order_id":    order.OrderID,
		"merchant_id": req.MerchantID,
		"amount":      order.Amount,
		"currency":    order.Currency,
	}).Info("Order created")

	c.JSON(http.StatusOK, models.CreateOrderResponse{OrderID: order.OrderID})
}

func (s *Server) processPayment(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid request: "+err.Error())
		return
	}

	s.mutex.RLock()
	order, exists := s.orders[req.OrderID]
	s.mutex.RUnlock()
	if !exists {
		abortWithError(c, http.StatusNotFound, models.ErrorCodeNotFound, "Order not found")
		return
	}

	if err := req.Details.Validate(); err != nil {
		abortWithError(c, http.StatusBadRequest, models.ErrorCodeBadRequest, err.Error())
		return
	}

	now := s.now()
	payment := &models.Payment{
		ID:        newID("pay_"),
		OrderID:   order.OrderID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Method:    req.Details.Method(),
		Status:    models.PaymentStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch d := req.Details.(type) {
	case models.UPIDetails:
		if !validVPA(d.Alias) {
			abortWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidVPA, "Invalid VPA format")
			return
		}
		payment.UpiID = d.Alias
	case models.CardDetails:
		if !validCardNumber(d.Number) {
			abortWithError(c, http.StatusBadRequest, models.ErrorCodeInvalidCard, "Invalid card number")
			return
		}
		if !cardNotExpired(d.Expiry, now) {
			abortWithError(c, http.StatusBadRequest, models.ErrorCodeExpiredCard, "Card expired")
			return
		}
		payment.CardNetwork = cardNetwork(d.Number)
		payment.CardLast4 = last4(d.Number)
	}

	if err := s.simulateChaos(c); err != nil {
		log.WithFields(log.Fields{
			"order_id": payment.OrderID,
			"method":   payment.Method,
		}).Warn("Chaos: Simulated payment failure")
		abortWithError(c, http.StatusServiceUnavailable, models.ErrorCodePaymentFailed, "Payment processing failed")
		return
	}

	delay, success := s.settlement.outcome(payment.Method)

	s.mutex.Lock()
	s.payments[payment.ID] = payment
	if delay > 0 {
		paymentID := payment.ID
		s.timers[paymentID] = time.AfterFunc(delay, func() { s.settle(paymentID, success) })
	}
	s.mutex.Unlock()

	log.WithFields(log.Fields{
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
		"method":     payment.Method,
		"amount":     payment.Amount,
		"settles_in": delay.String(),
	}).Info("Payment accepted")

	if delay <= 0 {
		s.settle(payment.ID, success)
	}

	c.JSON(http.StatusOK, models.ProcessPaymentResponse{TransactionID: payment.ID})
}

// settle moves a processing payment to its final status
func (s *Server) settle(paymentID string, success bool) {
	s.mutex.Lock()
	delete(s.timers, paymentID)
	payment, exists := s.payments[paymentID]
	if !exists || payment.Status != models.PaymentStatusProcessing {
		s.mutex.Unlock()
		return
	}
	if success {
		payment.Status = models.PaymentStatusSuccess
	} else {
		payment.Status = models.PaymentStatusFailed
		payment.ErrorCode = models.ErrorCodePaymentFailed
		payment.ErrorDescription = "Payment processing failed"
	}
	payment.UpdatedAt = s.now()
	settled := *payment
	s.mutex.Unlock()

	metrics.StubPaymentsTotal.WithLabelValues(string(settled.Method), settled.Status).Inc()

	fields := log.Fields{
		"payment_id": settled.ID,
		"order_id":   settled.OrderID,
		"status":     settled.Status,
	}
	if !success {
		log.WithFields(fields).Warn("Payment settled as failed")
		return
	}
	metrics.PaymentAmount.Observe(settled.Amount)
	log.WithFields(fields).Info("Payment settled")
}

func (s *Server) getPayment(c *gin.Context) {
	paymentID := c.Param("paymentId")

	s.mutex.RLock()
	payment, exists := s.payments[paymentID]
	var snapshot models.Payment
	if exists {
		snapshot = *payment
	}
	s.mutex.RUnlock()

	if !exists {
		abortWithError(c, http.StatusNotFound, models.ErrorCodeNotFound, "Payment not found")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// toggleChaos switches one chaos mode. Disabling failures also ends slow mode.
func (s *Server) toggleChaos(mode chaosMode, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.chaosMutex.Lock()
		switch {
		case mode == chaosSlow:
			s.chaosSlowMode = enabled
		case enabled:
			s.chaosEnabled = true
		default:
			s.chaosEnabled, s.chaosSlowMode = false, false
		}
		s.chaosMutex.Unlock()

		failures, slow, rate := s.chaosState()
		if !failures {
			rate = 0
		}
		metrics.ChaosFailureRate.WithLabelValues(serviceName).Set(float64(rate))
		metrics.ChaosSlowMode.WithLabelValues(serviceName).Set(gaugeValue(slow))

		log.WithFields(log.Fields{
			"mode":    mode,
			"enabled": enabled,
		}).Info("Chaos mode changed for payment gateway")
		c.JSON(http.StatusOK, gin.H{
			"chaos_enabled":   failures,
			"chaos_slow_mode": slow,
			"failure_rate":    rate,
		})
	}
}

func (s *Server) chaosState() (failures, slow bool, rate float32) {
	s.chaosMutex.RLock()
	defer s.chaosMutex.RUnlock()
	return s.chaosEnabled, s.chaosSlowMode, s.failureRate
}

func (s *Server) setFailureRate(rate float32) {
	s.chaosMutex.Lock()
	defer s.chaosMutex.Unlock()
	s.failureRate = rate
}

func (s *Server) simulateChaos(c *gin.Context) error {
	failures, slow, rate := s.chaosState()
	if slow {
		delay := time.Duration(5000+rand.Intn(5000)) * time.Millisecond
		log.WithField("delay_ms", delay.Milliseconds()).Debug("Chaos: Simulating slow response")
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			return c.Request.Context().Err()
		}
	}

	if failures && rand.Float32() < rate {
		return errChaos
	}

	return nil
}

func gaugeValue(on bool) float64 {
	if on {
		return 1
	}
	return 0
}

func abortWithError(c *gin.Context, status int, code, description string) {
	c.AbortWithStatusJSON(status, models.APIError{
		Error: models.APIErrorDetail{Code: code, Description: description},
	})
}

func newID(prefix string) string {
	b := make([]byte, 16)
	for i := range b {
		b[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return prefix + string(b)
}
