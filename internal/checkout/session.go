// Package checkout sequences the two gateway calls of a checkout: create an
// order, then submit payments against it.
package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/ashendes/checkout-demo/internal/metrics"
	"github.com/ashendes/checkout-demo/internal/models"
	"github.com/ashendes/checkout-demo/internal/patterns"
	log "github.com/sirupsen/logrus"
)

// Gateway is the part of the payment gateway a session needs
type Gateway interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.Order, error)
	ProcessPayment(ctx context.Context, req models.PaymentRequest) (string, error)
}

var (
	// ErrBusy is returned while another submission of the session is in flight
	ErrBusy = patterns.ErrGateBusy
	// ErrNoOrder is returned when a payment is submitted before an order exists
	ErrNoOrder = errors.New("no order has been created yet")
	// ErrOrderExists is returned when an order is submitted twice
	ErrOrderExists = errors.New("an order has already been created")
)

// Submission stages, used as metric labels
const (
	stageOrder   = "order"
	stagePayment = "payment"
)

// Session is one client-local checkout. It is kept in memory only.
type Session struct {
	ID string

	merchantID int
	gateway    Gateway
	gate       *patterns.Gate

	mu     sync.RWMutex
	state  State
	notice Notice
}

// NewSession creates a session in the AwaitingOrder state
func NewSession(id string, merchantID int, gateway Gateway) *Session {
	return &Session{
		ID:         id,
		merchantID: merchantID,
		gateway:    gateway,
		gate:       patterns.NewGate("checkout"),
		state:      AwaitingOrder{},
	}
}

// Snapshot returns the current state, loading flag and notice
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		State:   s.state,
		Loading: s.gate.Busy(),
		Notice:  s.notice,
	}
}

// SubmitOrder validates the order form and asks the gateway for an order.
// On success the session moves to AwaitingPayment.
func (s *Session) SubmitOrder(ctx context.Context, form OrderForm) (models.Order, error) {
	var order models.Order
	err := s.gate.Execute(func() error {
		if _, ok := s.currentState().(AwaitingOrder); !ok {
			return ErrOrderExists
		}

		req, err := form.Request(s.merchantID)
		if err != nil {
			s.complete(nil, errorNotice(err.Error()))
			return err
		}

		order, err = s.gateway.CreateOrder(ctx, req)
		if err != nil {
			log.WithFields(log.Fields{
				"session_id": s.ID,
				"amount":     req.Amount,
				"currency":   req.Currency,
			}).Warn("Order creation failed: ", err)
			s.complete(nil, errorNotice("Failed to create order: "+err.Error()))
			return err
		}

		log.WithFields(log.Fields{
			"session_id": s.ID,
			"order_id":   order.OrderID,
			"amount":     order.Amount,
			"currency":   order.Currency,
		}).Info("Order created")
		s.complete(AwaitingPayment{Order: order}, successNotice("Order created successfully!"))
		return nil
	})

	metrics.CheckoutSubmissionsTotal.WithLabelValues(stageOrder, submissionOutcome(err)).Inc()
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// SubmitPayment validates the payment form and submits a payment against
// the session's order. The order is kept whatever the outcome, so a failed
// payment can be resubmitted.
func (s *Session) SubmitPayment(ctx context.Context, form PaymentForm) (string, error) {
	var transactionID string
	err := s.gate.Execute(func() error {
		awaiting, ok := s.currentState().(AwaitingPayment)
		if !ok {
			return ErrNoOrder
		}

		details, err := form.Details()
		if err != nil {
			s.complete(nil, errorNotice(err.Error()))
			return err
		}

		order := awaiting.Order
		transactionID, err = s.gateway.ProcessPayment(ctx, models.PaymentRequest{
			OrderID:  order.OrderID,
			Amount:   order.Amount,
			Currency: order.Currency,
			Details:  details,
		})
		if err != nil {
			log.WithFields(log.Fields{
				"session_id": s.ID,
				"order_id":   order.OrderID,
				"method":     details.Method(),
			}).Warn("Payment failed: ", err)
			s.complete(nil, errorNotice("Payment failed: "+err.Error()))
			return err
		}

		log.WithFields(log.Fields{
			"session_id":     s.ID,
			"order_id":       order.OrderID,
			"method":         details.Method(),
			"transaction_id": transactionID,
		}).Info("Payment processed")
		s.complete(nil, successNotice("Payment successful! Transaction ID: "+transactionID))
		return nil
	})

	metrics.CheckoutSubmissionsTotal.WithLabelValues(stagePayment, submissionOutcome(err)).Inc()
	if err != nil {
		return "", err
	}
	return transactionID, nil
}

func (s *Session) currentState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// complete records the outcome of a submission. A nil state keeps the current one.
func (s *Session) complete(next State, notice Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next != nil {
		s.state = next
	}
	s.notice = notice
}

func submissionOutcome(err error) string {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrNoOrder), errors.Is(err, ErrOrderExists):
		return "out_of_sequence"
	case errors.As(err, &validationErr):
		return "invalid"
	default:
		return "failed"
	}
}
