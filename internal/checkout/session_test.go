package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ashendes/checkout-demo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu          sync.Mutex
	orderReqs   []models.CreateOrderRequest
	paymentReqs []models.PaymentRequest

	orderID    string
	orderErr   error
	txnID      string
	paymentErr error

	// when set, calls signal entered and wait for release
	entered chan struct{}
	release chan struct{}
}

func (g *fakeGateway) CreateOrder(_ context.Context, req models.CreateOrderRequest) (models.Order, error) {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orderReqs = append(g.orderReqs, req)
	if g.orderErr != nil {
		return models.Order{}, g.orderErr
	}
	return models.Order{OrderID: g.orderID, Amount: req.Amount, Currency: req.Currency}, nil
}

func (g *fakeGateway) ProcessPayment(_ context.Context, req models.PaymentRequest) (string, error) {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paymentReqs = append(g.paymentReqs, req)
	if g.paymentErr != nil {
		return "", g.paymentErr
	}
	return g.txnID, nil
}

func (g *fakeGateway) wait() {
	if g.entered == nil {
		return
	}
	g.entered <- struct{}{}
	<-g.release
}

func (g *fakeGateway) setPaymentErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paymentErr = err
}

func newOrderedSession(t *testing.T, gw *fakeGateway) *Session {
	t.Helper()
	s := NewSession("sess-1", 1, gw)
	_, err := s.SubmitOrder(context.Background(), OrderForm{Amount: "150.25", Currency: "INR"})
	require.NoError(t, err)
	return s
}

func TestNewSessionAwaitsOrder(t *testing.T) {
	snap := NewSession("sess-1", 1, &fakeGateway{}).Snapshot()

	assert.Equal(t, AwaitingOrder{}, snap.State)
	assert.False(t, snap.Loading)
	assert.Equal(t, NoticeNone, snap.Notice.Kind)
	assert.Empty(t, snap.OrderLine())
}

func TestSubmitOrderIssuesOneCallWithFormValues(t *testing.T) {
	gw := &fakeGateway{orderID: "X"}
	s := NewSession("sess-1", 7, gw)

	order, err := s.SubmitOrder(context.Background(), OrderForm{Amount: "250.75", Currency: "USD"})
	require.NoError(t, err)

	require.Len(t, gw.orderReqs, 1)
	assert.Equal(t, models.CreateOrderRequest{MerchantID: 7, Amount: 250.75, Currency: models.CurrencyUSD}, gw.orderReqs[0])
	assert.Equal(t, "X", order.OrderID)

	snap := s.Snapshot()
	assert.Equal(t, AwaitingPayment{Order: order}, snap.State)
	assert.Equal(t, "Order ID: X", snap.OrderLine())
	assert.Equal(t, "Order created successfully!", snap.Notice.Success())
	assert.Empty(t, snap.Notice.Error())
}

func TestSubmitOrderFailureStaysAwaitingOrder(t *testing.T) {
	gw := &fakeGateway{orderErr: errors.New("connection refused")}
	s := NewSession("sess-1", 1, gw)

	_, err := s.SubmitOrder(context.Background(), OrderForm{Amount: "10", Currency: "EUR"})
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, AwaitingOrder{}, snap.State)
	_, ok := snap.Order()
	assert.False(t, ok)
	assert.Equal(t, "Failed to create order: connection refused", snap.Notice.Error())
	assert.Empty(t, snap.Notice.Success())
}

func TestSubmitOrderCanBeRetriedAfterFailure(t *testing.T) {
	gw := &fakeGateway{orderErr: errors.New("timeout"), orderID: "order_2"}
	s := NewSession("sess-1", 1, gw)

	_, err := s.SubmitOrder(context.Background(), OrderForm{Amount: "10", Currency: "INR"})
	require.Error(t, err)

	gw.orderErr = nil
	_, err = s.SubmitOrder(context.Background(), OrderForm{Amount: "10", Currency: "INR"})
	require.NoError(t, err)
	assert.Equal(t, "Order ID: order_2", s.Snapshot().OrderLine())
	assert.Len(t, gw.orderReqs, 2)
}

func TestSubmitOrderRejectsInvalidForm(t *testing.T) {
	tests := []struct {
		name string
		form OrderForm
	}{
		{"empty amount", OrderForm{Amount: "", Currency: "INR"}},
		{"zero amount", OrderForm{Amount: "0", Currency: "INR"}},
		{"negative amount", OrderForm{Amount: "-5", Currency: "INR"}},
		{"not a number", OrderForm{Amount: "abc", Currency: "INR"}},
		{"NaN", OrderForm{Amount: "NaN", Currency: "INR"}},
		{"unsupported currency", OrderForm{Amount: "10", Currency: "GBP"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{orderID: "X"}
			s := NewSession("sess-1", 1, gw)

			_, err := s.SubmitOrder(context.Background(), tt.form)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Empty(t, gw.orderReqs)
			assert.Equal(t, AwaitingOrder{}, s.Snapshot().State)
			assert.Equal(t, validationErr.Error(), s.Snapshot().Notice.Error())
		})
	}
}

func TestSubmitOrderTwiceIsRejected(t *testing.T) {
	gw := &fakeGateway{orderID: "X"}
	s := newOrderedSession(t, gw)

	_, err := s.SubmitOrder(context.Background(), OrderForm{Amount: "10", Currency: "INR"})
	assert.ErrorIs(t, err, ErrOrderExists)
	assert.Len(t, gw.orderReqs, 1)
}

func TestSubmitPaymentBeforeOrderIsRejected(t *testing.T) {
	gw := &fakeGateway{txnID: "T"}
	s := NewSession("sess-1", 1, gw)

	_, err := s.SubmitPayment(context.Background(), PaymentForm{Method: "UPI", UPIAlias: "a@upi"})
	assert.ErrorIs(t, err, ErrNoOrder)
	assert.Empty(t, gw.paymentReqs)
}

func TestSubmitPaymentRequiresMethodFields(t *testing.T) {
	tests := []struct {
		name string
		form PaymentForm
	}{
		{"card without cvv", PaymentForm{Method: "CARD", CardNumber: "4111111111111111", CardExpiry: "12/30"}},
		{"card without number", PaymentForm{Method: "CARD", CardExpiry: "12/30", CardCVV: "123"}},
		{"card with only upi alias", PaymentForm{Method: "CARD", UPIAlias: "a@upi"}},
		{"upi without alias", PaymentForm{Method: "UPI", CardNumber: "4111111111111111", CardExpiry: "12/30", CardCVV: "123"}},
		{"unknown method", PaymentForm{Method: "CASH"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{orderID: "X", txnID: "T"}
			s := newOrderedSession(t, gw)

			_, err := s.SubmitPayment(context.Background(), tt.form)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Empty(t, gw.paymentReqs)
			assert.IsType(t, AwaitingPayment{}, s.Snapshot().State)
		})
	}
}

func TestSubmitPaymentSendsOrderAndSelectedDetails(t *testing.T) {
	gw := &fakeGateway{orderID: "X", txnID: "T"}
	s := newOrderedSession(t, gw)

	_, err := s.SubmitPayment(context.Background(), PaymentForm{
		Method:     "CARD",
		CardNumber: " 4111111111111111 ",
		CardExpiry: "12/30",
		CardCVV:    "123",
		UPIAlias:   "ignored@upi",
	})
	require.NoError(t, err)

	require.Len(t, gw.paymentReqs, 1)
	assert.Equal(t, models.PaymentRequest{
		OrderID:  "X",
		Amount:   150.25,
		Currency: models.CurrencyINR,
		Details:  models.CardDetails{Number: "4111111111111111", Expiry: "12/30", CVV: "123"},
	}, gw.paymentReqs[0])
}

func TestPaymentSuccessClearsPriorError(t *testing.T) {
	gw := &fakeGateway{orderID: "X", txnID: "T", paymentErr: errors.New("card declined")}
	s := newOrderedSession(t, gw)

	_, err := s.SubmitPayment(context.Background(), PaymentForm{Method: "UPI", UPIAlias: "a@upi"})
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, "Payment failed: card declined", snap.Notice.Error())
	assert.Empty(t, snap.Notice.Success())
	assert.Equal(t, "Order ID: X", snap.OrderLine())

	gw.setPaymentErr(nil)
	txn, err := s.SubmitPayment(context.Background(), PaymentForm{Method: "UPI", UPIAlias: "a@upi"})
	require.NoError(t, err)
	assert.Equal(t, "T", txn)

	snap = s.Snapshot()
	assert.Equal(t, "Payment successful! Transaction ID: T", snap.Notice.Success())
	assert.Empty(t, snap.Notice.Error())
	assert.IsType(t, AwaitingPayment{}, snap.State)
	assert.Len(t, gw.paymentReqs, 2)
}

func TestSubmitWhileInFlightIsRejected(t *testing.T) {
	gw := &fakeGateway{
		orderID: "X",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSession("sess-1", 1, gw)

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitOrder(context.Background(), OrderForm{Amount: "10", Currency: "INR"})
		done <- err
	}()

	select {
	case <-gw.entered:
	case <-time.After(time.Second):
		t.Fatal("order call never started")
	}

	snap := s.Snapshot()
	assert.True(t, snap.Loading)
	assert.Equal(t, AwaitingOrder{}, snap.State)

	_, err := s.SubmitOrder(context.Background(), OrderForm{Amount: "10", Currency: "INR"})
	assert.ErrorIs(t, err, ErrBusy)

	close(gw.release)
	require.NoError(t, <-done)

	snap = s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, "Order ID: X", snap.OrderLine())
	assert.Len(t, gw.orderReqs, 1)
}
