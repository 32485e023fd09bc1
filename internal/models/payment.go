package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PaymentMethod discriminates the payment details variants
type PaymentMethod string

// Supported payment methods
const (
	PaymentMethodUPI  PaymentMethod = "UPI"
	PaymentMethodCard PaymentMethod = "CARD"
)

// ParsePaymentMethod converts a method name into a PaymentMethod
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case PaymentMethodUPI, PaymentMethodCard:
		return m, nil
	}
	return "", fmt.Errorf("unsupported payment method %q", s)
}

// PaymentDetails holds the method-specific fields of a payment.
// Implemented only by CardDetails and UPIDetails.
type PaymentDetails interface {
	Method() PaymentMethod
	// Validate checks that every field the method requires is present
	Validate() error
	isPaymentDetails()
}

// CardDetails are the fields required for a card payment
type CardDetails struct {
	Number string
	Expiry string
	CVV    string
}

// Method returns PaymentMethodCard
func (CardDetails) Method() PaymentMethod { return PaymentMethodCard }
func (CardDetails) isPaymentDetails()     {}

// Validate reports every missing card field in one error
func (d CardDetails) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Number) == "" {
		missing = append(missing, "card number")
	}
	if strings.TrimSpace(d.Expiry) == "" {
		missing = append(missing, "card expiry")
	}
	if strings.TrimSpace(d.CVV) == "" {
		missing = append(missing, "card CVV")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required", strings.Join(missing, ", "))
	}
	return nil
}

// UPIDetails identify the account for a UPI payment
type UPIDetails struct {
	Alias string
}

// Method returns PaymentMethodUPI
func (UPIDetails) Method() PaymentMethod { return PaymentMethodUPI }
func (UPIDetails) isPaymentDetails()     {}

// Validate requires a non-blank UPI ID
func (d UPIDetails) Validate() error {
	if strings.TrimSpace(d.Alias) == "" {
		return errors.New("UPI ID required")
	}
	return nil
}

// PaymentRequest represents a payment submission against an existing order.
// On the wire the details are flattened next to paymentMethod.
type PaymentRequest struct {
	OrderID  string
	Amount   float64
	Currency Currency
	Details  PaymentDetails
}

type paymentRequestWire struct {
	OrderID       string        `json:"orderId"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Amount        float64       `json:"amount"`
	Currency      Currency      `json:"currency"`
	CardNumber    string        `json:"cardNumber,omitempty"`
	CardExpiry    string        `json:"cardExpiry,omitempty"`
	CardCvv       string        `json:"cardCvv,omitempty"`
	UpiID         string        `json:"upiId,omitempty"`
}

// MarshalJSON flattens the details next to paymentMethod. Requests without details are rejected.
func (r PaymentRequest) MarshalJSON() ([]byte, error) {
	w := paymentRequestWire{
		OrderID:  r.OrderID,
		Amount:   r.Amount,
		Currency: r.Currency,
	}
	switch d := r.Details.(type) {
	case CardDetails:
		w.PaymentMethod = PaymentMethodCard
		w.CardNumber, w.CardExpiry, w.CardCvv = d.Number, d.Expiry, d.CVV
	case UPIDetails:
		w.PaymentMethod = PaymentMethodUPI
		w.UpiID = d.Alias
	default:
		return nil, fmt.Errorf("payment request for order %s has no payment details", r.OrderID)
	}
	return json.Marshal(w)
}

// UnmarshalJSON picks the details variant named by paymentMethod
func (r *PaymentRequest) UnmarshalJSON(data []byte) error {
	var w paymentRequestWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	method, err := ParsePaymentMethod(string(w.PaymentMethod))
	if err != nil {
		return err
	}
	r.OrderID, r.Amount, r.Currency = w.OrderID, w.Amount, w.Currency
	switch method {
	case PaymentMethodCard:
		r.Details = CardDetails{Number: w.CardNumber, Expiry: w.CardExpiry, CVV: w.CardCvv}
	case PaymentMethodUPI:
		r.Details = UPIDetails{Alias: w.UpiID}
	}
	return nil
}

// ProcessPaymentResponse represents the gateway response to a payment submission
type ProcessPaymentResponse struct {
	TransactionID string `json:"transactionId"`
}

// PaymentStatus constants
const (
	PaymentStatusProcessing = "processing"
	PaymentStatusSuccess    = "success"
	PaymentStatusFailed     = "failed"
)

// Payment is the status object returned by the payment lookup endpoint
type Payment struct {
	ID               string        `json:"id"`
	OrderID          string        `json:"orderId"`
	Amount           float64       `json:"amount"`
	Currency         Currency      `json:"currency"`
	Method           PaymentMethod `json:"method"`
	Status           string        `json:"status"`
	UpiID            string        `json:"upiId,omitempty"`
	CardNetwork      string        `json:"cardNetwork,omitempty"`
	CardLast4        string        `json:"cardLast4,omitempty"`
	ErrorCode        string        `json:"errorCode,omitempty"`
	ErrorDescription string        `json:"errorDescription,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}
