package checkout

import (
	"math"
	"strconv"
	"strings"

	"github.com/ashendes/checkout-demo/internal/models"
)

// ValidationError is returned when a form is not accepted for submission
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// OrderForm is the raw input of the order form
type OrderForm struct {
	Amount   string
	Currency string
}

// Request validates the form and builds the create-order request
func (f OrderForm) Request(merchantID int) (models.CreateOrderRequest, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(f.Amount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return models.CreateOrderRequest{}, &ValidationError{Field: "amount", Message: "amount must be a positive number"}
	}

	currency, err := models.ParseCurrency(f.Currency)
	if err != nil {
		return models.CreateOrderRequest{}, &ValidationError{Field: "currency", Message: err.Error()}
	}

	return models.CreateOrderRequest{
		MerchantID: merchantID,
		Amount:     amount,
		Currency:   currency,
	}, nil
}

// PaymentForm is the raw input of the payment form. Only the fields of the
// selected method are read.
type PaymentForm struct {
	Method     string
	CardNumber string
	CardExpiry string
	CardCVV    string
	UPIAlias   string
}

// Details validates the form and builds the method-specific payment details
func (f PaymentForm) Details() (models.PaymentDetails, error) {
	method, err := models.ParsePaymentMethod(f.Method)
	if err != nil {
		return nil, &ValidationError{Field: "paymentMethod", Message: err.Error()}
	}

	var details models.PaymentDetails
	switch method {
	case models.PaymentMethodCard:
		details = models.CardDetails{
			Number: strings.TrimSpace(f.CardNumber),
			Expiry: strings.TrimSpace(f.CardExpiry),
			CVV:    strings.TrimSpace(f.CardCVV),
		}
	case models.PaymentMethodUPI:
		details = models.UPIDetails{Alias: strings.TrimSpace(f.UPIAlias)}
	}

	if err := details.Validate(); err != nil {
		return nil, &ValidationError{Field: string(method), Message: err.Error()}
	}
	return details, nil
}
