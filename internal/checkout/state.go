package checkout

import "github.com/ashendes/checkout-demo/internal/models"

// State is the position of a session in the checkout flow:
// either AwaitingOrder or AwaitingPayment.
type State interface {
	isState()
}

// AwaitingOrder is the initial state, before the gateway has issued an order
type AwaitingOrder struct{}

// AwaitingPayment holds the order payments are submitted against.
// A session never leaves this state once it is entered.
type AwaitingPayment struct {
	Order models.Order
}

func (AwaitingOrder) isState()   {}
func (AwaitingPayment) isState() {}

// NoticeKind tells which message, if any, a session is showing
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeError
	NoticeSuccess
)

// Notice is the single message shown to the user. Holding one kind at a
// time keeps error and success messages exclusive.
type Notice struct {
	Kind NoticeKind
	Text string
}

func errorNotice(text string) Notice   { return Notice{Kind: NoticeError, Text: text} }
func successNotice(text string) Notice { return Notice{Kind: NoticeSuccess, Text: text} }

// Error returns the error text, empty unless Kind is NoticeError
func (n Notice) Error() string {
	if n.Kind != NoticeError {
		return ""
	}
	return n.Text
}

// Success returns the success text, empty unless Kind is NoticeSuccess
func (n Notice) Success() string {
	if n.Kind != NoticeSuccess {
		return ""
	}
	return n.Text
}

// Snapshot is a consistent copy of a session for rendering
type Snapshot struct {
	State   State
	Loading bool
	Notice  Notice
}

// Order returns the session's order, if one has been issued
func (s Snapshot) Order() (models.Order, bool) {
	p, ok := s.State.(AwaitingPayment)
	return p.Order, ok
}

// OrderLine renders the order line shown above the payment form
func (s Snapshot) OrderLine() string {
	if order, ok := s.Order(); ok {
		return "Order ID: " + order.OrderID
	}
	return ""
}
