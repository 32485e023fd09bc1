package patterns

import (
	"errors"

	"github.com/ashendes/checkout-demo/internal/metrics"
)

// ErrGateBusy is returned when a gate already has a call in flight
var ErrGateBusy = errors.New("a submission is already in progress")

// Gate is a bulkhead of size one that rejects instead of waiting.
// It backs the "loading" flag of a checkout session.
type Gate struct {
	semaphore chan struct{}
	name      string
}

// NewGate creates an open gate
func NewGate(name string) *Gate {
	return &Gate{
		semaphore: make(chan struct{}, 1),
		name:      name,
	}
}

// Execute runs fn if no other call holds the gate, otherwise returns ErrGateBusy
func (g *Gate) Execute(fn func() error) error {
	select {
	case g.semaphore <- struct{}{}:
		metrics.InFlightSubmissions.WithLabelValues(g.name).Inc()

		defer func() {
			<-g.semaphore
			metrics.InFlightSubmissions.WithLabelValues(g.name).Dec()
		}()

		return fn()

	default:
		metrics.RejectedSubmissions.WithLabelValues(g.name).Inc()
		return ErrGateBusy
	}
}

// Busy reports whether a call currently holds the gate
func (g *Gate) Busy() bool {
	return len(g.semaphore) == cap(g.semaphore)
}
