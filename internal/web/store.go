package web

import (
	"context"
	"sync"
	"time"

	"github.com/ashendes/checkout-demo/internal/checkout"
	"github.com/ashendes/checkout-demo/internal/metrics"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type storedSession struct {
	session  *checkout.Session
	lastSeen time.Time
}

// Store keeps checkout sessions in memory, keyed by session id.
// Sessions idle for longer than the TTL are dropped by Sweep.
type Store struct {
	sessions   map[string]*storedSession
	mutex      sync.Mutex
	merchantID int
	gateway    checkout.Gateway
	ttl        time.Duration
	now        func() time.Time
}

// NewStore creates an empty session store. A ttl of zero keeps sessions forever.
func NewStore(merchantID int, gateway checkout.Gateway, ttl time.Duration) *Store {
	return &Store{
		sessions:   make(map[string]*storedSession),
		merchantID: merchantID,
		gateway:    gateway,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns the session with the given id and marks it as used
func (s *Store) Get(id string) (*checkout.Session, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	stored, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	stored.lastSeen = s.now()
	return stored.session, true
}

// Create starts a new session
func (s *Store) Create() *checkout.Session {
	sess := checkout.NewSession(uuid.New().String(), s.merchantID, s.gateway)

	s.mutex.Lock()
	s.sessions[sess.ID] = &storedSession{session: sess, lastSeen: s.now()}
	s.mutex.Unlock()

	metrics.CheckoutSessions.Inc()
	log.WithField("session_id", sess.ID).Debug("Checkout session started")
	return sess
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were dropped. A session with a submission in flight is never dropped.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for id, stored := range s.sessions {
		if stored.lastSeen.After(cutoff) || stored.session.Snapshot().Loading {
			continue
		}
		delete(s.sessions, id)
		evicted++
	}

	metrics.CheckoutSessions.Sub(float64(evicted))
	return evicted
}

// Run sweeps the store every interval until ctx is done
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := s.Sweep(); evicted > 0 {
				log.WithFields(log.Fields{
					"evicted": evicted,
					"live":    s.Len(),
				}).Info("Evicted idle checkout sessions")
			}
		}
	}
}
