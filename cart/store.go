package cart

import (
	"context"
	"sync"
	"time"

	"servecart/pricing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrSessionNotFound = errors.New("cart session not found")

type session struct {
	cart     *Cart
	lastSeen time.Time
}

// Store hands out one cart per browsing session and expires idle ones.
// All cart calls go through Do, which holds the store lock, so a cart is
// never touched by two requests at once.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*session
	ttl       time.Duration
	opts      []pricing.Option
	listeners []func(sessionID string, ev Event)
	now       func() time.Time
}

func NewStore(ttl time.Duration, opts ...pricing.Option) *Store {
	return &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
		opts:     opts,
		now:      time.Now,
	}
}

// OnChange registers fn for every change on every cart created afterwards.
// fn runs with the store locked and must not call back into the store.
func (s *Store) OnChange(fn func(sessionID string, ev Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Create starts a new session with an empty cart and returns its id.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	c := New(s.opts...)
	for _, fn := range s.listeners {
		fn := fn
		c.Subscribe(func(ev Event) { fn(id, ev) })
	}
	s.sessions[id] = &session{cart: c, lastSeen: s.now()}
	return id
}

// Do runs fn against the session's cart and refreshes its idle timer.
func (s *Store) Do(id string, fn func(*Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		delete(s.sessions, id)
		return errors.Wrapf(ErrSessionNotFound, "%s", id)
	}
	sess.lastSeen = s.now()
	return fn(sess.cart)
}

func (s *Store) Drop(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// StartJanitor sweeps every interval until ctx is done.
func (s *Store) StartJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Debug().Int("expired", n).Msg("cart sessions swept")
			}
		}
	}
}

func (s *Store) expired(sess *session) bool {
	return s.ttl > 0 && s.now().Sub(sess.lastSeen) > s.ttl
}
