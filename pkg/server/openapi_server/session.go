package openapi_server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/natevvv/osm-path-visualizer/pkg/routing"
)

// session is the search state of one client. The mutex is held for the whole request,
// so steps of one algorithm never interleave.
type session struct {
	mu       sync.Mutex
	id       uuid.UUID
	router   *routing.Router
	trail    *routing.TrailBuilder
	lastUsed time.Time
	// the route segments were already sent for the finished search
	routeSent bool
}

type sessionStore struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]*session
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
}

func newSessionStore(ttl time.Duration, maxSessions int) *sessionStore {
	return &sessionStore{
		sessions:    make(map[uuid.UUID]*session),
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

func (s *sessionStore) expired(sess *session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastUsed) > s.ttl
}

// add stores a new session. Expired sessions are evicted if the store is full.
func (s *sessionStore) add(router *routing.Router, trail *routing.TrailBuilder) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.evictLocked(now)
		if len(s.sessions) >= s.maxSessions {
			return nil, ErrTooManySessions
		}
	}

	sess := &session{id: uuid.New(), router: router, trail: trail, lastUsed: now}
	s.sessions[sess.id] = sess
	activeSessions.Set(float64(len(s.sessions)))
	return sess, nil
}

// get returns the session with the given id and marks it as used
func (s *sessionStore) get(id string) (*session, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", id, ErrSessionNotFound)
	}

	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%v: %w", id, ErrSessionNotFound)
	}

	now := s.now()
	sess.mu.Lock()
	if s.expired(sess, now) {
		sess.mu.Unlock()
		s.remove(key)
		return nil, fmt.Errorf("%v expired: %w", id, ErrSessionNotFound)
	}
	sess.lastUsed = now
	sess.mu.Unlock()
	return sess, nil
}

func (s *sessionStore) delete(id string) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%v: %w", id, ErrSessionNotFound)
	}
	if !s.remove(key) {
		return fmt.Errorf("%v: %w", id, ErrSessionNotFound)
	}
	return nil
}

func (s *sessionStore) remove(key uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[key]; !ok {
		return false
	}
	delete(s.sessions, key)
	activeSessions.Set(float64(len(s.sessions)))
	return true
}

func (s *sessionStore) evictLocked(now time.Time) {
	for key, sess := range s.sessions {
		sess.mu.Lock()
		expired := s.expired(sess, now)
		sess.mu.Unlock()
		if expired {
			delete(s.sessions, key)
		}
	}
	activeSessions.Set(float64(len(s.sessions)))
}

func (s *sessionStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
