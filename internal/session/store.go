package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/onthego/internal/telemetry/metrics"
	"github.com/2beens/onthego/pkg"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL = 2 * time.Hour
	tokenLen   = 35
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrEmptyCredentials = errors.New("username and password are required")
)

// Store keeps the sessions in process memory only. Credentials never leave it.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State

	ttl       time.Duration
	newClient ClientFactory
	metrics   *metrics.Manager

	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
	Now            func() time.Time
}

func NewStore(ttl time.Duration, newClient ClientFactory, metricsManager *metrics.Manager) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions:       make(map[string]*State),
		ttl:            ttl,
		newClient:      newClient,
		metrics:        metricsManager,
		RandStringFunc: pkg.GenerateRandomString,
		Now:            time.Now,
	}
}

// Start creates a logged out session with empty credentials.
func (s *Store) Start() (*State, error) {
	token, err := s.RandStringFunc(tokenLen)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	state := newState(token, s.Now())

	s.mu.Lock()
	s.sessions[token] = state
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.GaugeActiveSessions.Set(float64(count))
	return state, nil
}

// Get returns the session for token and marks it as used.
func (s *Store) Get(token string) (*State, bool) {
	s.mu.Lock()
	state, ok := s.sessions[token]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	state.touch(s.Now())
	return state, true
}

// SubmitCredentials logs the session in. The session only counts as logged in
// once the service accepted the credentials.
func (s *Store) SubmitCredentials(ctx context.Context, token, username, password string) error {
	state, ok := s.Get(token)
	if !ok {
		return ErrSessionNotFound
	}

	state.mu.Lock()
	state.username = username
	state.mu.Unlock()

	if username == "" || password == "" {
		return ErrEmptyCredentials
	}

	client := s.newClient(username, password)
	if err := client.Login(ctx); err != nil {
		return err
	}

	state.mu.Lock()
	previous := state.client
	state.password = password
	state.client = client
	state.loggedIn = true
	state.selectedActivity = 0
	state.mu.Unlock()

	if previous != nil && previous != client {
		if err := previous.Logout(ctx); err != nil {
			log.Warnf("session: logout of replaced client for %s: %s", username, err)
		}
	}

	log.Debugf("session: %s logged in", username)
	return nil
}

// End removes the session and logs its client out. A logout failure is
// returned for display but the session is gone either way.
func (s *Store) End(ctx context.Context, token string) error {
	s.mu.Lock()
	state, ok := s.sessions[token]
	delete(s.sessions, token)
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.metrics.GaugeActiveSessions.Set(float64(count))

	return s.logout(ctx, state)
}

// ScanAndClean will run through all sessions, check the idle time, and end them if stale
func (s *Store) ScanAndClean(ctx context.Context) {
	now := s.Now()

	s.mu.Lock()
	var expired []*State
	for token, state := range s.sessions {
		if state.idleFor(now) > s.ttl {
			expired = append(expired, state)
			delete(s.sessions, token)
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.GaugeActiveSessions.Set(float64(count))
	if len(expired) == 0 {
		log.Tracef("=> session store, scan and clean: nothing expired, %d sessions", count)
		return
	}

	log.Warnf("=> session store, scan and clean: %d expired, %d left", len(expired), count)
	for _, state := range expired {
		_ = s.logout(ctx, state)
	}
}

// EndAll logs every session out, used on shutdown.
func (s *Store) EndAll(ctx context.Context) {
	s.mu.Lock()
	states := make([]*State, 0, len(s.sessions))
	for token, state := range s.sessions {
		states = append(states, state)
		delete(s.sessions, token)
	}
	s.mu.Unlock()

	s.metrics.GaugeActiveSessions.Set(0)
	log.Debugf("session store: ending %d sessions", len(states))
	for _, state := range states {
		_ = s.logout(ctx, state)
	}
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) logout(ctx context.Context, state *State) error {
	state.mu.Lock()
	client, loggedIn, username := state.client, state.loggedIn, state.username
	state.client = nil
	state.loggedIn = false
	state.password = ""
	state.mu.Unlock()

	if client == nil || !loggedIn {
		return nil
	}

	if err := client.Logout(ctx); err != nil {
		log.Warnf("session: logout %s: %s", username, err)
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
