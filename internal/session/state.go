package session

import (
	"sync"
	"time"

	"github.com/2beens/onthego/internal/config"
)

// State is everything the dashboard remembers about one browser.
type State struct {
	Token string

	mu               sync.RWMutex
	username         string
	password         string
	loggedIn         bool
	activityCount    int
	selectedActivity int64
	client           ActivityClient
	lastSeen         time.Time
}

func newState(token string, now time.Time) *State {
	return &State{
		Token:         token,
		activityCount: config.DefaultActivitiesCount,
		lastSeen:      now,
	}
}

func (s *State) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *State) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// Client returns the logged in client, or nil while logged out.
func (s *State) Client() ActivityClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loggedIn {
		return nil
	}
	return s.client
}

func (s *State) ActivityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activityCount
}

// SetActivityCount clamps n to the slider bounds.
func (s *State) SetActivityCount(n int) int {
	n = ClampActivityCount(n)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activityCount = n
	return n
}

// SelectedActivity is 0 when nothing has been picked yet.
func (s *State) SelectedActivity() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedActivity
}

func (s *State) SelectActivity(activityID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedActivity = activityID
}

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *State) idleFor(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen)
}

func ClampActivityCount(n int) int {
	switch {
	case n < config.MinActivitiesCount:
		return config.MinActivitiesCount
	case n > config.MaxActivitiesCount:
		return config.MaxActivitiesCount
	default:
		return n
	}
}
