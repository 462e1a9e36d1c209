package session

import (
	"strconv"
	"sync"
	"time"

	"github.com/riskibarqy/squad-builder/internal/domain/draft"
)

// Session owns one user's live draft for one gameweek. The squad is only
// reachable through View and Update, which hold the session mutex, so every
// builder transition is atomic with respect to concurrent requests.
type Session struct {
	mu        sync.Mutex
	squad     *draft.Squad
	touchedAt time.Time
	now       func() time.Time
}

// Update runs fn against the squad under the session lock and refreshes the
// idle deadline.
func (s *Session) Update(fn func(*draft.Squad) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = s.now()
	return fn(s.squad)
}

// View runs fn against the squad under the session lock without treating the
// access as a write.
func (s *Session) View(fn func(*draft.Squad)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = s.now()
	fn(s.squad)
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.touchedAt) >= ttl
}

// Store keeps live draft sessions keyed by user and gameweek. Sessions are
// in-process state: abandoning the builder leaves them to age out, an
// explicit discard deletes them, and a different gameweek is simply a
// different key.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// NewStore builds a session store whose idle sessions expire after ttl. A
// background sweep reclaims them; Close stops it.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	if ttl > 0 {
		go s.sweep()
	}

	return s
}

func sessionKey(userID string, gameweekID int) string {
	return userID + "::" + strconv.Itoa(gameweekID)
}

// Put installs a new session for the squad, replacing any existing one for
// the same user and gameweek.
func (s *Store) Put(userID string, gameweekID int, squad *draft.Squad) draft.Session {
	sess := &Session{
		squad:     squad,
		touchedAt: s.now(),
		now:       s.now,
	}

	s.mu.Lock()
	s.sessions[sessionKey(userID, gameweekID)] = sess
	s.mu.Unlock()

	return sess
}

func (s *Store) Get(userID string, gameweekID int) (draft.Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionKey(userID, gameweekID)]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if sess.expired(s.now(), s.ttl) {
		s.Delete(userID, gameweekID)
		return nil, false
	}

	return sess, true
}

func (s *Store) Delete(userID string, gameweekID int) {
	s.mu.Lock()
	delete(s.sessions, sessionKey(userID, gameweekID))
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the background sweep. Live sessions stay readable until they
// expire through Get.
func (s *Store) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *Store) sweep() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *Store) evictExpired() {
	now := s.now()

	s.mu.RLock()
	var stale []string
	for key, sess := range s.sessions {
		if sess.expired(now, s.ttl) {
			stale = append(stale, key)
		}
	}
	s.mu.RUnlock()

	if len(stale) == 0 {
		return
	}

	s.mu.Lock()
	for _, key := range stale {
		if sess, ok := s.sessions[key]; ok && sess.expired(now, s.ttl) {
			delete(s.sessions, key)
		}
	}
	s.mu.Unlock()
}
