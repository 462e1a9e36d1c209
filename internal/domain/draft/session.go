package draft

// Session is one live draft. Implementations serialize access so every
// transition observes a consistent squad.
type Session interface {
	Update(fn func(*Squad) error) error
	View(fn func(*Squad))
}

// SessionStore keeps live drafts keyed by user and gameweek. Drafts are
// in-session state only: Put replaces any previous session for the key,
// Delete discards, and implementations may expire idle sessions.
type SessionStore interface {
	Put(userID string, gameweekID int, squad *Squad) Session
	Get(userID string, gameweekID int) (Session, bool)
	Delete(userID string, gameweekID int)
}
