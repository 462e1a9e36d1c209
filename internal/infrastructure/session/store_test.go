package session

import (
	"testing"
	"time"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	"github.com/riskibarqy/squad-builder/internal/domain/draft"
)

func TestStorePutGetDelete(t *testing.T) {
	store := NewStore(0)
	defer store.Close()

	squad := draft.NewSquad(7, draft.DefaultRules())
	store.Put("u1", 7, squad)

	sess, ok := store.Get("u1", 7)
	if !ok {
		t.Fatalf("expected session for u1 gameweek 7")
	}

	if err := sess.Update(func(sq *draft.Squad) error {
		return sq.Add(athlete.Athlete{ID: "a1", TeamID: "t1", Name: "A1", Position: athlete.PositionKeeper, Cost: 50})
	}); err != nil {
		t.Fatalf("update session: %v", err)
	}

	var size int
	sess.View(func(sq *draft.Squad) { size = sq.Size() })
	if size != 1 {
		t.Fatalf("expected size 1, got %d", size)
	}

	if _, ok := store.Get("u1", 8); ok {
		t.Fatalf("different gameweek must be a different session")
	}
	if _, ok := store.Get("u2", 7); ok {
		t.Fatalf("different user must be a different session")
	}

	store.Delete("u1", 7)
	if _, ok := store.Get("u1", 7); ok {
		t.Fatalf("expected session gone after delete")
	}
}

func TestStorePutReplacesExistingSession(t *testing.T) {
	store := NewStore(0)
	defer store.Close()

	first := draft.NewSquad(7, draft.DefaultRules())
	if err := first.Add(athlete.Athlete{ID: "a1", TeamID: "t1", Name: "A1", Position: athlete.PositionKeeper, Cost: 50}); err != nil {
		t.Fatalf("seed squad: %v", err)
	}
	store.Put("u1", 7, first)
	store.Put("u1", 7, draft.NewSquad(7, draft.DefaultRules()))

	sess, ok := store.Get("u1", 7)
	if !ok {
		t.Fatalf("expected session")
	}
	var size int
	sess.View(func(sq *draft.Squad) { size = sq.Size() })
	if size != 0 {
		t.Fatalf("expected replacement squad, got size %d", size)
	}
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	store := NewStore(time.Minute)
	store.Close() // no background sweep; expiry is checked on Get

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Put("u1", 7, draft.NewSquad(7, draft.DefaultRules()))

	now = now.Add(30 * time.Second)
	if _, ok := store.Get("u1", 7); !ok {
		t.Fatalf("session expired too early")
	}

	// Get does not refresh the idle deadline; it still runs from Put.
	now = now.Add(time.Minute)
	if _, ok := store.Get("u1", 7); ok {
		t.Fatalf("expected idle session to expire")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired session removed, got %d", store.Len())
	}
}

func TestStoreEvictExpired(t *testing.T) {
	store := NewStore(time.Minute)
	store.Close()

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Put("u1", 7, draft.NewSquad(7, draft.DefaultRules()))
	store.Put("u2", 7, draft.NewSquad(7, draft.DefaultRules()))

	now = now.Add(2 * time.Minute)
	store.evictExpired()

	if store.Len() != 0 {
		t.Fatalf("expected all sessions evicted, got %d", store.Len())
	}
}
