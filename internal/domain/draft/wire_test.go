package draft

import (
	"errors"
	"reflect"
	"testing"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
)

func catalogByID() map[string]athlete.Athlete {
	catalog := make(map[string]athlete.Athlete)
	for _, a := range validSelection() {
		catalog[a.ID] = a
	}
	return catalog
}

func TestSnapshotRoundTrip(t *testing.T) {
	squad := buildDraft(t)
	if err := squad.SetCaptain("a1"); err != nil {
		t.Fatalf("set captain: %v", err)
	}
	if err := squad.SetViceCaptain("a3"); err != nil {
		t.Fatalf("set vice-captain: %v", err)
	}

	snap := squad.Snapshot()
	restored, err := FromSnapshot(snap, catalogByID(), DefaultRules())
	if err != nil {
		t.Fatalf("from snapshot: %v", err)
	}

	if !reflect.DeepEqual(restored.Snapshot(), snap) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", restored.Snapshot(), snap)
	}
	if restored.GameweekID() != 7 {
		t.Fatalf("expected gameweek 7, got %d", restored.GameweekID())
	}
	if !restored.Validate().IsValid() {
		t.Fatalf("restored squad fails validation: %v", restored.Validate().Messages())
	}
}

func TestFromSnapshotRejectsDanglingIDs(t *testing.T) {
	squad := buildDraft(t)
	snap := squad.Snapshot()

	catalog := catalogByID()
	delete(catalog, "a9")

	restored, err := FromSnapshot(snap, catalog, DefaultRules())
	if !errors.Is(err, ErrUnresolvedAthlete) {
		t.Fatalf("expected ErrUnresolvedAthlete, got %v", err)
	}
	if restored != nil {
		t.Fatalf("expected no squad on rejection, got %+v", restored)
	}
}

func TestFromSnapshotRejectsBrokenStructure(t *testing.T) {
	snap := Snapshot{
		GameweekID: 7,
		AthleteIDs: []string{"a1", "a2"},
		StarterIDs: []string{"a1"},
		CaptainID:  "a2", // selected but not a starter
	}

	_, err := FromSnapshot(snap, catalogByID(), DefaultRules())
	if !errors.Is(err, ErrNotStarter) {
		t.Fatalf("expected ErrNotStarter, got %v", err)
	}
}

func TestSnapshotReferencedIDs(t *testing.T) {
	snap := Snapshot{
		GameweekID:    2,
		AthleteIDs:    []string{"a1", "a2", "a3"},
		StarterIDs:    []string{"a2", "a3"},
		CaptainID:     "a2",
		ViceCaptainID: "a9",
	}

	got := snap.ReferencedIDs()
	want := []string{"a1", "a2", "a3", "a9"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
