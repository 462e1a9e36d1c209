package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/riskibarqy/squad-builder/internal/domain/draft"
	"github.com/riskibarqy/squad-builder/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/squad-builder/internal/infrastructure/session"
)

type sequenceIDGenerator struct {
	prefix string
	n      int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("%s-%03d", g.prefix, g.n), nil
}

type stubGenerator struct {
	snap draft.Snapshot
	err  error
}

func (g stubGenerator) Generate(context.Context, string, int) (draft.Snapshot, error) {
	return g.snap, g.err
}

func newDraftService(generator draft.CandidateGenerator) (*DraftService, *memory.SquadRepository) {
	athleteRepo := memory.NewAthleteRepository(memory.SeedAthletes())
	squadRepo := memory.NewSquadRepository()
	if generator == nil {
		generator = memory.NewCandidateGenerator(athleteRepo, draft.DefaultRules())
	}

	service := NewDraftService(
		athleteRepo,
		squadRepo,
		generator,
		session.NewStore(0),
		draft.DefaultRules(),
		&sequenceIDGenerator{prefix: "squad"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	return service, squadRepo
}

func seedAthleteIDs() []string {
	return []string{
		"idn-gk-01", "idn-gk-02",
		"idn-def-01", "idn-def-02", "idn-def-03", "idn-def-04", "idn-def-05",
		"idn-mid-01", "idn-mid-02", "idn-mid-03", "idn-mid-04", "idn-mid-05",
		"idn-fwd-01", "idn-fwd-02", "idn-fwd-05",
	}
}

func seedStarterIDs() []string {
	return []string{
		"idn-gk-01",
		"idn-def-01", "idn-def-02", "idn-def-03", "idn-def-04", "idn-def-05",
		"idn-mid-01", "idn-mid-02", "idn-mid-03", "idn-mid-04",
		"idn-fwd-01",
	}
}

func buildCommittableDraft(t *testing.T, service *DraftService, userID string, gameweekID int) {
	t.Helper()

	if _, err := service.OpenDraft(t.Context(), userID, gameweekID, true); err != nil {
		t.Fatalf("open draft failed: %v", err)
	}
	for _, id := range seedAthleteIDs() {
		if _, err := service.AddAthlete(t.Context(), userID, gameweekID, id); err != nil {
			t.Fatalf("add athlete %s failed: %v", id, err)
		}
	}
	for _, id := range seedStarterIDs() {
		if _, err := service.PromoteStarter(t.Context(), userID, gameweekID, id); err != nil {
			t.Fatalf("promote %s failed: %v", id, err)
		}
	}
	if _, err := service.SetCaptain(t.Context(), userID, gameweekID, "idn-mid-01"); err != nil {
		t.Fatalf("set captain failed: %v", err)
	}
	if _, err := service.SetViceCaptain(t.Context(), userID, gameweekID, "idn-fwd-01"); err != nil {
		t.Fatalf("set vice captain failed: %v", err)
	}
}

func TestDraftService_CommitDraft_CreateThenUpdate(t *testing.T) {
	service, _ := newDraftService(nil)

	firstNow := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return firstNow }

	buildCommittableDraft(t, service, "user-1", 1)

	created, report, err := service.CommitDraft(t.Context(), "user-1", 1)
	if err != nil {
		t.Fatalf("commit create failed: %v", err)
	}
	if !report.IsValid() {
		t.Fatalf("expected clean report, got %v", report.Messages())
	}
	if created.ID != "squad-001" {
		t.Fatalf("expected squad id squad-001, got %s", created.ID)
	}
	if !created.CreatedAt.Equal(firstNow) || !created.UpdatedAt.Equal(firstNow) {
		t.Fatalf("expected created/updated at %v, got created=%v updated=%v", firstNow, created.CreatedAt, created.UpdatedAt)
	}

	// Swap the armband: giving the captaincy to the vice clears the vice
	// role, which then has to be re-assigned.
	if _, err := service.SetCaptain(t.Context(), "user-1", 1, "idn-fwd-01"); err != nil {
		t.Fatalf("swap captain failed: %v", err)
	}
	if _, err := service.SetViceCaptain(t.Context(), "user-1", 1, "idn-mid-01"); err != nil {
		t.Fatalf("swap vice captain failed: %v", err)
	}

	secondNow := firstNow.Add(5 * time.Minute)
	service.now = func() time.Time { return secondNow }

	updated, _, err := service.CommitDraft(t.Context(), "user-1", 1)
	if err != nil {
		t.Fatalf("commit update failed: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected same squad id on update, got %s vs %s", updated.ID, created.ID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected created_at unchanged, got %v vs %v", updated.CreatedAt, created.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(secondNow) {
		t.Fatalf("expected updated_at %v, got %v", secondNow, updated.UpdatedAt)
	}
	if updated.CaptainID != "idn-fwd-01" || updated.ViceCaptainID != "idn-mid-01" {
		t.Fatalf("expected swapped armband, got captain=%s vice=%s", updated.CaptainID, updated.ViceCaptainID)
	}
}

func TestDraftService_CommitDraft_RejectsInvalidDraft(t *testing.T) {
	service, squadRepo := newDraftService(nil)

	if _, err := service.OpenDraft(t.Context(), "user-1", 1, true); err != nil {
		t.Fatalf("open draft failed: %v", err)
	}
	if _, err := service.AddAthlete(t.Context(), "user-1", 1, "idn-gk-01"); err != nil {
		t.Fatalf("add athlete failed: %v", err)
	}

	_, report, err := service.CommitDraft(t.Context(), "user-1", 1)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if report.IsValid() {
		t.Fatal("expected violations in the commit report")
	}
	if !errors.Is(report.Err(), draft.ErrSquadSize) {
		t.Fatalf("expected squad size violation, got %v", report.Messages())
	}
	if !errors.Is(report.Err(), draft.ErrMissingCaptain) {
		t.Fatalf("expected missing captain violation, got %v", report.Messages())
	}

	if _, exists, _ := squadRepo.GetByUserAndGameweek(t.Context(), "user-1", 1); exists {
		t.Fatal("expected no squad persisted after failed commit")
	}
}

func TestDraftService_OpenDraft_ResumesHydratesAndResets(t *testing.T) {
	service, _ := newDraftService(nil)
	service.now = func() time.Time { return time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC) }

	if _, err := service.OpenDraft(t.Context(), "user-1", 1, true); err != nil {
		t.Fatalf("open draft failed: %v", err)
	}
	if _, err := service.AddAthlete(t.Context(), "user-1", 1, "idn-gk-01"); err != nil {
		t.Fatalf("add athlete failed: %v", err)
	}

	resumed, err := service.OpenDraft(t.Context(), "user-1", 1, false)
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if resumed.Summary.Size != 1 {
		t.Fatalf("expected resumed draft with 1 athlete, got %d", resumed.Summary.Size)
	}

	reset, err := service.OpenDraft(t.Context(), "user-1", 1, true)
	if err != nil {
		t.Fatalf("fresh open failed: %v", err)
	}
	if reset.Summary.Size != 0 {
		t.Fatalf("expected fresh draft to be empty, got %d athletes", reset.Summary.Size)
	}

	buildCommittableDraft(t, service, "user-1", 1)
	committed, _, err := service.CommitDraft(t.Context(), "user-1", 1)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if err := service.DiscardDraft(t.Context(), "user-1", 1); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if _, err := service.GetDraft(t.Context(), "user-1", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after discard, got %v", err)
	}

	hydrated, err := service.OpenDraft(t.Context(), "user-1", 1, false)
	if err != nil {
		t.Fatalf("hydrating open failed: %v", err)
	}
	if !reflect.DeepEqual(hydrated.Snapshot, committed.Snapshot()) {
		t.Fatalf("expected hydrated draft to match committed squad, got %v vs %v", hydrated.Snapshot, committed.Snapshot())
	}
}

func TestDraftService_EditRejectionsKeepDraftIntact(t *testing.T) {
	service, _ := newDraftService(nil)

	buildCommittableDraft(t, service, "user-1", 1)

	if _, err := service.AddAthlete(t.Context(), "user-1", 1, "idn-ghost-99"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown athlete, got %v", err)
	}

	_, err := service.AddAthlete(t.Context(), "user-1", 1, "idn-fwd-03")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if !errors.Is(err, draft.ErrSquadFull) {
		t.Fatalf("expected squad full reason, got %v", err)
	}

	_, err = service.SetCaptain(t.Context(), "user-1", 1, "idn-fwd-02")
	if !errors.Is(err, ErrConflict) || !errors.Is(err, draft.ErrNotStarter) {
		t.Fatalf("expected bench captain rejection, got %v", err)
	}

	view, err := service.GetDraft(t.Context(), "user-1", 1)
	if err != nil {
		t.Fatalf("get draft failed: %v", err)
	}
	if view.Summary.Size != 15 || view.Snapshot.CaptainID != "idn-mid-01" {
		t.Fatalf("expected draft untouched after rejections, got size=%d captain=%s", view.Summary.Size, view.Snapshot.CaptainID)
	}
}

func TestDraftService_AcceptCandidate_ReplacesSession(t *testing.T) {
	service, _ := newDraftService(nil)

	if _, err := service.AcceptCandidate(t.Context(), "user-1", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a session, got %v", err)
	}

	if _, err := service.OpenDraft(t.Context(), "user-1", 1, true); err != nil {
		t.Fatalf("open draft failed: %v", err)
	}

	view, err := service.AcceptCandidate(t.Context(), "user-1", 1)
	if err != nil {
		t.Fatalf("accept candidate failed: %v", err)
	}
	if view.Summary.Size != 15 || view.Summary.StarterCount != 11 {
		t.Fatalf("expected full candidate squad, got size=%d starters=%d", view.Summary.Size, view.Summary.StarterCount)
	}
	if view.Snapshot.CaptainID == "" || view.Snapshot.ViceCaptainID == "" {
		t.Fatalf("expected candidate armband, got captain=%q vice=%q", view.Snapshot.CaptainID, view.Snapshot.ViceCaptainID)
	}
	if view.Snapshot.GameweekID != 1 {
		t.Fatalf("expected candidate pinned to gameweek 1, got %d", view.Snapshot.GameweekID)
	}
}

func TestDraftService_AcceptCandidate_RejectsBrokenCandidates(t *testing.T) {
	dangling := stubGenerator{snap: draft.Snapshot{
		GameweekID: 1,
		AthleteIDs: []string{"idn-gk-01", "idn-ghost-99"},
	}}
	service, _ := newDraftService(dangling)

	if _, err := service.OpenDraft(t.Context(), "user-1", 1, true); err != nil {
		t.Fatalf("open draft failed: %v", err)
	}
	if _, err := service.AddAthlete(t.Context(), "user-1", 1, "idn-gk-01"); err != nil {
		t.Fatalf("add athlete failed: %v", err)
	}

	_, err := service.AcceptCandidate(t.Context(), "user-1", 1)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable for dangling ids, got %v", err)
	}

	view, err := service.GetDraft(t.Context(), "user-1", 1)
	if err != nil {
		t.Fatalf("get draft failed: %v", err)
	}
	if view.Summary.Size != 1 {
		t.Fatalf("expected draft untouched after rejected candidate, got %d athletes", view.Summary.Size)
	}

	failing := stubGenerator{err: errors.New("generator offline")}
	service, _ = newDraftService(failing)
	if _, err := service.OpenDraft(t.Context(), "user-2", 1, true); err != nil {
		t.Fatalf("open draft failed: %v", err)
	}
	if _, err := service.AcceptCandidate(t.Context(), "user-2", 1); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable for generator failure, got %v", err)
	}
}

func TestDraftService_ValidateDraft_ReportsWithoutPersisting(t *testing.T) {
	service, squadRepo := newDraftService(nil)

	if _, err := service.OpenDraft(t.Context(), "user-1", 1, true); err != nil {
		t.Fatalf("open draft failed: %v", err)
	}
	if _, err := service.AddAthlete(t.Context(), "user-1", 1, "idn-gk-01"); err != nil {
		t.Fatalf("add athlete failed: %v", err)
	}

	report, err := service.ValidateDraft(t.Context(), "user-1", 1)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if report.IsValid() {
		t.Fatal("expected violations for a one-athlete draft")
	}
	if !errors.Is(report.Err(), draft.ErrSquadSize) {
		t.Fatalf("expected squad size violation, got %v", report.Messages())
	}

	if _, exists, _ := squadRepo.GetByUserAndGameweek(t.Context(), "user-1", 1); exists {
		t.Fatal("expected validation to leave persistence untouched")
	}
}

func TestDraftService_InputValidation(t *testing.T) {
	service, _ := newDraftService(nil)

	if _, err := service.OpenDraft(t.Context(), "  ", 1, true); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank user, got %v", err)
	}
	if _, err := service.OpenDraft(t.Context(), "user-1", 0, true); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for gameweek 0, got %v", err)
	}
	if _, err := service.GetCommittedSquad(t.Context(), "user-1", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing squad, got %v", err)
	}
}
