package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/riskibarqy/squad-builder/internal/domain/draft"
	"github.com/riskibarqy/squad-builder/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/squad-builder/internal/infrastructure/session"
	draftmock "github.com/riskibarqy/squad-builder/internal/mocks/domain/draft"
	"github.com/stretchr/testify/mock"
)

func newMockedDraftService(t *testing.T) (*DraftService, *draftmock.Repository, *draftmock.CandidateGenerator) {
	t.Helper()

	squadRepo := draftmock.NewRepository(t)
	generator := draftmock.NewCandidateGenerator(t)
	service := NewDraftService(
		memory.NewAthleteRepository(memory.SeedAthletes()),
		squadRepo,
		generator,
		session.NewStore(0),
		draft.DefaultRules(),
		&sequenceIDGenerator{prefix: "squad"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	return service, squadRepo, generator
}

func committableSnapshot(gameweekID int) draft.Snapshot {
	return draft.Snapshot{
		GameweekID:    gameweekID,
		AthleteIDs:    seedAthleteIDs(),
		StarterIDs:    seedStarterIDs(),
		CaptainID:     "idn-mid-01",
		ViceCaptainID: "idn-fwd-01",
	}
}

func TestDraftService_CommitDraft_UpdatesExistingSquadUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "trace_id", "trace-789")
	service, squadRepo, generator := newMockedDraftService(t)

	firstCommitAt := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	now := firstCommitAt.Add(48 * time.Hour)
	service.now = func() time.Time { return now }

	userID := "user-9"
	gameweekID := 7

	// A fresh open never probes persistence, so no repository expectation is
	// registered for it.
	if _, err := service.OpenDraft(ctx, userID, gameweekID, true); err != nil {
		t.Fatalf("open draft: %v", err)
	}

	generator.
		On("Generate", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), userID, gameweekID).
		Return(committableSnapshot(gameweekID), nil).
		Once()

	if _, err := service.AcceptCandidate(ctx, userID, gameweekID); err != nil {
		t.Fatalf("accept candidate: %v", err)
	}

	existing := draft.Record{
		ID:         "squad-keep",
		UserID:     userID,
		GameweekID: gameweekID,
		CreatedAt:  firstCommitAt,
		UpdatedAt:  firstCommitAt,
	}
	squadRepo.
		On("GetByUserAndGameweek", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), userID, gameweekID).
		Return(existing, true, nil).
		Once()
	squadRepo.
		On("Update", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), mock.MatchedBy(func(r draft.Record) bool {
			return r.ID == "squad-keep" && r.CreatedAt.Equal(firstCommitAt) && r.UpdatedAt.Equal(now)
		})).
		Return(nil).
		Once()

	record, report, err := service.CommitDraft(ctx, userID, gameweekID)
	if err != nil {
		t.Fatalf("commit draft: %v", err)
	}
	if !report.IsValid() {
		t.Fatalf("expected clean commit report, got %v", report.Messages())
	}
	if record.ID != "squad-keep" {
		t.Fatalf("unexpected squad id: got=%s want=squad-keep", record.ID)
	}
	if !record.CreatedAt.Equal(firstCommitAt) {
		t.Fatalf("expected created_at preserved: got=%v want=%v", record.CreatedAt, firstCommitAt)
	}
	if record.CaptainID != "idn-mid-01" || record.ViceCaptainID != "idn-fwd-01" {
		t.Fatalf("unexpected armband: captain=%s vice=%s", record.CaptainID, record.ViceCaptainID)
	}
}

func TestDraftService_CommitDraft_PersistenceProbeFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, squadRepo, generator := newMockedDraftService(t)

	userID := "user-2"
	gameweekID := 3

	if _, err := service.OpenDraft(ctx, userID, gameweekID, true); err != nil {
		t.Fatalf("open draft: %v", err)
	}

	generator.
		On("Generate", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), userID, gameweekID).
		Return(committableSnapshot(gameweekID), nil).
		Once()

	if _, err := service.AcceptCandidate(ctx, userID, gameweekID); err != nil {
		t.Fatalf("accept candidate: %v", err)
	}

	errStorage := errors.New("squad storage offline")
	squadRepo.
		On("GetByUserAndGameweek", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), userID, gameweekID).
		Return(draft.Record{}, false, errStorage).
		Once()

	_, _, err := service.CommitDraft(ctx, userID, gameweekID)
	if !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
