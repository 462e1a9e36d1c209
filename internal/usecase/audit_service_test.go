package usecase

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/riskibarqy/squad-builder/internal/domain/draft"
	"github.com/riskibarqy/squad-builder/internal/infrastructure/repository/memory"
)

func seedRecord(t *testing.T, squadRepo *memory.SquadRepository, id, userID string, gameweekID int, athleteIDs []string) {
	t.Helper()

	now := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	err := squadRepo.Create(t.Context(), draft.Record{
		ID:            id,
		UserID:        userID,
		GameweekID:    gameweekID,
		AthleteIDs:    athleteIDs,
		StarterIDs:    seedStarterIDs(),
		CaptainID:     "idn-mid-01",
		ViceCaptainID: "idn-fwd-01",
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("seed record %s failed: %v", id, err)
	}
}

func TestAuditService_RevalidateGameweek(t *testing.T) {
	t.Parallel()

	athleteRepo := memory.NewAthleteRepository(memory.SeedAthletes())
	squadRepo := memory.NewSquadRepository()

	seedRecord(t, squadRepo, "squad-a", "user-a", 1, seedAthleteIDs())
	// 14 athletes: breaks the size rule and the forward minimum.
	seedRecord(t, squadRepo, "squad-b", "user-b", 1, seedAthleteIDs()[:14])
	seedRecord(t, squadRepo, "squad-c", "user-c", 1, append(seedAthleteIDs()[:14], "idn-ghost-99"))
	seedRecord(t, squadRepo, "squad-d", "user-d", 2, seedAthleteIDs())

	service := NewAuditService(
		athleteRepo,
		squadRepo,
		draft.DefaultRules(),
		4,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	result, err := service.RevalidateGameweek(t.Context(), AuditInput{GameweekID: 1, MaxWorkers: 99})
	if err != nil {
		t.Fatalf("revalidate failed: %v", err)
	}

	if result.SquadCount != 3 {
		t.Fatalf("expected 3 squads in gameweek 1, got %d", result.SquadCount)
	}
	if result.WorkerCount != 3 {
		t.Fatalf("expected worker count capped at task count, got %d", result.WorkerCount)
	}
	if result.ValidCount != 1 || result.InvalidCount != 1 || result.FailedCount != 1 {
		t.Fatalf("expected 1/1/1 valid/invalid/failed, got %d/%d/%d", result.ValidCount, result.InvalidCount, result.FailedCount)
	}

	if len(result.Squads) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Squads))
	}
	for idx, want := range []string{"user-a", "user-b", "user-c"} {
		if result.Squads[idx].UserID != want {
			t.Fatalf("expected row %d for %s, got %s", idx, want, result.Squads[idx].UserID)
		}
	}

	if result.Squads[0].Status != auditStatusValid {
		t.Fatalf("expected user-a squad valid, got %s (%v)", result.Squads[0].Status, result.Squads[0].Violations)
	}
	if result.Squads[1].Status != auditStatusInvalid || len(result.Squads[1].Violations) != 2 {
		t.Fatalf("expected user-b squad invalid with 2 violations, got %s (%v)", result.Squads[1].Status, result.Squads[1].Violations)
	}
	if result.Squads[2].Status != auditStatusFailed || result.Squads[2].Message == "" {
		t.Fatalf("expected user-c squad failed with message, got %s (%q)", result.Squads[2].Status, result.Squads[2].Message)
	}
}

func TestAuditService_RevalidateGameweek_EmptyGameweek(t *testing.T) {
	t.Parallel()

	service := NewAuditService(
		memory.NewAthleteRepository(memory.SeedAthletes()),
		memory.NewSquadRepository(),
		draft.DefaultRules(),
		4,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	result, err := service.RevalidateGameweek(t.Context(), AuditInput{GameweekID: 9})
	if err != nil {
		t.Fatalf("revalidate failed: %v", err)
	}
	if result.SquadCount != 0 || len(result.Squads) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}

	if _, err := service.RevalidateGameweek(t.Context(), AuditInput{GameweekID: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for gameweek 0, got %v", err)
	}
}

func TestNormalizeAuditWorkerCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		value     int
		fallback  int
		taskCount int
		want      int
	}{
		{name: "zero tasks", value: 4, fallback: 4, taskCount: 0, want: 1},
		{name: "falls back to configured default", value: 0, fallback: 4, taskCount: 10, want: 4},
		{name: "no fallback runs serially", value: 0, fallback: 0, taskCount: 10, want: 1},
		{name: "capped at max", value: 50, fallback: 4, taskCount: 100, want: maxAuditWorkers},
		{name: "capped at tasks", value: 4, fallback: 4, taskCount: 2, want: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeAuditWorkerCount(tc.value, tc.fallback, tc.taskCount); got != tc.want {
				t.Fatalf("expected %d workers, got %d", tc.want, got)
			}
		})
	}
}
