package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	"github.com/riskibarqy/squad-builder/internal/domain/draft"
	"github.com/riskibarqy/squad-builder/internal/domain/team"
	"github.com/riskibarqy/squad-builder/internal/usecase"
)

type stubCatalogFeed struct {
	teams          []team.Team
	athletesByTeam map[string][]athlete.Athlete
}

func (f *stubCatalogFeed) FetchTeams(context.Context) ([]team.Team, error) {
	return f.teams, nil
}

func (f *stubCatalogFeed) FetchAthletesByTeam(_ context.Context, teamID string) ([]athlete.Athlete, error) {
	return f.athletesByTeam[teamID], nil
}

func TestRunCatalogSync_RequiresOpsToken(t *testing.T) {
	env := newRouterEnv(t, &stubCatalogFeed{})

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/ops/catalog-sync", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected status 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/ops/catalog-sync", nil)
	req.Header.Set("X-Internal-Ops-Token", "guess")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: expected status 401, got %d", rec.Code)
	}
}

func TestRunCatalogSync_UpsertsCatalog(t *testing.T) {
	feed := &stubCatalogFeed{
		teams: []team.Team{
			{ID: "idn-dewa", Name: "Dewa United", Short: "DEW"},
		},
		athletesByTeam: map[string][]athlete.Athlete{
			"idn-dewa": {
				{ID: "idn-dewa-gk-01", TeamID: "idn-dewa", Name: "Sonny Stevens", Position: athlete.PositionKeeper, Cost: 44},
				{ID: "idn-dewa-fwd-01", TeamID: "idn-dewa", Name: "Alex Martins", Position: athlete.PositionForward, Cost: 77},
			},
		},
	}
	env := newRouterEnv(t, feed)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/ops/catalog-sync", nil)
	req.Header.Set("X-Internal-Ops-Token", testOpsToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	report := decodeData[syncReportDTO](t, rec)
	if report.Teams != 1 || report.Athletes != 2 {
		t.Fatalf("unexpected sync report: %+v", report)
	}
	if report.SkippedTeams != 0 || report.SkippedAthletes != 0 {
		t.Fatalf("expected no skips, got %+v", report)
	}

	// The synced team lands next to the seeded ones.
	req = httptest.NewRequest(http.MethodGet, "/v1/teams", nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	teams := decodeData[[]teamDTO](t, rec)
	if len(teams) != 7 {
		t.Fatalf("expected 7 teams after sync, got %d", len(teams))
	}
}

func TestRunRevalidate_ReportsPerSquadOutcomes(t *testing.T) {
	env := newRouterEnv(t, &stubCatalogFeed{})

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	valid := draft.Record{
		ID:            "sq-valid",
		UserID:        "user-1",
		GameweekID:    5,
		AthleteIDs:    committableAthleteIDs(),
		StarterIDs:    committableStarterIDs(),
		CaptainID:     "idn-mid-01",
		ViceCaptainID: "idn-fwd-01",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// Fourteen athletes: breaks squad size and the forward minimum.
	short := draft.Record{
		ID:            "sq-short",
		UserID:        "user-2",
		GameweekID:    5,
		AthleteIDs:    committableAthleteIDs()[:14],
		StarterIDs:    committableStarterIDs(),
		CaptainID:     "idn-mid-01",
		ViceCaptainID: "idn-fwd-01",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, record := range []draft.Record{valid, short} {
		if err := env.squadRepo.Create(t.Context(), record); err != nil {
			t.Fatalf("seed record %s: %v", record.ID, err)
		}
	}

	// A bearer token alone does not open the ops surface.
	if rec := env.do(t, http.MethodPost, "/v1/internal/ops/revalidate", revalidateRequest{GameweekID: 5}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bearer-only request: expected status 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/ops/revalidate", bytes.NewReader([]byte(`{"gameweekId":5,"maxWorkers":2}`)))
	req.Header.Set("X-Internal-Ops-Token", testOpsToken)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	result := decodeData[usecase.AuditResult](t, rec)
	if result.SquadCount != 2 || result.ValidCount != 1 || result.InvalidCount != 1 {
		t.Fatalf("unexpected audit counts: %+v", result)
	}
	if len(result.Squads) != 2 {
		t.Fatalf("expected 2 squad rows, got %d", len(result.Squads))
	}
	// Rows are ordered by user for stable output.
	if result.Squads[0].UserID != "user-1" || result.Squads[0].Status != "valid" {
		t.Fatalf("unexpected first row: %+v", result.Squads[0])
	}
	if result.Squads[1].UserID != "user-2" || result.Squads[1].Status != "invalid" {
		t.Fatalf("unexpected second row: %+v", result.Squads[1])
	}
	if len(result.Squads[1].Violations) == 0 {
		t.Fatalf("expected violations on the short squad")
	}
}

func TestRunRevalidate_RejectsMissingGameweek(t *testing.T) {
	env := newRouterEnv(t, &stubCatalogFeed{})

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/ops/revalidate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("X-Internal-Ops-Token", testOpsToken)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d body=%s", rec.Code, rec.Body.String())
	}
}
