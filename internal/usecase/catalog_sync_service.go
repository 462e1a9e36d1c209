package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	"github.com/riskibarqy/squad-builder/internal/domain/team"
)

const defaultSyncFetchWorkers = 4

// catalogProvider is the slice of the stat feed the sync needs.
type catalogProvider interface {
	FetchTeams(ctx context.Context) ([]team.Team, error)
	FetchAthletesByTeam(ctx context.Context, teamID string) ([]athlete.Athlete, error)
}

type teamCatalogWriter interface {
	Upsert(ctx context.Context, teams []team.Team) error
}

type athleteCatalogWriter interface {
	Upsert(ctx context.Context, athletes []athlete.Athlete) error
}

// SyncReport summarizes one catalog sync run.
type SyncReport struct {
	Teams           int
	Athletes        int
	SkippedTeams    int
	SkippedAthletes int
}

// CatalogSyncService pulls the team and athlete catalog from the stat feed
// and upserts it. Athlete fetches fan out per team on a bounded pool.
type CatalogSyncService struct {
	provider      catalogProvider
	teamWriter    teamCatalogWriter
	athleteWriter athleteCatalogWriter
	fetchWorkers  int
	logger        *slog.Logger
}

func NewCatalogSyncService(
	provider catalogProvider,
	teamWriter teamCatalogWriter,
	athleteWriter athleteCatalogWriter,
	fetchWorkers int,
	logger *slog.Logger,
) *CatalogSyncService {
	if fetchWorkers <= 0 {
		fetchWorkers = defaultSyncFetchWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CatalogSyncService{
		provider:      provider,
		teamWriter:    teamWriter,
		athleteWriter: athleteWriter,
		fetchWorkers:  fetchWorkers,
		logger:        logger,
	}
}

// SyncCatalog refreshes teams first, then athletes. Provider rows that fail
// domain validation are skipped and counted rather than aborting the run; a
// provider outage aborts with ErrDependencyUnavailable and leaves whatever
// was already upserted in place.
func (s *CatalogSyncService) SyncCatalog(ctx context.Context) (SyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogSyncService.SyncCatalog")
	defer span.End()

	fetched, err := s.provider.FetchTeams(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("%w: fetch teams: %v", ErrDependencyUnavailable, err)
	}

	var report SyncReport
	teams := make([]team.Team, 0, len(fetched))
	for _, item := range fetched {
		if err := item.Validate(); err != nil {
			report.SkippedTeams++
			s.logger.WarnContext(ctx, "skipping malformed team from feed",
				"team_id", item.ID,
				"error", err,
			)
			continue
		}
		teams = append(teams, item)
	}

	if len(teams) > 0 {
		if err := s.teamWriter.Upsert(ctx, teams); err != nil {
			return SyncReport{}, fmt.Errorf("upsert teams: %w", err)
		}
	}
	report.Teams = len(teams)

	p := pool.NewWithResults[[]athlete.Athlete]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(s.fetchWorkers)
	for _, item := range teams {
		teamID := item.ID
		p.Go(func(ctx context.Context) ([]athlete.Athlete, error) {
			batch, err := s.provider.FetchAthletesByTeam(ctx, teamID)
			if err != nil {
				return nil, fmt.Errorf("fetch athletes for team %s: %w", teamID, err)
			}
			return batch, nil
		})
	}

	batches, err := p.Wait()
	if err != nil {
		return SyncReport{}, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	seen := make(map[string]struct{})
	athletes := make([]athlete.Athlete, 0)
	for _, batch := range batches {
		for _, item := range batch {
			if err := item.Validate(); err != nil {
				report.SkippedAthletes++
				s.logger.WarnContext(ctx, "skipping malformed athlete from feed",
					"athlete_id", item.ID,
					"error", err,
				)
				continue
			}
			if _, ok := seen[item.ID]; ok {
				continue
			}
			seen[item.ID] = struct{}{}
			athletes = append(athletes, item)
		}
	}

	// Batches land in completion order, so sort for a stable upsert.
	sort.Slice(athletes, func(i, j int) bool { return athletes[i].ID < athletes[j].ID })

	if len(athletes) > 0 {
		if err := s.athleteWriter.Upsert(ctx, athletes); err != nil {
			return SyncReport{}, fmt.Errorf("upsert athletes: %w", err)
		}
	}
	report.Athletes = len(athletes)

	s.logger.InfoContext(ctx, "catalog sync completed",
		"teams", report.Teams,
		"athletes", report.Athletes,
		"skipped_teams", report.SkippedTeams,
		"skipped_athletes", report.SkippedAthletes,
	)

	return report, nil
}
