package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	"github.com/riskibarqy/squad-builder/internal/domain/draft"
)

const (
	auditStatusValid   = "valid"
	auditStatusInvalid = "invalid"
	auditStatusFailed  = "failed"

	maxAuditWorkers = 8
)

type AuditInput struct {
	GameweekID int
	MaxWorkers int
}

type AuditResult struct {
	GameweekID   int                `json:"gameweek_id"`
	SquadCount   int                `json:"squad_count"`
	ValidCount   int                `json:"valid_count"`
	InvalidCount int                `json:"invalid_count"`
	FailedCount  int                `json:"failed_count"`
	WorkerCount  int                `json:"worker_count"`
	Squads       []AuditSquadResult `json:"squads"`
}

type AuditSquadResult struct {
	SquadID    string   `json:"squad_id"`
	UserID     string   `json:"user_id"`
	Status     string   `json:"status"`
	Violations []string `json:"violations,omitempty"`
	Message    string   `json:"message,omitempty"`
	DurationMs int64    `json:"duration_ms"`
}

// AuditService re-runs the commit rules over every persisted squad of a
// gameweek, typically after a catalog sync moved prices or teams.
type AuditService struct {
	athleteRepo    athlete.Repository
	squadRepo      draft.Repository
	rules          draft.Rules
	defaultWorkers int
	logger         *slog.Logger
}

func NewAuditService(
	athleteRepo athlete.Repository,
	squadRepo draft.Repository,
	rules draft.Rules,
	defaultWorkers int,
	logger *slog.Logger,
) *AuditService {
	if defaultWorkers <= 0 {
		defaultWorkers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AuditService{
		athleteRepo:    athleteRepo,
		squadRepo:      squadRepo,
		rules:          rules,
		defaultWorkers: defaultWorkers,
		logger:         logger,
	}
}

// RevalidateGameweek fans the persisted squads out over a bounded worker pool
// and aggregates one row per squad. Rows come back sorted by user so repeated
// runs produce identical reports.
func (s *AuditService) RevalidateGameweek(ctx context.Context, input AuditInput) (AuditResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuditService.RevalidateGameweek")
	defer span.End()

	if input.GameweekID <= 0 {
		return AuditResult{}, fmt.Errorf("%w: gameweek id must be greater than zero", ErrInvalidInput)
	}

	records, err := s.squadRepo.ListByGameweek(ctx, input.GameweekID)
	if err != nil {
		return AuditResult{}, fmt.Errorf("list squads by gameweek: %w", err)
	}

	workerCount := normalizeAuditWorkerCount(input.MaxWorkers, s.defaultWorkers, len(records))
	result := AuditResult{
		GameweekID:  input.GameweekID,
		SquadCount:  len(records),
		WorkerCount: workerCount,
		Squads:      make([]AuditSquadResult, 0, len(records)),
	}
	if len(records) == 0 {
		return result, nil
	}

	// One catalog read serves every task.
	catalogItems, err := s.athleteRepo.List(ctx)
	if err != nil {
		return AuditResult{}, fmt.Errorf("list athletes: %w", err)
	}
	catalog := make(map[string]athlete.Athlete, len(catalogItems))
	for _, item := range catalogItems {
		catalog[item.ID] = item
	}

	results := make(chan AuditSquadResult, len(records))

	var validCount atomic.Int32
	var invalidCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return AuditResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, record := range records {
		record := record
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := s.auditSquad(record, catalog)
			row.DurationMs = time.Since(start).Milliseconds()

			switch row.Status {
			case auditStatusValid:
				validCount.Add(1)
			case auditStatusInvalid:
				invalidCount.Add(1)
			default:
				failedCount.Add(1)
			}

			results <- row
		}); err != nil {
			workers.Done()
			return AuditResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Squads = append(result.Squads, row)
	}

	sort.SliceStable(result.Squads, func(i, j int) bool {
		return result.Squads[i].UserID < result.Squads[j].UserID
	})

	result.ValidCount = int(validCount.Load())
	result.InvalidCount = int(invalidCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "gameweek revalidated",
		"gameweek_id", input.GameweekID,
		"squads", result.SquadCount,
		"valid", result.ValidCount,
		"invalid", result.InvalidCount,
		"failed", result.FailedCount,
	)

	return result, nil
}

func (s *AuditService) auditSquad(record draft.Record, catalog map[string]athlete.Athlete) AuditSquadResult {
	row := AuditSquadResult{
		SquadID: record.ID,
		UserID:  record.UserID,
	}

	squad, err := draft.FromSnapshot(record.Snapshot(), catalog, s.rules)
	if err != nil {
		row.Status = auditStatusFailed
		row.Message = err.Error()
		return row
	}

	report := squad.ValidateForCommit()
	if !report.IsValid() {
		row.Status = auditStatusInvalid
		row.Violations = report.Messages()
		return row
	}

	row.Status = auditStatusValid
	return row
}

func normalizeAuditWorkerCount(value, fallback, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = fallback
	}
	if value <= 0 {
		value = 1
	}
	if value > maxAuditWorkers {
		value = maxAuditWorkers
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
