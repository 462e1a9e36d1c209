package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	qb "github.com/riskibarqy/squad-builder/internal/platform/querybuilder"
)

type AthleteRepository struct {
	db *sqlx.DB
}

var athleteSelectColumns = []string{
	"id",
	"public_id",
	"team_public_id",
	"name",
	"position",
	"cost",
	"created_at",
	"updated_at",
	"deleted_at",
}

func NewAthleteRepository(db *sqlx.DB) *AthleteRepository {
	return &AthleteRepository{db: db}
}

func (r *AthleteRepository) List(ctx context.Context) ([]athlete.Athlete, error) {
	query, args, err := qb.Select(athleteSelectColumns...).From("athletes").
		Where(qb.IsNull("deleted_at")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select athletes query: %w", err)
	}

	var rows []athleteTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select athletes: %w", err)
	}

	return athleteRowsToDomain(rows), nil
}

func (r *AthleteRepository) GetByIDs(ctx context.Context, athleteIDs []string) ([]athlete.Athlete, error) {
	if len(athleteIDs) == 0 {
		return []athlete.Athlete{}, nil
	}

	query, args, err := qb.Select(athleteSelectColumns...).From("athletes").
		Where(
			qb.In("public_id", stringSliceToAny(athleteIDs)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select athletes by ids query: %w", err)
	}

	var rows []athleteTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select athletes by ids: %w", err)
	}

	return athleteRowsToDomain(rows), nil
}

func (r *AthleteRepository) Upsert(ctx context.Context, athletes []athlete.Athlete) error {
	if len(athletes) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for athlete upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range athletes {
		model := athleteInsertModel{
			PublicID: strings.TrimSpace(item.ID),
			TeamID:   strings.TrimSpace(item.TeamID),
			Name:     strings.TrimSpace(item.Name),
			Position: int(item.Position),
			Cost:     item.Cost,
		}

		query, args, err := qb.InsertModel("athletes", model, `ON CONFLICT (public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    team_public_id = EXCLUDED.team_public_id,
    name = EXCLUDED.name,
    position = EXCLUDED.position,
    cost = EXCLUDED.cost,
    updated_at = NOW(),
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert athlete query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert athlete %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert athletes tx: %w", err)
	}
	return nil
}

func athleteRowsToDomain(rows []athleteTableModel) []athlete.Athlete {
	out := make([]athlete.Athlete, 0, len(rows))
	for _, row := range rows {
		out = append(out, athlete.Athlete{
			ID:       row.PublicID,
			TeamID:   row.TeamID,
			Name:     row.Name,
			Position: athlete.Position(row.Position),
			Cost:     row.Cost,
		})
	}
	return out
}

func stringSliceToAny(items []string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
