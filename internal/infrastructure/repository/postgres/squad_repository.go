package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/squad-builder/internal/domain/draft"
	qb "github.com/riskibarqy/squad-builder/internal/platform/querybuilder"
)

type SquadRepository struct {
	db *sqlx.DB
}

var squadSelectColumns = []string{
	"id",
	"public_id",
	"user_id",
	"gameweek",
	"captain_public_id",
	"vice_captain_public_id",
	"created_at",
	"updated_at",
	"deleted_at",
}

var squadMemberSelectColumns = []string{
	"id",
	"squad_public_id",
	"athlete_public_id",
	"is_starter",
	"slot",
	"created_at",
	"updated_at",
	"deleted_at",
}

func NewSquadRepository(db *sqlx.DB) *SquadRepository {
	return &SquadRepository{db: db}
}

func (r *SquadRepository) GetByUserAndGameweek(ctx context.Context, userID string, gameweekID int) (draft.Record, bool, error) {
	query, args, err := qb.Select(squadSelectColumns...).From("squads").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("gameweek", gameweekID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return draft.Record{}, false, fmt.Errorf("build select squad query: %w", err)
	}

	var header squadTableModel
	if err := r.db.GetContext(ctx, &header, query, args...); err != nil {
		if isNotFound(err) {
			return draft.Record{}, false, nil
		}
		return draft.Record{}, false, fmt.Errorf("get squad: %w", err)
	}

	members, err := r.listMembers(ctx, []string{header.PublicID})
	if err != nil {
		return draft.Record{}, false, err
	}

	return squadRowToRecord(header, members[header.PublicID]), true, nil
}

func (r *SquadRepository) ListByGameweek(ctx context.Context, gameweekID int) ([]draft.Record, error) {
	query, args, err := qb.Select(squadSelectColumns...).From("squads").
		Where(
			qb.Eq("gameweek", gameweekID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select squads by gameweek query: %w", err)
	}

	var headers []squadTableModel
	if err := r.db.SelectContext(ctx, &headers, query, args...); err != nil {
		return nil, fmt.Errorf("select squads by gameweek: %w", err)
	}
	if len(headers) == 0 {
		return []draft.Record{}, nil
	}

	squadIDs := make([]string, 0, len(headers))
	for _, header := range headers {
		squadIDs = append(squadIDs, header.PublicID)
	}

	members, err := r.listMembers(ctx, squadIDs)
	if err != nil {
		return nil, err
	}

	out := make([]draft.Record, 0, len(headers))
	for _, header := range headers {
		out = append(out, squadRowToRecord(header, members[header.PublicID]))
	}

	return out, nil
}

func (r *SquadRepository) Create(ctx context.Context, record draft.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for squad create: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	model := squadInsertModel{
		PublicID:      record.ID,
		UserID:        record.UserID,
		Gameweek:      record.GameweekID,
		CaptainID:     record.CaptainID,
		ViceCaptainID: record.ViceCaptainID,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
	query, args, err := qb.InsertModel("squads", model, "")
	if err != nil {
		return fmt.Errorf("build insert squad query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert squad: %w", err)
	}

	if err := r.replaceMembers(ctx, tx, record); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit squad create tx: %w", err)
	}
	return nil
}

func (r *SquadRepository) Update(ctx context.Context, record draft.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for squad update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Update("squads").
		Set("captain_public_id", record.CaptainID).
		Set("vice_captain_public_id", record.ViceCaptainID).
		Set("updated_at", record.UpdatedAt).
		Where(
			qb.Eq("public_id", record.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update squad query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update squad: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read update squad result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update squad: squad %s not found", record.ID)
	}

	if err := r.replaceMembers(ctx, tx, record); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit squad update tx: %w", err)
	}
	return nil
}

// replaceMembers soft-deletes the live member rows and reinserts the
// selection, slot by slot, so the stored order mirrors the draft order.
func (r *SquadRepository) replaceMembers(ctx context.Context, tx *sqlx.Tx, record draft.Record) error {
	const clearMembersQuery = `
UPDATE squad_members
SET deleted_at = NOW()
WHERE squad_public_id = :squad_public_id
  AND deleted_at IS NULL`
	clearSQL, clearArgs, err := sqlx.Named(clearMembersQuery, map[string]any{
		"squad_public_id": record.ID,
	})
	if err != nil {
		return fmt.Errorf("bind clear squad members query: %w", err)
	}
	clearSQL = tx.Rebind(clearSQL)
	if _, err := tx.ExecContext(ctx, clearSQL, clearArgs...); err != nil {
		return fmt.Errorf("soft delete existing squad members: %w", err)
	}

	starters := make(map[string]struct{}, len(record.StarterIDs))
	for _, id := range record.StarterIDs {
		starters[id] = struct{}{}
	}

	for slot, athleteID := range record.AthleteIDs {
		_, isStarter := starters[athleteID]
		model := squadMemberInsertModel{
			SquadID:   record.ID,
			AthleteID: athleteID,
			IsStarter: isStarter,
			Slot:      slot,
		}

		query, args, err := qb.InsertModel("squad_members", model, `ON CONFLICT (squad_public_id, athlete_public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    is_starter = EXCLUDED.is_starter,
    slot = EXCLUDED.slot,
    updated_at = NOW(),
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert squad member athlete=%s query: %w", athleteID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert squad member athlete=%s: %w", athleteID, err)
		}
	}

	return nil
}

func (r *SquadRepository) listMembers(ctx context.Context, squadIDs []string) (map[string][]squadMemberTableModel, error) {
	query, args, err := qb.Select(squadMemberSelectColumns...).From("squad_members").
		Where(
			qb.In("squad_public_id", stringSliceToAny(squadIDs)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("squad_public_id", "slot").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select squad members query: %w", err)
	}

	var rows []squadMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select squad members: %w", err)
	}

	out := make(map[string][]squadMemberTableModel, len(squadIDs))
	for _, row := range rows {
		out[row.SquadID] = append(out[row.SquadID], row)
	}

	return out, nil
}

func squadRowToRecord(header squadTableModel, members []squadMemberTableModel) draft.Record {
	athleteIDs := make([]string, 0, len(members))
	starterIDs := make([]string, 0, len(members))
	for _, member := range members {
		athleteIDs = append(athleteIDs, member.AthleteID)
		if member.IsStarter {
			starterIDs = append(starterIDs, member.AthleteID)
		}
	}

	return draft.Record{
		ID:            header.PublicID,
		UserID:        header.UserID,
		GameweekID:    header.Gameweek,
		AthleteIDs:    athleteIDs,
		StarterIDs:    starterIDs,
		CaptainID:     header.CaptainID,
		ViceCaptainID: header.ViceCaptainID,
		CreatedAt:     header.CreatedAt,
		UpdatedAt:     header.UpdatedAt,
	}
}
