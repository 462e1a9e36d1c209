package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	"github.com/riskibarqy/squad-builder/internal/domain/draft"
	idgen "github.com/riskibarqy/squad-builder/internal/platform/id"
)

// DraftView is the draft state handed back after every builder operation.
type DraftView struct {
	Snapshot draft.Snapshot
	Summary  draft.Summary
	Selected []athlete.Athlete
}

// DraftService drives the squad builder: it owns the live sessions, routes
// every edit through the squad's transition rules, and commits validated
// drafts through the persistence gateway.
type DraftService struct {
	athleteRepo athlete.Repository
	squadRepo   draft.Repository
	generator   draft.CandidateGenerator
	sessions    draft.SessionStore
	rules       draft.Rules
	idGen       idgen.Generator
	logger      *slog.Logger
	now         func() time.Time
}

func NewDraftService(
	athleteRepo athlete.Repository,
	squadRepo draft.Repository,
	generator draft.CandidateGenerator,
	sessions draft.SessionStore,
	rules draft.Rules,
	idGen idgen.Generator,
	logger *slog.Logger,
) *DraftService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DraftService{
		athleteRepo: athleteRepo,
		squadRepo:   squadRepo,
		generator:   generator,
		sessions:    sessions,
		rules:       rules,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// OpenDraft starts a builder session for the gameweek. Without fresh it
// resumes a live session when one exists, otherwise hydrates from the
// committed squad; fresh always starts empty. The new session replaces any
// previous one for the same user and gameweek.
func (s *DraftService) OpenDraft(ctx context.Context, userID string, gameweekID int, fresh bool) (DraftView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.OpenDraft")
	defer span.End()

	userID, err := normalizeDraftKey(userID, gameweekID)
	if err != nil {
		return DraftView{}, err
	}

	if !fresh {
		if sess, ok := s.sessions.Get(userID, gameweekID); ok {
			return viewOf(sess), nil
		}
	}

	squad := draft.NewSquad(gameweekID, s.rules)
	hydrated := false
	if !fresh {
		record, exists, err := s.squadRepo.GetByUserAndGameweek(ctx, userID, gameweekID)
		if err != nil {
			return DraftView{}, fmt.Errorf("get committed squad: %w", err)
		}
		if exists {
			squad, err = s.resolveSnapshot(ctx, record.Snapshot())
			if err != nil {
				return DraftView{}, err
			}
			hydrated = true
		}
	}

	sess := s.sessions.Put(userID, gameweekID, squad)
	s.logger.InfoContext(ctx, "draft session opened",
		"user_id", userID,
		"gameweek_id", gameweekID,
		"hydrated", hydrated,
	)

	return viewOf(sess), nil
}

// GetDraft returns the live session state, or ErrNotFound when the user has
// no open session for the gameweek.
func (s *DraftService) GetDraft(ctx context.Context, userID string, gameweekID int) (DraftView, error) {
	_, span := startUsecaseSpan(ctx, "usecase.DraftService.GetDraft")
	defer span.End()

	sess, _, err := s.liveSession(userID, gameweekID)
	if err != nil {
		return DraftView{}, err
	}

	return viewOf(sess), nil
}

// DiscardDraft drops the live session. Discarding an absent session is a
// no-op; the committed squad is untouched.
func (s *DraftService) DiscardDraft(ctx context.Context, userID string, gameweekID int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.DiscardDraft")
	defer span.End()

	userID, err := normalizeDraftKey(userID, gameweekID)
	if err != nil {
		return err
	}

	s.sessions.Delete(userID, gameweekID)
	s.logger.InfoContext(ctx, "draft session discarded",
		"user_id", userID,
		"gameweek_id", gameweekID,
	)

	return nil
}

// AddAthlete puts a catalog athlete into the draft selection.
func (s *DraftService) AddAthlete(ctx context.Context, userID string, gameweekID int, athleteID string) (DraftView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.AddAthlete")
	defer span.End()

	sess, _, err := s.liveSession(userID, gameweekID)
	if err != nil {
		return DraftView{}, err
	}

	athleteID = strings.TrimSpace(athleteID)
	if athleteID == "" {
		return DraftView{}, fmt.Errorf("%w: athlete id is required", ErrInvalidInput)
	}

	items, err := s.athleteRepo.GetByIDs(ctx, []string{athleteID})
	if err != nil {
		return DraftView{}, fmt.Errorf("get athlete by id: %w", err)
	}
	if len(items) == 0 {
		return DraftView{}, fmt.Errorf("%w: athlete=%s", ErrNotFound, athleteID)
	}

	return s.applyEdit(sess, func(sq *draft.Squad) error {
		return sq.Add(items[0])
	})
}

// RemoveAthlete drops an athlete from the selection, cascading it out of the
// lineup and leadership roles.
func (s *DraftService) RemoveAthlete(ctx context.Context, userID string, gameweekID int, athleteID string) (DraftView, error) {
	_, span := startUsecaseSpan(ctx, "usecase.DraftService.RemoveAthlete")
	defer span.End()

	sess, _, err := s.liveSession(userID, gameweekID)
	if err != nil {
		return DraftView{}, err
	}

	return s.applyEdit(sess, func(sq *draft.Squad) error {
		sq.Remove(strings.TrimSpace(athleteID))
		return nil
	})
}

// PromoteStarter moves a selected athlete into the starting lineup.
func (s *DraftService) PromoteStarter(ctx context.Context, userID string, gameweekID int, athleteID string) (DraftView, error) {
	_, span := startUsecaseSpan(ctx, "usecase.DraftService.PromoteStarter")
	defer span.End()

	sess, _, err := s.liveSession(userID, gameweekID)
	if err != nil {
		return DraftView{}, err
	}

	return s.applyEdit(sess, func(sq *draft.Squad) error {
		return sq.Promote(strings.TrimSpace(athleteID))
	})
}

// DemoteStarter moves a starter back to the bench.
func (s *DraftService) DemoteStarter(ctx context.Context, userID string, gameweekID int, athleteID string) (DraftView, error) {
	_, span := startUsecaseSpan(ctx, "usecase.DraftService.DemoteStarter")
	defer span.End()

	sess, _, err := s.liveSession(userID, gameweekID)
	if err != nil {
		return DraftView{}, err
	}

	return s.applyEdit(sess, func(sq *draft.Squad) error {
		sq.Demote(strings.TrimSpace(athleteID))
		return nil
	})
}

// SetCaptain assigns the captaincy to a starter.
func (s *DraftService) SetCaptain(ctx context.Context, userID string, gameweekID int, athleteID string) (DraftView, error) {
	_, span := startUsecaseSpan(ctx, "usecase.DraftService.SetCaptain")
	defer span.End()

	sess, _, err := s.liveSession(userID, gameweekID)
	if err != nil {
		return DraftView{}, err
	}

	return s.applyEdit(sess, func(sq *draft.Squad) error {
		return sq.SetCaptain(strings.TrimSpace(athleteID))
	})
}

// SetViceCaptain assigns the vice-captaincy to a starter.
func (s *DraftService) SetViceCaptain(ctx context.Context, userID string, gameweekID int, athleteID string) (DraftView, error) {
	_, span := startUsecaseSpan(ctx, "usecase.DraftService.SetViceCaptain")
	defer span.End()

	sess, _, err := s.liveSession(userID, gameweekID)
	if err != nil {
		return DraftView{}, err
	}

	return s.applyEdit(sess, func(sq *draft.Squad) error {
		return sq.SetViceCaptain(strings.TrimSpace(athleteID))
	})
}

// ValidateDraft runs the full rule set against the live session and returns
// the exhaustive report. It never persists anything.
func (s *DraftService) ValidateDraft(ctx context.Context, userID string, gameweekID int) (draft.Report, error) {
	_, span := startUsecaseSpan(ctx, "usecase.DraftService.ValidateDraft")
	defer span.End()

	sess, _, err := s.liveSession(userID, gameweekID)
	if err != nil {
		return draft.Report{}, err
	}

	var report draft.Report
	sess.View(func(sq *draft.Squad) {
		report = sq.Validate()
	})

	return report, nil
}

// AcceptCandidate fetches a machine-generated candidate and replaces the live
// session draft with it. A candidate referencing athletes missing from the
// catalog is rejected wholesale as a transient dependency failure; the
// current draft stays untouched.
func (s *DraftService) AcceptCandidate(ctx context.Context, userID string, gameweekID int) (DraftView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.AcceptCandidate")
	defer span.End()

	userID, err := normalizeDraftKey(userID, gameweekID)
	if err != nil {
		return DraftView{}, err
	}
	if _, ok := s.sessions.Get(userID, gameweekID); !ok {
		return DraftView{}, fmt.Errorf("%w: no draft session for gameweek=%d", ErrNotFound, gameweekID)
	}

	snap, err := s.generator.Generate(ctx, userID, gameweekID)
	if err != nil {
		return DraftView{}, fmt.Errorf("%w: generate candidate: %v", ErrDependencyUnavailable, err)
	}
	// Candidates are bound to the session's gameweek no matter what the
	// generator reports.
	snap.GameweekID = gameweekID

	squad, err := s.resolveSnapshot(ctx, snap)
	if err != nil {
		return DraftView{}, err
	}

	sess := s.sessions.Put(userID, gameweekID, squad)
	s.logger.InfoContext(ctx, "draft candidate accepted",
		"user_id", userID,
		"gameweek_id", gameweekID,
		"athlete_count", len(snap.AthleteIDs),
	)

	return viewOf(sess), nil
}

// CommitDraft validates the live session with the commit-only role checks and
// persists it, creating or updating based on a probe of the gateway. On
// validation failure the report is returned alongside ErrInvalidInput and
// nothing is persisted.
func (s *DraftService) CommitDraft(ctx context.Context, userID string, gameweekID int) (draft.Record, draft.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.CommitDraft")
	defer span.End()

	sess, userID, err := s.liveSession(userID, gameweekID)
	if err != nil {
		return draft.Record{}, draft.Report{}, err
	}

	var (
		snap   draft.Snapshot
		report draft.Report
	)
	sess.View(func(sq *draft.Squad) {
		snap = sq.Snapshot()
		report = sq.ValidateForCommit()
	})

	if !report.IsValid() {
		return draft.Record{}, report, fmt.Errorf("%w: draft failed validation", ErrInvalidInput)
	}

	now := s.now().UTC()
	existing, exists, err := s.squadRepo.GetByUserAndGameweek(ctx, userID, gameweekID)
	if err != nil {
		return draft.Record{}, report, fmt.Errorf("get existing squad: %w", err)
	}

	recordID := existing.ID
	createdAt := existing.CreatedAt
	if !exists {
		recordID, err = s.idGen.NewID()
		if err != nil {
			return draft.Record{}, report, fmt.Errorf("generate squad id: %w", err)
		}
		createdAt = now
	}

	record := draft.Record{
		ID:            recordID,
		UserID:        userID,
		GameweekID:    gameweekID,
		AthleteIDs:    snap.AthleteIDs,
		StarterIDs:    snap.StarterIDs,
		CaptainID:     snap.CaptainID,
		ViceCaptainID: snap.ViceCaptainID,
		CreatedAt:     createdAt,
		UpdatedAt:     now,
	}
	if err := record.ValidateBasic(); err != nil {
		return draft.Record{}, report, fmt.Errorf("validate squad record: %w", err)
	}

	if exists {
		err = s.squadRepo.Update(ctx, record)
	} else {
		err = s.squadRepo.Create(ctx, record)
	}
	if err != nil {
		return draft.Record{}, report, fmt.Errorf("persist squad: %w", err)
	}

	s.logger.InfoContext(ctx, "squad committed",
		"user_id", userID,
		"gameweek_id", gameweekID,
		"squad_id", record.ID,
		"athlete_count", len(record.AthleteIDs),
		"created", !exists,
	)

	return record, report, nil
}

// GetCommittedSquad reads the persisted squad for the gameweek.
func (s *DraftService) GetCommittedSquad(ctx context.Context, userID string, gameweekID int) (draft.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.GetCommittedSquad")
	defer span.End()

	userID, err := normalizeDraftKey(userID, gameweekID)
	if err != nil {
		return draft.Record{}, err
	}

	record, exists, err := s.squadRepo.GetByUserAndGameweek(ctx, userID, gameweekID)
	if err != nil {
		return draft.Record{}, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return draft.Record{}, fmt.Errorf("%w: squad not found for gameweek=%d", ErrNotFound, gameweekID)
	}

	return record, nil
}

// resolveSnapshot loads every athlete the snapshot references and rebuilds
// the squad. Dangling ids surface as ErrDependencyUnavailable so callers can
// retry once the catalog catches up.
func (s *DraftService) resolveSnapshot(ctx context.Context, snap draft.Snapshot) (*draft.Squad, error) {
	ids := snap.ReferencedIDs()
	items, err := s.athleteRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get athletes by ids: %w", err)
	}

	catalog := make(map[string]athlete.Athlete, len(items))
	for _, a := range items {
		catalog[a.ID] = a
	}

	squad, err := draft.FromSnapshot(snap, catalog, s.rules)
	if err != nil {
		if errors.Is(err, draft.ErrUnresolvedAthlete) {
			return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
		}
		return nil, fmt.Errorf("rebuild squad from snapshot: %w", err)
	}

	return squad, nil
}

// applyEdit runs one transition and returns the post-edit state computed
// under the same lock. Structural rejections surface as ErrConflict with the
// transition's reason preserved.
func (s *DraftService) applyEdit(sess draft.Session, edit func(*draft.Squad) error) (DraftView, error) {
	var view DraftView
	err := sess.Update(func(sq *draft.Squad) error {
		if err := edit(sq); err != nil {
			return err
		}
		view = snapshotView(sq)
		return nil
	})
	if err != nil {
		return DraftView{}, fmt.Errorf("%w: %w", ErrConflict, err)
	}

	return view, nil
}

func (s *DraftService) liveSession(userID string, gameweekID int) (draft.Session, string, error) {
	userID, err := normalizeDraftKey(userID, gameweekID)
	if err != nil {
		return nil, "", err
	}

	sess, ok := s.sessions.Get(userID, gameweekID)
	if !ok {
		return nil, "", fmt.Errorf("%w: no draft session for gameweek=%d", ErrNotFound, gameweekID)
	}

	return sess, userID, nil
}

func normalizeDraftKey(userID string, gameweekID int) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if gameweekID <= 0 {
		return "", fmt.Errorf("%w: gameweek id must be greater than zero", ErrInvalidInput)
	}
	return userID, nil
}

func viewOf(sess draft.Session) DraftView {
	var view DraftView
	sess.View(func(sq *draft.Squad) {
		view = snapshotView(sq)
	})
	return view
}

func snapshotView(sq *draft.Squad) DraftView {
	return DraftView{
		Snapshot: sq.Snapshot(),
		Summary:  sq.Summary(),
		Selected: sq.Selected(),
	}
}
