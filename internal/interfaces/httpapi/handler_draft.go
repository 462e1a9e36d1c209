package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/squad-builder/internal/usecase"
)

func (h *Handler) OpenDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OpenDraft")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req openDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.draftService.OpenDraft(ctx, principal.UserID, gameweekID, req.Fresh)
	if err != nil {
		h.logger.WarnContext(ctx, "open draft failed", "user_id", principal.UserID, "gameweek_id", gameweekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, draftViewToDTO(view))
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDraft")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.draftService.GetDraft(ctx, principal.UserID, gameweekID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftViewToDTO(view))
}

func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DiscardDraft")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.draftService.DiscardDraft(ctx, principal.UserID, gameweekID); err != nil {
		h.logger.WarnContext(ctx, "discard draft failed", "user_id", principal.UserID, "gameweek_id", gameweekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, nil)
}

func (h *Handler) AddAthlete(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddAthlete")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req draftAthleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.draftService.AddAthlete(ctx, principal.UserID, gameweekID, req.AthleteID)
	if err != nil {
		h.logger.WarnContext(ctx, "add athlete failed", "user_id", principal.UserID, "gameweek_id", gameweekID, "athlete_id", req.AthleteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftViewToDTO(view))
}

func (h *Handler) RemoveAthlete(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveAthlete")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	athleteID := strings.TrimSpace(r.PathValue("athleteID"))
	view, err := h.draftService.RemoveAthlete(ctx, principal.UserID, gameweekID, athleteID)
	if err != nil {
		h.logger.WarnContext(ctx, "remove athlete failed", "user_id", principal.UserID, "gameweek_id", gameweekID, "athlete_id", athleteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftViewToDTO(view))
}

func (h *Handler) PromoteStarter(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PromoteStarter")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req draftAthleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.draftService.PromoteStarter(ctx, principal.UserID, gameweekID, req.AthleteID)
	if err != nil {
		h.logger.WarnContext(ctx, "promote starter failed", "user_id", principal.UserID, "gameweek_id", gameweekID, "athlete_id", req.AthleteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftViewToDTO(view))
}

func (h *Handler) DemoteStarter(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DemoteStarter")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	athleteID := strings.TrimSpace(r.PathValue("athleteID"))
	view, err := h.draftService.DemoteStarter(ctx, principal.UserID, gameweekID, athleteID)
	if err != nil {
		h.logger.WarnContext(ctx, "demote starter failed", "user_id", principal.UserID, "gameweek_id", gameweekID, "athlete_id", athleteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftViewToDTO(view))
}

func (h *Handler) SetCaptain(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetCaptain")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req draftAthleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.draftService.SetCaptain(ctx, principal.UserID, gameweekID, req.AthleteID)
	if err != nil {
		h.logger.WarnContext(ctx, "set captain failed", "user_id", principal.UserID, "gameweek_id", gameweekID, "athlete_id", req.AthleteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftViewToDTO(view))
}

func (h *Handler) SetViceCaptain(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetViceCaptain")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req draftAthleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.draftService.SetViceCaptain(ctx, principal.UserID, gameweekID, req.AthleteID)
	if err != nil {
		h.logger.WarnContext(ctx, "set vice captain failed", "user_id", principal.UserID, "gameweek_id", gameweekID, "athlete_id", req.AthleteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftViewToDTO(view))
}

func (h *Handler) AcceptCandidate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AcceptCandidate")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.draftService.AcceptCandidate(ctx, principal.UserID, gameweekID)
	if err != nil {
		h.logger.WarnContext(ctx, "accept candidate failed", "user_id", principal.UserID, "gameweek_id", gameweekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftViewToDTO(view))
}

func (h *Handler) ValidateDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateDraft")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.draftService.ValidateDraft(ctx, principal.UserID, gameweekID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, reportToDTO(report))
}

func (h *Handler) CommitDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CommitDraft")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	record, report, err := h.draftService.CommitDraft(ctx, principal.UserID, gameweekID)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) && !report.IsValid() {
			h.logger.WarnContext(ctx, "draft commit rejected", "user_id", principal.UserID, "gameweek_id", gameweekID, "violations", len(report.Violations))
			writeRuleViolations(ctx, w, report)
			return
		}
		h.logger.WarnContext(ctx, "commit draft failed", "user_id", principal.UserID, "gameweek_id", gameweekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, committedSquadToDTO(record))
}

func (h *Handler) GetCommittedSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCommittedSquad")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameweekID, err := parseGameweekID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	record, err := h.draftService.GetCommittedSquad(ctx, principal.UserID, gameweekID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, committedSquadToDTO(record))
}

func parseGameweekID(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("gameweekID"))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid gameweek id %q", usecase.ErrInvalidInput, raw)
	}
	return id, nil
}

// decodeJSON fills dst from the request body. An absent body decodes as the
// zero request; required-field validation rejects it where a body is
// mandatory.
func decodeJSON(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
