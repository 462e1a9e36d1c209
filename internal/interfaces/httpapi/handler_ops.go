package httpapi

import (
	"net/http"

	"github.com/riskibarqy/squad-builder/internal/usecase"
)

// RunCatalogSync pulls the full team and athlete catalog from the stat feed
// and upserts it. Guarded by the internal ops token.
func (h *Handler) RunCatalogSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCatalogSync")
	defer span.End()

	report, err := h.syncService.SyncCatalog(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "catalog sync failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "catalog sync finished",
		"teams", report.Teams,
		"athletes", report.Athletes,
		"skipped_teams", report.SkippedTeams,
		"skipped_athletes", report.SkippedAthletes,
	)
	writeSuccess(ctx, w, http.StatusOK, syncReportToDTO(report))
}

// RunRevalidate re-runs the squad rules over every committed squad of a
// gameweek and reports per-squad outcomes.
func (h *Handler) RunRevalidate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRevalidate")
	defer span.End()

	var req revalidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.auditService.RevalidateGameweek(ctx, usecase.AuditInput{
		GameweekID: req.GameweekID,
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "gameweek revalidation failed", "gameweek_id", req.GameweekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
