package httpapi

import "net/http"

func (h *Handler) ListAthletes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAthletes")
	defer span.End()

	athletes, err := h.catalogService.ListAthletes(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list athletes failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]athleteDTO, 0, len(athletes))
	for _, a := range athletes {
		items = append(items, athleteToDTO(a))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.catalogService.ListTeams(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
