package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Readyz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicCatalogRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/athletes", handler.ListAthletes)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
}

func registerAuthorizedDraftRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/drafts/{gameweekID}", RequireAuth(verifier, http.HandlerFunc(handler.OpenDraft)))
	mux.Handle("GET /v1/drafts/{gameweekID}", RequireAuth(verifier, http.HandlerFunc(handler.GetDraft)))
	mux.Handle("DELETE /v1/drafts/{gameweekID}", RequireAuth(verifier, http.HandlerFunc(handler.DiscardDraft)))

	mux.Handle("POST /v1/drafts/{gameweekID}/athletes", RequireAuth(verifier, http.HandlerFunc(handler.AddAthlete)))
	mux.Handle("DELETE /v1/drafts/{gameweekID}/athletes/{athleteID}", RequireAuth(verifier, http.HandlerFunc(handler.RemoveAthlete)))
	mux.Handle("POST /v1/drafts/{gameweekID}/starters", RequireAuth(verifier, http.HandlerFunc(handler.PromoteStarter)))
	mux.Handle("DELETE /v1/drafts/{gameweekID}/starters/{athleteID}", RequireAuth(verifier, http.HandlerFunc(handler.DemoteStarter)))
	mux.Handle("PUT /v1/drafts/{gameweekID}/captain", RequireAuth(verifier, http.HandlerFunc(handler.SetCaptain)))
	mux.Handle("PUT /v1/drafts/{gameweekID}/vice-captain", RequireAuth(verifier, http.HandlerFunc(handler.SetViceCaptain)))

	mux.Handle("POST /v1/drafts/{gameweekID}/candidate", RequireAuth(verifier, http.HandlerFunc(handler.AcceptCandidate)))
	mux.Handle("POST /v1/drafts/{gameweekID}/validation", RequireAuth(verifier, http.HandlerFunc(handler.ValidateDraft)))
	mux.Handle("POST /v1/drafts/{gameweekID}/commit", RequireAuth(verifier, http.HandlerFunc(handler.CommitDraft)))

	mux.Handle("GET /v1/squads/{gameweekID}", RequireAuth(verifier, http.HandlerFunc(handler.GetCommittedSquad)))
}

func registerInternalOpsRoutes(mux *http.ServeMux, handler *Handler, internalOpsToken string) {
	mux.Handle("POST /v1/internal/ops/catalog-sync", RequireInternalOpsToken(internalOpsToken, http.HandlerFunc(handler.RunCatalogSync)))
	mux.Handle("POST /v1/internal/ops/revalidate", RequireInternalOpsToken(internalOpsToken, http.HandlerFunc(handler.RunRevalidate)))
}
