package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	_ "github.com/lib/pq"

	"github.com/riskibarqy/squad-builder/external/draftgen"
	"github.com/riskibarqy/squad-builder/external/statfeed"
	"github.com/riskibarqy/squad-builder/internal/config"
	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	"github.com/riskibarqy/squad-builder/internal/domain/draft"
	"github.com/riskibarqy/squad-builder/internal/domain/team"
	"github.com/riskibarqy/squad-builder/internal/infrastructure/account/anubis"
	cacherepo "github.com/riskibarqy/squad-builder/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/squad-builder/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/squad-builder/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/squad-builder/internal/infrastructure/session"
	"github.com/riskibarqy/squad-builder/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/squad-builder/internal/platform/cache"
	idgen "github.com/riskibarqy/squad-builder/internal/platform/id"
	"github.com/riskibarqy/squad-builder/internal/platform/logging"
	"github.com/riskibarqy/squad-builder/internal/platform/resilience"
	"github.com/riskibarqy/squad-builder/internal/usecase"
)

// NewHTTPServer wires storage, external clients, services, and the router
// into a ready-to-run server. The returned cleanup releases what the wiring
// opened (database pool, session janitor) and runs after the server stops.
func NewHTTPServer(cfg config.Config, logger *logging.Logger, svcLogger *slog.Logger) (*http.Server, func(context.Context) error, error) {
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if svcLogger == nil {
		svcLogger = slog.Default()
	}

	var cleanups []func(context.Context) error
	cleanup := func(ctx context.Context) error {
		var firstErr error
		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i](ctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	teamRepo, athleteRepo, squadRepo, err := buildStorage(cfg, logger, &cleanups)
	if err != nil {
		return nil, nil, err
	}

	sessions := session.NewStore(cfg.SessionTTL)
	cleanups = append(cleanups, func(context.Context) error {
		sessions.Close()
		return nil
	})

	rules := draft.DefaultRules()

	var generator draft.CandidateGenerator
	if cfg.DraftGenEnabled {
		generator = draftgen.NewClient(draftgen.ClientConfig{
			BaseURL: cfg.DraftGenBaseURL,
			APIKey:  cfg.DraftGenAPIKey,
			Timeout: cfg.DraftGenTimeout,
			Logger:  logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.DraftGenCircuitEnabled,
				FailureThreshold: cfg.DraftGenCircuitFailureCount,
				OpenTimeout:      cfg.DraftGenCircuitOpenTimeout,
				ProbeLimit:       cfg.DraftGenCircuitHalfOpenMaxReq,
			},
		})
	} else {
		generator = memory.NewCandidateGenerator(athleteRepo, rules)
		logger.Info("draft generator running locally", "reason", "DRAFTGEN_ENABLED=false")
	}

	feed := statfeed.NewClient(statfeed.ClientConfig{
		BaseURL:    cfg.StatFeedBaseURL,
		Token:      cfg.StatFeedToken,
		Timeout:    cfg.StatFeedTimeout,
		MaxRetries: cfg.StatFeedMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StatFeedCircuitEnabled,
			FailureThreshold: cfg.StatFeedCircuitFailureCount,
			OpenTimeout:      cfg.StatFeedCircuitOpenTimeout,
			ProbeLimit:       cfg.StatFeedCircuitHalfOpenMaxReq,
		},
	})

	verifier := anubis.NewClient(anubis.ClientConfig{
		HTTPClient:      &http.Client{Timeout: cfg.AnubisTimeout},
		BaseURL:         cfg.AnubisBaseURL,
		IntrospectPath:  cfg.AnubisIntrospectPath,
		AdminKey:        cfg.AnubisAdminKey,
		CacheTTL:        cfg.AnubisCacheTTL,
		CacheMaxEntries: cfg.AnubisCacheMaxEntries,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AnubisCircuitEnabled,
			FailureThreshold: cfg.AnubisCircuitFailureCount,
			OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
			ProbeLimit:       cfg.AnubisCircuitHalfOpenMaxReq,
		},
		Logger: logger,
	})

	draftSvc := usecase.NewDraftService(athleteRepo, squadRepo, generator, sessions, rules, idgen.NewRandomGenerator(), svcLogger)
	catalogSvc := usecase.NewCatalogService(athleteRepo, teamRepo)
	syncSvc := usecase.NewCatalogSyncService(feed, teamRepo, athleteRepo, cfg.SyncFetchWorkers, svcLogger)
	auditSvc := usecase.NewAuditService(athleteRepo, squadRepo, rules, cfg.AuditMaxWorkers, svcLogger)

	handler := httpapi.NewHandler(draftSvc, catalogSvc, syncSvc, auditSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalOpsToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, cleanup, nil
}

func buildStorage(cfg config.Config, logger *logging.Logger, cleanups *[]func(context.Context) error) (team.Repository, athlete.Repository, draft.Repository, error) {
	var (
		teamRepo    team.Repository
		athleteRepo athlete.Repository
		squadRepo   draft.Repository
	)

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openPostgres(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		*cleanups = append(*cleanups, func(context.Context) error { return db.Close() })

		teamRepo = postgres.NewTeamRepository(db)
		athleteRepo = postgres.NewAthleteRepository(db)
		squadRepo = postgres.NewSquadRepository(db)

		if cfg.CacheEnabled {
			store := basecache.NewStore(cfg.CacheTTL)
			teamRepo = cacherepo.NewTeamRepository(teamRepo, store)
			athleteRepo = cacherepo.NewAthleteRepository(athleteRepo, store)
			squadRepo = cacherepo.NewSquadRepository(squadRepo, store)
		}

		logger.Info("storage ready",
			"driver", cfg.StorageDriver,
			"database", dbNameFromURL(cfg.DBURL),
			"cache_enabled", cfg.CacheEnabled,
		)
	case config.StorageMemory:
		teamRepo = memory.NewTeamRepository(memory.SeedTeams())
		athleteRepo = memory.NewAthleteRepository(memory.SeedAthletes())
		squadRepo = memory.NewSquadRepository()

		logger.Info("storage ready", "driver", cfg.StorageDriver, "seeded", true)
	default:
		return nil, nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	return teamRepo, athleteRepo, squadRepo, nil
}

func openPostgres(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	opts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dbNameFromURL(cfg.DBURL); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Connect("postgres", dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
