// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - Web mode: Submission form, analysis result and fact-check detail pages
//     served together with health and metrics endpoints
//   - Migrate mode: Applies the Postgres schema for the snapshot store
package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/fakenews-web/internal/analysis"
	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
	"github.com/lueurxax/fakenews-web/internal/core/ports"
	"github.com/lueurxax/fakenews-web/internal/platform/config"
	"github.com/lueurxax/fakenews-web/internal/platform/observability"
	"github.com/lueurxax/fakenews-web/internal/snapshot"
	db "github.com/lueurxax/fakenews-web/internal/storage"
	"github.com/lueurxax/fakenews-web/internal/submission"
	"github.com/lueurxax/fakenews-web/internal/web"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

const sessionSecretBytes = 32

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg    *config.Config
	logger *zerolog.Logger
}

// New creates an application for cfg.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// RunWeb serves the web frontend until ctx is canceled.
func (a *App) RunWeb(ctx context.Context) error {
	store, closeStore, err := a.openSlotStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	evidence := snapshot.NewEvidence(store)
	analyzer := analysis.NewClient(a.cfg.AnalysisURL, a.cfg.AnalysisTimeout, a.cfg.AnalysisRPS)
	controller := submission.NewController(analyzer, a.logger)
	sessions := web.NewSessionService(a.sessionSecret(), a.cfg.SessionTTL)

	handler, err := web.NewHandler(a.cfg, controller, evidence, sessions, a.logger)
	if err != nil {
		return fmt.Errorf("web handler initialization failed: %w", err)
	}

	observability.BuildInfo.WithLabelValues(Version, a.cfg.SnapshotBackend).Set(1)
	observability.StartTime.Set(float64(time.Now().Unix()))

	a.logger.Info().
		Str("analysis_url", a.cfg.AnalysisURL).
		Str("snapshot_backend", a.cfg.SnapshotBackend).
		Msg("starting web frontend")

	srv := observability.NewServerWithHandler(evidence, a.cfg.HTTPPort, handler.Routes(), a.logger)

	return srv.Start(ctx)
}

// Migrate applies the snapshot schema. It is a no-op for non-Postgres backends.
func (a *App) Migrate(ctx context.Context) error {
	if a.cfg.SnapshotBackend != config.SnapshotBackendPostgres {
		a.logger.Info().Str("snapshot_backend", a.cfg.SnapshotBackend).Msg("no migrations for snapshot backend")

		return nil
	}

	database, err := a.connectDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	a.logger.Info().Msg("migrations applied")

	return nil
}

// openSlotStore connects the configured snapshot backend.
func (a *App) openSlotStore(ctx context.Context) (ports.SlotStore, func(), error) {
	switch a.cfg.SnapshotBackend {
	case config.SnapshotBackendMemory:
		return snapshot.NewMemoryStore(), func() {}, nil
	case config.SnapshotBackendRedis:
		store, err := snapshot.NewRedisStore(a.cfg.RedisURL, a.cfg.SnapshotTTL)
		if err != nil {
			return nil, nil, err
		}

		return store, func() {
			if err := store.Close(); err != nil {
				a.logger.Warn().Err(err).Msg("failed to close redis client")
			}
		}, nil
	case config.SnapshotBackendPostgres:
		database, err := a.connectDB(ctx)
		if err != nil {
			return nil, nil, err
		}

		if err := database.Migrate(ctx); err != nil {
			database.Close()

			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		return database, database.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownBackend, a.cfg.SnapshotBackend)
	}
}

func (a *App) connectDB(ctx context.Context) (*db.DB, error) {
	poolOpts := db.PoolOptions{
		MaxConns:          a.cfg.DBMaxConnections,
		MinConns:          a.cfg.DBMinConnections,
		MaxConnIdleTime:   a.cfg.DBMaxConnIdleTime,
		MaxConnLifetime:   a.cfg.DBMaxConnLifetime,
		HealthCheckPeriod: a.cfg.DBHealthCheckPeriod,
	}

	database, err := db.NewWithOptions(ctx, a.cfg.PostgresDSN, poolOpts, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return database, nil
}

// sessionSecret returns the configured secret or a random one. Sessions signed
// with a random secret do not survive a restart.
func (a *App) sessionSecret() string {
	if a.cfg.SessionSecret != "" {
		return a.cfg.SessionSecret
	}

	buf := make([]byte, sessionSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		a.logger.Fatal().Err(err).Msg("failed to generate session secret")
	}

	a.logger.Warn().Msg("SESSION_SECRET is not set, using a random secret for this process")

	return base64.RawURLEncoding.EncodeToString(buf)
}
