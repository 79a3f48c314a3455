package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	policyengine "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine"
	accessevents "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/adapters/events"
	accesspostgres "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/adapters/postgres"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/application/workers"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/entities"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"
	"github.com/shravan-hub/arkavo-node/internal/platform/config"
	"github.com/shravan-hub/arkavo-node/internal/platform/db"
	"github.com/shravan-hub/arkavo-node/internal/platform/httpserver"
	"github.com/shravan-hub/arkavo-node/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	auditRelay   workers.AuditRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if strings.TrimSpace(cfg.GenesisPath) == "" {
		return nil, errors.New("GENESIS_PATH is required")
	}

	genesis, err := config.LoadGenesis(cfg.GenesisPath)
	if err != nil {
		return nil, err
	}
	owner, err := valueobjects.NewPrincipal(genesis.Owner)
	if err != nil {
		return nil, err
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	repo := accesspostgres.NewRepository(pg.DB, logger)
	if err := repo.Migrate(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}
	firstBoot, err := repo.EnsureOwner(ctx, owner)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	module := policyengine.NewModule(policyengine.Dependencies{
		Repository:  repo,
		Heights:     repo,
		Clock:       accesspostgres.SystemClock{},
		IDGenerator: accesspostgres.UUIDGenerator{},
		Logger:      logger,
	})

	if firstBoot {
		if err := seedGenesis(ctx, module, owner, genesis); err != nil {
			_ = pg.Close()
			return nil, err
		}
		logger.Info("genesis state seeded",
			"event", "bootstrap_genesis_seeded",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"owner", owner.String(),
			"anchors", len(genesis.Anchors),
			"entitlements", len(genesis.Entitlements),
		)
	}

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

// seedGenesis replays the genesis grants as owner-called operations so they
// flow through the same guards and audit trail as any runtime call.
func seedGenesis(
	ctx context.Context,
	module policyengine.Module,
	owner valueobjects.Principal,
	genesis config.Genesis,
) error {
	for _, raw := range genesis.Anchors {
		anchor, err := valueobjects.NewPrincipal(raw)
		if err != nil {
			return err
		}
		if err := module.Service.AddAnchor(ctx, owner, anchor); err != nil {
			return err
		}
	}
	for rawAccount, rawLevel := range genesis.Entitlements {
		account, err := valueobjects.NewPrincipal(rawAccount)
		if err != nil {
			return err
		}
		level, err := entities.ParseEntitlementLevel(rawLevel)
		if err != nil {
			return err
		}
		if err := module.Service.GrantEntitlement(ctx, owner, account, level); err != nil {
			return err
		}
	}
	return nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	repo := accesspostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		auditRelay: workers.AuditRelay{
			Outbox:    repo,
			Publisher: accessevents.NewPublisher(kafka, logger),
			Clock:     accesspostgres.SystemClock{},
			BatchSize: cfg.AuditRelayBatchSize,
			Logger:    logger,
		},
		pollInterval: cfg.AuditRelayPollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.auditRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
