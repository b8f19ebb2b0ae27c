package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/playoff-pool/internal/config"
	"github.com/riskibarqy/playoff-pool/internal/domain/jobscheduler"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playoff"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/domain/stats"
	"github.com/riskibarqy/playoff-pool/internal/domain/usedplayers"
	"github.com/riskibarqy/playoff-pool/internal/domain/user"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

const (
	dbMaxOpenConns    = 20
	dbMaxIdleConns    = 10
	dbConnMaxLifetime = 30 * time.Minute
	dbConnMaxIdleTime = 5 * time.Minute
	dbPingTimeout     = 5 * time.Second
)

type repositories struct {
	player     player.Repository
	playoff    playoff.Repository
	roster     roster.Repository
	used       usedplayers.Repository
	stats      stats.Repository
	scoring    scoring.Repository
	users      user.Repository
	dispatches jobscheduler.Repository

	close func(context.Context) error
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	if cfg.UseMemoryStore || cfg.DBURL == "" {
		logger.Warn("using in-memory store, data is lost on restart")
		return memoryRepositories(), nil
	}

	dsn := DatabaseURL(cfg)
	if cfg.DBAutoMigrate {
		if err := migrateUp(dsn, logger); err != nil {
			return repositories{}, err
		}
	}

	conn, err := openDB(ctx, dsn)
	if err != nil {
		return repositories{}, err
	}
	if cfg.DBBootstrapSeed {
		if err := postgres.BootstrapSeed(ctx, conn); err != nil {
			_ = conn.Close()
			return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
		}
		logger.Info("bootstrap seed applied")
	}

	return repositories{
		player:     postgres.NewPlayerRepository(conn),
		playoff:    postgres.NewPlayoffRepository(conn),
		roster:     postgres.NewRosterRepository(conn),
		used:       postgres.NewUsedPlayersRepository(conn),
		stats:      postgres.NewStatsRepository(conn),
		scoring:    postgres.NewScoringRepository(conn),
		users:      postgres.NewUserRepository(conn),
		dispatches: postgres.NewJobDispatchRepository(conn),
		close: func(context.Context) error {
			return conn.Close()
		},
	}, nil
}

func memoryRepositories() repositories {
	return repositories{
		player:     memory.NewPlayerRepository(memory.SeedPlayers()),
		playoff:    memory.NewPlayoffRepository(memory.SeedPlayoffConfigs()),
		roster:     memory.NewRosterRepository(),
		used:       memory.NewUsedPlayersRepository(),
		stats:      memory.NewStatsRepository(),
		scoring:    memory.NewScoringRepository(),
		users:      memory.NewUserRepository(memory.SeedUsers()),
		dispatches: memory.NewJobDispatchRepository(),
	}
}

func openDB(ctx context.Context, dsn string) (*sqlx.DB, error) {
	conn, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	otelsql.ReportDBStatsMetrics(conn.DB)

	conn.SetMaxOpenConns(dbMaxOpenConns)
	conn.SetMaxIdleConns(dbMaxIdleConns)
	conn.SetConnMaxLifetime(dbConnMaxLifetime)
	conn.SetConnMaxIdleTime(dbConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return conn, nil
}
