package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/playoff-pool/external/espn"
	"github.com/riskibarqy/playoff-pool/external/jobqueue"
	"github.com/riskibarqy/playoff-pool/internal/config"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/account/anubis"
	cacherepo "github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/playoff-pool/internal/interfaces/httpapi"
	"github.com/riskibarqy/playoff-pool/internal/platform/cache"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
	"github.com/riskibarqy/playoff-pool/internal/platform/resilience"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// App owns the HTTP server, the optional live poller and the resources
// released on shutdown.
type App struct {
	Server *http.Server
	Poller *usecase.LivePoller

	logger  *logging.Logger
	closers []namedCloser
}

type namedCloser struct {
	name string
	fn   func(context.Context) error
}

// lockSchedulerFunc lets the playoff service schedule deadline locks through
// the job service, which is built after it.
type lockSchedulerFunc func(ctx context.Context, week int, at time.Time) error

func (f lockSchedulerFunc) ScheduleWeekLock(ctx context.Context, week int, at time.Time) error {
	return f(ctx, week, at)
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	app := &App{logger: logger}
	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if repos.close != nil {
		app.closers = append(app.closers, namedCloser{name: "database", fn: repos.close})
	}

	playerRepo := repos.player
	if cfg.PlayerCacheTTL > 0 {
		playerRepo = cacherepo.NewPlayerRepository(repos.player, cache.NewStore(cfg.PlayerCacheTTL))
	}

	espnClient := espn.NewClient(espn.ClientConfig{
		BaseURL:        cfg.ESPNBaseURL,
		Timeout:        cfg.ESPNTimeout,
		Season:         cfg.ESPNSeason,
		SeasonType:     cfg.ESPNSeasonType,
		Logger:         logger,
		CircuitBreaker: cfg.ESPNCircuitBreaker,
		Retry: resilience.RetryConfig{
			MaxAttempts: cfg.ESPNMaxRetries + 1,
			BaseDelay:   resilience.DefaultRetryConfig().BaseDelay,
			MaxDelay:    resilience.DefaultRetryConfig().MaxDelay,
		},
	})
	verifier := anubis.NewClient(anubis.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.AuthTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		BaseURL:        cfg.AuthBaseURL,
		IntrospectPath: cfg.AuthIntrospectPath,
		AdminKey:       cfg.AuthAdminKey,
		CacheTTL:       cfg.AuthCacheTTL,
		CircuitBreaker: cfg.AuthCircuitBreaker,
		Logger:         logger,
	})
	queue, err := buildJobQueue(cfg, logger)
	if err != nil {
		return nil, err
	}

	var jobSvc *usecase.JobService
	scheduler := lockSchedulerFunc(func(ctx context.Context, week int, at time.Time) error {
		return jobSvc.ScheduleWeekLock(ctx, week, at)
	})

	playoffSvc := usecase.NewPlayoffService(repos.playoff, scheduler, logger.Component("playoff"))
	playerSvc := usecase.NewPlayerService(playerRepo, espnClient, playoffSvc, usecase.PlayerServiceConfig{
		SyncConcurrency: cfg.SyncConcurrency,
	}, logger.Component("player"))
	scoringSvc := usecase.NewScoringRulesService(repos.scoring, cache.NewStore(cfg.RulesCacheTTL), logger.Component("scoring_rules"))
	rosterSvc := usecase.NewRosterService(repos.roster, repos.used, playerRepo, repos.playoff, repos.users, usecase.RosterServiceConfig{
		BulkWorkers: cfg.BulkLockWorkers,
	}, logger.Component("roster"))
	standingsSvc := usecase.NewStandingsService(repos.roster, repos.stats, repos.users, playerRepo, scoringSvc, playoffSvc, logger.Component("standings"))
	statSyncSvc := usecase.NewStatSyncService(espnClient, repos.stats, playerRepo, standingsSvc, usecase.StatSyncConfig{
		Concurrency: cfg.SyncConcurrency,
	}, logger.Component("stat_sync"))
	userSvc := usecase.NewUserService(repos.users, logger.Component("user"))
	jobSvc = usecase.NewJobService(queue, repos.dispatches, rosterSvc, statSyncSvc, logger.Component("jobs"))

	handler := httpapi.NewHandler(playoffSvc, playerSvc, rosterSvc, standingsSvc, scoringSvc, statSyncSvc, userSvc, jobSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminUserIDs:       cfg.AdminUserIDs,
		InternalJobToken:   cfg.InternalJobToken,
	})

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if cfg.LivePollEnabled {
		app.Poller = usecase.NewLivePoller(statSyncSvc, rosterSvc, playoffSvc, cfg.LivePollInterval, logger.Component("live_poller"))
	}

	return app, nil
}

func buildJobQueue(cfg config.Config, logger *logging.Logger) (usecase.JobQueue, error) {
	if !cfg.QStashEnabled {
		logger.Info("qstash disabled, deadline locks rely on the live poller sweep")
		return usecase.NewNoopJobQueue(), nil
	}

	publisher, err := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker:   cfg.QStashCircuitBreaker,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build qstash publisher: %w", err)
	}
	return publisher, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			a.logger.WarnContext(ctx, "close resource failed", "resource", c.name, "error", err)
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}
