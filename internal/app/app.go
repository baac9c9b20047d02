// Package app wires configuration, the provider client, storage and
// the pipeline services into one runnable application.
package app

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	_ "github.com/lib/pq"

	"github.com/GGarrido28/dk-scraper/external/draftkings"
	"github.com/GGarrido28/dk-scraper/internal/config"
	"github.com/GGarrido28/dk-scraper/internal/infrastructure/download"
	"github.com/GGarrido28/dk-scraper/internal/infrastructure/repository/postgres"
	"github.com/GGarrido28/dk-scraper/internal/platform/cache"
	idgen "github.com/GGarrido28/dk-scraper/internal/platform/id"
	"github.com/GGarrido28/dk-scraper/internal/platform/logging"
	"github.com/GGarrido28/dk-scraper/internal/platform/resilience"
	"github.com/GGarrido28/dk-scraper/internal/usecase"
)

// Contest details stay useful for the length of one pipeline run.
const contestDetailTTL = 10 * time.Minute

type Application struct {
	Config    config.Config
	Logger    *logging.Logger
	DB        *sqlx.DB
	Scrape    *usecase.ScrapeService
	Contests  *usecase.ContestService
	Standings *usecase.StandingsService
	History   *usecase.HistoryService
}

func New(cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	client := draftkings.NewClient(draftkings.ClientConfig{
		LobbyBaseURL: cfg.DraftKingsLobbyBaseURL,
		APIBaseURL:   cfg.DraftKingsAPIBaseURL,
		Timeout:      cfg.DraftKingsTimeout,
		MaxRetries:   cfg.DraftKingsMaxRetries,
		Logger:       logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.DraftKingsCircuitEnabled,
			FailureThreshold: cfg.DraftKingsCircuitFailures,
			OpenTimeout:      cfg.DraftKingsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.DraftKingsCircuitHalfOpenMax,
		},
	})

	contestRepo := postgres.NewContestRepository(db)
	draftGroupRepo := postgres.NewDraftGroupRepository(db)
	gameTypeRepo := postgres.NewGameTypeRepository(db)
	payoutRepo := postgres.NewPayoutRepository(db)
	salaryRepo := postgres.NewPlayerSalaryRepository(db)
	standingsRepo := postgres.NewStandingsRepository(db)
	historyRepo := postgres.NewContestHistoryRepository(db)
	configRepo := postgres.NewScrapeConfigRepository(db)

	detailCache := cache.NewStore(contestDetailTTL)

	scrapeSvc := usecase.NewScrapeService(
		client,
		contestRepo,
		draftGroupRepo,
		gameTypeRepo,
		payoutRepo,
		salaryRepo,
		configRepo,
		detailCache,
		idgen.NewRandomGenerator(),
		usecase.ScrapeServiceConfig{
			BatchSize:           cfg.ScrapeBatchSize,
			AttributeBatchPause: cfg.AttributeBatchPause,
			PayoutBatchPause:    cfg.PayoutBatchPause,
			SalaryFetchPause:    cfg.SalaryFetchPause,
		},
		logger,
	)

	contestSvc := usecase.NewContestService(client, contestRepo, payoutRepo, configRepo, logger)

	standingsSvc := usecase.NewStandingsService(
		contestRepo,
		standingsRepo,
		download.NewBrowser(cfg.BrowserPath, logger),
		client,
		usecase.StandingsServiceConfig{
			DownloadDir:  cfg.DownloadDir,
			StagingDir:   cfg.StagingDir,
			ImportDir:    cfg.ImportDir,
			FailedDir:    cfg.FailedDir,
			PollAttempts: cfg.DownloadPollAttempts,
			PollInterval: cfg.DownloadPollInterval,
			ParseWorkers: cfg.ScrapeWorkerCount,
		},
		logger,
	)

	historySvc := usecase.NewHistoryService(historyRepo, cfg.DKUsername, logger)

	return &Application{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Scrape:    scrapeSvc,
		Contests:  contestSvc,
		Standings: standingsSvc,
		History:   historySvc,
	}, nil
}

func (a *Application) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
