package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/release-league/external/anubis"
	"github.com/riskibarqy/release-league/external/eventbus"
	"github.com/riskibarqy/release-league/external/jobqueue"
	"github.com/riskibarqy/release-league/external/steam"
	"github.com/riskibarqy/release-league/internal/config"
	"github.com/riskibarqy/release-league/internal/domain/game"
	"github.com/riskibarqy/release-league/internal/domain/gamescore"
	"github.com/riskibarqy/release-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/release-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/release-league/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/release-league/internal/platform/id"
	"github.com/riskibarqy/release-league/internal/platform/logging"
	"github.com/riskibarqy/release-league/internal/platform/resilience"
	"github.com/riskibarqy/release-league/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Components is the wired service graph shared by the api and scorer
// binaries.
type Components struct {
	DB *sqlx.DB

	Leagues         *usecase.LeagueService
	Drafts          *usecase.DraftService
	Phases          *usecase.PhaseService
	TeamScores      *usecase.TeamScoreService
	Games           *usecase.GameService
	Engine          *usecase.ScoringEngine
	JobOrchestrator *usecase.JobOrchestratorService
	Verifier        *anubis.Client

	closers []func() error
}

func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Components, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c := &Components{DB: db}
	c.closers = append(c.closers, db.Close)

	clock := clockwork.NewRealClock()

	leagueRepo := postgres.NewLeagueRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	draftRepo := postgres.NewDraftRepository(db)
	leagueScoringRepo := postgres.NewLeagueScoringRepository(db)
	snapshotRepo := postgres.NewSeasonSnapshotRepository(db)
	runLedger := postgres.NewScoringRunLedger(db)

	catalog := postgres.NewGameCatalog(db)
	scoreRepo := postgres.NewGameScoreRepository(db)
	var (
		gameCatalog game.Catalog         = catalog
		gameScores  gamescore.Repository = scoreRepo
	)
	if cfg.CacheEnabled {
		gameCatalog = cache.NewGameCatalog(catalog, cfg.CacheTTL, clock)
		gameScores = cache.NewGameScoreRepository(scoreRepo, cfg.CacheTTL, clock)
	}

	events := usecase.NewNoopDraftEventPublisher()
	if cfg.NATSEnabled {
		publisher, err := eventbus.Connect(eventbus.Config{
			URL:           cfg.NATSURL,
			SubjectPrefix: cfg.NATSSubjectPrefix,
			Name:          cfg.ServiceName,
			MaxReconnects: -1,
			Logger:        logger,
		})
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		events = publisher
		c.closers = append(c.closers, func() error { publisher.Close(); return nil })
	}

	queue := usecase.NewNoopJobQueue()
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			HTTPClient:       tracedHTTPClient(cfg.WriteTimeout),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
	}

	steamClient := steam.NewClient(steam.ClientConfig{
		StoreBaseURL: cfg.SteamStoreBaseURL,
		APIBaseURL:   cfg.SteamAPIBaseURL,
		UserAgent:    cfg.SteamUserAgent,
		Timeout:      cfg.SteamTimeout,
		Logger:       logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SteamCircuitEnabled,
			FailureThreshold: cfg.SteamCircuitFailureCount,
			OpenTimeout:      cfg.SteamCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SteamCircuitHalfOpenMaxReq,
		},
	})

	c.Verifier = anubis.NewClient(anubis.ClientConfig{
		HTTPClient:     tracedHTTPClient(cfg.AnubisTimeout),
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectPath,
		AdminKey:       cfg.AnubisAdminKey,
		CacheTTL:       cfg.AnubisCacheTTL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AnubisCircuitEnabled,
			FailureThreshold: cfg.AnubisCircuitFailureCount,
			OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
		},
		Clock:  clock,
		Logger: logger,
	})

	c.Phases = usecase.NewPhaseService(leagueRepo, draftRepo, clock, logger)
	c.Leagues = usecase.NewLeagueService(leagueRepo, teamRepo, draftRepo, idgen.NewUUIDGenerator(), logger)
	c.Drafts = usecase.NewDraftService(leagueRepo, draftRepo, gameCatalog, c.Phases, events, logger)
	c.Games = usecase.NewGameService(gameCatalog, leagueRepo, postgres.NewBookmarkRepository(db), logger)
	c.TeamScores = usecase.NewTeamScoreService(leagueRepo, teamRepo, gameScores, leagueScoringRepo, snapshotRepo, logger)
	c.Engine = usecase.NewScoringEngine(
		gameCatalog,
		gameScores,
		leagueRepo,
		teamRepo,
		leagueScoringRepo,
		steamClient,
		scoringEngineConfig(cfg),
		clock,
		logger,
	)
	c.JobOrchestrator = usecase.NewJobOrchestratorService(
		leagueRepo,
		c.Engine,
		c.TeamScores,
		c.Phases,
		queue,
		runLedger,
		usecase.JobOrchestratorConfig{
			FullRunAt:     cfg.JobFullRunAt,
			SnapshotRunAt: cfg.JobSnapshotRunAt,
		},
		logger,
	)

	return c, nil
}

// NewHTTPServer mounts the public api on top of the wired components.
func NewHTTPServer(cfg config.Config, c *Components, logger *logging.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(c.Leagues, c.Drafts, c.Phases, c.TeamScores, c.Games, c.JobOrchestrator, logger)
	router := httpapi.NewRouter(handler, c.Verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

// Close releases resources in reverse order of acquisition.
func (c *Components) Close() error {
	var err error
	for i := len(c.closers) - 1; i >= 0; i-- {
		err = crerr.CombineErrors(err, c.closers[i]())
	}
	c.closers = nil
	return err
}

func scoringEngineConfig(cfg config.Config) usecase.ScoringEngineConfig {
	out := usecase.DefaultScoringEngineConfig()
	out.Concurrency = cfg.ScoringConcurrency
	out.Delay = cfg.ScoringDelay
	out.BatchSize = cfg.ScoringBatchSize
	out.Fetch.MaxAttempts = cfg.SteamMaxRetries + 1
	out.Fetch.MaxDelayHint = cfg.SteamRetryAfterCap
	out.Commit.MaxAttempts = cfg.ScoringBatchMaxAttempts
	return out
}

func tracedHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
