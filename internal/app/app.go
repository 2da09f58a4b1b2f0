package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-forecast/internal/config"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
	"github.com/riskibarqy/fantasy-forecast/internal/infrastructure/export"
	"github.com/riskibarqy/fantasy-forecast/internal/infrastructure/loader/csvdir"
	cacherepo "github.com/riskibarqy/fantasy-forecast/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantasy-forecast/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-forecast/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-forecast/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-forecast/internal/observability"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/id"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/logging"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-forecast/internal/usecase"
)

// App is the composition root shared by the CLI commands and the read API.
type App struct {
	cfg    config.Config
	logger *logging.Logger
	db     *sqlx.DB

	Pipeline *usecase.FeaturePipelineService
	Query    *usecase.DatasetQueryService
	Exporter *export.Writer
	Metrics  *observability.PipelineMetrics
	// CSV is set when the season tables come from a CSV directory.
	CSV *csvdir.Source
	// Importer is set when a database connection is open.
	Importer *postgres.SeasonImporter
}

type options struct {
	sources *usecase.FeaturePipelineSources
	store   dataset.Repository
	idGen   id.Generator
}

type Option func(*options)

// WithSources replaces the configured season readers.
func WithSources(sources usecase.FeaturePipelineSources) Option {
	return func(o *options) { o.sources = &sources }
}

// WithStore replaces the configured feature store.
func WithStore(store dataset.Repository) Option {
	return func(o *options) { o.store = store }
}

func WithIDGenerator(gen id.Generator) Option {
	return func(o *options) { o.idGen = gen }
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		Metrics: observability.NewPipelineMetrics(),
	}

	needDB := (o.sources == nil && cfg.DataSource == config.SourcePostgres) || (o.store == nil && cfg.StoreEnabled)
	if needDB {
		db, err := OpenDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.Importer = postgres.NewSeasonImporter(db)
	}

	sources, err := a.buildSources(o.sources)
	if err != nil {
		a.Close()
		return nil, err
	}
	store := a.buildStore(o.store)

	exporter, err := export.NewWriter(cfg.OutputDir, cfg.OutputFormat, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Exporter = exporter

	a.Pipeline = usecase.NewFeaturePipelineService(sources, store, o.idGen, a.Metrics, PipelineConfig(cfg.Pipeline), logger)
	a.Query = usecase.NewDatasetQueryService(store)
	return a, nil
}

func (a *App) buildSources(override *usecase.FeaturePipelineSources) (usecase.FeaturePipelineSources, error) {
	if a.cfg.DataRoot != "" {
		a.CSV = csvdir.NewSource(a.cfg.DataRoot, a.logger, csvdir.WithMaxParallel(a.cfg.Pipeline.MaxWorkers))
	}
	if override != nil {
		return *override, nil
	}

	switch a.cfg.DataSource {
	case config.SourcePostgres:
		return usecase.FeaturePipelineSources{
			Players:     postgres.NewPlayerRepository(a.db),
			Teams:       postgres.NewTeamRepository(a.db),
			Fixtures:    postgres.NewFixtureRepository(a.db),
			PlayerStats: postgres.NewPlayerStatsRepository(a.db),
			TeamStats:   postgres.NewTeamStatsRepository(a.db),
		}, nil
	case config.SourceCSV, "":
		if a.CSV == nil {
			return usecase.FeaturePipelineSources{}, fmt.Errorf("DATA_ROOT is required for the csv data source")
		}
		return usecase.FeaturePipelineSources{
			Players:     a.CSV.Players(),
			Teams:       a.CSV.Teams(),
			Fixtures:    a.CSV.Fixtures(),
			PlayerStats: a.CSV.PlayerStats(),
			TeamStats:   a.CSV.TeamStats(),
		}, nil
	default:
		return usecase.FeaturePipelineSources{}, fmt.Errorf("unsupported data source %q", a.cfg.DataSource)
	}
}

func (a *App) buildStore(override dataset.Repository) dataset.Repository {
	if override != nil {
		return override
	}
	if !a.cfg.StoreEnabled {
		return memory.NewDatasetRepository()
	}
	breaker := resilience.NewCircuitBreakerFromConfig(a.cfg.StoreCircuitBreaker)
	return cacherepo.NewDatasetRepository(postgres.NewDatasetRepository(a.db), a.cfg.StoreCacheTTL, breaker)
}

// PipelineConfig maps runtime settings onto the engine configuration.
func PipelineConfig(cfg config.PipelineConfig) usecase.FeaturePipelineConfig {
	return usecase.FeaturePipelineConfig{
		Windows:    append([]int(nil), cfg.RollingWindows...),
		Horizons:   append([]int(nil), cfg.Horizons...),
		MinMinutes: cfg.MinMinutes,
		MaxWorkers: cfg.MaxWorkers,
		Substitution: playerstats.SubstitutionRules{
			EarlySubMinute: cfg.EarlySubMinute,
			SubOnMinute:    cfg.SubOnMinute,
		},
		Uncertainty: usecase.UncertaintyRules{
			Window:                cfg.AvailabilityWindow,
			EarlySubRateThreshold: cfg.SubEarlyRateThreshold,
			AvgMinutesThreshold:   cfg.AvgMinutesThreshold,
		},
		Split: split.Options{
			MinTrainGameweeks: cfg.MinTrainGameweeks,
			HoldoutGameweeks:  cfg.HoldoutGameweeks,
		},
	}
}

// BuildAndExport runs the pipeline for a season and writes every output.
func (a *App) BuildAndExport(ctx context.Context, season string) (dataset.Run, []string, error) {
	run, err := a.Pipeline.Run(ctx, season)
	if err != nil {
		return dataset.Run{}, nil, err
	}
	paths, err := a.Exporter.WriteRun(ctx, run)
	if err != nil {
		return run, paths, fmt.Errorf("export run %s: %w", run.ID, err)
	}
	return run, paths, nil
}

// ImportSeason copies a season from the CSV directory into Postgres.
func (a *App) ImportSeason(ctx context.Context, season string) error {
	if a.CSV == nil {
		return fmt.Errorf("%w: DATA_ROOT is not configured", usecase.ErrDependencyUnavailable)
	}
	if a.Importer == nil {
		return fmt.Errorf("%w: database is not configured", usecase.ErrDependencyUnavailable)
	}

	loaded, err := a.CSV.LoadSeason(ctx, season)
	if err != nil {
		return err
	}
	if err := a.Importer.ImportSeason(ctx, season, postgres.SeasonTables{
		Players:     loaded.Players,
		Teams:       loaded.Teams,
		Fixtures:    loaded.Fixtures,
		Appearances: loaded.Appearances,
		TeamRecords: loaded.TeamRecords,
	}); err != nil {
		return fmt.Errorf("import season %s: %w", season, err)
	}
	a.logger.InfoContext(ctx, "season imported",
		"season", season,
		"players", len(loaded.Players),
		"fixtures", len(loaded.Fixtures),
		"appearances", len(loaded.Appearances),
	)
	return nil
}

func (a *App) NewHTTPServer() (*http.Server, error) {
	if a.cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var metrics http.Handler
	if a.cfg.MetricsEnabled {
		metrics = a.Metrics.Handler()
	}
	handler := httpapi.NewHandler(a.Query, a.logger)
	router := httpapi.NewRouter(handler, a.logger, httpapi.RouterOptions{
		SwaggerEnabled:     a.cfg.SwaggerEnabled,
		CORSAllowedOrigins: a.cfg.CORSAllowedOrigins,
		Metrics:            metrics,
	})

	return &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
