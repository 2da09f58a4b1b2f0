package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/team"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/teamstats"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/id"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/logging"
)

const (
	pipelineStatusSuccess = "success"
	pipelineStatusFailed  = "failed"
)

type FeaturePipelineConfig struct {
	Windows      []int
	Horizons     []int
	MinMinutes   float64
	MaxWorkers   int
	Substitution playerstats.SubstitutionRules
	Uncertainty  UncertaintyRules
	Split        split.Options
}

func DefaultFeaturePipelineConfig() FeaturePipelineConfig {
	return FeaturePipelineConfig{
		Windows:      DefaultRollingWindows,
		Horizons:     DefaultHorizons,
		MinMinutes:   1,
		MaxWorkers:   4,
		Substitution: playerstats.DefaultSubstitutionRules(),
		Uncertainty:  DefaultUncertaintyRules(),
		Split:        split.DefaultOptions(),
	}
}

// PipelineRecorder receives run level measurements.
type PipelineRecorder interface {
	ObserveRun(status string, duration time.Duration)
	AddRows(kind string, count int)
}

type noopPipelineRecorder struct{}

func (noopPipelineRecorder) ObserveRun(string, time.Duration) {}
func (noopPipelineRecorder) AddRows(string, int)              {}

// FeaturePipelineSources are the readers of one season's raw tables.
type FeaturePipelineSources struct {
	Players     player.Repository
	Teams       team.Repository
	Fixtures    fixture.Repository
	PlayerStats playerstats.Repository
	TeamStats   teamstats.Repository
}

type FeaturePipelineService struct {
	sources  FeaturePipelineSources
	store    dataset.Repository
	idGen    id.Generator
	recorder PipelineRecorder
	cfg      FeaturePipelineConfig
	logger   *logging.Logger

	resolve    func(tables Tables, maxFinishedGW int) (*Keyspace, error)
	aggregator *TemporalAggregator
	difficulty *FixtureDifficultyEstimator
	labels     *LabelBuilder
	now        func() time.Time
}

func NewFeaturePipelineService(
	sources FeaturePipelineSources,
	store dataset.Repository,
	idGen id.Generator,
	recorder PipelineRecorder,
	cfg FeaturePipelineConfig,
	logger *logging.Logger,
) *FeaturePipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	if recorder == nil {
		recorder = noopPipelineRecorder{}
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if cfg.MinMinutes <= 0 {
		cfg.MinMinutes = 1
	}

	return &FeaturePipelineService{
		sources:    sources,
		store:      store,
		idGen:      idGen,
		recorder:   recorder,
		cfg:        cfg,
		logger:     logger,
		resolve:    NewEntityResolver(cfg.Substitution).Resolve,
		aggregator: NewTemporalAggregator(cfg.Windows),
		difficulty: NewFixtureDifficultyEstimator(cfg.Horizons),
		labels:     NewLabelBuilder(cfg.Horizons),
		now:        time.Now,
	}
}

// LoadTables reads every source table of the season concurrently.
func (s *FeaturePipelineService) LoadTables(ctx context.Context, season string) (Tables, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeaturePipelineService.LoadTables")
	defer span.End()

	src := s.sources
	if src.Players == nil || src.Teams == nil || src.Fixtures == nil || src.PlayerStats == nil || src.TeamStats == nil {
		return Tables{}, fmt.Errorf("%w: pipeline sources are not fully configured", ErrDependencyUnavailable)
	}

	var tables Tables
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := src.Players.ListBySeason(ctx, season)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		tables.Players = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := src.Teams.ListBySeason(ctx, season)
		if err != nil {
			return fmt.Errorf("list teams: %w", err)
		}
		tables.Teams = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := src.Fixtures.ListBySeason(ctx, season)
		if err != nil {
			return fmt.Errorf("list fixtures: %w", err)
		}
		tables.Fixtures = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := src.PlayerStats.ListAppearancesBySeason(ctx, season)
		if err != nil {
			return fmt.Errorf("list player appearances: %w", err)
		}
		tables.Appearances = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := src.TeamStats.ListBySeason(ctx, season)
		if err != nil {
			return fmt.Errorf("list team records: %w", err)
		}
		tables.TeamRecords = items
		return nil
	})
	if err := p.Wait(); err != nil {
		return Tables{}, err
	}

	return tables, nil
}

// Run loads the season from the configured sources and builds it.
func (s *FeaturePipelineService) Run(ctx context.Context, season string) (dataset.Run, error) {
	tables, err := s.LoadTables(ctx, season)
	if err != nil {
		return dataset.Run{}, err
	}
	return s.Build(ctx, season, tables)
}

// Build computes features, labels, split plans and the latest snapshot, then
// persists the run when a store is configured. Any fatal error aborts before
// anything is persisted.
func (s *FeaturePipelineService) Build(ctx context.Context, season string, tables Tables) (run dataset.Run, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeaturePipelineService.Build")
	defer span.End()

	start := s.now()
	defer func() {
		status := pipelineStatusSuccess
		if err != nil {
			status = pipelineStatusFailed
			span.RecordError(err)
		}
		s.recorder.ObserveRun(status, s.now().Sub(start))
	}()

	season = strings.TrimSpace(season)
	if season == "" {
		return dataset.Run{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	finished := fixture.ComputeFinishedIndex(tables.Fixtures)
	maxFinishedGW := finished.MaxFinishedGW

	ks, err := s.resolve(tables, maxFinishedGW)
	if err != nil {
		s.logger.ErrorContext(ctx, "resolve keyspace failed", "season", season, "error", err)
		return dataset.Run{}, err
	}

	teams, err := s.runTeamPhase(ctx, ks)
	if err != nil {
		s.logger.ErrorContext(ctx, "team phase failed", "season", season, "error", err)
		return dataset.Run{}, err
	}

	partitions, err := s.runPlayerPhase(ctx, ks, teams)
	if err != nil {
		s.logger.ErrorContext(ctx, "player phase failed", "season", season, "error", err)
		return dataset.Run{}, err
	}

	plans := make([]split.Plan, 0, len(s.difficulty.Horizons()))
	for _, horizon := range s.difficulty.Horizons() {
		plan, err := split.Build(maxFinishedGW, horizon, s.cfg.Split)
		if err != nil {
			return dataset.Run{}, fmt.Errorf("%w: plan splits for horizon %d: %v", ErrInvalidInput, horizon, err)
		}
		if plan.Empty() {
			s.logger.WarnContext(ctx, "no backtest splits for horizon", "horizon", horizon, "max_finished_gw", maxFinishedGW)
		}
		plans = append(plans, plan)
	}

	runID, err := s.idGen.NewID()
	if err != nil {
		return dataset.Run{}, fmt.Errorf("generate run id: %w", err)
	}

	run = dataset.Run{
		ID:            runID,
		Season:        season,
		MaxFinishedGW: maxFinishedGW,
		CreatedAt:     s.now().UTC(),
		Snapshot:      dataset.FeatureMatrix{Cutoff: maxFinishedGW},
		Plans:         plans,
	}
	for _, part := range partitions {
		run.Features.Rows = append(run.Features.Rows, part.features...)
		run.Labels.Rows = append(run.Labels.Rows, part.labels...)
		run.Snapshot.Rows = append(run.Snapshot.Rows, part.snapshot)
	}
	if err := assignSplitRows(run.Plans, run.Labels.Rows); err != nil {
		return dataset.Run{}, err
	}

	s.recorder.AddRows("feature", len(run.Features.Rows))
	s.recorder.AddRows("label", len(run.Labels.Rows))
	s.recorder.AddRows("snapshot", len(run.Snapshot.Rows))

	if s.store != nil {
		if err := s.store.SaveRun(ctx, run); err != nil {
			return dataset.Run{}, fmt.Errorf("save run: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "feature pipeline run completed",
		"run_id", run.ID,
		"season", season,
		"max_finished_gw", maxFinishedGW,
		"players", len(ks.PlayerIDs()),
		"feature_rows", len(run.Features.Rows),
		"label_rows", len(run.Labels.Rows),
	)
	return run, nil
}

// teamPhase holds per-cutoff team aggregates, indexed by cutoff 0..max.
type teamPhase struct {
	form     [][]dataset.TeamForm
	fixtures [][]dataset.FixtureWindow
	warnings []dataset.Warning
}

func (s *FeaturePipelineService) runTeamPhase(ctx context.Context, ks *Keyspace) (map[string]*teamPhase, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeaturePipelineService.runTeamPhase")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	teamIDs := ks.TeamIDs()
	maxGW := ks.MaxFinishedGW()
	slots := make([]*teamPhase, len(teamIDs))

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(normalizePipelineWorkerCount(s.cfg.MaxWorkers, len(teamIDs)))
	for i, teamID := range teamIDs {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			phase := &teamPhase{
				form:     make([][]dataset.TeamForm, maxGW+1),
				fixtures: make([][]dataset.FixtureWindow, maxGW+1),
				warnings: make([]dataset.Warning, maxGW+1),
			}
			records := ks.TeamRecords(teamID)
			for cutoff := 0; cutoff <= maxGW; cutoff++ {
				form, err := s.aggregator.Team(teamID, records, cutoff)
				if err != nil {
					return err
				}
				windows, warnings, err := s.difficulty.Estimate(ks, teamID, cutoff)
				if err != nil {
					return err
				}
				phase.form[cutoff] = form
				phase.fixtures[cutoff] = windows
				phase.warnings[cutoff] = warnings
			}
			slots[i] = phase
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*teamPhase, len(teamIDs))
	for i, teamID := range teamIDs {
		out[teamID] = slots[i]
	}
	return out, nil
}

type playerPartition struct {
	features []dataset.FeatureRow
	labels   []dataset.LabelRow
	snapshot dataset.FeatureRow
	err      error
}

func (s *FeaturePipelineService) runPlayerPhase(ctx context.Context, ks *Keyspace, teams map[string]*teamPhase) ([]playerPartition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeaturePipelineService.runPlayerPhase")
	defer span.End()

	playerIDs := ks.PlayerIDs()
	partitions := make([]playerPartition, len(playerIDs))
	if len(playerIDs) == 0 {
		return partitions, nil
	}

	workerPool, err := ants.NewPool(normalizePipelineWorkerCount(s.cfg.MaxWorkers, len(playerIDs)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for i, playerID := range playerIDs {
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()
			if err := ctx.Err(); err != nil {
				partitions[i].err = err
				return
			}
			partitions[i] = s.buildPlayerPartition(ks, teams, playerID)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit player partition to worker pool: %w", err)
		}
	}
	workers.Wait()

	for _, part := range partitions {
		if part.err != nil {
			return nil, part.err
		}
	}
	return partitions, nil
}

func (s *FeaturePipelineService) buildPlayerPartition(ks *Keyspace, teams map[string]*teamPhase, playerID string) playerPartition {
	var part playerPartition
	records := ks.PlayerRecords(playerID)
	maxGW := ks.MaxFinishedGW()

	for _, rec := range records {
		if rec.Gameweek > maxGW || rec.Minutes < s.cfg.MinMinutes {
			continue
		}
		row, err := s.featureRow(ks, teams, playerID, records, rec.Gameweek)
		if err != nil {
			part.err = err
			return part
		}
		labels, err := s.labels.Build(playerID, records, rec.Gameweek, maxGW)
		if err != nil {
			part.err = err
			return part
		}
		part.features = append(part.features, row)
		part.labels = append(part.labels, labels...)
	}

	snapshot, err := s.featureRow(ks, teams, playerID, records, maxGW)
	if err != nil {
		part.err = err
		return part
	}
	latest, _ := ks.PlayerAt(playerID, maxGW)
	snapshot.Uncertainty, err = BuildUncertainty(playerID, records, maxGW, latest, s.cfg.Uncertainty)
	if err != nil {
		part.err = err
		return part
	}
	part.snapshot = snapshot
	return part
}

func (s *FeaturePipelineService) featureRow(
	ks *Keyspace,
	teams map[string]*teamPhase,
	playerID string,
	records []playerstats.GameweekRecord,
	cutoff int,
) (dataset.FeatureRow, error) {
	mapping, _ := ks.PlayerAt(playerID, cutoff)
	teamID, ok := ks.TeamAt(playerID, cutoff)
	if !ok {
		return dataset.FeatureRow{}, newSchemaError("players", "team_code", playerID, fmt.Sprintf("no team at gameweek %d", cutoff))
	}

	agg, err := s.aggregator.Player(playerID, records, cutoff)
	if err != nil {
		return dataset.FeatureRow{}, err
	}

	row := dataset.FeatureRow{
		Observation: dataset.Observation{PlayerID: playerID, Gameweek: cutoff},
		TeamID:      teamID,
		Position:    mapping.Position,
		Windows:     agg.Windows,
		Trend:       agg.Trend,
		Warnings:    agg.Warnings,
	}
	if phase := teams[teamID]; phase != nil && cutoff < len(phase.form) {
		row.TeamForm = phase.form[cutoff]
		row.Fixtures = phase.fixtures[cutoff]
		row.Warnings |= phase.warnings[cutoff]
	}
	return row, nil
}

// assignSplitRows resolves each plan's train and validation sets to row
// numbers of the label matrix, restricted to that plan's horizon.
func assignSplitRows(plans []split.Plan, labels []dataset.LabelRow) error {
	for i, plan := range plans {
		gameweeks := make([]int, 0, len(labels))
		positions := make([]int, 0, len(labels))
		for pos, row := range labels {
			if row.Horizon == plan.Horizon {
				gameweeks = append(gameweeks, row.Gameweek)
				positions = append(positions, pos)
			}
		}
		assigned, err := plan.AssignRows(gameweeks, positions)
		if err != nil {
			return fmt.Errorf("assign split rows for horizon %d: %w", plan.Horizon, err)
		}
		plans[i] = assigned
	}
	return nil
}

func normalizePipelineWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 1
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
