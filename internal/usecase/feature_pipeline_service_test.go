package usecase

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/leakage"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/stat"
	datasetmock "github.com/riskibarqy/fantasy-forecast/internal/mocks/domain/dataset"
	fixturemock "github.com/riskibarqy/fantasy-forecast/internal/mocks/domain/fixture"
	playermock "github.com/riskibarqy/fantasy-forecast/internal/mocks/domain/player"
	playerstatsmock "github.com/riskibarqy/fantasy-forecast/internal/mocks/domain/playerstats"
	teammock "github.com/riskibarqy/fantasy-forecast/internal/mocks/domain/team"
	teamstatsmock "github.com/riskibarqy/fantasy-forecast/internal/mocks/domain/teamstats"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingPipelineRecorder struct {
	mu       sync.Mutex
	statuses []string
	rows     map[string]int
}

func (r *recordingPipelineRecorder) ObserveRun(status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recordingPipelineRecorder) AddRows(kind string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows == nil {
		r.rows = make(map[string]int)
	}
	r.rows[kind] += count
}

func newTestPipeline(store dataset.Repository, recorder PipelineRecorder, workers int) *FeaturePipelineService {
	cfg := DefaultFeaturePipelineConfig()
	cfg.MaxWorkers = workers
	svc := NewFeaturePipelineService(FeaturePipelineSources{}, store, id.Static("run-1"), recorder, cfg, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func findFeatureRow(t *testing.T, rows []dataset.FeatureRow, playerID string, gw int) dataset.FeatureRow {
	t.Helper()
	for _, row := range rows {
		if row.PlayerID == playerID && row.Gameweek == gw {
			return row
		}
	}
	t.Fatalf("feature row not found: player=%s gw=%d", playerID, gw)
	return dataset.FeatureRow{}
}

func TestFeaturePipelineService_RunUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tables := syntheticSeason(12, 10)

	playerRepo := playermock.NewRepository(t)
	teamRepo := teammock.NewRepository(t)
	fixtureRepo := fixturemock.NewRepository(t)
	playerStatsRepo := playerstatsmock.NewRepository(t)
	teamStatsRepo := teamstatsmock.NewRepository(t)
	store := datasetmock.NewRepository(t)

	playerRepo.On("ListBySeason", mock.Anything, "2025-26").Return(tables.Players, nil).Once()
	teamRepo.On("ListBySeason", mock.Anything, "2025-26").Return(tables.Teams, nil).Once()
	fixtureRepo.On("ListBySeason", mock.Anything, "2025-26").Return(tables.Fixtures, nil).Once()
	playerStatsRepo.On("ListAppearancesBySeason", mock.Anything, "2025-26").Return(tables.Appearances, nil).Once()
	teamStatsRepo.On("ListBySeason", mock.Anything, "2025-26").Return(tables.TeamRecords, nil).Once()
	store.
		On("SaveRun", mock.Anything, mock.MatchedBy(func(run dataset.Run) bool {
			return run.ID == "run-1" && run.Season == "2025-26" && run.MaxFinishedGW == 10
		})).
		Return(nil).
		Once()

	recorder := &recordingPipelineRecorder{}
	svc := newTestPipeline(store, recorder, 3)
	svc.sources = FeaturePipelineSources{
		Players:     playerRepo,
		Teams:       teamRepo,
		Fixtures:    fixtureRepo,
		PlayerStats: playerStatsRepo,
		TeamStats:   teamStatsRepo,
	}

	run, err := svc.Run(ctx, "2025-26")
	if err != nil {
		t.Fatalf("run pipeline: %v", err)
	}

	if len(run.Features.Rows) != 27 {
		t.Fatalf("unexpected feature row count: got=%d want=27", len(run.Features.Rows))
	}
	if len(run.Labels.Rows) != 38 {
		t.Fatalf("unexpected label row count: got=%d want=38", len(run.Labels.Rows))
	}
	if len(run.Snapshot.Rows) != 3 {
		t.Fatalf("unexpected snapshot row count: got=%d want=3", len(run.Snapshot.Rows))
	}

	for i := 1; i < len(run.Features.Rows); i++ {
		prev, cur := run.Features.Rows[i-1], run.Features.Rows[i]
		if prev.PlayerID > cur.PlayerID || (prev.PlayerID == cur.PlayerID && prev.Gameweek >= cur.Gameweek) {
			t.Fatalf("feature rows out of order at %d: prev=%+v cur=%+v", i, prev.Observation, cur.Observation)
		}
	}
	for _, row := range run.Features.Rows {
		if row.PlayerID == "p2" && row.Gameweek%3 == 0 {
			t.Fatalf("DNP gameweek emitted as observation: %+v", row.Observation)
		}
	}

	assert.Equal(t, "C", findFeatureRow(t, run.Features.Rows, "p3", 4).TeamID)
	assert.Equal(t, "D", findFeatureRow(t, run.Features.Rows, "p3", 6).TeamID)
	assert.Equal(t, player.PositionDefender, findFeatureRow(t, run.Features.Rows, "p3", 6).Position)

	for _, row := range run.Snapshot.Rows {
		require.NotNil(t, row.Uncertainty)
		assert.Equal(t, 10, row.Gameweek)
	}
	p2 := findFeatureRow(t, run.Snapshot.Rows, "p2", 10)
	assert.True(t, p2.Uncertainty.FlagStatus)
	assert.True(t, p2.Uncertainty.FlagChance)

	require.Len(t, run.Plans, 4)
	assert.Len(t, run.Plans[0].Splits, 9)
	assert.Len(t, run.Plans[1].Splits, 1)
	assert.True(t, run.Plans[2].Empty())
	assert.True(t, run.Plans[3].Empty())

	validated := 0
	for _, plan := range run.Plans {
		for _, s := range plan.Splits {
			for _, pos := range s.TrainRows {
				row := run.Labels.Rows[pos]
				assert.Equal(t, plan.Horizon, row.Horizon)
				assert.LessOrEqual(t, row.Gameweek+plan.Horizon, s.Train.End, "train label window must end inside the train range")
			}
			for _, pos := range s.ValidationRows {
				row := run.Labels.Rows[pos]
				assert.Equal(t, plan.Horizon, row.Horizon)
				assert.True(t, s.Validation.Contains(row.Gameweek))
			}
			validated += len(s.ValidationRows)
		}
	}
	assert.Positive(t, validated)
	require.NotNil(t, run.Plans[0].Holdout)
	assert.NotEmpty(t, run.Plans[0].Holdout.TrainRows)

	assert.Equal(t, []string{pipelineStatusSuccess}, recorder.statuses)
	assert.Equal(t, 27, recorder.rows["feature"])
}

func TestFeaturePipelineService_FeaturesIgnoreFutureRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	const cutoff = 6

	base, err := newTestPipeline(nil, nil, 2).Build(ctx, "2025-26", syntheticSeason(12, 10))
	require.NoError(t, err)

	mutated := syntheticSeason(12, 10)
	for i := range mutated.Appearances {
		if mutated.Appearances[i].Gameweek >= cutoff {
			mutated.Appearances[i].Points += 100
			mutated.Appearances[i].ExpectedGoals += 3
		}
	}
	for i := range mutated.TeamRecords {
		if mutated.TeamRecords[i].Gameweek >= cutoff {
			mutated.TeamRecords[i].Goals += 50
		}
	}
	// team ratings dated at the cutoff gameweek are realized data too
	for _, item := range syntheticSeason(1, 0).Teams {
		item.Strength, item.Elo, item.Gameweek = 99, 9999, cutoff
		mutated.Teams = append(mutated.Teams, item)
	}
	changed, err := newTestPipeline(nil, nil, 2).Build(ctx, "2025-26", mutated)
	require.NoError(t, err)

	for _, playerID := range []string{"p1", "p3"} {
		want := findFeatureRow(t, base.Features.Rows, playerID, cutoff)
		got := findFeatureRow(t, changed.Features.Rows, playerID, cutoff)
		assert.Equal(t, want, got, "feature row for %s at gw %d changed after future mutation", playerID, cutoff)
	}

	next := findFeatureRow(t, changed.Features.Rows, "p1", cutoff+1)
	require.NotEmpty(t, next.Fixtures)
	assert.InDelta(t, 9999.0, next.Fixtures[0].AvgOpponentElo, 1e-9)

	var baseLabel, changedLabel float64
	for _, row := range base.Labels.ByHorizon(1) {
		if row.PlayerID == "p1" && row.Gameweek == cutoff {
			baseLabel = row.Total[stat.Points]
		}
	}
	for _, row := range changed.Labels.ByHorizon(1) {
		if row.PlayerID == "p1" && row.Gameweek == cutoff {
			changedLabel = row.Total[stat.Points]
		}
	}
	assert.Equal(t, baseLabel+100, changedLabel)
}

func TestFeaturePipelineService_DeterministicAcrossWorkerCounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	single, err := newTestPipeline(nil, nil, 1).Build(ctx, "2025-26", syntheticSeason(20, 15))
	require.NoError(t, err)
	parallel, err := newTestPipeline(nil, nil, 8).Build(ctx, "2025-26", syntheticSeason(20, 15))
	require.NoError(t, err)

	assert.Equal(t, single, parallel)
}

func TestFeaturePipelineService_SchemaErrorAbortsBeforeSave(t *testing.T) {
	t.Parallel()

	tables := syntheticSeason(6, 6)
	tables.Players = append(tables.Players, player.Player{ID: "p9", TeamCode: "404", Position: player.PositionForward})

	store := datasetmock.NewRepository(t)
	recorder := &recordingPipelineRecorder{}
	_, err := newTestPipeline(store, recorder, 2).Build(context.Background(), "2025-26", tables)

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got=%v", err)
	}
	assert.Equal(t, "p9", schemaErr.Key)
	assert.Equal(t, []string{pipelineStatusFailed}, recorder.statuses)
	store.AssertNotCalled(t, "SaveRun", mock.Anything, mock.Anything)
}

func TestFeaturePipelineService_LeakageViolationAbortsBeforeSave(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tamper func(ks *Keyspace)
		entity string
	}{
		{
			name:   "team phase",
			tamper: func(ks *Keyspace) { slices.Reverse(ks.teamRecords["A"]) },
			entity: "team:A",
		},
		{
			name:   "player partition",
			tamper: func(ks *Keyspace) { slices.Reverse(ks.playerRecords["p1"]) },
			entity: "player:p1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := datasetmock.NewRepository(t)
			recorder := &recordingPipelineRecorder{}
			svc := newTestPipeline(store, recorder, 2)
			resolve := svc.resolve
			svc.resolve = func(tables Tables, maxFinishedGW int) (*Keyspace, error) {
				ks, err := resolve(tables, maxFinishedGW)
				if err != nil {
					return nil, err
				}
				tc.tamper(ks)
				return ks, nil
			}

			_, err := svc.Build(context.Background(), "2025-26", syntheticSeason(8, 6))
			if !errors.Is(err, leakage.ErrLeakage) {
				t.Fatalf("expected leakage error, got=%v", err)
			}
			var violation *leakage.Violation
			require.True(t, errors.As(err, &violation))
			assert.Equal(t, tc.entity, violation.Entity)
			assert.Equal(t, []string{pipelineStatusFailed}, recorder.statuses)
			store.AssertNotCalled(t, "SaveRun", mock.Anything, mock.Anything)
		})
	}
}

func TestFeaturePipelineService_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := datasetmock.NewRepository(t)
	_, err := newTestPipeline(store, nil, 2).Build(ctx, "2025-26", syntheticSeason(6, 6))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got=%v", err)
	}
}

func TestFeaturePipelineService_RequiresSeason(t *testing.T) {
	t.Parallel()

	_, err := newTestPipeline(nil, nil, 1).Build(context.Background(), " ", syntheticSeason(4, 4))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}

func TestFeaturePipelineService_LoadTablesPropagatesError(t *testing.T) {
	t.Parallel()

	playerRepo := playermock.NewRepository(t)
	teamRepo := teammock.NewRepository(t)
	fixtureRepo := fixturemock.NewRepository(t)
	playerStatsRepo := playerstatsmock.NewRepository(t)
	teamStatsRepo := teamstatsmock.NewRepository(t)

	boom := errors.New("connection refused")
	playerRepo.On("ListBySeason", mock.Anything, "2025-26").Return(nil, boom).Once()
	teamRepo.On("ListBySeason", mock.Anything, "2025-26").Return(nil, nil).Maybe()
	fixtureRepo.On("ListBySeason", mock.Anything, "2025-26").Return(nil, nil).Maybe()
	playerStatsRepo.On("ListAppearancesBySeason", mock.Anything, "2025-26").Return(nil, nil).Maybe()
	teamStatsRepo.On("ListBySeason", mock.Anything, "2025-26").Return(nil, nil).Maybe()

	svc := newTestPipeline(nil, nil, 1)
	svc.sources = FeaturePipelineSources{
		Players:     playerRepo,
		Teams:       teamRepo,
		Fixtures:    fixtureRepo,
		PlayerStats: playerStatsRepo,
		TeamStats:   teamStatsRepo,
	}

	_, err := svc.LoadTables(context.Background(), "2025-26")
	if !errors.Is(err, boom) {
		t.Fatalf("expected repository error, got=%v", err)
	}
}
