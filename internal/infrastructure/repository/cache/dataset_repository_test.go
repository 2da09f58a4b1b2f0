package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
	datasetmock "github.com/riskibarqy/fantasy-forecast/internal/mocks/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/resilience"
)

func TestDatasetRepository_CachesReadsAndInvalidatesOnSave(t *testing.T) {
	ctx := context.Background()
	next := datasetmock.NewRepository(t)
	repo := NewDatasetRepository(next, time.Minute, nil)

	first := dataset.RunSummary{ID: "run-1", Season: "2024-25", MaxFinishedGW: 21}
	second := dataset.RunSummary{ID: "run-2", Season: "2024-25", MaxFinishedGW: 22}

	next.On("GetLatestRun", mock.Anything, "2024-25").Return(first, true, nil).Once()
	next.On("ListPlans", mock.Anything, "run-1").Return([]split.Plan{{Horizon: 1}}, nil).Once()

	for range 3 {
		got, found, err := repo.GetLatestRun(ctx, "2024-25")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "run-1", got.ID)

		plans, err := repo.ListPlans(ctx, got.ID)
		require.NoError(t, err)
		require.Len(t, plans, 1)
	}

	run := dataset.Run{ID: "run-2", Season: "2024-25"}
	next.On("SaveRun", mock.Anything, run).Return(nil).Once()
	next.On("GetLatestRun", mock.Anything, "2024-25").Return(second, true, nil).Once()

	require.NoError(t, repo.SaveRun(ctx, run))
	got, _, err := repo.GetLatestRun(ctx, "2024-25")
	require.NoError(t, err)
	assert.Equal(t, "run-2", got.ID)
}

func TestDatasetRepository_BreakerOpensOnStoreFailures(t *testing.T) {
	ctx := context.Background()
	next := datasetmock.NewRepository(t)
	breaker := resilience.NewCircuitBreaker(2, time.Minute, 1)
	repo := NewDatasetRepository(next, time.Minute, breaker)

	storeDown := errors.New("connection refused")
	next.On("ListSnapshot", mock.Anything, "run-1").Return([]dataset.FeatureRow(nil), storeDown).Twice()

	for range 2 {
		_, err := repo.ListSnapshot(ctx, "run-1")
		require.ErrorIs(t, err, storeDown)
	}

	_, err := repo.ListSnapshot(ctx, "run-1")
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, resilience.CircuitStateOpen, breaker.State())
}
