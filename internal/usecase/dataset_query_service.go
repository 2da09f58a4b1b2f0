package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
)

// DatasetQueryService reads persisted runs for reporting.
type DatasetQueryService struct {
	store dataset.Repository
}

func NewDatasetQueryService(store dataset.Repository) *DatasetQueryService {
	return &DatasetQueryService{store: store}
}

func (s *DatasetQueryService) LatestRun(ctx context.Context, season string) (dataset.RunSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DatasetQueryService.LatestRun")
	defer span.End()

	season = strings.TrimSpace(season)
	if season == "" {
		return dataset.RunSummary{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if s.store == nil {
		return dataset.RunSummary{}, fmt.Errorf("%w: feature store is not configured", ErrDependencyUnavailable)
	}

	run, ok, err := s.store.GetLatestRun(ctx, season)
	if err != nil {
		return dataset.RunSummary{}, fmt.Errorf("get latest run: %w", err)
	}
	if !ok {
		return dataset.RunSummary{}, fmt.Errorf("%w: no run for season=%s", ErrNotFound, season)
	}
	return run, nil
}

func (s *DatasetQueryService) LatestSnapshot(ctx context.Context, season string) (dataset.RunSummary, []dataset.FeatureRow, error) {
	run, err := s.LatestRun(ctx, season)
	if err != nil {
		return dataset.RunSummary{}, nil, err
	}

	rows, err := s.store.ListSnapshot(ctx, run.ID)
	if err != nil {
		return dataset.RunSummary{}, nil, fmt.Errorf("list snapshot: %w", err)
	}
	return run, rows, nil
}

func (s *DatasetQueryService) LatestPlans(ctx context.Context, season string) (dataset.RunSummary, []split.Plan, error) {
	run, err := s.LatestRun(ctx, season)
	if err != nil {
		return dataset.RunSummary{}, nil, err
	}

	plans, err := s.store.ListPlans(ctx, run.ID)
	if err != nil {
		return dataset.RunSummary{}, nil, fmt.Errorf("list plans: %w", err)
	}
	return run, plans, nil
}
