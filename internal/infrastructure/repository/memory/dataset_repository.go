package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
)

// DatasetRepository keeps completed runs in process. The latest run of a
// season is the one saved last.
type DatasetRepository struct {
	mu           sync.RWMutex
	runs         map[string]dataset.Run
	latestSeason map[string]string
}

func NewDatasetRepository() *DatasetRepository {
	return &DatasetRepository{
		runs:         make(map[string]dataset.Run),
		latestSeason: make(map[string]string),
	}
}

func (r *DatasetRepository) SaveRun(_ context.Context, run dataset.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[run.ID] = run
	r.latestSeason[run.Season] = run.ID
	return nil
}

func (r *DatasetRepository) GetLatestRun(_ context.Context, season string) (dataset.RunSummary, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runID, ok := r.latestSeason[season]
	if !ok {
		return dataset.RunSummary{}, false, nil
	}
	return r.runs[runID].Summary(), true, nil
}

func (r *DatasetRepository) ListSnapshot(_ context.Context, runID string) ([]dataset.FeatureRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.runs[runID].Snapshot.Rows
	out := make([]dataset.FeatureRow, 0, len(rows))
	out = append(out, rows...)
	return out, nil
}

func (r *DatasetRepository) ListPlans(_ context.Context, runID string) ([]split.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plans := r.runs[runID].Plans
	out := make([]split.Plan, 0, len(plans))
	out = append(out, plans...)
	return out, nil
}
