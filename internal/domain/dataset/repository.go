package dataset

import (
	"context"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
)

// Repository persists completed runs. A run is saved whole or not at all.
type Repository interface {
	SaveRun(ctx context.Context, run Run) error
	GetLatestRun(ctx context.Context, season string) (RunSummary, bool, error)
	ListSnapshot(ctx context.Context, runID string) ([]FeatureRow, error)
	ListPlans(ctx context.Context, runID string) ([]split.Plan, error)
}
