package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
	basecache "github.com/riskibarqy/fantasy-forecast/internal/platform/cache"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/resilience"
)

// DatasetRepository fronts the feature store for the read API. Reads go
// through a circuit breaker and are cached; a save drops the season's latest
// pointer so the new run becomes visible at once. Stored runs never change,
// so snapshot and plan entries stay valid for their whole TTL.
type DatasetRepository struct {
	next      dataset.Repository
	breaker   *resilience.CircuitBreaker
	latest    *basecache.Store[cachedLatestRun]
	snapshots *basecache.Store[[]dataset.FeatureRow]
	plans     *basecache.Store[[]split.Plan]
}

type cachedLatestRun struct {
	summary dataset.RunSummary
	found   bool
}

func NewDatasetRepository(next dataset.Repository, ttl time.Duration, breaker *resilience.CircuitBreaker) *DatasetRepository {
	return &DatasetRepository{
		next:      next,
		breaker:   breaker,
		latest:    basecache.NewStore[cachedLatestRun](ttl),
		snapshots: basecache.NewStore[[]dataset.FeatureRow](ttl),
		plans:     basecache.NewStore[[]split.Plan](ttl),
	}
}

func (r *DatasetRepository) SaveRun(ctx context.Context, run dataset.Run) error {
	if err := r.next.SaveRun(ctx, run); err != nil {
		return err
	}
	r.latest.DeletePrefix("latest:" + run.Season)
	return nil
}

func (r *DatasetRepository) GetLatestRun(ctx context.Context, season string) (dataset.RunSummary, bool, error) {
	v, err := r.latest.GetOrLoad(ctx, "latest:"+season, func(ctx context.Context) (cachedLatestRun, error) {
		return resilience.Call(r.breaker, func() (cachedLatestRun, error) {
			summary, found, err := r.next.GetLatestRun(ctx, season)
			return cachedLatestRun{summary: summary, found: found}, err
		})
	})
	if err != nil {
		return dataset.RunSummary{}, false, err
	}
	return v.summary, v.found, nil
}

func (r *DatasetRepository) ListSnapshot(ctx context.Context, runID string) ([]dataset.FeatureRow, error) {
	rows, err := r.snapshots.GetOrLoad(ctx, "snapshot:"+runID, func(ctx context.Context) ([]dataset.FeatureRow, error) {
		return resilience.Call(r.breaker, func() ([]dataset.FeatureRow, error) {
			return r.next.ListSnapshot(ctx, runID)
		})
	})
	if err != nil {
		return nil, err
	}
	return append([]dataset.FeatureRow(nil), rows...), nil
}

func (r *DatasetRepository) ListPlans(ctx context.Context, runID string) ([]split.Plan, error) {
	plans, err := r.plans.GetOrLoad(ctx, "plans:"+runID, func(ctx context.Context) ([]split.Plan, error) {
		return resilience.Call(r.breaker, func() ([]split.Plan, error) {
			return r.next.ListPlans(ctx, runID)
		})
	})
	if err != nil {
		return nil, err
	}
	return append([]split.Plan(nil), plans...), nil
}
