package memory

import (
	"context"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/fixture"
)

type FixtureRepository struct {
	store *seasonStore[fixture.Fixture]
}

func NewFixtureRepository() *FixtureRepository {
	return &FixtureRepository{store: newSeasonStore[fixture.Fixture]()}
}

func (r *FixtureRepository) Put(season string, fixtures []fixture.Fixture) {
	r.store.put(season, fixtures)
}

func (r *FixtureRepository) ListBySeason(_ context.Context, season string) ([]fixture.Fixture, error) {
	return r.store.list(season), nil
}
