package memory

import (
	"context"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/team"
)

type TeamRepository struct {
	store *seasonStore[team.Team]
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{store: newSeasonStore[team.Team]()}
}

func (r *TeamRepository) Put(season string, teams []team.Team) {
	r.store.put(season, teams)
}

func (r *TeamRepository) ListBySeason(_ context.Context, season string) ([]team.Team, error) {
	return r.store.list(season), nil
}
