package memory

import (
	"context"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/teamstats"
)

type PlayerStatsRepository struct {
	store *seasonStore[playerstats.Appearance]
}

func NewPlayerStatsRepository() *PlayerStatsRepository {
	return &PlayerStatsRepository{store: newSeasonStore[playerstats.Appearance]()}
}

func (r *PlayerStatsRepository) Put(season string, appearances []playerstats.Appearance) {
	r.store.put(season, appearances)
}

func (r *PlayerStatsRepository) ListAppearancesBySeason(_ context.Context, season string) ([]playerstats.Appearance, error) {
	return r.store.list(season), nil
}

type TeamStatsRepository struct {
	store *seasonStore[teamstats.GameweekRecord]
}

func NewTeamStatsRepository() *TeamStatsRepository {
	return &TeamStatsRepository{store: newSeasonStore[teamstats.GameweekRecord]()}
}

func (r *TeamStatsRepository) Put(season string, records []teamstats.GameweekRecord) {
	r.store.put(season, records)
}

func (r *TeamStatsRepository) ListBySeason(_ context.Context, season string) ([]teamstats.GameweekRecord, error) {
	return r.store.list(season), nil
}
