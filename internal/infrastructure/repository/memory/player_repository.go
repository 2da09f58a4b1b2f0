package memory

import (
	"context"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
)

type PlayerRepository struct {
	store *seasonStore[player.Player]
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{store: newSeasonStore[player.Player]()}
}

// Put replaces the mapping rows of a season.
func (r *PlayerRepository) Put(season string, players []player.Player) {
	r.store.put(season, players)
}

func (r *PlayerRepository) ListBySeason(_ context.Context, season string) ([]player.Player, error) {
	return r.store.list(season), nil
}
