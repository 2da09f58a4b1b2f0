package csvdir

import (
	"context"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/team"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/teamstats"
)

// The adapters below expose one table of a loaded season through the
// domain repository interfaces. They share the source's season cache.

type PlayerRepository struct{ source *Source }

func (s *Source) Players() *PlayerRepository { return &PlayerRepository{source: s} }

func (r *PlayerRepository) ListBySeason(ctx context.Context, season string) ([]player.Player, error) {
	loaded, err := r.source.LoadSeason(ctx, season)
	if err != nil {
		return nil, err
	}
	return append([]player.Player(nil), loaded.Players...), nil
}

type TeamRepository struct{ source *Source }

func (s *Source) Teams() *TeamRepository { return &TeamRepository{source: s} }

func (r *TeamRepository) ListBySeason(ctx context.Context, season string) ([]team.Team, error) {
	loaded, err := r.source.LoadSeason(ctx, season)
	if err != nil {
		return nil, err
	}
	return append([]team.Team(nil), loaded.Teams...), nil
}

type FixtureRepository struct{ source *Source }

func (s *Source) Fixtures() *FixtureRepository { return &FixtureRepository{source: s} }

func (r *FixtureRepository) ListBySeason(ctx context.Context, season string) ([]fixture.Fixture, error) {
	loaded, err := r.source.LoadSeason(ctx, season)
	if err != nil {
		return nil, err
	}
	return append([]fixture.Fixture(nil), loaded.Fixtures...), nil
}

type PlayerStatsRepository struct{ source *Source }

func (s *Source) PlayerStats() *PlayerStatsRepository { return &PlayerStatsRepository{source: s} }

func (r *PlayerStatsRepository) ListAppearancesBySeason(ctx context.Context, season string) ([]playerstats.Appearance, error) {
	loaded, err := r.source.LoadSeason(ctx, season)
	if err != nil {
		return nil, err
	}
	return append([]playerstats.Appearance(nil), loaded.Appearances...), nil
}

type TeamStatsRepository struct{ source *Source }

func (s *Source) TeamStats() *TeamStatsRepository { return &TeamStatsRepository{source: s} }

func (r *TeamStatsRepository) ListBySeason(ctx context.Context, season string) ([]teamstats.GameweekRecord, error) {
	loaded, err := r.source.LoadSeason(ctx, season)
	if err != nil {
		return nil, err
	}
	return append([]teamstats.GameweekRecord(nil), loaded.TeamRecords...), nil
}
