package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/team"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/teamstats"
	qb "github.com/riskibarqy/fantasy-forecast/internal/platform/querybuilder"
)

// selectBySeason runs a season-scoped select into dest.
func selectBySeason(ctx context.Context, db *sqlx.DB, dest any, table, season string, columns []string, orderBy ...string) error {
	query, args, err := qb.Select(columns...).From(table).
		Where(qb.Eq("season", season)).
		OrderBy(orderBy...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build select %s by season query: %w", table, err)
	}
	if err := db.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("select %s by season: %w", table, err)
	}
	return nil
}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) ListBySeason(ctx context.Context, season string) ([]player.Player, error) {
	var rows []playerTableModel
	columns := []string{"player_id", "name", "team_code", "position", "gameweek", "status", "chance_of_playing"}
	if err := selectBySeason(ctx, r.db, &rows, "players", season, columns, "player_id", "gameweek"); err != nil {
		return nil, err
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		position, err := player.ParsePosition(row.Position)
		if err != nil {
			return nil, fmt.Errorf("player %s: %w", row.PlayerID, err)
		}
		out = append(out, player.Player{
			ID:              row.PlayerID,
			Name:            row.Name,
			TeamCode:        row.TeamCode,
			Position:        position,
			Gameweek:        row.Gameweek,
			Status:          row.Status,
			ChanceOfPlaying: nullInt64ToIntPtr(row.ChanceOfPlaying),
		})
	}
	return out, nil
}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListBySeason(ctx context.Context, season string) ([]team.Team, error) {
	var rows []teamTableModel
	columns := []string{"code", "team_id", "name", "strength", "elo", "gameweek"}
	if err := selectBySeason(ctx, r.db, &rows, "teams", season, columns, "team_id", "gameweek"); err != nil {
		return nil, err
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Team{
			Code:     row.Code,
			ID:       row.TeamID,
			Name:     row.Name,
			Strength: row.Strength,
			Elo:      row.Elo,
			Gameweek: row.Gameweek,
		})
	}
	return out, nil
}

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) ListBySeason(ctx context.Context, season string) ([]fixture.Fixture, error) {
	var rows []fixtureTableModel
	columns := []string{"match_id", "gameweek", "home_team_id", "away_team_id", "home_elo", "away_elo", "finished"}
	if err := selectBySeason(ctx, r.db, &rows, "fixtures", season, columns, "gameweek", "match_id"); err != nil {
		return nil, err
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixture.Fixture{
			MatchID:    row.MatchID,
			Gameweek:   row.Gameweek,
			HomeTeamID: row.HomeTeamID,
			AwayTeamID: row.AwayTeamID,
			HomeElo:    row.HomeElo,
			AwayElo:    row.AwayElo,
			Finished:   row.Finished,
		})
	}
	return out, nil
}

type PlayerStatsRepository struct {
	db *sqlx.DB
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

func (r *PlayerStatsRepository) ListAppearancesBySeason(ctx context.Context, season string) ([]playerstats.Appearance, error) {
	var rows []playerGameweekTableModel
	columns := []string{
		"player_id",
		"match_id",
		"gameweek",
		"minutes",
		"points",
		"expected_goals",
		"expected_assists",
		"defensive_contribution",
		"goals",
		"assists",
		"clean_sheets",
		"saves",
		"bonus",
		"starts",
		"start_minute",
		"finish_minute",
	}
	if err := selectBySeason(ctx, r.db, &rows, "player_gameweeks", season, columns, "player_id", "gameweek", "match_id"); err != nil {
		return nil, err
	}

	out := make([]playerstats.Appearance, 0, len(rows))
	for _, row := range rows {
		out = append(out, appearanceFromRow(row))
	}
	return out, nil
}

func appearanceFromRow(row playerGameweekTableModel) playerstats.Appearance {
	return playerstats.Appearance{
		PlayerID:              row.PlayerID,
		MatchID:               row.MatchID,
		Gameweek:              row.Gameweek,
		Minutes:               row.Minutes,
		Points:                row.Points,
		ExpectedGoals:         row.ExpectedGoals,
		ExpectedAssists:       row.ExpectedAssists,
		DefensiveContribution: row.DefensiveContribution,
		Goals:                 row.Goals,
		Assists:               row.Assists,
		CleanSheets:           row.CleanSheets,
		Saves:                 row.Saves,
		Bonus:                 row.Bonus,
		Starts:                row.Starts,
		StartMinute:           nullInt64ToIntPtr(row.StartMinute),
		FinishMinute:          nullInt64ToIntPtr(row.FinishMinute),
	}
}

type TeamStatsRepository struct {
	db *sqlx.DB
}

func NewTeamStatsRepository(db *sqlx.DB) *TeamStatsRepository {
	return &TeamStatsRepository{db: db}
}

func (r *TeamStatsRepository) ListBySeason(ctx context.Context, season string) ([]teamstats.GameweekRecord, error) {
	var rows []teamGameweekTableModel
	columns := []string{
		"team_id",
		"gameweek",
		"goals",
		"expected_goals",
		"expected_goals_against",
		"clean_sheets",
		"shots",
		"strength",
		"elo",
	}
	if err := selectBySeason(ctx, r.db, &rows, "team_gameweeks", season, columns, "team_id", "gameweek"); err != nil {
		return nil, err
	}

	out := make([]teamstats.GameweekRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamstats.GameweekRecord{
			TeamID:               row.TeamID,
			Gameweek:             row.Gameweek,
			Goals:                row.Goals,
			ExpectedGoals:        row.ExpectedGoals,
			ExpectedGoalsAgainst: row.ExpectedGoalsAgainst,
			CleanSheets:          row.CleanSheets,
			Shots:                row.Shots,
			Strength:             row.Strength,
			Elo:                  row.Elo,
		})
	}
	return out, nil
}
