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

// SeasonTables is one season of raw tables as written by the importer.
type SeasonTables struct {
	Players     []player.Player
	Teams       []team.Team
	Fixtures    []fixture.Fixture
	Appearances []playerstats.Appearance
	TeamRecords []teamstats.GameweekRecord
}

type SeasonImporter struct {
	db *sqlx.DB
}

func NewSeasonImporter(db *sqlx.DB) *SeasonImporter {
	return &SeasonImporter{db: db}
}

// ImportSeason replaces every raw table of the season in one transaction.
func (r *SeasonImporter) ImportSeason(ctx context.Context, season string, tables SeasonTables) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx import season: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"players", "teams", "fixtures", "player_gameweeks", "team_gameweeks"} {
		query, args, err := qb.DeleteFrom(table).Where(qb.Eq("season", season)).ToSQL()
		if err != nil {
			return fmt.Errorf("build delete %s query: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete %s season=%s: %w", table, season, err)
		}
	}

	playerRows := make([][]any, 0, len(tables.Players))
	for _, item := range tables.Players {
		playerRows = append(playerRows, []any{
			season, item.ID, item.Name, item.TeamCode, string(item.Position), item.Gameweek, item.Status, intPtrToNullable(item.ChanceOfPlaying),
		})
	}
	teamRows := make([][]any, 0, len(tables.Teams))
	for _, item := range tables.Teams {
		teamRows = append(teamRows, []any{season, item.Code, item.ID, item.Name, item.Strength, item.Elo, item.Gameweek})
	}
	fixtureRows := make([][]any, 0, len(tables.Fixtures))
	for _, item := range tables.Fixtures {
		fixtureRows = append(fixtureRows, []any{
			season, item.MatchID, item.Gameweek, item.HomeTeamID, item.AwayTeamID, item.HomeElo, item.AwayElo, item.Finished,
		})
	}
	appearanceRows := make([][]any, 0, len(tables.Appearances))
	for _, item := range tables.Appearances {
		appearanceRows = append(appearanceRows, []any{
			season, item.PlayerID, item.MatchID, item.Gameweek, item.Minutes, item.Points,
			item.ExpectedGoals, item.ExpectedAssists, item.DefensiveContribution, item.Goals, item.Assists,
			item.CleanSheets, item.Saves, item.Bonus, item.Starts,
			intPtrToNullable(item.StartMinute), intPtrToNullable(item.FinishMinute),
		})
	}
	teamRecordRows := make([][]any, 0, len(tables.TeamRecords))
	for _, item := range tables.TeamRecords {
		teamRecordRows = append(teamRecordRows, []any{
			season, item.TeamID, item.Gameweek, item.Goals, item.ExpectedGoals, item.ExpectedGoalsAgainst,
			item.CleanSheets, item.Shots, item.Strength, item.Elo,
		})
	}

	inserts := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{"players", []string{"season", "player_id", "name", "team_code", "position", "gameweek", "status", "chance_of_playing"}, playerRows},
		{"teams", []string{"season", "code", "team_id", "name", "strength", "elo", "gameweek"}, teamRows},
		{"fixtures", []string{"season", "match_id", "gameweek", "home_team_id", "away_team_id", "home_elo", "away_elo", "finished"}, fixtureRows},
		{"player_gameweeks", []string{
			"season", "player_id", "match_id", "gameweek", "minutes", "points",
			"expected_goals", "expected_assists", "defensive_contribution", "goals", "assists",
			"clean_sheets", "saves", "bonus", "starts", "start_minute", "finish_minute",
		}, appearanceRows},
		{"team_gameweeks", []string{
			"season", "team_id", "gameweek", "goals", "expected_goals", "expected_goals_against",
			"clean_sheets", "shots", "strength", "elo",
		}, teamRecordRows},
	}
	for _, insert := range inserts {
		if err := insertRows(ctx, tx, insert.table, insert.columns, insert.rows); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import season tx: %w", err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sqlx.Tx, table string, columns []string, rows [][]any) error {
	for _, batch := range chunks(rows, insertBatchSize) {
		builder := qb.InsertInto(table).Columns(columns...)
		for _, row := range batch {
			builder.Values(row...)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert %s query: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}
