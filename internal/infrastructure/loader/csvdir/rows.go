package csvdir

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/team"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/teamstats"
	"github.com/riskibarqy/fantasy-forecast/internal/usecase"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("csv")
	})
	return v
}

// checkRow runs the struct tags of a parsed row and reports the first
// failure as a schema error on the offending column.
func checkRow(table, key string, row any) error {
	err := validate.Struct(row)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &usecase.SchemaError{Table: table, Field: fe.Field(), Key: key, Reason: fmt.Sprintf("failed %s check", fe.Tag())}
	}
	return fmt.Errorf("validate %s row %s: %w", table, key, err)
}

type teamRow struct {
	Code     string  `csv:"code" validate:"required"`
	ID       string  `csv:"id" validate:"required"`
	Name     string  `csv:"name"`
	Strength float64 `csv:"strength" validate:"gte=0"`
	Elo      float64 `csv:"elo" validate:"gte=0"`
}

func parseTeams(t *csvTable) ([]team.Team, error) {
	out := make([]team.Team, 0, len(t.records))
	for i, rec := range t.records {
		key := fmt.Sprintf("%s row %d", gwKey(t.gameweek), i+1)
		row := teamRow{Code: t.str(rec, "code"), ID: t.str(rec, "id"), Name: t.str(rec, "name")}
		var err error
		if row.Strength, err = t.float(rec, "strength", key); err != nil {
			return nil, err
		}
		if row.Elo, err = t.float(rec, "elo", key); err != nil {
			return nil, err
		}
		if err := checkRow(t.name, key, row); err != nil {
			return nil, err
		}
		out = append(out, team.Team{
			Code:     row.Code,
			ID:       row.ID,
			Name:     row.Name,
			Strength: row.Strength,
			Elo:      row.Elo,
			Gameweek: t.gameweek,
		})
	}
	return out, nil
}

type playerRow struct {
	PlayerID string `csv:"player_id" validate:"required"`
	TeamCode string `csv:"team_code" validate:"required"`
	Position string `csv:"position" validate:"required"`
	Chance   *int   `csv:"chance_of_playing_next_round" validate:"omitempty,gte=0,lte=100"`
}

func parsePlayers(t *csvTable) ([]player.Player, error) {
	out := make([]player.Player, 0, len(t.records))
	for i, rec := range t.records {
		key := fmt.Sprintf("%s row %d", gwKey(t.gameweek), i+1)
		row := playerRow{
			PlayerID: t.str(rec, "player_id"),
			TeamCode: t.str(rec, "team_code"),
			Position: t.str(rec, "position"),
		}
		var err error
		if row.Chance, err = t.optInt(rec, "chance_of_playing_next_round", key); err != nil {
			return nil, err
		}
		if err := checkRow(t.name, key, row); err != nil {
			return nil, err
		}
		position, err := player.ParsePosition(row.Position)
		if err != nil {
			return nil, &usecase.SchemaError{Table: t.name, Field: "position", Key: row.PlayerID, Reason: err.Error()}
		}

		status := t.str(rec, "status")
		if isBlank(status) {
			status = ""
		}
		out = append(out, player.Player{
			ID:              row.PlayerID,
			Name:            t.str(rec, "web_name"),
			TeamCode:        row.TeamCode,
			Position:        position,
			Gameweek:        t.gameweek,
			Status:          status,
			ChanceOfPlaying: row.Chance,
		})
	}
	return out, nil
}

type fixtureRow struct {
	MatchID    string  `csv:"match_id" validate:"required"`
	Gameweek   int     `csv:"gameweek" validate:"gt=0"`
	HomeTeamID string  `csv:"home_team" validate:"required"`
	AwayTeamID string  `csv:"away_team" validate:"required,nefield=HomeTeamID"`
	HomeElo    float64 `csv:"home_team_elo" validate:"gte=0"`
	AwayElo    float64 `csv:"away_team_elo" validate:"gte=0"`
	HomeScore  *int    `csv:"home_score" validate:"omitempty,gte=0"`
	AwayScore  *int    `csv:"away_score" validate:"omitempty,gte=0"`
}

// scheduledMatch is a fixture plus its score, when the source carries one.
type scheduledMatch struct {
	fixture.Fixture
	HomeScore *int
	AwayScore *int
}

func parseFixtures(t *csvTable) ([]scheduledMatch, error) {
	out := make([]scheduledMatch, 0, len(t.records))
	for i, rec := range t.records {
		key := fmt.Sprintf("%s row %d", gwKey(t.gameweek), i+1)
		row := fixtureRow{
			MatchID:    t.str(rec, "match_id"),
			HomeTeamID: t.str(rec, "home_team"),
			AwayTeamID: t.str(rec, "away_team"),
		}
		var err error
		if row.Gameweek, err = t.gameweekOf(rec, key, "gameweek", "gw"); err != nil {
			return nil, err
		}
		if row.HomeElo, err = t.float(rec, "home_team_elo", key); err != nil {
			return nil, err
		}
		if row.AwayElo, err = t.float(rec, "away_team_elo", key); err != nil {
			return nil, err
		}
		if row.HomeScore, err = t.optInt(rec, "home_score", key); err != nil {
			return nil, err
		}
		if row.AwayScore, err = t.optInt(rec, "away_score", key); err != nil {
			return nil, err
		}
		if err := checkRow(t.name, key, row); err != nil {
			return nil, err
		}
		out = append(out, scheduledMatch{
			Fixture: fixture.Fixture{
				MatchID:    row.MatchID,
				Gameweek:   row.Gameweek,
				HomeTeamID: row.HomeTeamID,
				AwayTeamID: row.AwayTeamID,
				HomeElo:    row.HomeElo,
				AwayElo:    row.AwayElo,
				Finished:   fixture.ParseFinished(t.str(rec, "finished")),
			},
			HomeScore: row.HomeScore,
			AwayScore: row.AwayScore,
		})
	}
	return out, nil
}

type gameweekStatRow struct {
	PlayerID string  `csv:"id" validate:"required"`
	Gameweek int     `csv:"gw" validate:"gt=0"`
	Minutes  float64 `csv:"minutes" validate:"gte=0"`
}

// gameweekStatColumns maps appearance fields to their source columns.
var gameweekStatColumns = []struct {
	column string
	set    func(a *playerstats.Appearance, v float64)
}{
	{"event_points", func(a *playerstats.Appearance, v float64) { a.Points = v }},
	{"expected_goals", func(a *playerstats.Appearance, v float64) { a.ExpectedGoals = v }},
	{"expected_assists", func(a *playerstats.Appearance, v float64) { a.ExpectedAssists = v }},
	{"defensive_contribution", func(a *playerstats.Appearance, v float64) { a.DefensiveContribution = v }},
	{"goals_scored", func(a *playerstats.Appearance, v float64) { a.Goals = v }},
	{"assists", func(a *playerstats.Appearance, v float64) { a.Assists = v }},
	{"clean_sheets", func(a *playerstats.Appearance, v float64) { a.CleanSheets = v }},
	{"saves", func(a *playerstats.Appearance, v float64) { a.Saves = v }},
	{"bonus", func(a *playerstats.Appearance, v float64) { a.Bonus = v }},
	{"starts", func(a *playerstats.Appearance, v float64) { a.Starts = v }},
}

func parseGameweekStats(t *csvTable) ([]playerstats.Appearance, error) {
	out := make([]playerstats.Appearance, 0, len(t.records))
	for i, rec := range t.records {
		key := fmt.Sprintf("%s row %d", gwKey(t.gameweek), i+1)
		row := gameweekStatRow{PlayerID: t.str(rec, "id")}
		var err error
		if row.Gameweek, err = t.gameweekOf(rec, key, "gw"); err != nil {
			return nil, err
		}
		if row.Minutes, err = t.float(rec, "minutes", key); err != nil {
			return nil, err
		}
		if err := checkRow(t.name, key, row); err != nil {
			return nil, err
		}

		a := playerstats.Appearance{PlayerID: row.PlayerID, Gameweek: row.Gameweek, Minutes: row.Minutes}
		for _, c := range gameweekStatColumns {
			v, err := t.float(rec, c.column, key)
			if err != nil {
				return nil, err
			}
			c.set(&a, v)
		}
		out = append(out, a)
	}
	return out, nil
}

type matchStatRow struct {
	PlayerID     string  `csv:"player_id" validate:"required"`
	MatchID      string  `csv:"match_id" validate:"required"`
	Minutes      float64 `csv:"minutes_played" validate:"gte=0"`
	StartMinute  *int    `csv:"start_min" validate:"omitempty,gte=0"`
	FinishMinute *int    `csv:"finish_min" validate:"omitempty,gte=0"`
}

func parseMatchStats(t *csvTable) ([]matchStatRow, error) {
	out := make([]matchStatRow, 0, len(t.records))
	for i, rec := range t.records {
		key := fmt.Sprintf("%s row %d", gwKey(t.gameweek), i+1)
		row := matchStatRow{PlayerID: t.str(rec, "player_id"), MatchID: t.str(rec, "match_id")}
		var err error
		if row.Minutes, err = t.float(rec, "minutes_played", key); err != nil {
			return nil, err
		}
		if row.StartMinute, err = t.optInt(rec, "start_min", key); err != nil {
			return nil, err
		}
		if row.FinishMinute, err = t.optInt(rec, "finish_min", key); err != nil {
			return nil, err
		}
		if err := checkRow(t.name, key, row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

type teamStatRow struct {
	TeamID string `csv:"team_id" validate:"required"`
}

var teamStatColumns = []struct {
	column string
	set    func(r *teamstats.GameweekRecord, v float64)
}{
	{"goals", func(r *teamstats.GameweekRecord, v float64) { r.Goals = v }},
	{"expected_goals", func(r *teamstats.GameweekRecord, v float64) { r.ExpectedGoals = v }},
	{"expected_goals_against", func(r *teamstats.GameweekRecord, v float64) { r.ExpectedGoalsAgainst = v }},
	{"clean_sheets", func(r *teamstats.GameweekRecord, v float64) { r.CleanSheets = v }},
	{"shots", func(r *teamstats.GameweekRecord, v float64) { r.Shots = v }},
}

func parseTeamStats(t *csvTable) ([]teamstats.GameweekRecord, error) {
	out := make([]teamstats.GameweekRecord, 0, len(t.records))
	for i, rec := range t.records {
		key := fmt.Sprintf("%s row %d", gwKey(t.gameweek), i+1)
		row := teamStatRow{TeamID: t.str(rec, "team_id")}
		if err := checkRow(t.name, key, row); err != nil {
			return nil, err
		}
		gw, err := t.gameweekOf(rec, key, "gw", "gameweek")
		if err != nil {
			return nil, err
		}
		r := teamstats.GameweekRecord{TeamID: row.TeamID, Gameweek: gw}
		for _, c := range teamStatColumns {
			v, err := t.float(rec, c.column, key)
			if err != nil {
				return nil, err
			}
			c.set(&r, v)
		}
		out = append(out, r)
	}
	return out, nil
}
