package postgres

import "database/sql"

type playerTableModel struct {
	PlayerID        string        `db:"player_id"`
	Name            string        `db:"name"`
	TeamCode        string        `db:"team_code"`
	Position        string        `db:"position"`
	Gameweek        int           `db:"gameweek"`
	Status          string        `db:"status"`
	ChanceOfPlaying sql.NullInt64 `db:"chance_of_playing"`
}

type teamTableModel struct {
	Code     string  `db:"code"`
	TeamID   string  `db:"team_id"`
	Name     string  `db:"name"`
	Strength float64 `db:"strength"`
	Elo      float64 `db:"elo"`
	Gameweek int     `db:"gameweek"`
}

type fixtureTableModel struct {
	MatchID    string  `db:"match_id"`
	Gameweek   int     `db:"gameweek"`
	HomeTeamID string  `db:"home_team_id"`
	AwayTeamID string  `db:"away_team_id"`
	HomeElo    float64 `db:"home_elo"`
	AwayElo    float64 `db:"away_elo"`
	Finished   bool    `db:"finished"`
}

type playerGameweekTableModel struct {
	PlayerID              string        `db:"player_id"`
	MatchID               string        `db:"match_id"`
	Gameweek              int           `db:"gameweek"`
	Minutes               float64       `db:"minutes"`
	Points                float64       `db:"points"`
	ExpectedGoals         float64       `db:"expected_goals"`
	ExpectedAssists       float64       `db:"expected_assists"`
	DefensiveContribution float64       `db:"defensive_contribution"`
	Goals                 float64       `db:"goals"`
	Assists               float64       `db:"assists"`
	CleanSheets           float64       `db:"clean_sheets"`
	Saves                 float64       `db:"saves"`
	Bonus                 float64       `db:"bonus"`
	Starts                float64       `db:"starts"`
	StartMinute           sql.NullInt64 `db:"start_minute"`
	FinishMinute          sql.NullInt64 `db:"finish_minute"`
}

type teamGameweekTableModel struct {
	TeamID               string  `db:"team_id"`
	Gameweek             int     `db:"gameweek"`
	Goals                float64 `db:"goals"`
	ExpectedGoals        float64 `db:"expected_goals"`
	ExpectedGoalsAgainst float64 `db:"expected_goals_against"`
	CleanSheets          float64 `db:"clean_sheets"`
	Shots                float64 `db:"shots"`
	Strength             float64 `db:"strength"`
	Elo                  float64 `db:"elo"`
}
