package usecase

import (
	"fmt"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/team"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/teamstats"
)

// syntheticSeason builds a four team season with two fixtures per gameweek.
// Gameweeks up to finished are played; later ones are schedule only.
// p3 moves from team C to team D at gameweek 5.
func syntheticSeason(gameweeks, finished int) Tables {
	tables := Tables{
		Teams: []team.Team{
			{Code: "1", ID: "A", Name: "Alpha", Strength: 4, Elo: 1600},
			{Code: "2", ID: "B", Name: "Bravo", Strength: 3, Elo: 1500},
			{Code: "3", ID: "C", Name: "Charlie", Strength: 2, Elo: 1400},
			{Code: "4", ID: "D", Name: "Delta", Strength: 5, Elo: 1700},
		},
		Players: []player.Player{
			{ID: "p1", Name: "One", TeamCode: "1", Position: player.PositionMidfielder, Status: "a"},
			{ID: "p2", Name: "Two", TeamCode: "2", Position: player.PositionForward, Status: "d", ChanceOfPlaying: ptrInt(50)},
			{ID: "p3", Name: "Three", TeamCode: "3", Position: player.PositionDefender},
			{ID: "p3", Name: "Three", TeamCode: "4", Position: player.PositionDefender, Gameweek: 5},
		},
	}

	for gw := 1; gw <= gameweeks; gw++ {
		done := gw <= finished
		home1, away1 := "A", "B"
		home2, away2 := "C", "D"
		if gw%2 == 0 {
			home1, away1 = away1, home1
			home2, away2 = away2, home2
		}
		tables.Fixtures = append(tables.Fixtures,
			fixture.Fixture{MatchID: fmt.Sprintf("m%02d-1", gw), Gameweek: gw, HomeTeamID: home1, AwayTeamID: away1, Finished: done},
			fixture.Fixture{MatchID: fmt.Sprintf("m%02d-2", gw), Gameweek: gw, HomeTeamID: home2, AwayTeamID: away2, Finished: done},
		)
		if !done {
			continue
		}

		for _, teamID := range []string{"A", "B", "C", "D"} {
			tables.TeamRecords = append(tables.TeamRecords, teamstats.GameweekRecord{
				TeamID:        teamID,
				Gameweek:      gw,
				Goals:         float64(gw % 3),
				ExpectedGoals: float64(gw%4) / 2,
				Shots:         float64(10 + gw%5),
			})
		}
		for _, playerID := range []string{"p1", "p2", "p3"} {
			minutes := 90.0
			if playerID == "p2" && gw%3 == 0 {
				minutes = 0
			}
			tables.Appearances = append(tables.Appearances, playerstats.Appearance{
				PlayerID:        playerID,
				MatchID:         fmt.Sprintf("m%02d", gw),
				Gameweek:        gw,
				Minutes:         minutes,
				Points:          float64(gw % 7),
				ExpectedGoals:   float64(gw%5) / 10,
				ExpectedAssists: float64(gw%3) / 10,
				Starts:          1,
				StartMinute:     ptrInt(0),
				FinishMinute:    ptrInt(int(minutes)),
			})
		}
	}
	return tables
}

func ptrInt(v int) *int { return &v }

func gameweekRecords(playerID string, values map[int][2]float64) []playerstats.GameweekRecord {
	appearances := make([]playerstats.Appearance, 0, len(values))
	for gw, v := range values {
		appearances = append(appearances, playerstats.Appearance{
			PlayerID: playerID,
			Gameweek: gw,
			Minutes:  v[0],
			Points:   v[1],
		})
	}
	return playerstats.Collapse(appearances, playerstats.DefaultSubstitutionRules())
}
