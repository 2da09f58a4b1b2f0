package usecase

import (
	"sort"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/leakage"
)

var DefaultHorizons = []int{1, 5, 10, 15}

// FixtureDifficultyEstimator summarizes the next N scheduled fixtures after
// a cutoff. It is the only reader of unfinished fixtures.
type FixtureDifficultyEstimator struct {
	horizons []int
}

func NewFixtureDifficultyEstimator(horizons []int) *FixtureDifficultyEstimator {
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}
	sorted := append([]int(nil), horizons...)
	sort.Ints(sorted)
	return &FixtureDifficultyEstimator{horizons: sorted}
}

func (e *FixtureDifficultyEstimator) Horizons() []int {
	return e.horizons
}

// Estimate returns one window per horizon. Ratings come from team rows dated
// before the cutoff; elo stored on the fixture wins over the team row when present.
func (e *FixtureDifficultyEstimator) Estimate(ks *Keyspace, teamID string, cutoff int) ([]dataset.FixtureWindow, dataset.Warning, error) {
	schedule := ks.Schedule(teamID)
	start := sort.Search(len(schedule), func(i int) bool { return schedule[i].Gameweek > cutoff })
	upcoming := schedule[start:]

	own, _, err := ks.RatingBefore(teamID, cutoff)
	if err != nil {
		return nil, 0, err
	}

	var warnings dataset.Warning
	out := make([]dataset.FixtureWindow, 0, len(e.horizons))
	for _, horizon := range e.horizons {
		next := upcoming
		if len(next) > horizon {
			next = next[:horizon]
		}

		fw := dataset.FixtureWindow{
			Horizon:   horizon,
			Count:     len(next),
			Truncated: len(next) < horizon,
		}
		if fw.Truncated {
			warnings |= dataset.WarnInsufficientHorizon
		}

		var strength, oppElo, delta float64
		for _, m := range next {
			if err := leakage.CheckFixture("team:"+teamID, cutoff, m.Gameweek); err != nil {
				return nil, warnings, err
			}

			opp, _, err := ks.RatingBefore(m.OpponentID, cutoff)
			if err != nil {
				return nil, warnings, err
			}
			teamElo := own.Elo
			if m.TeamElo > 0 {
				teamElo = m.TeamElo
			}
			opponentElo := opp.Elo
			if m.OpponentElo > 0 {
				opponentElo = m.OpponentElo
			}

			strength += opp.Strength
			oppElo += opponentElo
			delta += teamElo - opponentElo
			if m.Home {
				fw.Home++
			} else {
				fw.Away++
			}
		}
		if n := float64(len(next)); n > 0 {
			fw.AvgOpponentStrength = strength / n
			fw.AvgOpponentElo = oppElo / n
			fw.AvgEloDelta = delta / n
		}
		out = append(out, fw)
	}

	return out, warnings, nil
}
