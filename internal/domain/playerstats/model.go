package playerstats

import (
	"fmt"
	"sort"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/stat"
)

// Appearance is one player's line in one match. A gameweek-level source row
// without match detail is an appearance with an empty MatchID.
type Appearance struct {
	PlayerID              string
	MatchID               string
	Gameweek              int
	Minutes               float64
	Points                float64
	ExpectedGoals         float64
	ExpectedAssists       float64
	DefensiveContribution float64
	Goals                 float64
	Assists               float64
	CleanSheets           float64
	Saves                 float64
	Bonus                 float64
	Starts                float64
	StartMinute           *int
	FinishMinute          *int
}

func (a Appearance) Validate() error {
	if a.PlayerID == "" {
		return fmt.Errorf("appearance player id is required")
	}
	if a.Gameweek <= 0 {
		return fmt.Errorf("appearance gameweek must be > 0: player=%s", a.PlayerID)
	}
	if a.Minutes < 0 {
		return fmt.Errorf("appearance minutes must be >= 0: player=%s gw=%d", a.PlayerID, a.Gameweek)
	}
	return nil
}

// GameweekRecord is the realized per-gameweek line of a player. Double
// gameweeks are summed into one record.
type GameweekRecord struct {
	PlayerID              string
	Gameweek              int
	Minutes               float64
	Points                float64
	ExpectedGoals         float64
	ExpectedAssists       float64
	DefensiveContribution float64
	Goals                 float64
	Assists               float64
	CleanSheets           float64
	Saves                 float64
	Bonus                 float64
	Starts                float64
	// Matches counts appearances with minutes > 0.
	Matches      int
	EarlySubOffs int
	SubOns       int
}

func (r GameweekRecord) Played() bool {
	return r.Minutes > 0
}

// Value returns the stat for the gameweek.
func (r GameweekRecord) Value(kind stat.Kind) float64 {
	switch kind {
	case stat.Minutes:
		return r.Minutes
	case stat.Points:
		return r.Points
	case stat.ExpectedGoals:
		return r.ExpectedGoals
	case stat.ExpectedAssists:
		return r.ExpectedAssists
	case stat.DefensiveContribution:
		return r.DefensiveContribution
	case stat.Goals:
		return r.Goals
	case stat.Assists:
		return r.Assists
	case stat.CleanSheets:
		return r.CleanSheets
	case stat.Saves:
		return r.Saves
	case stat.Bonus:
		return r.Bonus
	case stat.Starts:
		return r.Starts
	default:
		return 0
	}
}

// SubstitutionRules classify match-level substitution timing.
type SubstitutionRules struct {
	// EarlySubMinute: a starter finishing before this minute was subbed off early.
	EarlySubMinute int
	// SubOnMinute: entering after this minute counts as a substitute appearance.
	SubOnMinute int
}

func DefaultSubstitutionRules() SubstitutionRules {
	return SubstitutionRules{EarlySubMinute: 70, SubOnMinute: 1}
}

type recordKey struct {
	playerID string
	gameweek int
}

// Collapse sums appearances into one record per (player, gameweek), ordered
// by player id then gameweek.
func Collapse(appearances []Appearance, rules SubstitutionRules) []GameweekRecord {
	byKey := make(map[recordKey]*GameweekRecord, len(appearances))
	for _, a := range appearances {
		key := recordKey{playerID: a.PlayerID, gameweek: a.Gameweek}
		rec, ok := byKey[key]
		if !ok {
			rec = &GameweekRecord{PlayerID: a.PlayerID, Gameweek: a.Gameweek}
			byKey[key] = rec
		}

		rec.Minutes += a.Minutes
		rec.Points += a.Points
		rec.ExpectedGoals += a.ExpectedGoals
		rec.ExpectedAssists += a.ExpectedAssists
		rec.DefensiveContribution += a.DefensiveContribution
		rec.Goals += a.Goals
		rec.Assists += a.Assists
		rec.CleanSheets += a.CleanSheets
		rec.Saves += a.Saves
		rec.Bonus += a.Bonus
		rec.Starts += a.Starts

		if a.Minutes <= 0 {
			continue
		}
		rec.Matches++
		if a.StartMinute == nil {
			continue
		}
		if *a.StartMinute > rules.SubOnMinute {
			rec.SubOns++
			continue
		}
		if a.FinishMinute != nil && *a.FinishMinute < rules.EarlySubMinute {
			rec.EarlySubOffs++
		}
	}

	out := make([]GameweekRecord, 0, len(byKey))
	for _, rec := range byKey {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].Gameweek < out[j].Gameweek
	})

	return out
}
