package fixture

import (
	"fmt"
	"sort"
	"strings"
)

// Fixture represents one scheduled match. Finished fixtures are realized
// history; unfinished ones are schedule-only and may feed fixture difficulty
// but never labels.
type Fixture struct {
	MatchID    string
	Gameweek   int
	HomeTeamID string
	AwayTeamID string
	HomeElo    float64
	AwayElo    float64
	Finished   bool
}

func (f Fixture) Validate() error {
	if f.MatchID == "" {
		return fmt.Errorf("fixture match id is required")
	}
	if f.Gameweek <= 0 {
		return fmt.Errorf("fixture gameweek must be > 0: match=%s", f.MatchID)
	}
	if f.HomeTeamID == "" || f.AwayTeamID == "" {
		return fmt.Errorf("fixture teams are required: match=%s", f.MatchID)
	}
	if f.HomeTeamID == f.AwayTeamID {
		return fmt.Errorf("fixture home and away team are equal: match=%s", f.MatchID)
	}

	return nil
}

// ParseFinished reads the finished column. Source files carry booleans in
// several spellings and sometimes a match status instead.
func ParseFinished(value string) bool {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "TRUE", "T", "1", "YES", "FINISHED", "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

// FinishedIndex lists the gameweeks whose scheduled matches have all finished.
type FinishedIndex struct {
	Gameweeks     []int
	MaxFinishedGW int
}

// ComputeFinishedIndex groups fixtures by gameweek and keeps the gameweeks in
// which every fixture is finished.
func ComputeFinishedIndex(fixtures []Fixture) FinishedIndex {
	allFinished := make(map[int]bool)
	for _, item := range fixtures {
		done, seen := allFinished[item.Gameweek]
		if !seen {
			allFinished[item.Gameweek] = item.Finished
			continue
		}
		allFinished[item.Gameweek] = done && item.Finished
	}

	out := FinishedIndex{Gameweeks: make([]int, 0, len(allFinished))}
	for gw, done := range allFinished {
		if done {
			out.Gameweeks = append(out.Gameweeks, gw)
		}
	}
	sort.Ints(out.Gameweeks)
	if n := len(out.Gameweeks); n > 0 {
		out.MaxFinishedGW = out.Gameweeks[n-1]
	}

	return out
}

func (i FinishedIndex) IsFinished(gameweek int) bool {
	pos := sort.SearchInts(i.Gameweeks, gameweek)
	return pos < len(i.Gameweeks) && i.Gameweeks[pos] == gameweek
}
