package teamstats

import (
	"fmt"
	"sort"
)

// GameweekRecord is the realized line of a team in one gameweek.
type GameweekRecord struct {
	TeamID               string
	Gameweek             int
	Goals                float64
	ExpectedGoals        float64
	ExpectedGoalsAgainst float64
	CleanSheets          float64
	Shots                float64
	Strength             float64
	Elo                  float64
}

func (r GameweekRecord) Validate() error {
	if r.TeamID == "" {
		return fmt.Errorf("team record team id is required")
	}
	if r.Gameweek <= 0 {
		return fmt.Errorf("team record gameweek must be > 0: team=%s", r.TeamID)
	}
	return nil
}

// Metric is one tracked team statistic.
type Metric int

const (
	MetricGoals Metric = iota + 1
	MetricExpectedGoals
	MetricExpectedGoalsAgainst
	MetricCleanSheets
	MetricShots
)

func Metrics() []Metric {
	return []Metric{
		MetricGoals,
		MetricExpectedGoals,
		MetricExpectedGoalsAgainst,
		MetricCleanSheets,
		MetricShots,
	}
}

func (m Metric) String() string {
	switch m {
	case MetricGoals:
		return "team_goals"
	case MetricExpectedGoals:
		return "team_expected_goals"
	case MetricExpectedGoalsAgainst:
		return "team_expected_goals_against"
	case MetricCleanSheets:
		return "team_clean_sheets"
	case MetricShots:
		return "team_shots"
	default:
		return fmt.Sprintf("team_metric(%d)", int(m))
	}
}

func ParseMetric(value string) (Metric, error) {
	for _, m := range Metrics() {
		if m.String() == value {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown team metric %q", value)
}

func (m Metric) MarshalText() ([]byte, error) {
	if m < MetricGoals || m > MetricShots {
		return nil, fmt.Errorf("invalid team metric %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Metric) UnmarshalText(text []byte) error {
	metric, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = metric
	return nil
}

func (r GameweekRecord) Value(m Metric) float64 {
	switch m {
	case MetricGoals:
		return r.Goals
	case MetricExpectedGoals:
		return r.ExpectedGoals
	case MetricExpectedGoalsAgainst:
		return r.ExpectedGoalsAgainst
	case MetricCleanSheets:
		return r.CleanSheets
	case MetricShots:
		return r.Shots
	default:
		return 0
	}
}

// SortByTeamAndGameweek orders records in place.
func SortByTeamAndGameweek(items []GameweekRecord) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].TeamID != items[j].TeamID {
			return items[i].TeamID < items[j].TeamID
		}
		return items[i].Gameweek < items[j].Gameweek
	})
}
