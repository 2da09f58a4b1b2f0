package stat

import "fmt"

// Kind is one tracked per-gameweek statistic. The set is closed: every
// consumer switches over it exhaustively instead of looking columns up by name.
type Kind int

const (
	Minutes Kind = iota + 1
	Points
	ExpectedGoals
	ExpectedAssists
	DefensiveContribution
	Goals
	Assists
	CleanSheets
	Saves
	Bonus
	Starts
)

var names = map[Kind]string{
	Minutes:               "minutes",
	Points:                "points",
	ExpectedGoals:         "expected_goals",
	ExpectedAssists:       "expected_assists",
	DefensiveContribution: "defensive_contribution",
	Goals:                 "goals",
	Assists:               "assists",
	CleanSheets:           "clean_sheets",
	Saves:                 "saves",
	Bonus:                 "bonus",
	Starts:                "starts",
}

func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("stat(%d)", int(k))
}

func (k Kind) Valid() bool {
	_, ok := names[k]
	return ok
}

// Targets are the label targets, in output column order.
func Targets() []Kind {
	return []Kind{Points, ExpectedGoals, ExpectedAssists, DefensiveContribution}
}

// Rolling are the stats averaged by the temporal aggregator, in output column order.
func Rolling() []Kind {
	return []Kind{
		Minutes,
		Points,
		ExpectedGoals,
		ExpectedAssists,
		DefensiveContribution,
		Goals,
		Assists,
		CleanSheets,
		Saves,
		Bonus,
		Starts,
	}
}

// Trended are the stats that get a short-minus-long window trend feature.
func Trended() []Kind {
	return []Kind{Points, ExpectedGoals, ExpectedAssists}
}

// HasPer90 reports whether a per-90 rate is meaningful for the stat.
func (k Kind) HasPer90() bool {
	switch k {
	case Minutes, Starts:
		return false
	default:
		return true
	}
}

func Parse(value string) (Kind, error) {
	for kind, name := range names {
		if name == value {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", value)
}

// MarshalText lets kinds key JSON objects by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid stat kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}
