package split

import "fmt"

// Range is an inclusive gameweek range.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Contains(gw int) bool {
	return gw >= r.Start && gw <= r.End
}

func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

// Split is one train/validation pair. Train always starts at gameweek 1.
// TrainRows and ValidationRows index the run's label matrix once assigned.
type Split struct {
	Train          Range `json:"train"`
	Validation     Range `json:"validation"`
	Holdout        bool  `json:"holdout"`
	TrainRows      []int `json:"train_rows,omitempty"`
	ValidationRows []int `json:"validation_rows,omitempty"`
}

// Plan is the backtest sequence for one horizon plus the final holdout.
type Plan struct {
	Horizon       int     `json:"horizon"`
	MaxFinishedGW int     `json:"max_finished_gw"`
	Splits        []Split `json:"splits"`
	Holdout       *Split  `json:"holdout,omitempty"`
}

// Empty reports that the data was too sparse to backtest this horizon.
func (p Plan) Empty() bool {
	return len(p.Splits) == 0
}

type Options struct {
	MinTrainGameweeks int
	HoldoutGameweeks  int
}

const (
	DefaultMinTrainGameweeks = 1
	DefaultHoldoutGameweeks  = 3
	MinHoldoutGameweeks      = 3
	MaxHoldoutGameweeks      = 5
)

func DefaultOptions() Options {
	return Options{
		MinTrainGameweeks: DefaultMinTrainGameweeks,
		HoldoutGameweeks:  DefaultHoldoutGameweeks,
	}
}

func (o Options) normalize() (Options, error) {
	if o.MinTrainGameweeks <= 0 {
		o.MinTrainGameweeks = DefaultMinTrainGameweeks
	}
	if o.HoldoutGameweeks == 0 {
		o.HoldoutGameweeks = DefaultHoldoutGameweeks
	}
	if o.HoldoutGameweeks < MinHoldoutGameweeks || o.HoldoutGameweeks > MaxHoldoutGameweeks {
		return o, fmt.Errorf(
			"holdout gameweeks must be between %d and %d, got %d",
			MinHoldoutGameweeks, MaxHoldoutGameweeks, o.HoldoutGameweeks,
		)
	}
	return o, nil
}
