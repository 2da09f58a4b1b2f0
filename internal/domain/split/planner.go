package split

import (
	"fmt"
	"slices"
)

// Build plans expanding-window splits for one horizon. Validation windows
// tile backwards from maxFinishedGW in steps of horizon, so they never
// overlap and each one ends where the next split's train range ends.
func Build(maxFinishedGW, horizon int, opts Options) (Plan, error) {
	if horizon <= 0 {
		return Plan{}, fmt.Errorf("horizon must be > 0, got %d", horizon)
	}
	if maxFinishedGW < 0 {
		return Plan{}, fmt.Errorf("max finished gameweek must be >= 0, got %d", maxFinishedGW)
	}
	opts, err := opts.normalize()
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Horizon:       horizon,
		MaxFinishedGW: maxFinishedGW,
		Splits:        []Split{},
	}
	if maxFinishedGW < horizon+1 {
		return plan, nil
	}

	for k := maxFinishedGW - horizon; k >= opts.MinTrainGameweeks; k -= horizon {
		plan.Splits = append(plan.Splits, Split{
			Train:      Range{Start: 1, End: k},
			Validation: Range{Start: k + 1, End: k + horizon},
		})
	}
	slices.Reverse(plan.Splits)

	if maxFinishedGW > opts.HoldoutGameweeks {
		k := maxFinishedGW - opts.HoldoutGameweeks
		plan.Holdout = &Split{
			Train:      Range{Start: 1, End: k},
			Validation: Range{Start: k + 1, End: maxFinishedGW},
			Holdout:    true,
		}
	}

	return plan, nil
}

// Indexes selects row positions for a split from the observation gameweek
// of each label row. A train row is kept only when its whole label window
// t+1..t+horizon lies inside the train range.
func (s Split) Indexes(horizon int, gameweeks []int) (train []int, validation []int) {
	train = make([]int, 0, len(gameweeks))
	validation = make([]int, 0)
	for i, gw := range gameweeks {
		if gw+horizon <= s.Train.End && gw >= s.Train.Start {
			train = append(train, i)
			continue
		}
		if s.Validation.Contains(gw) {
			validation = append(validation, i)
		}
	}
	return train, validation
}

// AssignRows fills the row index sets of every split and the holdout.
// gameweeks[i] is the observation gameweek of the horizon's i-th label row
// and positions[i] its row number in the full label matrix.
func (p Plan) AssignRows(gameweeks, positions []int) (Plan, error) {
	if len(gameweeks) != len(positions) {
		return p, fmt.Errorf("gameweeks and positions differ in length: %d != %d", len(gameweeks), len(positions))
	}

	assign := func(s Split) Split {
		train, validation := s.Indexes(p.Horizon, gameweeks)
		s.TrainRows = remap(train, positions)
		s.ValidationRows = remap(validation, positions)
		return s
	}

	out := p
	out.Splits = make([]Split, len(p.Splits))
	for i, s := range p.Splits {
		out.Splits[i] = assign(s)
	}
	if p.Holdout != nil {
		holdout := assign(*p.Holdout)
		out.Holdout = &holdout
	}
	return out, nil
}

func remap(indexes, positions []int) []int {
	if len(indexes) == 0 {
		return nil
	}
	out := make([]int, len(indexes))
	for i, idx := range indexes {
		out[i] = positions[idx]
	}
	return out
}
