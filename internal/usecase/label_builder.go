package usecase

import (
	"sort"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/leakage"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/stat"
)

// LabelBuilder sums realized targets over [t+1, t+N]. A label exists only
// when t+N <= maxFinishedGW.
type LabelBuilder struct {
	horizons []int
}

func NewLabelBuilder(horizons []int) *LabelBuilder {
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}
	sorted := append([]int(nil), horizons...)
	sort.Ints(sorted)
	return &LabelBuilder{horizons: sorted}
}

// Build returns labels for every horizon whose window is fully finished.
// Missing gameweeks inside the window count as zero.
func (b *LabelBuilder) Build(playerID string, records []playerstats.GameweekRecord, cutoff, maxFinishedGW int) ([]dataset.LabelRow, error) {
	entity := "player:" + playerID
	gameweeks := make([]int, len(records))
	for i, rec := range records {
		gameweeks[i] = rec.Gameweek
	}
	if err := leakage.CheckAscending(entity, cutoff, gameweeks...); err != nil {
		return nil, err
	}

	out := make([]dataset.LabelRow, 0, len(b.horizons))
	for _, horizon := range b.horizons {
		if cutoff+horizon > maxFinishedGW {
			continue
		}

		start := sort.SearchInts(gameweeks, cutoff+1)
		row := dataset.LabelRow{
			Observation: dataset.Observation{PlayerID: playerID, Gameweek: cutoff},
			Horizon:     horizon,
			Total:       make(map[stat.Kind]float64, len(stat.Targets())),
			Average:     make(map[stat.Kind]float64, len(stat.Targets())),
		}
		for _, kind := range stat.Targets() {
			row.Total[kind] = 0
		}

		for _, rec := range records[start:] {
			if rec.Gameweek > cutoff+horizon {
				break
			}
			if err := leakage.CheckLabel(entity, cutoff, maxFinishedGW, rec.Gameweek); err != nil {
				return nil, err
			}
			for _, kind := range stat.Targets() {
				row.Total[kind] += rec.Value(kind)
			}
		}
		for _, kind := range stat.Targets() {
			row.Average[kind] = row.Total[kind] / float64(horizon)
		}
		out = append(out, row)
	}
	return out, nil
}
