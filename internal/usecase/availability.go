package usecase

import (
	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
)

type UncertaintyRules struct {
	Window                int
	EarlySubRateThreshold float64
	AvgMinutesThreshold   float64
}

func DefaultUncertaintyRules() UncertaintyRules {
	return UncertaintyRules{
		Window:                5,
		EarlySubRateThreshold: 0.4,
		AvgMinutesThreshold:   60,
	}
}

// BuildUncertainty derives availability indicators from history before the
// cutoff and the externally supplied status of the mapping row.
func BuildUncertainty(
	playerID string,
	records []playerstats.GameweekRecord,
	cutoff int,
	row player.Player,
	rules UncertaintyRules,
) (*dataset.Uncertainty, error) {
	if rules.Window <= 0 {
		rules.Window = DefaultUncertaintyRules().Window
	}

	played, err := playedBefore("player:"+playerID, records, cutoff)
	if err != nil {
		return nil, err
	}

	playedGW := make(map[int]struct{}, len(played))
	for _, rec := range played {
		playedGW[rec.Gameweek] = struct{}{}
	}
	from := max(cutoff-rules.Window, 1)
	missed := 0
	for gw := from; gw < cutoff; gw++ {
		if _, ok := playedGW[gw]; !ok {
			missed++
		}
	}

	recent := lastN(played, rules.Window)
	var minutes float64
	var matches, earlySubs, subOns int
	for _, rec := range recent {
		minutes += rec.Minutes
		matches += rec.Matches
		earlySubs += rec.EarlySubOffs
		subOns += rec.SubOns
	}

	out := &dataset.Uncertainty{
		MissedLast:      missed,
		Status:          row.Status,
		ChanceOfPlaying: row.ChanceOfPlaying,
		FlagStatus:      row.Unavailable(),
		FlagChance:      row.Doubtful(),
	}
	if len(recent) > 0 {
		out.AvgMinutesLast = minutes / float64(len(recent))
	}
	if matches > 0 {
		out.EarlySubRate = float64(earlySubs) / float64(matches)
		out.SubOnRate = float64(subOns) / float64(matches)
	}
	out.FlagEarlySub = out.EarlySubRate > rules.EarlySubRateThreshold
	out.FlagLowMinutes = out.AvgMinutesLast < rules.AvgMinutesThreshold

	return out, nil
}
