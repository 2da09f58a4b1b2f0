package usecase

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	gstat "gonum.org/v1/gonum/stat"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/leakage"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/stat"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/teamstats"
)

var DefaultRollingWindows = []int{3, 5, 10}

// PlayerAggregate is the history block of one feature row.
type PlayerAggregate struct {
	Windows  []dataset.WindowStats
	Trend    map[stat.Kind]float64
	Warnings dataset.Warning
}

// TemporalAggregator computes rolling statistics from records strictly
// before a cutoff. Windows count played records, not calendar gameweeks.
type TemporalAggregator struct {
	windows []int
}

func NewTemporalAggregator(windows []int) *TemporalAggregator {
	if len(windows) == 0 {
		windows = DefaultRollingWindows
	}
	sorted := append([]int(nil), windows...)
	sort.Ints(sorted)
	return &TemporalAggregator{windows: sorted}
}

func (a *TemporalAggregator) Windows() []int {
	return a.windows
}

// Player aggregates played records before cutoff. records must be sorted by
// gameweek ascending. Sparse history degrades to partial or zero windows and
// is flagged, never an error; the only error is a leakage violation.
func (a *TemporalAggregator) Player(playerID string, records []playerstats.GameweekRecord, cutoff int) (PlayerAggregate, error) {
	played, err := playedBefore("player:"+playerID, records, cutoff)
	if err != nil {
		return PlayerAggregate{}, err
	}

	out := PlayerAggregate{
		Windows: make([]dataset.WindowStats, 0, len(a.windows)),
		Trend:   make(map[stat.Kind]float64, len(stat.Trended())),
	}
	if len(played) == 0 {
		out.Warnings |= dataset.WarnNoHistory | dataset.WarnInsufficientHistory
	}

	for _, window := range a.windows {
		ws := playerWindow(played, window)
		if ws.Partial {
			out.Warnings |= dataset.WarnInsufficientHistory
		}
		out.Windows = append(out.Windows, ws)
	}

	if len(out.Windows) > 1 {
		short := out.Windows[0]
		long := out.Windows[len(out.Windows)-1]
		for _, kind := range stat.Trended() {
			out.Trend[kind] = short.Mean[kind] - long.Mean[kind]
		}
	}

	return out, nil
}

// playedBefore returns records with gameweek < cutoff and minutes > 0. The
// guard runs on the raw sequence: it must ascend, and every record ahead of
// the split point must precede the cutoff.
func playedBefore(entity string, records []playerstats.GameweekRecord, cutoff int) ([]playerstats.GameweekRecord, error) {
	gameweeks := make([]int, len(records))
	for i, rec := range records {
		gameweeks[i] = rec.Gameweek
	}
	end, err := historySplit(entity, gameweeks, cutoff)
	if err != nil {
		return nil, err
	}

	out := make([]playerstats.GameweekRecord, 0, end)
	for _, rec := range records[:end] {
		if rec.Played() {
			out = append(out, rec)
		}
	}
	return out, nil
}

// historySplit returns the index of the first gameweek at or after cutoff.
func historySplit(entity string, gameweeks []int, cutoff int) (int, error) {
	if err := leakage.CheckAscending(entity, cutoff, gameweeks...); err != nil {
		return 0, err
	}
	end := sort.SearchInts(gameweeks, cutoff)
	if err := leakage.CheckHistoryAll(entity, cutoff, gameweeks[:end]...); err != nil {
		return 0, err
	}
	return end, nil
}

func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func playerWindow(played []playerstats.GameweekRecord, window int) dataset.WindowStats {
	recent := lastN(played, window)
	ws := dataset.WindowStats{
		Window:  window,
		Count:   len(recent),
		Partial: len(recent) < window,
		Mean:    make(map[stat.Kind]float64, len(stat.Rolling())),
		Per90:   make(map[stat.Kind]float64, len(stat.Rolling())),
	}
	if len(recent) == 0 {
		for _, kind := range stat.Rolling() {
			ws.Mean[kind] = 0
			if kind.HasPer90() {
				ws.Per90[kind] = 0
			}
		}
		return ws
	}

	minutes := make([]float64, len(recent))
	for i, rec := range recent {
		minutes[i] = rec.Minutes
	}
	totalMinutes := floats.Sum(minutes)

	values := make([]float64, len(recent))
	for _, kind := range stat.Rolling() {
		for i, rec := range recent {
			values[i] = rec.Value(kind)
		}
		ws.Mean[kind] = gstat.Mean(values, nil)
		if !kind.HasPer90() {
			continue
		}
		if totalMinutes > 0 {
			ws.Per90[kind] = floats.Sum(values) / totalMinutes * 90
		} else {
			ws.Per90[kind] = 0
		}
	}

	return ws
}

// Team aggregates every team gameweek before cutoff.
func (a *TemporalAggregator) Team(teamID string, records []teamstats.GameweekRecord, cutoff int) ([]dataset.TeamForm, error) {
	gameweeks := make([]int, len(records))
	for i, rec := range records {
		gameweeks[i] = rec.Gameweek
	}
	end, err := historySplit("team:"+teamID, gameweeks, cutoff)
	if err != nil {
		return nil, err
	}
	history := records[:end]

	out := make([]dataset.TeamForm, 0, len(a.windows))
	values := make([]float64, 0, len(history))
	for _, window := range a.windows {
		recent := lastN(history, window)
		form := dataset.TeamForm{
			Window: window,
			Count:  len(recent),
			Mean:   make(map[teamstats.Metric]float64, len(teamstats.Metrics())),
		}
		for _, metric := range teamstats.Metrics() {
			if len(recent) == 0 {
				form.Mean[metric] = 0
				continue
			}
			values = values[:0]
			for _, rec := range recent {
				values = append(values, rec.Value(metric))
			}
			form.Mean[metric] = gstat.Mean(values, nil)
		}
		out = append(out, form)
	}
	return out, nil
}
