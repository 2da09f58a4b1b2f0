package dataset

import (
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/stat"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/teamstats"
)

// Warning is a bitset of non-fatal row conditions.
type Warning uint8

const (
	// WarnInsufficientHistory: at least one rolling window had fewer played records than its size.
	WarnInsufficientHistory Warning = 1 << iota
	// WarnInsufficientHorizon: fewer scheduled fixtures than a requested horizon.
	WarnInsufficientHorizon
	// WarnNoHistory: no played record before the cutoff; aggregates are zero.
	WarnNoHistory
)

func (w Warning) Has(flag Warning) bool {
	return w&flag != 0
}

func (w Warning) String() string {
	parts := make([]string, 0, 3)
	if w.Has(WarnInsufficientHistory) {
		parts = append(parts, "insufficient_history")
	}
	if w.Has(WarnInsufficientHorizon) {
		parts = append(parts, "insufficient_horizon")
	}
	if w.Has(WarnNoHistory) {
		parts = append(parts, "no_history")
	}
	return strings.Join(parts, "|")
}

// Observation is the training unit: a player in a gameweek they played.
type Observation struct {
	PlayerID string `json:"player_id"`
	Gameweek int    `json:"gameweek"`
}

// WindowStats are rolling aggregates over the last Window played records.
type WindowStats struct {
	Window  int                   `json:"window"`
	Count   int                   `json:"count"`
	Partial bool                  `json:"partial"`
	Mean    map[stat.Kind]float64 `json:"mean"`
	Per90   map[stat.Kind]float64 `json:"per90"`
}

// TeamForm are rolling aggregates over the team's last Window gameweeks.
type TeamForm struct {
	Window int                          `json:"window"`
	Count  int                          `json:"count"`
	Mean   map[teamstats.Metric]float64 `json:"mean"`
}

// FixtureWindow summarizes the next Horizon scheduled fixtures after the cutoff.
type FixtureWindow struct {
	Horizon             int     `json:"horizon"`
	Count               int     `json:"count"`
	AvgOpponentStrength float64 `json:"avg_opponent_strength"`
	AvgOpponentElo      float64 `json:"avg_opponent_elo"`
	AvgEloDelta         float64 `json:"avg_elo_delta"`
	Home                int     `json:"home"`
	Away                int     `json:"away"`
	Truncated           bool    `json:"truncated"`
}

// Uncertainty indicators are informational; nothing scales by them.
type Uncertainty struct {
	MissedLast      int     `json:"missed_last"`
	AvgMinutesLast  float64 `json:"avg_minutes_last"`
	EarlySubRate    float64 `json:"early_sub_rate"`
	SubOnRate       float64 `json:"sub_on_rate"`
	Status          string  `json:"status"`
	ChanceOfPlaying *int    `json:"chance_of_playing,omitempty"`
	FlagEarlySub    bool    `json:"flag_early_sub"`
	FlagLowMinutes  bool    `json:"flag_low_minutes"`
	FlagStatus      bool    `json:"flag_status"`
	FlagChance      bool    `json:"flag_chance"`
}

type FeatureRow struct {
	Observation
	TeamID   string                `json:"team_id"`
	Position player.Position       `json:"position"`
	Windows  []WindowStats         `json:"windows"`
	Trend    map[stat.Kind]float64 `json:"trend"`
	TeamForm []TeamForm            `json:"team_form"`
	Fixtures []FixtureWindow       `json:"fixtures"`
	// Uncertainty is attached on snapshot rows only.
	Uncertainty *Uncertainty `json:"uncertainty,omitempty"`
	Warnings    Warning      `json:"warnings"`
}

type LabelRow struct {
	Observation
	Horizon int                   `json:"horizon"`
	Total   map[stat.Kind]float64 `json:"total"`
	Average map[stat.Kind]float64 `json:"average"`
}

type FeatureMatrix struct {
	Cutoff int          `json:"cutoff,omitempty"`
	Rows   []FeatureRow `json:"rows"`
}

type LabelMatrix struct {
	Rows []LabelRow `json:"rows"`
}

// ByHorizon returns the label rows for one horizon in matrix order.
func (m LabelMatrix) ByHorizon(horizon int) []LabelRow {
	out := make([]LabelRow, 0)
	for _, row := range m.Rows {
		if row.Horizon == horizon {
			out = append(out, row)
		}
	}
	return out
}

// Run is the full output of one pipeline execution.
type Run struct {
	ID            string
	Season        string
	MaxFinishedGW int
	CreatedAt     time.Time
	Features      FeatureMatrix
	Labels        LabelMatrix
	Snapshot      FeatureMatrix
	Plans         []split.Plan
}

// RunSummary is the stored header of a run.
type RunSummary struct {
	ID            string    `json:"id"`
	Season        string    `json:"season"`
	MaxFinishedGW int       `json:"max_finished_gw"`
	FeatureRows   int       `json:"feature_rows"`
	LabelRows     int       `json:"label_rows"`
	SnapshotRows  int       `json:"snapshot_rows"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r Run) Summary() RunSummary {
	return RunSummary{
		ID:            r.ID,
		Season:        r.Season,
		MaxFinishedGW: r.MaxFinishedGW,
		FeatureRows:   len(r.Features.Rows),
		LabelRows:     len(r.Labels.Rows),
		SnapshotRows:  len(r.Snapshot.Rows),
		CreatedAt:     r.CreatedAt,
	}
}
