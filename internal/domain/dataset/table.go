package dataset

import (
	"strconv"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/stat"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/teamstats"
)

// Table is a flat column view used by exporters and the feature store.
type Table struct {
	Header []string
	Rows   [][]any
}

// Records maps each row by column name.
func (t Table) Records() []map[string]any {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]any, len(t.Header))
		for i, col := range t.Header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// FeatureTable flattens rows. Every row of one matrix shares the window and
// horizon layout, so the header is taken from the first row.
func FeatureTable(rows []FeatureRow) Table {
	table := Table{Rows: make([][]any, 0, len(rows))}
	if len(rows) == 0 {
		table.Header = []string{"player_id", "gameweek", "team_id", "position", "warnings"}
		return table
	}

	table.Header = featureHeader(rows[0])
	for _, row := range rows {
		table.Rows = append(table.Rows, featureValues(row))
	}
	return table
}

func featureHeader(row FeatureRow) []string {
	header := []string{"player_id", "gameweek", "team_id", "position", "warnings"}
	for _, w := range row.Windows {
		suffix := "_last" + strconv.Itoa(w.Window)
		header = append(header, "played"+suffix)
		for _, kind := range stat.Rolling() {
			header = append(header, kind.String()+"_mean"+suffix)
			if kind.HasPer90() {
				header = append(header, kind.String()+"_per90"+suffix)
			}
		}
	}
	for _, kind := range stat.Trended() {
		header = append(header, kind.String()+"_trend")
	}
	for _, form := range row.TeamForm {
		suffix := "_last" + strconv.Itoa(form.Window)
		for _, metric := range teamstats.Metrics() {
			header = append(header, metric.String()+"_mean"+suffix)
		}
	}
	for _, fw := range row.Fixtures {
		suffix := "_next" + strconv.Itoa(fw.Horizon)
		header = append(header,
			"fixtures"+suffix,
			"avg_opponent_strength"+suffix,
			"avg_opponent_elo"+suffix,
			"avg_elo_delta"+suffix,
			"home"+suffix,
			"away"+suffix,
			"truncated"+suffix,
		)
	}
	if row.Uncertainty != nil {
		header = append(header,
			"missed_last",
			"avg_minutes_last",
			"early_sub_rate",
			"sub_on_rate",
			"status",
			"chance_of_playing",
			"flag_early_sub",
			"flag_low_minutes",
			"flag_status",
			"flag_chance",
		)
	}
	return header
}

func featureValues(row FeatureRow) []any {
	values := []any{row.PlayerID, row.Gameweek, row.TeamID, string(row.Position), row.Warnings.String()}
	for _, w := range row.Windows {
		values = append(values, w.Count)
		for _, kind := range stat.Rolling() {
			values = append(values, w.Mean[kind])
			if kind.HasPer90() {
				values = append(values, w.Per90[kind])
			}
		}
	}
	for _, kind := range stat.Trended() {
		values = append(values, row.Trend[kind])
	}
	for _, form := range row.TeamForm {
		for _, metric := range teamstats.Metrics() {
			values = append(values, form.Mean[metric])
		}
	}
	for _, fw := range row.Fixtures {
		values = append(values,
			fw.Count,
			fw.AvgOpponentStrength,
			fw.AvgOpponentElo,
			fw.AvgEloDelta,
			fw.Home,
			fw.Away,
			fw.Truncated,
		)
	}
	if u := row.Uncertainty; u != nil {
		var chance any
		if u.ChanceOfPlaying != nil {
			chance = *u.ChanceOfPlaying
		}
		values = append(values,
			u.MissedLast,
			u.AvgMinutesLast,
			u.EarlySubRate,
			u.SubOnRate,
			u.Status,
			chance,
			u.FlagEarlySub,
			u.FlagLowMinutes,
			u.FlagStatus,
			u.FlagChance,
		)
	}
	return values
}

func LabelTable(rows []LabelRow) Table {
	header := []string{"player_id", "gameweek", "horizon"}
	for _, kind := range stat.Targets() {
		header = append(header, kind.String()+"_total", kind.String()+"_avg")
	}

	table := Table{Header: header, Rows: make([][]any, 0, len(rows))}
	for _, row := range rows {
		values := []any{row.PlayerID, row.Gameweek, row.Horizon}
		for _, kind := range stat.Targets() {
			values = append(values, row.Total[kind], row.Average[kind])
		}
		table.Rows = append(table.Rows, values)
	}
	return table
}
