package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/dataset"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/split"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/stat"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/logging"
)

func sampleRun(t *testing.T) dataset.Run {
	t.Helper()
	plan, err := split.Build(8, 2, split.DefaultOptions())
	require.NoError(t, err)
	plan, err = plan.AssignRows([]int{1, 2, 3, 4, 5, 6}, []int{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)

	feature := dataset.FeatureRow{
		Observation: dataset.Observation{PlayerID: "p1", Gameweek: 4},
		TeamID:      "t1",
		Position:    player.PositionMidfielder,
		Trend:       map[stat.Kind]float64{stat.Points: 1.5},
		Warnings:    dataset.WarnInsufficientHistory,
	}
	label := dataset.LabelRow{
		Observation: dataset.Observation{PlayerID: "p1", Gameweek: 4},
		Horizon:     2,
		Total:       map[stat.Kind]float64{stat.Points: 9},
		Average:     map[stat.Kind]float64{stat.Points: 4.5},
	}
	return dataset.Run{
		ID:            "run-1",
		Season:        "2024-25",
		MaxFinishedGW: 8,
		Features:      dataset.FeatureMatrix{Rows: []dataset.FeatureRow{feature}},
		Labels:        dataset.LabelMatrix{Rows: []dataset.LabelRow{label}},
		Snapshot:      dataset.FeatureMatrix{Cutoff: 8, Rows: []dataset.FeatureRow{feature}},
		Plans:         []split.Plan{plan},
	}
}

func TestWriter_CSV(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "CSV", logging.NewNop())
	require.NoError(t, err)

	paths, err := w.WriteRun(context.Background(), sampleRun(t))
	require.NoError(t, err)
	require.Len(t, paths, 5)
	assert.Equal(t, filepath.Join(dir, "2024-25", "features.csv"), paths[0])

	body, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "player_id,gameweek,horizon,points_total,points_avg"))
	assert.True(t, strings.HasPrefix(lines[1], "p1,4,2,9,4.5"))

	body, err = os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "p1,4,t1,MID,insufficient_history,1.5")

	body, err = os.ReadFile(paths[2])
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(body)), "\n")
	// 3 backtest folds plus the holdout row.
	require.Len(t, lines, 5)
	assert.Equal(t, "2,0,1,2,3,4,false,8", lines[1])
	assert.Equal(t, "2,3,1,5,6,8,true,8", lines[4])

	body, err = os.ReadFile(paths[3])
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-25", "split_rows.csv"), paths[3])
	lines = strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Equal(t, "horizon,fold,holdout,set,label_row", lines[0])
	assert.Equal(t, []string{
		"2,0,false,validation,2",
		"2,0,false,validation,3",
		"2,1,false,train,0",
		"2,1,false,train,1",
		"2,1,false,validation,4",
		"2,1,false,validation,5",
	}, lines[1:7])
	assert.Equal(t, "2,3,true,validation,5", lines[len(lines)-1])

	entries, err := os.ReadDir(filepath.Join(dir, "2024-25"))
	require.NoError(t, err)
	assert.Len(t, entries, 5, "temp files must not be left behind")
}

func TestWriter_JSON(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, FormatJSON, logging.NewNop())
	require.NoError(t, err)

	run := sampleRun(t)
	path, err := w.WriteLabels(context.Background(), run)
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, sonic.Unmarshal(body, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "p1", records[0]["player_id"])
	assert.Equal(t, 9.0, records[0]["points_total"])

	path, err = w.WriteSplits(context.Background(), run)
	require.NoError(t, err)
	body, err = os.ReadFile(path)
	require.NoError(t, err)
	var plans []split.Plan
	require.NoError(t, sonic.Unmarshal(body, &plans))
	require.Len(t, plans, 1)
	assert.Equal(t, run.Plans[0], plans[0])
}

func TestNewWriter_RejectsUnknownFormat(t *testing.T) {
	if _, err := NewWriter(t.TempDir(), "parquet", logging.NewNop()); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := NewWriter("", FormatCSV, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"a", "a"},
		{7, "7"},
		{0.25, "0.25"},
		{true, "true"},
	}
	for _, tc := range tests {
		if got := formatCell(tc.in); got != tc.want {
			t.Fatalf("unexpected cell: got=%q want=%q", got, tc.want)
		}
	}
}
