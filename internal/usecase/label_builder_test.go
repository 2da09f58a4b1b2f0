package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/leakage"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/stat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelBuilder_BoundaryAtMaxFinished(t *testing.T) {
	values := map[int][2]float64{}
	for gw := 1; gw <= 22; gw++ {
		values[gw] = [2]float64{90, float64(gw)}
	}
	records := gameweekRecords("p1", values)

	tests := []struct {
		name    string
		cutoff  int
		horizon int
		want    bool
	}{
		{name: "ends at max", cutoff: 17, horizon: 5, want: true},
		{name: "ends one past max", cutoff: 18, horizon: 5, want: false},
		{name: "horizon 1 at max-1", cutoff: 21, horizon: 1, want: true},
		{name: "horizon 1 at max", cutoff: 22, horizon: 1, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := NewLabelBuilder([]int{tc.horizon}).Build("p1", records, tc.cutoff, 22)
			require.NoError(t, err)
			if got := len(rows) == 1; got != tc.want {
				t.Fatalf("unexpected label existence: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestLabelBuilder_MaxFinished22Cutoff20(t *testing.T) {
	values := map[int][2]float64{}
	for gw := 1; gw <= 22; gw++ {
		values[gw] = [2]float64{90, float64(gw)}
	}
	records := gameweekRecords("p1", values)

	rows, err := NewLabelBuilder(nil).Build("p1", records, 20, 22)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Horizon)
	assert.Equal(t, 21.0, rows[0].Total[stat.Points])
	assert.Equal(t, 20, rows[0].Gameweek)
}

func TestLabelBuilder_AverageIsTotalOverHorizon(t *testing.T) {
	values := map[int][2]float64{}
	for gw := 1; gw <= 30; gw++ {
		if gw%4 == 0 {
			continue
		}
		values[gw] = [2]float64{90, float64(gw % 7)}
	}
	records := gameweekRecords("p1", values)

	rows, err := NewLabelBuilder(nil).Build("p1", records, 10, 30)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, row := range rows {
		for _, kind := range stat.Targets() {
			if row.Average[kind] != row.Total[kind]/float64(row.Horizon) {
				t.Fatalf("average mismatch: horizon=%d stat=%s total=%f avg=%f", row.Horizon, kind, row.Total[kind], row.Average[kind])
			}
		}
	}

	// gameweek 12 has no record and counts as zero
	h5 := rows[1]
	assert.Equal(t, 5, h5.Horizon)
	assert.Equal(t, float64(11%7+13%7+14%7+15%7), h5.Total[stat.Points])
}

func TestLabelBuilder_DoubleGameweekSums(t *testing.T) {
	appearances := []playerstats.Appearance{
		{PlayerID: "p1", MatchID: "m1", Gameweek: 14, Minutes: 90, Points: 3},
		{PlayerID: "p1", MatchID: "m2", Gameweek: 15, Minutes: 90, Points: 2},
		{PlayerID: "p1", MatchID: "m3", Gameweek: 15, Minutes: 90, Points: 6},
		{PlayerID: "p1", MatchID: "m4", Gameweek: 16, Minutes: 90, Points: 1},
	}
	records := playerstats.Collapse(appearances, playerstats.DefaultSubstitutionRules())

	rows, err := NewLabelBuilder([]int{1}).Build("p1", records, 14, 16)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 8.0, rows[0].Total[stat.Points])
	assert.Equal(t, 8.0, rows[0].Average[stat.Points])
}

func TestLabelBuilder_RejectsUnorderedRecords(t *testing.T) {
	records := gameweekRecords("p1", map[int][2]float64{3: {90, 1}, 4: {90, 2}, 9: {90, 5}})
	records[1], records[2] = records[2], records[1]

	_, err := NewLabelBuilder([]int{1}).Build("p1", records, 3, 9)
	var violation *leakage.Violation
	if !errors.As(err, &violation) {
		t.Fatalf("expected *leakage.Violation, got=%v", err)
	}
	assert.Equal(t, leakage.BoundaryOrder, violation.Boundary)
	assert.Equal(t, 4, violation.Gameweek)
	assert.Equal(t, 9, violation.Previous)
}
