package playerstats

import (
	"testing"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/stat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestCollapse_DoubleGameweekSums(t *testing.T) {
	items := []Appearance{
		{PlayerID: "p1", MatchID: "m1", Gameweek: 15, Minutes: 90, Points: 2},
		{PlayerID: "p1", MatchID: "m2", Gameweek: 15, Minutes: 80, Points: 6},
		{PlayerID: "p1", MatchID: "m3", Gameweek: 16, Minutes: 90, Points: 1},
	}

	got := Collapse(items, DefaultSubstitutionRules())
	require.Len(t, got, 2)
	assert.Equal(t, 15, got[0].Gameweek)
	assert.Equal(t, 8.0, got[0].Value(stat.Points))
	assert.Equal(t, 170.0, got[0].Minutes)
	assert.Equal(t, 2, got[0].Matches)
	assert.Equal(t, 16, got[1].Gameweek)
}

func TestCollapse_OrdersByPlayerThenGameweek(t *testing.T) {
	items := []Appearance{
		{PlayerID: "p2", Gameweek: 1, Minutes: 10},
		{PlayerID: "p1", Gameweek: 3, Minutes: 10},
		{PlayerID: "p1", Gameweek: 1, Minutes: 10},
	}

	got := Collapse(items, DefaultSubstitutionRules())
	require.Len(t, got, 3)
	assert.Equal(t, "p1", got[0].PlayerID)
	assert.Equal(t, 1, got[0].Gameweek)
	assert.Equal(t, "p1", got[1].PlayerID)
	assert.Equal(t, 3, got[1].Gameweek)
	assert.Equal(t, "p2", got[2].PlayerID)
}

func TestCollapse_SubstitutionTiming(t *testing.T) {
	rules := DefaultSubstitutionRules()
	items := []Appearance{
		{PlayerID: "p1", MatchID: "m1", Gameweek: 1, Minutes: 60, StartMinute: intPtr(0), FinishMinute: intPtr(60)},
		{PlayerID: "p1", MatchID: "m2", Gameweek: 2, Minutes: 90, StartMinute: intPtr(0), FinishMinute: intPtr(90)},
		{PlayerID: "p1", MatchID: "m3", Gameweek: 3, Minutes: 20, StartMinute: intPtr(70), FinishMinute: intPtr(90)},
		{PlayerID: "p1", MatchID: "m4", Gameweek: 4, Minutes: 0, StartMinute: intPtr(0), FinishMinute: intPtr(0)},
	}

	got := Collapse(items, rules)
	require.Len(t, got, 4)
	assert.Equal(t, 1, got[0].EarlySubOffs)
	assert.Equal(t, 0, got[0].SubOns)
	assert.Equal(t, 0, got[1].EarlySubOffs)
	assert.Equal(t, 1, got[2].SubOns)
	assert.Equal(t, 0, got[3].Matches)
	assert.False(t, got[3].Played())
}
