package usecase

import (
	"testing"

	"github.com/riskibarqy/fantasy-forecast/internal/domain/player"
	"github.com/riskibarqy/fantasy-forecast/internal/domain/playerstats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUncertainty(t *testing.T) {
	appearances := []playerstats.Appearance{
		{PlayerID: "p1", Gameweek: 3, Minutes: 90, StartMinute: ptrInt(0), FinishMinute: ptrInt(90)},
		{PlayerID: "p1", Gameweek: 4, Minutes: 55, StartMinute: ptrInt(0), FinishMinute: ptrInt(55)},
		{PlayerID: "p1", Gameweek: 5, Minutes: 0},
		{PlayerID: "p1", Gameweek: 6, Minutes: 20, StartMinute: ptrInt(70), FinishMinute: ptrInt(90)},
		{PlayerID: "p1", Gameweek: 8, Minutes: 60, StartMinute: ptrInt(0), FinishMinute: ptrInt(60)},
		{PlayerID: "p1", Gameweek: 9, Minutes: 90, StartMinute: ptrInt(0), FinishMinute: ptrInt(90)},
	}
	records := playerstats.Collapse(appearances, playerstats.DefaultSubstitutionRules())
	row := player.Player{ID: "p1", Status: "d", ChanceOfPlaying: ptrInt(75)}

	got, err := BuildUncertainty("p1", records, 9, row, DefaultUncertaintyRules())
	require.NoError(t, err)

	// gameweeks 4..8: 5 and 7 without minutes
	assert.Equal(t, 2, got.MissedLast)
	// last five appearances before 9: 3, 4, 6, 8
	assert.InDelta(t, (90.0+55.0+20.0+60.0)/4, got.AvgMinutesLast, 1e-9)
	assert.InDelta(t, 2.0/4, got.EarlySubRate, 1e-9)
	assert.InDelta(t, 1.0/4, got.SubOnRate, 1e-9)
	assert.True(t, got.FlagEarlySub)
	assert.True(t, got.FlagLowMinutes)
	assert.True(t, got.FlagStatus)
	assert.True(t, got.FlagChance)
	assert.Equal(t, "d", got.Status)
}

func TestBuildUncertainty_NoHistory(t *testing.T) {
	got, err := BuildUncertainty("p1", nil, 3, player.Player{ID: "p1", Status: "a"}, DefaultUncertaintyRules())
	require.NoError(t, err)

	assert.Equal(t, 2, got.MissedLast)
	assert.Zero(t, got.AvgMinutesLast)
	assert.True(t, got.FlagLowMinutes)
	assert.False(t, got.FlagStatus)
	assert.False(t, got.FlagChance)
	assert.Nil(t, got.ChanceOfPlaying)
}

func TestBuildUncertainty_ThresholdsAreConfigurable(t *testing.T) {
	records := playerstats.Collapse([]playerstats.Appearance{
		{PlayerID: "p1", Gameweek: 1, Minutes: 70, StartMinute: ptrInt(0), FinishMinute: ptrInt(70)},
	}, playerstats.DefaultSubstitutionRules())

	rules := UncertaintyRules{Window: 5, EarlySubRateThreshold: 0.4, AvgMinutesThreshold: 75}
	got, err := BuildUncertainty("p1", records, 2, player.Player{ID: "p1"}, rules)
	require.NoError(t, err)
	assert.True(t, got.FlagLowMinutes)
	assert.False(t, got.FlagEarlySub)
}
