package player

import (
	"fmt"
	"strings"
)

// Position represents football position categories.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

// ParsePosition accepts both short codes and the long names used by FPL exports.
func ParsePosition(value string) (Position, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "GK", "GKP", "GOALKEEPER":
		return PositionGoalkeeper, nil
	case "DEF", "DEFENDER":
		return PositionDefender, nil
	case "MID", "MIDFIELDER":
		return PositionMidfielder, nil
	case "FWD", "FW", "FORWARD":
		return PositionForward, nil
	default:
		return "", fmt.Errorf("invalid player position: %q", value)
	}
}

const StatusAvailable = "a"

// Player is one row of the player -> team -> position mapping. Gameweek is the
// first gameweek the row is valid for; zero means valid from the season start.
type Player struct {
	ID              string
	Name            string
	TeamCode        string
	Position        Position
	Gameweek        int
	Status          string
	ChanceOfPlaying *int
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.TeamCode == "" {
		return fmt.Errorf("player team code is required: %s", p.ID)
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}
	if p.Gameweek < 0 {
		return fmt.Errorf("player gameweek must be >= 0: %s", p.ID)
	}

	return nil
}

// Unavailable reports the externally supplied availability status flag.
func (p Player) Unavailable() bool {
	status := strings.ToLower(strings.TrimSpace(p.Status))
	return status != "" && status != StatusAvailable
}

// Doubtful reports whether the supplied chance of playing is below certainty.
func (p Player) Doubtful() bool {
	return p.ChanceOfPlaying != nil && *p.ChanceOfPlaying < 100
}
