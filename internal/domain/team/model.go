package team

import "fmt"

// Team is a club row. Code is the key players reference; ID is the key
// fixtures and team records reference. Gameweek versions the strength and
// elo values, zero meaning valid from the season start.
type Team struct {
	Code     string
	ID       string
	Name     string
	Strength float64
	Elo      float64
	Gameweek int
}

func (t Team) Validate() error {
	if t.Code == "" {
		return fmt.Errorf("team code is required")
	}
	if t.ID == "" {
		return fmt.Errorf("team id is required: code=%s", t.Code)
	}
	if t.Gameweek < 0 {
		return fmt.Errorf("team gameweek must be >= 0: %s", t.ID)
	}

	return nil
}

// Rating is the strength snapshot of a team; Gameweek dates the row it came from.
type Rating struct {
	TeamID   string
	Strength float64
	Elo      float64
	Gameweek int
}
