// Package leakage asserts temporal boundaries before any cutoff-relative read.
// A violation means the calling code is wrong, never the data, so it is always fatal.
package leakage

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var ErrLeakage = crerr.New("leakage violation")

type Boundary string

const (
	BoundaryHistory Boundary = "history"
	BoundaryLabel   Boundary = "label"
	BoundaryFixture Boundary = "fixture"
	BoundaryOrder   Boundary = "order"
)

// Violation names the entity and gameweek that crossed a cutoff.
type Violation struct {
	Boundary      Boundary
	Entity        string
	Cutoff        int
	Gameweek      int
	MaxFinishedGW int
	// Previous is the gameweek an out of order record followed.
	Previous int
}

func (v *Violation) Error() string {
	switch v.Boundary {
	case BoundaryLabel:
		return fmt.Sprintf(
			"leakage violation: %s read gameweek %d outside label window (%d, %d] for %s",
			v.Boundary, v.Gameweek, v.Cutoff, v.MaxFinishedGW, v.Entity,
		)
	case BoundaryOrder:
		return fmt.Sprintf(
			"leakage violation: %s read gameweek %d after %d at cutoff %d for %s",
			v.Boundary, v.Gameweek, v.Previous, v.Cutoff, v.Entity,
		)
	case BoundaryFixture:
		return fmt.Sprintf(
			"leakage violation: %s read gameweek %d not after cutoff %d for %s",
			v.Boundary, v.Gameweek, v.Cutoff, v.Entity,
		)
	default:
		return fmt.Sprintf(
			"leakage violation: %s read gameweek %d not before cutoff %d for %s",
			v.Boundary, v.Gameweek, v.Cutoff, v.Entity,
		)
	}
}

func (v *Violation) Unwrap() error {
	return ErrLeakage
}

// CheckHistory requires gameweek < cutoff.
func CheckHistory(entity string, cutoff, gameweek int) error {
	if gameweek < cutoff {
		return nil
	}
	return &Violation{Boundary: BoundaryHistory, Entity: entity, Cutoff: cutoff, Gameweek: gameweek}
}

// CheckLabel requires cutoff < gameweek <= maxFinishedGW.
func CheckLabel(entity string, cutoff, maxFinishedGW, gameweek int) error {
	if gameweek > cutoff && gameweek <= maxFinishedGW {
		return nil
	}
	return &Violation{
		Boundary:      BoundaryLabel,
		Entity:        entity,
		Cutoff:        cutoff,
		Gameweek:      gameweek,
		MaxFinishedGW: maxFinishedGW,
	}
}

// CheckFixture requires gameweek > cutoff.
func CheckFixture(entity string, cutoff, gameweek int) error {
	if gameweek > cutoff {
		return nil
	}
	return &Violation{Boundary: BoundaryFixture, Entity: entity, Cutoff: cutoff, Gameweek: gameweek}
}

// CheckHistoryAll runs CheckHistory over every gameweek and returns the first violation.
func CheckHistoryAll(entity string, cutoff int, gameweeks ...int) error {
	for _, gw := range gameweeks {
		if err := CheckHistory(entity, cutoff, gw); err != nil {
			return err
		}
	}
	return nil
}

// CheckAscending requires gameweeks in non-decreasing order. Cutoff slicing
// by binary search is only sound on ordered input.
func CheckAscending(entity string, cutoff int, gameweeks ...int) error {
	for i := 1; i < len(gameweeks); i++ {
		if gameweeks[i] < gameweeks[i-1] {
			return &Violation{
				Boundary: BoundaryOrder,
				Entity:   entity,
				Cutoff:   cutoff,
				Gameweek: gameweeks[i],
				Previous: gameweeks[i-1],
			}
		}
	}
	return nil
}
