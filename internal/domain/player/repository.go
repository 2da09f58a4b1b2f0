package player

import "context"

// Repository exposes the player mapping table for one season.
type Repository interface {
	ListBySeason(ctx context.Context, season string) ([]Player, error)
}
