package fixture

import "context"

// Repository exposes fixture read operations. It returns finished and
// scheduled-only fixtures alike.
type Repository interface {
	ListBySeason(ctx context.Context, season string) ([]Fixture, error)
}
