package playerstats

import "context"

// Repository exposes realized player appearances for one season.
type Repository interface {
	ListAppearancesBySeason(ctx context.Context, season string) ([]Appearance, error)
}
