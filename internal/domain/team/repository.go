package team

import "context"

// Repository describes team table access needs from use cases.
type Repository interface {
	ListBySeason(ctx context.Context, season string) ([]Team, error)
}
