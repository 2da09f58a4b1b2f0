package teamstats

import "context"

type Repository interface {
	ListBySeason(ctx context.Context, season string) ([]GameweekRecord, error)
}
