package gametype

import "context"

// Repository exposes game type persistence operations.
type Repository interface {
	UpsertMany(ctx context.Context, types []GameType) (int, error)
}
