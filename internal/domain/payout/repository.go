package payout

import "context"

// Repository exposes payout tier persistence operations.
type Repository interface {
	UpsertMany(ctx context.Context, tiers []Payout) (int, error)
}
