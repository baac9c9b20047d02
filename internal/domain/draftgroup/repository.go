package draftgroup

import "context"

// Repository exposes draft group persistence operations.
type Repository interface {
	UpsertMany(ctx context.Context, groups []DraftGroup) (int, error)
}
