package contest

import "context"

// Repository exposes contest persistence operations.
type Repository interface {
	UpsertMany(ctx context.Context, contests []Contest) (int, error)
	UpdateAttributes(ctx context.Context, updates []AttributeUpdate) (int, error)
	ListTrackedIDs(ctx context.Context, sport string) ([]int64, error)
	ListReadyForDownload(ctx context.Context) ([]int64, error)
	MarkDownloaded(ctx context.Context, contestID int64) error
}
