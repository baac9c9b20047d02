package contesthistory

import (
	"context"
	"strings"
	"time"
)

// ContestHistory is one row of the account contest-entry-history export.
type ContestHistory struct {
	EntryKey          int64
	ContestKey        int64
	Sport             string
	GameType          string
	Entry             string
	ContestDateEST    *time.Time
	Place             int
	Points            float64
	WinningsNonTicket float64
	WinningsTicket    float64
	ContestEntries    int
	EntryFee          float64
	PrizePool         float64
	PlacesPaid        int
	Opponent          string
}

// SkipEntry reports whether a history row belongs to a private league
// and should not be imported.
func SkipEntry(entry string) bool {
	return strings.Contains(entry, "League")
}

// Opponent extracts the other side of a head-to-head entry name like
// "userA vs. userB". Returns "" when the entry is not a head-to-head or
// the username does not appear.
func Opponent(entry, username string) string {
	if username == "" || !strings.Contains(entry, " vs. ") {
		return ""
	}

	parts := strings.SplitN(entry, " vs. ", 2)
	left := strings.TrimSpace(parts[0])
	right := strings.TrimSpace(parts[1])
	switch {
	case strings.EqualFold(left, username):
		return right
	case strings.EqualFold(right, username):
		return left
	default:
		return ""
	}
}

// Repository exposes contest history persistence operations.
type Repository interface {
	UpsertMany(ctx context.Context, rows []ContestHistory) (int, error)
}
