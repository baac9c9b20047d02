package standings

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// ContestEntry is one placed lineup in a finished contest.
type ContestEntry struct {
	ContestID     int64
	EntryID       int64
	Rank          int
	EntryName     string
	User          string
	EntryNumber   int
	EntryCount    int
	TimeRemaining string
	Points        float64
	Lineup        string
}

// PlayerResult is the exposure summary for one player in a contest.
type PlayerResult struct {
	ContestID      int64
	Player         string
	RosterPosition string
	PercentDrafted float64
	FPTS           float64
}

var entryNamePattern = regexp.MustCompile(`^(.*) \((\d+)/(\d+)\)$`)

// ParseEntryName splits "user (i/n)" into its parts. Single-entry users
// have no suffix; they parse as entry 1 of 1.
func ParseEntryName(entryName string) (user string, entryNumber, entryCount int) {
	m := entryNamePattern.FindStringSubmatch(strings.TrimSpace(entryName))
	if m == nil {
		return strings.TrimSpace(entryName), 1, 1
	}

	entryNumber, _ = strconv.Atoi(m[2])
	entryCount, _ = strconv.Atoi(m[3])
	return m[1], entryNumber, entryCount
}

// Repository exposes standings persistence operations.
type Repository interface {
	UpsertEntries(ctx context.Context, entries []ContestEntry) (int, error)
	UpsertPlayerResults(ctx context.Context, results []PlayerResult) (int, error)
}
