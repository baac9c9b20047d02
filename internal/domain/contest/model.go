package contest

import (
	"strings"
	"time"
)

const (
	StateCompleted = "completed"
	StateCancelled = "cancelled"
)

// Contest represents one lobby contest after classification.
type Contest struct {
	ContestID         int64 `validate:"required,gt=0"`
	Name              string
	Sport             string
	EntryFee          float64
	MaxEntries        int
	MaxEntriesPerUser int
	Entries           int
	DraftGroupID      int64
	PrizePool         float64
	CrownAmount       int
	PayoutDescription string
	ContestDate       string
	StartTime         *time.Time
	ContestURL        string
	Flags             Flags
	ContestState      string
	IsFinal           bool
	IsCancelled       bool
	IsDownloaded      bool
}

// AttributeUpdate carries the late-arriving detail fields for one
// contest. Name and MaxEntries are optional; zero values leave the
// stored column untouched.
type AttributeUpdate struct {
	ContestID    int64
	ContestState string
	IsFinal      bool
	IsCancelled  bool
	StartTime    *time.Time
	Name         string
	MaxEntries   int
}

func NormalizeState(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func IsFinalState(state string) bool {
	switch NormalizeState(state) {
	case StateCompleted, StateCancelled:
		return true
	default:
		return false
	}
}

func IsCancelledState(state string) bool {
	return NormalizeState(state) == StateCancelled
}
