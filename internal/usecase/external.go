package usecase

import (
	"context"
	"time"
)

// ExternalLobby is the provider-neutral snapshot of one sport's contest
// lobby.
type ExternalLobby struct {
	Sport       string
	Contests    []ExternalContest
	DraftGroups []ExternalDraftGroup
	GameTypes   []ExternalGameType
}

// ExternalContest is one raw lobby contest before classification.
type ExternalContest struct {
	ContestID         int64
	Name              string
	EntryFee          float64
	MaxEntries        int
	MaxEntriesPerUser int
	DraftGroupID      int64
	PrizePool         float64
	CrownAmount       int
	PayoutDescription string
	ContestDate       string
	Attributes        map[string]string
}

type ExternalDraftGroup struct {
	DraftGroupID           int64
	Sport                  string
	GameTypeID             int64
	GameType               string
	ContestTypeID          int64
	ContestStartTimeSuffix string
	ContestStartTimeType   string
	DraftGroupSeriesID     int64
	DraftGroupTag          string
	GameCount              int
	GameSetKey             string
	SortOrder              int
	StartDate              string
	StartDateEST           string
}

type ExternalGameType struct {
	GameTypeID     int64
	Name           string
	Description    string
	Tag            string
	SportID        int64
	DraftType      string
	GameStyleID    int64
	GameStyleName  string
	IsSalaryCapped bool
	AllowLateSwap  bool
}

// ExternalContestDetail is the per-contest detail payload used for
// attribute refresh and payout extraction.
type ExternalContestDetail struct {
	ContestID      int64
	Name           string
	Sport          string
	ContestState   string
	StartTime      *time.Time
	Entries        int
	MaximumEntries int
	EntryFee       float64
	PayoutSummary  []ExternalPayoutTier
}

// ExternalPayoutTier is one position range of a contest payout table.
type ExternalPayoutTier struct {
	MinPosition  int
	MaxPosition  int
	Tiers        []ExternalTierPayout
	CashSum      float64
	OriginalTier string
}

// ExternalTierPayout is a single typed award inside a tier.
type ExternalTierPayout struct {
	Type    string
	Display string
}

type ExternalPlayerSalary struct {
	DraftGroupID     int64
	PlayerID         int64
	Position         string
	NameWithID       string
	Name             string
	RosterPosition   string
	Salary           float64
	GameInfo         string
	TeamAbbrev       string
	AvgPointsPerGame float64
}

type ExternalSport struct {
	SportID                    int64
	FullName                   string
	SortOrder                  int
	HasPublicContests          bool
	IsEnabled                  bool
	RegionFullSportName        string
	RegionAbbreviatedSportName string
}

// ContestProvider is the port the scrape pipeline pulls external data
// through.
type ContestProvider interface {
	FetchLobby(ctx context.Context, sport string) (ExternalLobby, error)
	FetchContestDetail(ctx context.Context, contestID int64) (ExternalContestDetail, error)
	FetchPlayerSalaries(ctx context.Context, draftGroupID int64) ([]ExternalPlayerSalary, error)
	FetchSports(ctx context.Context) ([]ExternalSport, error)
}
