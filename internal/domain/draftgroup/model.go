package draftgroup

// DraftGroup represents one slate of games players draft from. The
// provider serves slate dates as display strings; they are stored as-is.
type DraftGroup struct {
	DraftGroupID           int64 `validate:"required,gt=0"`
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
