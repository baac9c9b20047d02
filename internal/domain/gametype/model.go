package gametype

// GameType describes the scoring and lineup rules for a contest family.
type GameType struct {
	GameTypeID     int64 `validate:"required,gt=0"`
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
