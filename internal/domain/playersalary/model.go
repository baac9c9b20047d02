package playersalary

import "context"

// PlayerSalary is one row of the available-players CSV for a draft group.
type PlayerSalary struct {
	DraftGroupID     int64 `validate:"required,gt=0"`
	PlayerID         int64 `validate:"required,gt=0"`
	Position         string
	NameWithID       string
	Name             string
	RosterPosition   string
	Salary           float64
	GameInfo         string
	TeamAbbrev       string
	AvgPointsPerGame float64
}

// Repository exposes player salary persistence operations.
type Repository interface {
	UpsertMany(ctx context.Context, salaries []PlayerSalary) (int, error)
}
