package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GGarrido28/dk-scraper/internal/domain/playersalary"
	qb "github.com/GGarrido28/dk-scraper/internal/platform/querybuilder"
)

type PlayerSalaryRepository struct {
	db *sqlx.DB
}

func NewPlayerSalaryRepository(db *sqlx.DB) *PlayerSalaryRepository {
	return &PlayerSalaryRepository{db: db}
}

func (r *PlayerSalaryRepository) UpsertMany(ctx context.Context, salaries []playersalary.PlayerSalary) (int, error) {
	if len(salaries) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert player salaries: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range salaries {
		insertModel := playerSalaryInsertModel{
			DraftGroupID:     item.DraftGroupID,
			PlayerID:         item.PlayerID,
			Position:         item.Position,
			NameID:           item.NameWithID,
			Name:             item.Name,
			RosterPosition:   item.RosterPosition,
			Salary:           item.Salary,
			GameInfo:         item.GameInfo,
			TeamAbbrev:       item.TeamAbbrev,
			AvgPointsPerGame: item.AvgPointsPerGame,
		}

		query, args, err := qb.InsertModel("player_salaries", insertModel, `ON CONFLICT (draft_group_id, id)
DO UPDATE SET
    position = EXCLUDED.position,
    name_id = EXCLUDED.name_id,
    name = EXCLUDED.name,
    roster_position = EXCLUDED.roster_position,
    salary = EXCLUDED.salary,
    game_info = EXCLUDED.game_info,
    team_abbrev = EXCLUDED.team_abbrev,
    avg_points_per_game = EXCLUDED.avg_points_per_game,
    updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert player salary query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert player salary draft_group_id=%d id=%d: %w", item.DraftGroupID, item.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert player salaries tx: %w", err)
	}

	return len(salaries), nil
}

type playerSalaryInsertModel struct {
	DraftGroupID     int64   `db:"draft_group_id"`
	PlayerID         int64   `db:"id"`
	Position         string  `db:"position"`
	NameID           string  `db:"name_id"`
	Name             string  `db:"name"`
	RosterPosition   string  `db:"roster_position"`
	Salary           float64 `db:"salary"`
	GameInfo         string  `db:"game_info"`
	TeamAbbrev       string  `db:"team_abbrev"`
	AvgPointsPerGame float64 `db:"avg_points_per_game"`
}
