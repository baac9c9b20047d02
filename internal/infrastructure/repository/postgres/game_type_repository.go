package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GGarrido28/dk-scraper/internal/domain/gametype"
	qb "github.com/GGarrido28/dk-scraper/internal/platform/querybuilder"
)

type GameTypeRepository struct {
	db *sqlx.DB
}

func NewGameTypeRepository(db *sqlx.DB) *GameTypeRepository {
	return &GameTypeRepository{db: db}
}

func (r *GameTypeRepository) UpsertMany(ctx context.Context, types []gametype.GameType) (int, error) {
	if len(types) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert game types: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range types {
		insertModel := gameTypeInsertModel{
			GameTypeID:     item.GameTypeID,
			Name:           item.Name,
			Description:    item.Description,
			Tag:            nullableString(item.Tag),
			SportID:        item.SportID,
			DraftType:      item.DraftType,
			GameStyleID:    item.GameStyleID,
			GameStyleName:  item.GameStyleName,
			IsSalaryCapped: item.IsSalaryCapped,
			AllowLateSwap:  item.AllowLateSwap,
		}

		query, args, err := qb.InsertModel("game_types", insertModel, `ON CONFLICT (game_type_id)
DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    tag = EXCLUDED.tag,
    sport_id = EXCLUDED.sport_id,
    draft_type = EXCLUDED.draft_type,
    game_style_id = EXCLUDED.game_style_id,
    game_style_name = EXCLUDED.game_style_name,
    is_salary_capped = EXCLUDED.is_salary_capped,
    allow_late_swap = EXCLUDED.allow_late_swap,
    updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert game type query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert game type game_type_id=%d: %w", item.GameTypeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert game types tx: %w", err)
	}

	return len(types), nil
}

type gameTypeInsertModel struct {
	GameTypeID     int64   `db:"game_type_id"`
	Name           string  `db:"name"`
	Description    string  `db:"description"`
	Tag            *string `db:"tag"`
	SportID        int64   `db:"sport_id"`
	DraftType      string  `db:"draft_type"`
	GameStyleID    int64   `db:"game_style_id"`
	GameStyleName  string  `db:"game_style_name"`
	IsSalaryCapped bool    `db:"is_salary_capped"`
	AllowLateSwap  bool    `db:"allow_late_swap"`
}
