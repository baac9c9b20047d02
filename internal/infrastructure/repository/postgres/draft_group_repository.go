package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GGarrido28/dk-scraper/internal/domain/draftgroup"
	qb "github.com/GGarrido28/dk-scraper/internal/platform/querybuilder"
)

type DraftGroupRepository struct {
	db *sqlx.DB
}

func NewDraftGroupRepository(db *sqlx.DB) *DraftGroupRepository {
	return &DraftGroupRepository{db: db}
}

func (r *DraftGroupRepository) UpsertMany(ctx context.Context, groups []draftgroup.DraftGroup) (int, error) {
	if len(groups) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert draft groups: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range groups {
		insertModel := draftGroupInsertModel{
			DraftGroupID:           item.DraftGroupID,
			Sport:                  item.Sport,
			GameTypeID:             item.GameTypeID,
			GameType:               item.GameType,
			ContestTypeID:          item.ContestTypeID,
			ContestStartTimeSuffix: nullableString(item.ContestStartTimeSuffix),
			ContestStartTimeType:   item.ContestStartTimeType,
			DraftGroupSeriesID:     item.DraftGroupSeriesID,
			DraftGroupTag:          nullableString(item.DraftGroupTag),
			GameCount:              item.GameCount,
			GameSetKey:             item.GameSetKey,
			SortOrder:              item.SortOrder,
			StartDate:              item.StartDate,
			StartDateEST:           item.StartDateEST,
		}

		query, args, err := qb.InsertModel("draft_groups", insertModel, `ON CONFLICT (draft_group_id)
DO UPDATE SET
    sport = EXCLUDED.sport,
    game_type_id = EXCLUDED.game_type_id,
    game_type = EXCLUDED.game_type,
    contest_type_id = EXCLUDED.contest_type_id,
    contest_start_time_suffix = EXCLUDED.contest_start_time_suffix,
    contest_start_time_type = EXCLUDED.contest_start_time_type,
    draft_group_series_id = EXCLUDED.draft_group_series_id,
    draft_group_tag = EXCLUDED.draft_group_tag,
    game_count = EXCLUDED.game_count,
    game_set_key = EXCLUDED.game_set_key,
    sort_order = EXCLUDED.sort_order,
    start_date = EXCLUDED.start_date,
    start_date_est = EXCLUDED.start_date_est,
    updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert draft group query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert draft group draft_group_id=%d: %w", item.DraftGroupID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert draft groups tx: %w", err)
	}

	return len(groups), nil
}

type draftGroupInsertModel struct {
	DraftGroupID           int64   `db:"draft_group_id"`
	Sport                  string  `db:"sport"`
	GameTypeID             int64   `db:"game_type_id"`
	GameType               string  `db:"game_type"`
	ContestTypeID          int64   `db:"contest_type_id"`
	ContestStartTimeSuffix *string `db:"contest_start_time_suffix"`
	ContestStartTimeType   string  `db:"contest_start_time_type"`
	DraftGroupSeriesID     int64   `db:"draft_group_series_id"`
	DraftGroupTag          *string `db:"draft_group_tag"`
	GameCount              int     `db:"game_count"`
	GameSetKey             string  `db:"game_set_key"`
	SortOrder              int     `db:"sort_order"`
	StartDate              string  `db:"start_date"`
	StartDateEST           string  `db:"start_date_est"`
}
