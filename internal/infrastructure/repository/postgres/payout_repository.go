package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GGarrido28/dk-scraper/internal/domain/payout"
	qb "github.com/GGarrido28/dk-scraper/internal/platform/querybuilder"
)

type PayoutRepository struct {
	db *sqlx.DB
}

func NewPayoutRepository(db *sqlx.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) UpsertMany(ctx context.Context, tiers []payout.Payout) (int, error) {
	if len(tiers) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert payouts: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range tiers {
		insertModel := payoutInsertModel{
			ContestID:        item.ContestID,
			MinPosition:      item.MinPosition,
			MaxPosition:      item.MaxPosition,
			PayoutOneType:    nullableString(item.PayoutOneType),
			PayoutOneValue:   item.PayoutOneValue,
			PayoutOneDisplay: nullableString(item.PayoutOneDisplay),
			PayoutTwoType:    nullableString(item.PayoutTwoType),
			PayoutTwoValue:   item.PayoutTwoValue,
			PayoutTwoDisplay: nullableString(item.PayoutTwoDisplay),
			OriginalTier:     nullableString(item.OriginalTier),
		}

		query, args, err := qb.InsertModel("payouts", insertModel, `ON CONFLICT (contest_id, min_position, max_position)
DO UPDATE SET
    payout_one_type = EXCLUDED.payout_one_type,
    payout_one_value = EXCLUDED.payout_one_value,
    payout_one_display = EXCLUDED.payout_one_display,
    payout_two_type = EXCLUDED.payout_two_type,
    payout_two_value = EXCLUDED.payout_two_value,
    payout_two_display = EXCLUDED.payout_two_display,
    original_tier = EXCLUDED.original_tier,
    updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert payout query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert payout contest_id=%d positions=%d-%d: %w", item.ContestID, item.MinPosition, item.MaxPosition, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert payouts tx: %w", err)
	}

	return len(tiers), nil
}

type payoutInsertModel struct {
	ContestID        int64    `db:"contest_id"`
	MinPosition      int      `db:"min_position"`
	MaxPosition      int      `db:"max_position"`
	PayoutOneType    *string  `db:"payout_one_type"`
	PayoutOneValue   *float64 `db:"payout_one_value"`
	PayoutOneDisplay *string  `db:"payout_one_display"`
	PayoutTwoType    *string  `db:"payout_two_type"`
	PayoutTwoValue   *float64 `db:"payout_two_value"`
	PayoutTwoDisplay *string  `db:"payout_two_display"`
	OriginalTier     *string  `db:"original_tier"`
}
