package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GGarrido28/dk-scraper/internal/domain/contesthistory"
	qb "github.com/GGarrido28/dk-scraper/internal/platform/querybuilder"
)

type ContestHistoryRepository struct {
	db *sqlx.DB
}

func NewContestHistoryRepository(db *sqlx.DB) *ContestHistoryRepository {
	return &ContestHistoryRepository{db: db}
}

func (r *ContestHistoryRepository) UpsertMany(ctx context.Context, rows []contesthistory.ContestHistory) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert contest history: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range rows {
		insertModel := contestHistoryInsertModel{
			EntryID:           item.EntryKey,
			ContestID:         item.ContestKey,
			Sport:             item.Sport,
			GameType:          item.GameType,
			Entry:             item.Entry,
			Opponent:          nullableString(item.Opponent),
			ContestDateEST:    item.ContestDateEST,
			LineupRank:        item.Place,
			Points:            item.Points,
			WinningsNonTicket: item.WinningsNonTicket,
			WinningsTicket:    item.WinningsTicket,
			ContestEntries:    item.ContestEntries,
			EntryFee:          item.EntryFee,
			PrizePool:         item.PrizePool,
			PlacesPaid:        item.PlacesPaid,
		}

		query, args, err := qb.InsertModel("contest_history", insertModel, `ON CONFLICT (entry_id, contest_id)
DO UPDATE SET
    sport = EXCLUDED.sport,
    game_type = EXCLUDED.game_type,
    entry = EXCLUDED.entry,
    opponent = EXCLUDED.opponent,
    contest_date_est = EXCLUDED.contest_date_est,
    lineup_rank = EXCLUDED.lineup_rank,
    points = EXCLUDED.points,
    winnings_non_ticket = EXCLUDED.winnings_non_ticket,
    winnings_ticket = EXCLUDED.winnings_ticket,
    contest_entries = EXCLUDED.contest_entries,
    entry_fee = EXCLUDED.entry_fee,
    prize_pool = EXCLUDED.prize_pool,
    places_paid = EXCLUDED.places_paid,
    updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert contest history query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert contest history entry_id=%d contest_id=%d: %w", item.EntryKey, item.ContestKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert contest history tx: %w", err)
	}

	return len(rows), nil
}

type contestHistoryInsertModel struct {
	EntryID           int64      `db:"entry_id"`
	ContestID         int64      `db:"contest_id"`
	Sport             string     `db:"sport"`
	GameType          string     `db:"game_type"`
	Entry             string     `db:"entry"`
	Opponent          *string    `db:"opponent"`
	ContestDateEST    *time.Time `db:"contest_date_est"`
	LineupRank        int        `db:"lineup_rank"`
	Points            float64    `db:"points"`
	WinningsNonTicket float64    `db:"winnings_non_ticket"`
	WinningsTicket    float64    `db:"winnings_ticket"`
	ContestEntries    int        `db:"contest_entries"`
	EntryFee          float64    `db:"entry_fee"`
	PrizePool         float64    `db:"prize_pool"`
	PlacesPaid        int        `db:"places_paid"`
}
