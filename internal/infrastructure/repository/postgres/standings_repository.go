package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GGarrido28/dk-scraper/internal/domain/standings"
	qb "github.com/GGarrido28/dk-scraper/internal/platform/querybuilder"
)

type StandingsRepository struct {
	db *sqlx.DB
}

func NewStandingsRepository(db *sqlx.DB) *StandingsRepository {
	return &StandingsRepository{db: db}
}

func (r *StandingsRepository) UpsertEntries(ctx context.Context, entries []standings.ContestEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert contest entries: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range entries {
		insertModel := contestEntryInsertModel{
			ContestID:     item.ContestID,
			EntryID:       item.EntryID,
			LineupRank:    item.Rank,
			EntryName:     item.EntryName,
			User:          item.User,
			Entry:         item.EntryNumber,
			TotalEntries:  item.EntryCount,
			TimeRemaining: item.TimeRemaining,
			Points:        item.Points,
			Lineup:        item.Lineup,
		}

		query, args, err := qb.InsertModel("contest_entries", insertModel, `ON CONFLICT (contest_id, entry_id)
DO UPDATE SET
    lineup_rank = EXCLUDED.lineup_rank,
    entry_name = EXCLUDED.entry_name,
    dk_user = EXCLUDED.dk_user,
    entry = EXCLUDED.entry,
    total_entries = EXCLUDED.total_entries,
    time_remaining = EXCLUDED.time_remaining,
    points = EXCLUDED.points,
    lineup = EXCLUDED.lineup,
    updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert contest entry query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert contest entry contest_id=%d entry_id=%d: %w", item.ContestID, item.EntryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert contest entries tx: %w", err)
	}

	return len(entries), nil
}

func (r *StandingsRepository) UpsertPlayerResults(ctx context.Context, results []standings.PlayerResult) (int, error) {
	if len(results) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert player results: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range results {
		insertModel := playerResultInsertModel{
			ContestID:      item.ContestID,
			Player:         item.Player,
			RosterPosition: item.RosterPosition,
			PercentDrafted: item.PercentDrafted,
			FPTS:           item.FPTS,
		}

		query, args, err := qb.InsertModel("player_results", insertModel, `ON CONFLICT (contest_id, player, roster_position)
DO UPDATE SET
    percent_drafted = EXCLUDED.percent_drafted,
    fpts = EXCLUDED.fpts,
    updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert player result query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert player result contest_id=%d player=%s: %w", item.ContestID, item.Player, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert player results tx: %w", err)
	}

	return len(results), nil
}

type contestEntryInsertModel struct {
	ContestID     int64   `db:"contest_id"`
	EntryID       int64   `db:"entry_id"`
	LineupRank    int     `db:"lineup_rank"`
	EntryName     string  `db:"entry_name"`
	User          string  `db:"dk_user"`
	Entry         int     `db:"entry"`
	TotalEntries  int     `db:"total_entries"`
	TimeRemaining string  `db:"time_remaining"`
	Points        float64 `db:"points"`
	Lineup        string  `db:"lineup"`
}

type playerResultInsertModel struct {
	ContestID      int64   `db:"contest_id"`
	Player         string  `db:"player"`
	RosterPosition string  `db:"roster_position"`
	PercentDrafted float64 `db:"percent_drafted"`
	FPTS           float64 `db:"fpts"`
}
