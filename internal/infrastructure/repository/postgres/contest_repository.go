package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GGarrido28/dk-scraper/internal/domain/contest"
	qb "github.com/GGarrido28/dk-scraper/internal/platform/querybuilder"
)

type ContestRepository struct {
	db *sqlx.DB
}

func NewContestRepository(db *sqlx.DB) *ContestRepository {
	return &ContestRepository{db: db}
}

func (r *ContestRepository) UpsertMany(ctx context.Context, contests []contest.Contest) (int, error) {
	if len(contests) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert contests: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range contests {
		insertModel := contestInsertModel{
			ContestID:         item.ContestID,
			ContestName:       item.Name,
			Sport:             item.Sport,
			EntryFee:          item.EntryFee,
			MaxEntries:        item.MaxEntries,
			EntriesPerUser:    item.MaxEntriesPerUser,
			DraftGroupID:      item.DraftGroupID,
			PrizePool:         item.PrizePool,
			CrownAmount:       item.CrownAmount,
			PayoutDescription: item.PayoutDescription,
			ContestDate:       item.ContestDate,
			StartTime:         item.StartTime,
			ContestURL:        item.ContestURL,
			Guaranteed:        item.Flags.Guaranteed,
			Starred:           item.Flags.Starred,
			DoubleUp:          item.Flags.DoubleUp,
			FiftyFifty:        item.Flags.FiftyFifty,
			League:            item.Flags.League,
			Multiplier:        item.Flags.Multiplier,
			Qualifier:         item.Flags.Qualifier,
			ContestState:      item.ContestState,
			IsFinal:           item.IsFinal,
			IsCancelled:       item.IsCancelled,
			IsDownloaded:      item.IsDownloaded,
		}

		// is_downloaded is deliberately not refreshed so a re-scrape
		// never resurrects a contest the standings pipeline finished.
		query, args, err := qb.InsertModel("contests", insertModel, `ON CONFLICT (contest_id)
DO UPDATE SET
    contest_name = EXCLUDED.contest_name,
    sport = EXCLUDED.sport,
    entry_fee = EXCLUDED.entry_fee,
    max_entries = EXCLUDED.max_entries,
    entries_per_user = EXCLUDED.entries_per_user,
    draft_group_id = EXCLUDED.draft_group_id,
    po = EXCLUDED.po,
    crown_amount = EXCLUDED.crown_amount,
    pd = EXCLUDED.pd,
    contest_date = EXCLUDED.contest_date,
    contest_url = EXCLUDED.contest_url,
    guaranteed = EXCLUDED.guaranteed,
    starred = EXCLUDED.starred,
    double_up = EXCLUDED.double_up,
    fifty_fifty = EXCLUDED.fifty_fifty,
    league = EXCLUDED.league,
    multiplier = EXCLUDED.multiplier,
    qualifier = EXCLUDED.qualifier,
    updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert contest query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert contest contest_id=%d: %w", item.ContestID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert contests tx: %w", err)
	}

	return len(contests), nil
}

func (r *ContestRepository) UpdateAttributes(ctx context.Context, updates []contest.AttributeUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx update contest attributes: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range updates {
		builder := qb.Update("contests").
			Set("contest_state", item.ContestState).
			Set("is_final", item.IsFinal).
			Set("is_cancelled", item.IsCancelled).
			SetExpr("updated_at", "NOW()")
		if item.StartTime != nil {
			builder = builder.Set("start_time", *item.StartTime)
		}
		if item.Name != "" {
			builder = builder.Set("contest_name", item.Name)
		}
		if item.MaxEntries > 0 {
			builder = builder.Set("max_entries", item.MaxEntries)
		}

		query, args, err := builder.Where(qb.Eq("contest_id", item.ContestID)).ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build update contest attributes query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("update contest attributes contest_id=%d: %w", item.ContestID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit update contest attributes tx: %w", err)
	}

	return len(updates), nil
}

func (r *ContestRepository) ListTrackedIDs(ctx context.Context, sport string) ([]int64, error) {
	conditions := []qb.Condition{qb.Expr("is_final = FALSE")}
	if sport != "" {
		conditions = append(conditions, qb.Eq("sport", sport))
	}

	query, args, err := qb.Select("contest_id").From("contests").
		Where(conditions...).
		OrderBy("contest_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select tracked contests query: %w", err)
	}

	var rows []contestIDRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select tracked contests: %w", err)
	}

	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ContestID)
	}
	return out, nil
}

func (r *ContestRepository) ListReadyForDownload(ctx context.Context) ([]int64, error) {
	query, args, err := qb.Select("contest_id").From("contests").
		Where(
			qb.Expr("is_final = TRUE"),
			qb.Expr("is_cancelled = FALSE"),
			qb.Expr("is_downloaded = FALSE"),
		).
		OrderBy("contest_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select downloadable contests query: %w", err)
	}

	var rows []contestIDRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select downloadable contests: %w", err)
	}

	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ContestID)
	}
	return out, nil
}

func (r *ContestRepository) MarkDownloaded(ctx context.Context, contestID int64) error {
	query, args, err := qb.Update("contests").
		Set("is_downloaded", true).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("contest_id", contestID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark contest downloaded query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark contest downloaded contest_id=%d: %w", contestID, err)
	}
	return nil
}
