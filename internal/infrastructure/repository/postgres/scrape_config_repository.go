package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GGarrido28/dk-scraper/internal/domain/scrapeconfig"
	qb "github.com/GGarrido28/dk-scraper/internal/platform/querybuilder"
)

type ScrapeConfigRepository struct {
	db *sqlx.DB
}

func NewScrapeConfigRepository(db *sqlx.DB) *ScrapeConfigRepository {
	return &ScrapeConfigRepository{db: db}
}

// ListActive returns the sports the orchestrator should run, in a
// stable order.
func (r *ScrapeConfigRepository) ListActive(ctx context.Context) ([]scrapeconfig.ScrapeConfig, error) {
	query, args, err := qb.Select("*").From("scrape_configs").
		Where(
			qb.Expr("is_etl = TRUE"),
			qb.Expr("is_ignored = FALSE"),
		).
		OrderBy("sort_order", "sport").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select scrape configs query: %w", err)
	}

	var rows []scrapeConfigTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select scrape configs: %w", err)
	}

	out := make([]scrapeconfig.ScrapeConfig, 0, len(rows))
	for _, row := range rows {
		out = append(out, scrapeconfig.ScrapeConfig{
			Sport:             row.Sport,
			SportID:           row.SportID,
			FullSportName:     row.FullSportName,
			SortOrder:         row.SortOrder,
			HasPublicContests: row.HasPublicContests,
			IsEnabled:         row.IsEnabled,
			IsETL:             row.IsETL,
			IsIgnored:         row.IsIgnored,
			GameTypeIDs:       []int64(row.GameTypeIDs),
			SlateTypes:        []string(row.SlateTypes),
		})
	}
	return out, nil
}

func (r *ScrapeConfigRepository) UpsertMany(ctx context.Context, configs []scrapeconfig.ScrapeConfig) (int, error) {
	if len(configs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert scrape configs: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range configs {
		insertModel := scrapeConfigInsertModel{
			Sport:             item.Sport,
			SportID:           item.SportID,
			FullSportName:     item.FullSportName,
			SortOrder:         item.SortOrder,
			HasPublicContests: item.HasPublicContests,
			IsEnabled:         item.IsEnabled,
			IsETL:             item.IsETL,
			IsIgnored:         item.IsIgnored,
			GameTypeIDs:       pq.Int64Array(item.GameTypeIDs),
			SlateTypes:        pq.StringArray(item.SlateTypes),
		}
		if insertModel.GameTypeIDs == nil {
			insertModel.GameTypeIDs = pq.Int64Array{}
		}
		if insertModel.SlateTypes == nil {
			insertModel.SlateTypes = pq.StringArray{}
		}

		// Routing flags and draft group allow-lists are operator-owned;
		// catalog refreshes must not flip them back.
		query, args, err := qb.InsertModel("scrape_configs", insertModel, `ON CONFLICT (sport)
DO UPDATE SET
    sport_id = EXCLUDED.sport_id,
    full_sport_name = EXCLUDED.full_sport_name,
    sort_order = EXCLUDED.sort_order,
    has_public_contests = EXCLUDED.has_public_contests,
    is_enabled = EXCLUDED.is_enabled,
    updated_at = NOW()`)
		if err != nil {
			return 0, fmt.Errorf("build upsert scrape config query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert scrape config sport=%s: %w", item.Sport, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert scrape configs tx: %w", err)
	}

	return len(configs), nil
}

type scrapeConfigInsertModel struct {
	Sport             string         `db:"sport"`
	SportID           int64          `db:"sport_id"`
	FullSportName     string         `db:"full_sport_name"`
	SortOrder         int            `db:"sort_order"`
	HasPublicContests bool           `db:"has_public_contests"`
	IsEnabled         bool           `db:"is_enabled"`
	IsETL             bool           `db:"is_etl"`
	IsIgnored         bool           `db:"is_ignored"`
	GameTypeIDs       pq.Int64Array  `db:"game_type_ids"`
	SlateTypes        pq.StringArray `db:"slate_types"`
}

type scrapeConfigTableModel struct {
	ID                int64          `db:"id"`
	Sport             string         `db:"sport"`
	SportID           int64          `db:"sport_id"`
	FullSportName     string         `db:"full_sport_name"`
	SortOrder         int            `db:"sort_order"`
	HasPublicContests bool           `db:"has_public_contests"`
	IsEnabled         bool           `db:"is_enabled"`
	IsETL             bool           `db:"is_etl"`
	IsIgnored         bool           `db:"is_ignored"`
	GameTypeIDs       pq.Int64Array  `db:"game_type_ids"`
	SlateTypes        pq.StringArray `db:"slate_types"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}
