package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/GGarrido28/dk-scraper/internal/domain/contest"
	"github.com/GGarrido28/dk-scraper/internal/domain/payout"
	"github.com/GGarrido28/dk-scraper/internal/domain/scrapeconfig"
	"github.com/GGarrido28/dk-scraper/internal/platform/logging"
)

// ContestPayoutSummary is the prize table of one contest keyed by
// finishing rank, with the lobby metadata needed to price an entry.
type ContestPayoutSummary struct {
	ContestID    int64           `json:"contest_id"`
	Name         string          `json:"name"`
	Sport        string          `json:"sport"`
	ContestState string          `json:"contest_state"`
	Entries      int             `json:"entries"`
	MaxEntries   int             `json:"max_entries"`
	EntryFee     float64         `json:"entry_fee"`
	Payouts      map[int]float64 `json:"payouts"`
}

// ContestService covers the ad-hoc single-contest operations that do
// not run through the lobby pipeline.
type ContestService struct {
	provider    ContestProvider
	contestRepo contest.Repository
	payoutRepo  payout.Repository
	configRepo  scrapeconfig.Repository
	logger      *logging.Logger
}

func NewContestService(
	provider ContestProvider,
	contestRepo contest.Repository,
	payoutRepo payout.Repository,
	configRepo scrapeconfig.Repository,
	logger *logging.Logger,
) *ContestService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ContestService{
		provider:    provider,
		contestRepo: contestRepo,
		payoutRepo:  payoutRepo,
		configRepo:  configRepo,
		logger:      logger,
	}
}

// AddContest tracks a contest by ID regardless of the lobby value
// policy. It is the escape hatch for contests an operator entered by
// hand.
func (s *ContestService) AddContest(ctx context.Context, contestID int64) (contest.Contest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestService.AddContest")
	defer span.End()

	if contestID <= 0 {
		return contest.Contest{}, fmt.Errorf("%w: contest id must be positive", ErrInvalidInput)
	}

	detail, err := s.provider.FetchContestDetail(ctx, contestID)
	if err != nil {
		return contest.Contest{}, fmt.Errorf("fetch contest detail contest_id=%d: %w", contestID, err)
	}

	state := contest.NormalizeState(detail.ContestState)
	c := contest.Contest{
		ContestID:    contestID,
		Name:         detail.Name,
		Sport:        detail.Sport,
		EntryFee:     detail.EntryFee,
		MaxEntries:   detail.MaximumEntries,
		Entries:      detail.Entries,
		StartTime:    detail.StartTime,
		ContestURL:   contestURLPrefix + strconv.FormatInt(contestID, 10),
		ContestState: state,
		IsFinal:      contest.IsFinalState(state),
		IsCancelled:  contest.IsCancelledState(state),
	}

	if _, err := s.contestRepo.UpsertMany(ctx, []contest.Contest{c}); err != nil {
		return contest.Contest{}, fmt.Errorf("upsert contest contest_id=%d: %w", contestID, err)
	}

	tiers := payout.Dedupe(mapPayoutTiers(contestID, detail.PayoutSummary))
	if len(tiers) > 0 {
		if _, err := s.payoutRepo.UpsertMany(ctx, tiers); err != nil {
			return contest.Contest{}, fmt.Errorf("upsert payouts contest_id=%d: %w", contestID, err)
		}
	}

	s.logger.InfoContext(ctx, "contest added by hand",
		"contest_id", contestID,
		"name", detail.Name,
		"state", state,
		"payout_tiers", len(tiers),
	)

	return c, nil
}

// GetContestPayout fetches a contest's cash prize table keyed by rank.
// Ticket-only and other non-cash tiers contribute nothing to a rank.
func (s *ContestService) GetContestPayout(ctx context.Context, contestID int64) (ContestPayoutSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestService.GetContestPayout")
	defer span.End()

	if contestID <= 0 {
		return ContestPayoutSummary{}, fmt.Errorf("%w: contest id must be positive", ErrInvalidInput)
	}

	detail, err := s.provider.FetchContestDetail(ctx, contestID)
	if err != nil {
		return ContestPayoutSummary{}, fmt.Errorf("fetch contest detail contest_id=%d: %w", contestID, err)
	}

	summary := ContestPayoutSummary{
		ContestID:    contestID,
		Name:         detail.Name,
		Sport:        detail.Sport,
		ContestState: contest.NormalizeState(detail.ContestState),
		Entries:      detail.Entries,
		MaxEntries:   detail.MaximumEntries,
		EntryFee:     detail.EntryFee,
		Payouts:      make(map[int]float64),
	}

	for _, tier := range detail.PayoutSummary {
		if tier.CashSum <= 0 {
			continue
		}
		for rank := tier.MinPosition; rank <= tier.MaxPosition; rank++ {
			summary.Payouts[rank] = tier.CashSum
		}
	}

	return summary, nil
}

// SyncSports refreshes the sport catalog used to route scraping. The
// operator-owned routing flags on existing rows survive the refresh.
func (s *ContestService) SyncSports(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestService.SyncSports")
	defer span.End()

	sports, err := s.provider.FetchSports(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch sport catalog: %w", err)
	}

	configs := make([]scrapeconfig.ScrapeConfig, 0, len(sports))
	for _, ext := range sports {
		code := strings.TrimSpace(ext.RegionAbbreviatedSportName)
		if code == "" {
			code = strings.TrimSpace(ext.FullName)
		}
		if code == "" || ext.SportID <= 0 {
			continue
		}

		configs = append(configs, scrapeconfig.ScrapeConfig{
			Sport:             code,
			SportID:           ext.SportID,
			FullSportName:     ext.FullName,
			SortOrder:         ext.SortOrder,
			HasPublicContests: ext.HasPublicContests,
			IsEnabled:         ext.IsEnabled,
		})
	}

	if len(configs) == 0 {
		return 0, nil
	}

	count, err := s.configRepo.UpsertMany(ctx, configs)
	if err != nil {
		return 0, fmt.Errorf("upsert scrape configs: %w", err)
	}

	s.logger.InfoContext(ctx, "sport catalog refreshed", "sports", count)
	return count, nil
}
