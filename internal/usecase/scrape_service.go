package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"

	"github.com/GGarrido28/dk-scraper/internal/domain/contest"
	"github.com/GGarrido28/dk-scraper/internal/domain/draftgroup"
	"github.com/GGarrido28/dk-scraper/internal/domain/gametype"
	"github.com/GGarrido28/dk-scraper/internal/domain/payout"
	"github.com/GGarrido28/dk-scraper/internal/domain/playersalary"
	"github.com/GGarrido28/dk-scraper/internal/domain/scrapeconfig"
	"github.com/GGarrido28/dk-scraper/internal/platform/cache"
	"github.com/GGarrido28/dk-scraper/internal/platform/id"
	"github.com/GGarrido28/dk-scraper/internal/platform/logging"
)

const (
	stageOrchestrator   = "orchestrator"
	stageDraftGroups    = "draft_groups"
	stageContests       = "contests"
	stageGameTypes      = "game_types"
	stagePayouts        = "payouts"
	stagePlayerSalaries = "player_salaries"
	stageAttributes     = "attributes"

	contestURLPrefix = "https://www.draftkings.com/draft/contest/"
)

type ScrapeServiceConfig struct {
	BatchSize           int
	AttributeBatchPause time.Duration
	PayoutBatchPause    time.Duration
	SalaryFetchPause    time.Duration
}

type ScrapeResult struct {
	RunID     string              `json:"run_id"`
	Sport     string              `json:"sport"`
	Offseason bool                `json:"offseason"`
	Stages    []ScrapeStageResult `json:"stages"`
}

type ScrapeStageResult struct {
	Stage      string         `json:"stage"`
	Records    int            `json:"records"`
	DurationMs int64          `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
	Failures   []StageFailure `json:"failures,omitempty"`
}

// StageFailure is one record a stage could not produce: a contest,
// draft group or player row dropped for the reason given while the
// rest of the stage carried on.
type StageFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// Failed returns the stages that reported an error.
func (r ScrapeResult) Failed() []ScrapeStageResult {
	var out []ScrapeStageResult
	for _, stage := range r.Stages {
		if stage.Error != "" {
			out = append(out, stage)
		}
	}
	return out
}

// ScrapeService runs the per-sport lobby pipeline: draft groups,
// contests, game types, payouts, player salaries and the attribute
// refresh, in dependency order with per-stage failure isolation.
type ScrapeService struct {
	provider       ContestProvider
	contestRepo    contest.Repository
	draftGroupRepo draftgroup.Repository
	gameTypeRepo   gametype.Repository
	payoutRepo     payout.Repository
	salaryRepo     playersalary.Repository
	configRepo     scrapeconfig.Repository
	detailCache    *cache.Store
	idGen          id.Generator
	validator      *validator.Validate
	cfg            ScrapeServiceConfig
	logger         *logging.Logger
}

func NewScrapeService(
	provider ContestProvider,
	contestRepo contest.Repository,
	draftGroupRepo draftgroup.Repository,
	gameTypeRepo gametype.Repository,
	payoutRepo payout.Repository,
	salaryRepo playersalary.Repository,
	configRepo scrapeconfig.Repository,
	detailCache *cache.Store,
	idGen id.Generator,
	cfg ScrapeServiceConfig,
	logger *logging.Logger,
) *ScrapeService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}

	return &ScrapeService{
		provider:       provider,
		contestRepo:    contestRepo,
		draftGroupRepo: draftGroupRepo,
		gameTypeRepo:   gameTypeRepo,
		payoutRepo:     payoutRepo,
		salaryRepo:     salaryRepo,
		configRepo:     configRepo,
		detailCache:    detailCache,
		idGen:          idGen,
		validator:      validator.New(),
		cfg:            cfg,
		logger:         logger,
	}
}

// RunAll scrapes every sport routed to the pipeline. Sports come from
// the scrape config table; fallback is used when the table has no
// active rows yet.
func (s *ScrapeService) RunAll(ctx context.Context, fallback []string) ([]ScrapeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrapeService.RunAll")
	defer span.End()

	configs, err := s.activeConfigs(ctx, fallback)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("%w: no sports configured for scraping", ErrInvalidInput)
	}

	results := make([]ScrapeResult, 0, len(configs))
	for _, cfg := range configs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := s.ScrapeSport(ctx, cfg)
		if err != nil {
			s.logger.ErrorContext(ctx, "sport scrape aborted", "sport", cfg.Sport, "error", err)
		}
		results = append(results, result)
	}

	return results, nil
}

func (s *ScrapeService) activeConfigs(ctx context.Context, fallback []string) ([]scrapeconfig.ScrapeConfig, error) {
	fallbackConfigs := func() []scrapeconfig.ScrapeConfig {
		out := make([]scrapeconfig.ScrapeConfig, 0, len(fallback))
		for _, sport := range fallback {
			out = append(out, scrapeconfig.ScrapeConfig{Sport: sport})
		}
		return out
	}

	if s.configRepo == nil {
		return fallbackConfigs(), nil
	}

	configs, err := s.configRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active scrape configs: %w", err)
	}
	if len(configs) == 0 {
		s.logger.WarnContext(ctx, "no active scrape configs, using configured sport list", "fallback_count", len(fallback))
		return fallbackConfigs(), nil
	}
	return configs, nil
}

// ScrapeSport runs one sport through the full pipeline. The config row
// carries the sport code plus its draft group allow-lists; a zero-value
// config with just the sport set scrapes everything. A lobby fetch
// failure aborts the run; every later stage failure is recorded on the
// result and the remaining stages still run.
func (s *ScrapeService) ScrapeSport(ctx context.Context, cfg scrapeconfig.ScrapeConfig) (ScrapeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrapeService.ScrapeSport")
	defer span.End()

	sport := cfg.Sport
	result := ScrapeResult{Sport: sport, RunID: s.newRunID(ctx)}

	lobby, err := s.provider.FetchLobby(ctx, sport)
	if err != nil {
		result.Stages = append(result.Stages, ScrapeStageResult{Stage: stageOrchestrator, Error: err.Error()})
		return result, fmt.Errorf("fetch lobby sport=%s: %w", sport, err)
	}
	if len(lobby.Contests) == 0 {
		result.Offseason = true
		s.logger.InfoContext(ctx, "lobby is empty, sport looks off-season", "sport", sport, "run_id", result.RunID)
		return result, nil
	}

	var draftGroupIDs []int64
	s.runStage(ctx, &result, stageDraftGroups, func(ctx context.Context) (int, []StageFailure, error) {
		count, ids, failures, err := s.syncDraftGroups(ctx, cfg, lobby.DraftGroups)
		draftGroupIDs = ids
		return count, failures, err
	})

	knownGroups := make(map[int64]struct{}, len(draftGroupIDs))
	for _, dgID := range draftGroupIDs {
		knownGroups[dgID] = struct{}{}
	}

	var contestIDs []int64
	s.runStage(ctx, &result, stageContests, func(ctx context.Context) (int, []StageFailure, error) {
		count, ids, failures, err := s.syncContests(ctx, sport, lobby.Contests, knownGroups)
		contestIDs = ids
		return count, failures, err
	})

	s.runStage(ctx, &result, stageGameTypes, func(ctx context.Context) (int, []StageFailure, error) {
		return s.syncGameTypes(ctx, lobby.GameTypes)
	})

	if len(contestIDs) > 0 {
		s.runStage(ctx, &result, stagePayouts, func(ctx context.Context) (int, []StageFailure, error) {
			return s.syncPayouts(ctx, contestIDs)
		})
	}

	if len(draftGroupIDs) > 0 {
		s.runStage(ctx, &result, stagePlayerSalaries, func(ctx context.Context) (int, []StageFailure, error) {
			return s.syncPlayerSalaries(ctx, draftGroupIDs)
		})
	}

	s.runStage(ctx, &result, stageAttributes, func(ctx context.Context) (int, []StageFailure, error) {
		return s.refreshAttributes(ctx, sport)
	})

	s.logger.InfoContext(ctx, "sport scrape finished",
		"sport", sport,
		"run_id", result.RunID,
		"stages", len(result.Stages),
		"failed_stages", len(result.Failed()),
	)

	return result, nil
}

func (s *ScrapeService) newRunID(ctx context.Context) string {
	if s.idGen == nil {
		return ""
	}
	runID, err := s.idGen.NewID()
	if err != nil {
		s.logger.WarnContext(ctx, "generate run id failed", "error", err)
		return ""
	}
	return runID
}

func (s *ScrapeService) runStage(ctx context.Context, result *ScrapeResult, stage string, fn func(context.Context) (int, []StageFailure, error)) {
	start := time.Now()
	records, failures, err := fn(ctx)
	row := ScrapeStageResult{
		Stage:      stage,
		Records:    records,
		DurationMs: time.Since(start).Milliseconds(),
		Failures:   failures,
	}
	if err != nil {
		row.Error = err.Error()
		s.logger.ErrorContext(ctx, "scrape stage failed",
			"stage", stage,
			"sport", result.Sport,
			"run_id", result.RunID,
			"error", err,
		)
	}
	result.Stages = append(result.Stages, row)
}

func (s *ScrapeService) validateRecord(ctx context.Context, record any) error {
	if err := s.validator.StructCtx(ctx, record); err != nil {
		return fmt.Errorf("%w: validation failed: %v", ErrInvalidInput, err)
	}
	return nil
}

// syncDraftGroups maps the lobby's draft groups to storage, dropping
// groups outside the sport's game type and slate allow-lists before
// validation.
func (s *ScrapeService) syncDraftGroups(ctx context.Context, cfg scrapeconfig.ScrapeConfig, groups []ExternalDraftGroup) (int, []int64, []StageFailure, error) {
	sport := cfg.Sport
	mapped := make([]draftgroup.DraftGroup, 0, len(groups))
	ids := make([]int64, 0, len(groups))
	var failures []StageFailure
	var filtered int
	for _, ext := range groups {
		if !cfg.AllowsGameType(ext.GameTypeID) || !cfg.AllowsSlate(ext.ContestStartTimeSuffix) {
			filtered++
			continue
		}

		dg := draftgroup.DraftGroup{
			DraftGroupID:           ext.DraftGroupID,
			Sport:                  sport,
			GameTypeID:             ext.GameTypeID,
			GameType:               ext.GameType,
			ContestTypeID:          ext.ContestTypeID,
			ContestStartTimeSuffix: ext.ContestStartTimeSuffix,
			ContestStartTimeType:   ext.ContestStartTimeType,
			DraftGroupSeriesID:     ext.DraftGroupSeriesID,
			DraftGroupTag:          ext.DraftGroupTag,
			GameCount:              ext.GameCount,
			GameSetKey:             ext.GameSetKey,
			SortOrder:              ext.SortOrder,
			StartDate:              ext.StartDate,
			StartDateEST:           ext.StartDateEST,
		}
		if err := s.validateRecord(ctx, dg); err != nil {
			s.logger.WarnContext(ctx, "skip invalid draft group", "draft_group_id", ext.DraftGroupID, "error", err)
			failures = append(failures, StageFailure{ID: ext.DraftGroupID, Reason: err.Error()})
			continue
		}
		mapped = append(mapped, dg)
		ids = append(ids, dg.DraftGroupID)
	}

	if filtered > 0 {
		s.logger.InfoContext(ctx, "draft groups outside allow-lists dropped",
			"sport", sport,
			"filtered", filtered,
			"kept", len(mapped),
		)
	}

	if len(mapped) == 0 {
		return 0, nil, failures, nil
	}

	count, err := s.draftGroupRepo.UpsertMany(ctx, mapped)
	if err != nil {
		return 0, nil, failures, fmt.Errorf("upsert draft groups sport=%s: %w", sport, err)
	}
	return count, ids, failures, nil
}

func (s *ScrapeService) syncContests(ctx context.Context, sport string, externals []ExternalContest, knownGroups map[int64]struct{}) (int, []int64, []StageFailure, error) {
	mapped := make([]contest.Contest, 0, len(externals))
	ids := make([]int64, 0, len(externals))
	var failures []StageFailure
	var filtered, orphaned int
	for _, ext := range externals {
		if len(knownGroups) > 0 {
			if _, ok := knownGroups[ext.DraftGroupID]; !ok {
				orphaned++
				continue
			}
		}

		flags := contest.FlagsFromAttributes(ext.Attributes)
		if !contest.Keep(ext.Name, ext.MaxEntries, ext.EntryFee, flags) {
			filtered++
			continue
		}

		c := contest.Contest{
			ContestID:         ext.ContestID,
			Name:              ext.Name,
			Sport:             sport,
			EntryFee:          ext.EntryFee,
			MaxEntries:        ext.MaxEntries,
			MaxEntriesPerUser: ext.MaxEntriesPerUser,
			Entries:           0,
			DraftGroupID:      ext.DraftGroupID,
			PrizePool:         ext.PrizePool,
			CrownAmount:       ext.CrownAmount,
			PayoutDescription: ext.PayoutDescription,
			ContestDate:       ext.ContestDate,
			ContestURL:        contestURLPrefix + strconv.FormatInt(ext.ContestID, 10),
			Flags:             flags,
		}
		if err := s.validateRecord(ctx, c); err != nil {
			s.logger.WarnContext(ctx, "skip invalid contest", "contest_id", ext.ContestID, "error", err)
			failures = append(failures, StageFailure{ID: ext.ContestID, Reason: err.Error()})
			continue
		}
		mapped = append(mapped, c)
		ids = append(ids, c.ContestID)
	}

	s.logger.InfoContext(ctx, "lobby contests classified",
		"sport", sport,
		"lobby_count", len(externals),
		"kept", len(mapped),
		"filtered", filtered,
		"orphaned", orphaned,
	)

	if len(mapped) == 0 {
		return 0, nil, failures, nil
	}

	count, err := s.contestRepo.UpsertMany(ctx, mapped)
	if err != nil {
		return 0, nil, failures, fmt.Errorf("upsert contests sport=%s: %w", sport, err)
	}
	return count, ids, failures, nil
}

func (s *ScrapeService) syncGameTypes(ctx context.Context, externals []ExternalGameType) (int, []StageFailure, error) {
	mapped := make([]gametype.GameType, 0, len(externals))
	var failures []StageFailure
	for _, ext := range externals {
		gt := gametype.GameType{
			GameTypeID:     ext.GameTypeID,
			Name:           ext.Name,
			Description:    ext.Description,
			Tag:            ext.Tag,
			SportID:        ext.SportID,
			DraftType:      ext.DraftType,
			GameStyleID:    ext.GameStyleID,
			GameStyleName:  ext.GameStyleName,
			IsSalaryCapped: ext.IsSalaryCapped,
			AllowLateSwap:  ext.AllowLateSwap,
		}
		if err := s.validateRecord(ctx, gt); err != nil {
			s.logger.WarnContext(ctx, "skip invalid game type", "game_type_id", ext.GameTypeID, "error", err)
			failures = append(failures, StageFailure{ID: ext.GameTypeID, Reason: err.Error()})
			continue
		}
		mapped = append(mapped, gt)
	}

	if len(mapped) == 0 {
		return 0, failures, nil
	}

	count, err := s.gameTypeRepo.UpsertMany(ctx, mapped)
	if err != nil {
		return 0, failures, fmt.Errorf("upsert game types: %w", err)
	}
	return count, failures, nil
}

// contestDetail fetches a contest detail through the shared TTL cache
// so the payout and attribute stages hit the provider once per contest.
func (s *ScrapeService) contestDetail(ctx context.Context, contestID int64) (ExternalContestDetail, error) {
	if s.detailCache == nil {
		return s.provider.FetchContestDetail(ctx, contestID)
	}

	value, err := s.detailCache.GetOrLoad(ctx, "contest-detail:"+strconv.FormatInt(contestID, 10), func(ctx context.Context) (any, error) {
		return s.provider.FetchContestDetail(ctx, contestID)
	})
	if err != nil {
		return ExternalContestDetail{}, err
	}

	detail, ok := value.(ExternalContestDetail)
	if !ok {
		return ExternalContestDetail{}, fmt.Errorf("unexpected cached contest detail type %T", value)
	}
	return detail, nil
}

// detailBatchOutcome is the per-contest result of a worker pool batch.
type detailBatchOutcome[T any] struct {
	contestID int64
	row       T
	ok        bool
}

// forEachContestDetail fans contest detail fetches out over a worker
// pool sized to the batch, pausing between batches. Contests the
// provider no longer knows (404) are skipped; any other per-contest
// failure is logged and collected while the rest of the stage keeps
// going. Only context cancellation stops the walk.
func forEachContestDetail[T any](
	ctx context.Context,
	s *ScrapeService,
	contestIDs []int64,
	pause time.Duration,
	build func(ctx context.Context, contestID int64, detail ExternalContestDetail) (T, bool),
) ([]T, []StageFailure, error) {
	poolSize := s.cfg.BatchSize
	if poolSize > len(contestIDs) {
		poolSize = len(contestIDs)
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, nil, fmt.Errorf("create detail worker pool: %w", err)
	}
	defer pool.Release()

	var (
		skipped   atomic.Int32
		failMu    sync.Mutex
		failures  []StageFailure
		collected []detailBatchOutcome[T]
	)
	recordFailure := func(contestID int64, err error) {
		s.logger.WarnContext(ctx, "contest detail fetch failed, skipping", "contest_id", contestID, "error", err)
		failMu.Lock()
		failures = append(failures, StageFailure{ID: contestID, Reason: err.Error()})
		failMu.Unlock()
	}

	for start := 0; start < len(contestIDs); start += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, failures, err
		}

		end := start + s.cfg.BatchSize
		if end > len(contestIDs) {
			end = len(contestIDs)
		}
		batch := contestIDs[start:end]

		results := make(chan detailBatchOutcome[T], len(batch))
		var workers sync.WaitGroup
		for _, contestID := range batch {
			contestID := contestID
			workers.Add(1)
			if err := pool.Submit(func() {
				defer workers.Done()

				detail, err := s.contestDetail(ctx, contestID)
				if err != nil {
					if errors.Is(err, ErrNotFound) {
						skipped.Add(1)
						s.logger.WarnContext(ctx, "contest detail missing, skipping", "contest_id", contestID)
						return
					}
					recordFailure(contestID, err)
					return
				}

				row, ok := build(ctx, contestID, detail)
				results <- detailBatchOutcome[T]{contestID: contestID, row: row, ok: ok}
			}); err != nil {
				workers.Done()
				recordFailure(contestID, fmt.Errorf("submit detail task: %w", err))
			}
		}
		workers.Wait()
		close(results)

		for outcome := range results {
			collected = append(collected, outcome)
		}

		if end < len(contestIDs) {
			if err := sleepContext(ctx, pause); err != nil {
				return nil, failures, err
			}
		}
	}

	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].contestID < collected[j].contestID
	})

	rows := make([]T, 0, len(collected))
	for _, outcome := range collected {
		if outcome.ok {
			rows = append(rows, outcome.row)
		}
	}

	if n := skipped.Load(); n > 0 || len(failures) > 0 {
		s.logger.InfoContext(ctx, "contest details skipped",
			"skipped", n,
			"failed", len(failures),
			"requested", len(contestIDs),
		)
	}

	return rows, failures, nil
}

func (s *ScrapeService) syncPayouts(ctx context.Context, contestIDs []int64) (int, []StageFailure, error) {
	var (
		invalidMu sync.Mutex
		invalid   []StageFailure
	)
	tierLists, failures, err := forEachContestDetail(ctx, s, contestIDs, s.cfg.PayoutBatchPause,
		func(ctx context.Context, contestID int64, detail ExternalContestDetail) ([]payout.Payout, bool) {
			tiers := mapPayoutTiers(contestID, detail.PayoutSummary)
			for i := range tiers {
				if err := s.validateRecord(ctx, tiers[i]); err != nil {
					s.logger.WarnContext(ctx, "skip invalid payout tier", "contest_id", contestID, "error", err)
					invalidMu.Lock()
					invalid = append(invalid, StageFailure{ID: contestID, Reason: err.Error()})
					invalidMu.Unlock()
					return nil, false
				}
			}
			return tiers, len(tiers) > 0
		})
	failures = append(failures, invalid...)
	if err != nil {
		return 0, failures, fmt.Errorf("fetch contest payouts: %w", err)
	}

	var flattened []payout.Payout
	for _, tiers := range tierLists {
		flattened = append(flattened, tiers...)
	}
	flattened = payout.Dedupe(flattened)

	if len(flattened) == 0 {
		return 0, failures, nil
	}

	count, err := s.payoutRepo.UpsertMany(ctx, flattened)
	if err != nil {
		return 0, failures, fmt.Errorf("upsert payouts: %w", err)
	}
	return count, failures, nil
}

func mapPayoutTiers(contestID int64, summary []ExternalPayoutTier) []payout.Payout {
	tiers := make([]payout.Payout, 0, len(summary))
	for _, ext := range summary {
		tier := payout.Payout{
			ContestID:    contestID,
			MinPosition:  ext.MinPosition,
			MaxPosition:  ext.MaxPosition,
			OriginalTier: ext.OriginalTier,
		}
		if len(ext.Tiers) > 0 {
			tier.PayoutOneType = ext.Tiers[0].Type
			tier.PayoutOneDisplay = ext.Tiers[0].Display
			if value, ok := payout.DecodeValue(ext.Tiers[0].Type, ext.Tiers[0].Display); ok {
				tier.PayoutOneValue = &value
			}
		}
		if len(ext.Tiers) > 1 {
			tier.PayoutTwoType = ext.Tiers[1].Type
			tier.PayoutTwoDisplay = ext.Tiers[1].Display
			if value, ok := payout.DecodeValue(ext.Tiers[1].Type, ext.Tiers[1].Display); ok {
				tier.PayoutTwoValue = &value
			}
		}
		tiers = append(tiers, tier)
	}
	return tiers
}

// syncPlayerSalaries pulls the salary export for every draft group. A
// draft group whose export is missing or failing is logged and recorded
// as a failure; the remaining groups still sync.
func (s *ScrapeService) syncPlayerSalaries(ctx context.Context, draftGroupIDs []int64) (int, []StageFailure, error) {
	var mapped []playersalary.PlayerSalary
	var failures []StageFailure
	for i, dgID := range draftGroupIDs {
		if i > 0 {
			if err := sleepContext(ctx, s.cfg.SalaryFetchPause); err != nil {
				return 0, failures, err
			}
		}

		externals, err := s.provider.FetchPlayerSalaries(ctx, dgID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.WarnContext(ctx, "player salary export missing, skipping", "draft_group_id", dgID)
				continue
			}
			s.logger.WarnContext(ctx, "player salary fetch failed, skipping", "draft_group_id", dgID, "error", err)
			failures = append(failures, StageFailure{ID: dgID, Reason: err.Error()})
			continue
		}

		for _, ext := range externals {
			row := playersalary.PlayerSalary{
				DraftGroupID:     ext.DraftGroupID,
				PlayerID:         ext.PlayerID,
				Position:         ext.Position,
				NameWithID:       ext.NameWithID,
				Name:             ext.Name,
				RosterPosition:   ext.RosterPosition,
				Salary:           ext.Salary,
				GameInfo:         ext.GameInfo,
				TeamAbbrev:       ext.TeamAbbrev,
				AvgPointsPerGame: ext.AvgPointsPerGame,
			}
			if err := s.validateRecord(ctx, row); err != nil {
				s.logger.WarnContext(ctx, "skip invalid player salary row", "draft_group_id", dgID, "player_id", ext.PlayerID, "error", err)
				failures = append(failures, StageFailure{ID: ext.PlayerID, Reason: err.Error()})
				continue
			}
			mapped = append(mapped, row)
		}
	}

	if len(mapped) == 0 {
		return 0, failures, nil
	}

	count, err := s.salaryRepo.UpsertMany(ctx, mapped)
	if err != nil {
		return 0, failures, fmt.Errorf("upsert player salaries: %w", err)
	}
	return count, failures, nil
}

// RefreshAttributes re-reads contest detail for every tracked non-final
// contest of the sport and pushes state, final/cancelled flags, start
// time and late name or entry-cap changes into the store. Pass an empty
// sport to refresh every tracked contest.
func (s *ScrapeService) RefreshAttributes(ctx context.Context, sport string) (int, error) {
	count, _, err := s.refreshAttributes(ctx, sport)
	return count, err
}

func (s *ScrapeService) refreshAttributes(ctx context.Context, sport string) (int, []StageFailure, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrapeService.RefreshAttributes")
	defer span.End()

	contestIDs, err := s.contestRepo.ListTrackedIDs(ctx, sport)
	if err != nil {
		return 0, nil, fmt.Errorf("list tracked contests sport=%s: %w", sport, err)
	}
	if len(contestIDs) == 0 {
		return 0, nil, nil
	}

	updates, failures, err := forEachContestDetail(ctx, s, contestIDs, s.cfg.AttributeBatchPause,
		func(_ context.Context, contestID int64, detail ExternalContestDetail) (contest.AttributeUpdate, bool) {
			state := contest.NormalizeState(detail.ContestState)
			return contest.AttributeUpdate{
				ContestID:    contestID,
				ContestState: state,
				IsFinal:      contest.IsFinalState(state),
				IsCancelled:  contest.IsCancelledState(state),
				StartTime:    detail.StartTime,
				Name:         detail.Name,
				MaxEntries:   detail.MaximumEntries,
			}, true
		})
	if err != nil {
		return 0, failures, fmt.Errorf("fetch contest attributes: %w", err)
	}

	if len(updates) == 0 {
		return 0, failures, nil
	}

	count, err := s.contestRepo.UpdateAttributes(ctx, updates)
	if err != nil {
		return 0, failures, fmt.Errorf("update contest attributes: %w", err)
	}
	return count, failures, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
