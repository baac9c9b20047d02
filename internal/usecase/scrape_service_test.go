package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GGarrido28/dk-scraper/internal/domain/contest"
	"github.com/GGarrido28/dk-scraper/internal/domain/draftgroup"
	"github.com/GGarrido28/dk-scraper/internal/domain/gametype"
	"github.com/GGarrido28/dk-scraper/internal/domain/payout"
	"github.com/GGarrido28/dk-scraper/internal/domain/playersalary"
	"github.com/GGarrido28/dk-scraper/internal/domain/scrapeconfig"
	"github.com/GGarrido28/dk-scraper/internal/platform/cache"
)

type stubProvider struct {
	mu          sync.Mutex
	lobby       ExternalLobby
	lobbyErr    error
	details     map[int64]ExternalContestDetail
	detailErrs  map[int64]error
	detailCalls map[int64]int
	salaries    map[int64][]ExternalPlayerSalary
	salaryErrs  map[int64]error
	sports      []ExternalSport
}

func (p *stubProvider) FetchLobby(_ context.Context, sport string) (ExternalLobby, error) {
	if p.lobbyErr != nil {
		return ExternalLobby{}, p.lobbyErr
	}
	lobby := p.lobby
	lobby.Sport = sport
	return lobby, nil
}

func (p *stubProvider) FetchContestDetail(_ context.Context, contestID int64) (ExternalContestDetail, error) {
	p.mu.Lock()
	if p.detailCalls == nil {
		p.detailCalls = make(map[int64]int)
	}
	p.detailCalls[contestID]++
	p.mu.Unlock()

	if err, ok := p.detailErrs[contestID]; ok {
		return ExternalContestDetail{}, err
	}
	detail, ok := p.details[contestID]
	if !ok {
		return ExternalContestDetail{}, fmt.Errorf("%w: contest %d", ErrNotFound, contestID)
	}
	return detail, nil
}

func (p *stubProvider) FetchPlayerSalaries(_ context.Context, draftGroupID int64) ([]ExternalPlayerSalary, error) {
	if err, ok := p.salaryErrs[draftGroupID]; ok {
		return nil, err
	}
	rows, ok := p.salaries[draftGroupID]
	if !ok {
		return nil, fmt.Errorf("%w: draft group %d", ErrNotFound, draftGroupID)
	}
	return rows, nil
}

func (p *stubProvider) FetchSports(_ context.Context) ([]ExternalSport, error) {
	return p.sports, nil
}

func (p *stubProvider) calls(contestID int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detailCalls[contestID]
}

type stubContestRepo struct {
	mu         sync.Mutex
	upserted   []contest.Contest
	updates    []contest.AttributeUpdate
	trackedIDs []int64
	ready      []int64
	downloaded []int64
	upsertErr  error
}

func (r *stubContestRepo) UpsertMany(_ context.Context, contests []contest.Contest) (int, error) {
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, contests...)
	return len(contests), nil
}

func (r *stubContestRepo) UpdateAttributes(_ context.Context, updates []contest.AttributeUpdate) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, updates...)
	return len(updates), nil
}

func (r *stubContestRepo) ListTrackedIDs(_ context.Context, _ string) ([]int64, error) {
	return r.trackedIDs, nil
}

func (r *stubContestRepo) ListReadyForDownload(_ context.Context) ([]int64, error) {
	return r.ready, nil
}

func (r *stubContestRepo) MarkDownloaded(_ context.Context, contestID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.downloaded = append(r.downloaded, contestID)
	return nil
}

type stubDraftGroupRepo struct {
	upserted []draftgroup.DraftGroup
}

func (r *stubDraftGroupRepo) UpsertMany(_ context.Context, groups []draftgroup.DraftGroup) (int, error) {
	r.upserted = append(r.upserted, groups...)
	return len(groups), nil
}

type stubGameTypeRepo struct {
	upserted  []gametype.GameType
	upsertErr error
}

func (r *stubGameTypeRepo) UpsertMany(_ context.Context, types []gametype.GameType) (int, error) {
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	r.upserted = append(r.upserted, types...)
	return len(types), nil
}

type stubPayoutRepo struct {
	mu       sync.Mutex
	upserted []payout.Payout
}

func (r *stubPayoutRepo) UpsertMany(_ context.Context, tiers []payout.Payout) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, tiers...)
	return len(tiers), nil
}

type stubSalaryRepo struct {
	upserted []playersalary.PlayerSalary
}

func (r *stubSalaryRepo) UpsertMany(_ context.Context, rows []playersalary.PlayerSalary) (int, error) {
	r.upserted = append(r.upserted, rows...)
	return len(rows), nil
}

type stubConfigRepo struct {
	active   []scrapeconfig.ScrapeConfig
	upserted []scrapeconfig.ScrapeConfig
}

func (r *stubConfigRepo) ListActive(_ context.Context) ([]scrapeconfig.ScrapeConfig, error) {
	return r.active, nil
}

func (r *stubConfigRepo) UpsertMany(_ context.Context, configs []scrapeconfig.ScrapeConfig) (int, error) {
	r.upserted = append(r.upserted, configs...)
	return len(configs), nil
}

func newTestScrapeService(provider *stubProvider, contests *stubContestRepo, groups *stubDraftGroupRepo, types *stubGameTypeRepo, payouts *stubPayoutRepo, salaries *stubSalaryRepo, configs *stubConfigRepo) *ScrapeService {
	return NewScrapeService(
		provider,
		contests,
		groups,
		types,
		payouts,
		salaries,
		configs,
		cache.NewStore(time.Minute),
		nil,
		ScrapeServiceConfig{BatchSize: 2},
		nil,
	)
}

func testLobby() ExternalLobby {
	return ExternalLobby{
		Contests: []ExternalContest{
			{
				ContestID:    501,
				Name:         "NFL $100K Kickoff Special",
				EntryFee:     5,
				MaxEntries:   5000,
				DraftGroupID: 90,
				PrizePool:    100000,
				ContestDate:  "Sun 1:00PM",
				Attributes:   map[string]string{"IsGuaranteed": "true"},
			},
			{
				// Not guaranteed, dropped by the value policy.
				ContestID:    502,
				Name:         "NFL Casual Game",
				EntryFee:     1,
				MaxEntries:   10,
				DraftGroupID: 90,
				Attributes:   map[string]string{},
			},
		},
		DraftGroups: []ExternalDraftGroup{
			{DraftGroupID: 90, GameTypeID: 1, GameType: "Classic", StartDate: "2025-09-07T17:00:00.0000000Z"},
		},
		GameTypes: []ExternalGameType{
			{GameTypeID: 1, Name: "Classic", SportID: 1, DraftType: "SalaryCap", IsSalaryCapped: true},
		},
	}
}

func testDetail(contestID int64) ExternalContestDetail {
	start := time.Date(2025, 9, 7, 13, 0, 0, 0, time.UTC)
	return ExternalContestDetail{
		ContestID:      contestID,
		Name:           "NFL $100K Kickoff Special",
		Sport:          "NFL",
		ContestState:   "Completed",
		StartTime:      &start,
		Entries:        4800,
		MaximumEntries: 5000,
		EntryFee:       5,
		PayoutSummary: []ExternalPayoutTier{
			{MinPosition: 1, MaxPosition: 1, Tiers: []ExternalTierPayout{{Type: "Cash", Display: "$10,000.00"}}, CashSum: 10000},
			{MinPosition: 2, MaxPosition: 5, Tiers: []ExternalTierPayout{{Type: "Cash", Display: "$1,000.00"}}, CashSum: 1000},
		},
	}
}

func TestScrapeService_ScrapeSport_LobbyFailureAborts(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{lobbyErr: errors.New("lobby is down")}
	svc := newTestScrapeService(provider, &stubContestRepo{}, &stubDraftGroupRepo{}, &stubGameTypeRepo{}, &stubPayoutRepo{}, &stubSalaryRepo{}, &stubConfigRepo{})

	result, err := svc.ScrapeSport(context.Background(), scrapeconfig.ScrapeConfig{Sport: "NFL"})
	if err == nil {
		t.Fatal("expected lobby failure to abort the run")
	}
	if len(result.Stages) != 1 {
		t.Fatalf("expected 1 stage entry, got=%d", len(result.Stages))
	}
	if result.Stages[0].Stage != stageOrchestrator {
		t.Fatalf("expected orchestrator stage, got=%q", result.Stages[0].Stage)
	}
	if result.Stages[0].Error == "" {
		t.Fatal("expected the orchestrator stage to record the error")
	}
}

func TestScrapeService_ScrapeSport_EmptyLobbyIsOffseason(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{lobby: ExternalLobby{}}
	contests := &stubContestRepo{}
	svc := newTestScrapeService(provider, contests, &stubDraftGroupRepo{}, &stubGameTypeRepo{}, &stubPayoutRepo{}, &stubSalaryRepo{}, &stubConfigRepo{})

	result, err := svc.ScrapeSport(context.Background(), scrapeconfig.ScrapeConfig{Sport: "NFL"})
	if err != nil {
		t.Fatalf("ScrapeSport error: %v", err)
	}
	if !result.Offseason {
		t.Fatal("expected an empty lobby to read as off-season")
	}
	if len(result.Stages) != 0 {
		t.Fatalf("expected no stages to run, got=%d", len(result.Stages))
	}
	if len(contests.upserted) != 0 {
		t.Fatalf("expected no contests stored, got=%d", len(contests.upserted))
	}
}

func TestScrapeService_ScrapeSport_FullRun(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		lobby:   testLobby(),
		details: map[int64]ExternalContestDetail{501: testDetail(501)},
		salaries: map[int64][]ExternalPlayerSalary{
			90: {{DraftGroupID: 90, PlayerID: 7, Name: "Justin Jefferson", Position: "WR", Salary: 8900, AvgPointsPerGame: 21.4}},
		},
	}
	contests := &stubContestRepo{trackedIDs: []int64{501}}
	groups := &stubDraftGroupRepo{}
	types := &stubGameTypeRepo{}
	payouts := &stubPayoutRepo{}
	salaries := &stubSalaryRepo{}
	svc := newTestScrapeService(provider, contests, groups, types, payouts, salaries, &stubConfigRepo{})

	result, err := svc.ScrapeSport(context.Background(), scrapeconfig.ScrapeConfig{Sport: "NFL"})
	if err != nil {
		t.Fatalf("ScrapeSport error: %v", err)
	}
	if failed := result.Failed(); len(failed) != 0 {
		t.Fatalf("expected no failed stages, got=%+v", failed)
	}

	wantStages := []string{stageDraftGroups, stageContests, stageGameTypes, stagePayouts, stagePlayerSalaries, stageAttributes}
	if len(result.Stages) != len(wantStages) {
		t.Fatalf("expected %d stages, got=%d", len(wantStages), len(result.Stages))
	}
	for i, want := range wantStages {
		if result.Stages[i].Stage != want {
			t.Fatalf("stage %d: expected %q, got=%q", i, want, result.Stages[i].Stage)
		}
	}

	if len(contests.upserted) != 1 {
		t.Fatalf("expected 1 contest to survive the filter, got=%d", len(contests.upserted))
	}
	kept := contests.upserted[0]
	if kept.ContestID != 501 || !kept.Flags.Guaranteed {
		t.Fatalf("unexpected kept contest: %+v", kept)
	}
	if kept.ContestURL != "https://www.draftkings.com/draft/contest/501" {
		t.Fatalf("unexpected contest url: %q", kept.ContestURL)
	}

	if len(groups.upserted) != 1 || groups.upserted[0].Sport != "NFL" {
		t.Fatalf("unexpected draft groups: %+v", groups.upserted)
	}
	if len(types.upserted) != 1 {
		t.Fatalf("expected 1 game type, got=%d", len(types.upserted))
	}

	if len(payouts.upserted) != 2 {
		t.Fatalf("expected 2 payout tiers, got=%d", len(payouts.upserted))
	}
	first := payouts.upserted[0]
	if first.PayoutOneValue == nil || *first.PayoutOneValue != 10000 {
		t.Fatalf("unexpected first tier value: %+v", first)
	}

	if len(salaries.upserted) != 1 || salaries.upserted[0].PlayerID != 7 {
		t.Fatalf("unexpected salaries: %+v", salaries.upserted)
	}

	if len(contests.updates) != 1 {
		t.Fatalf("expected 1 attribute update, got=%d", len(contests.updates))
	}
	update := contests.updates[0]
	if !update.IsFinal || update.IsCancelled {
		t.Fatalf("unexpected attribute update: %+v", update)
	}
	if update.ContestState != contest.StateCompleted {
		t.Fatalf("expected normalized state, got=%q", update.ContestState)
	}

	// Payout and attribute stages share one cached detail fetch.
	if calls := provider.calls(501); calls != 1 {
		t.Fatalf("expected 1 detail fetch through the cache, got=%d", calls)
	}
}

func TestScrapeService_ScrapeSport_StageFailureIsIsolated(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		lobby:    testLobby(),
		details:  map[int64]ExternalContestDetail{501: testDetail(501)},
		salaries: map[int64][]ExternalPlayerSalary{90: {}},
	}
	contests := &stubContestRepo{trackedIDs: []int64{501}}
	types := &stubGameTypeRepo{upsertErr: errors.New("game_types table is locked")}
	payouts := &stubPayoutRepo{}
	svc := newTestScrapeService(provider, contests, &stubDraftGroupRepo{}, types, payouts, &stubSalaryRepo{}, &stubConfigRepo{})

	result, err := svc.ScrapeSport(context.Background(), scrapeconfig.ScrapeConfig{Sport: "NFL"})
	if err != nil {
		t.Fatalf("ScrapeSport error: %v", err)
	}

	failed := result.Failed()
	if len(failed) != 1 {
		t.Fatalf("expected exactly the game type stage to fail, got=%+v", failed)
	}
	if failed[0].Stage != stageGameTypes {
		t.Fatalf("expected game_types to fail, got=%q", failed[0].Stage)
	}

	// Later stages still ran.
	if len(payouts.upserted) == 0 {
		t.Fatal("expected the payout stage to run after the game type failure")
	}
	if len(contests.updates) != 1 {
		t.Fatalf("expected the attribute stage to run, got=%d updates", len(contests.updates))
	}
}

func TestScrapeService_RefreshAttributes_MissingContestSkipped(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{details: map[int64]ExternalContestDetail{501: testDetail(501)}}
	contests := &stubContestRepo{trackedIDs: []int64{501, 999}}
	svc := newTestScrapeService(provider, contests, &stubDraftGroupRepo{}, &stubGameTypeRepo{}, &stubPayoutRepo{}, &stubSalaryRepo{}, &stubConfigRepo{})

	count, err := svc.RefreshAttributes(context.Background(), "NFL")
	if err != nil {
		t.Fatalf("RefreshAttributes error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 update, got=%d", count)
	}
	if len(contests.updates) != 1 || contests.updates[0].ContestID != 501 {
		t.Fatalf("unexpected updates: %+v", contests.updates)
	}
}

func TestScrapeService_RunAll_FallsBackWithoutConfigs(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{lobby: ExternalLobby{}}
	svc := newTestScrapeService(provider, &stubContestRepo{}, &stubDraftGroupRepo{}, &stubGameTypeRepo{}, &stubPayoutRepo{}, &stubSalaryRepo{}, &stubConfigRepo{})

	results, err := svc.RunAll(context.Background(), []string{"NFL", "MLB"})
	if err != nil {
		t.Fatalf("RunAll error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 sports scraped, got=%d", len(results))
	}
	if results[0].Sport != "NFL" || results[1].Sport != "MLB" {
		t.Fatalf("unexpected sports: %+v", results)
	}
}

func TestScrapeService_RunAll_UsesActiveConfigs(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{lobby: ExternalLobby{}}
	configs := &stubConfigRepo{active: []scrapeconfig.ScrapeConfig{{Sport: "NAS"}, {Sport: "PGA"}}}
	svc := newTestScrapeService(provider, &stubContestRepo{}, &stubDraftGroupRepo{}, &stubGameTypeRepo{}, &stubPayoutRepo{}, &stubSalaryRepo{}, configs)

	results, err := svc.RunAll(context.Background(), []string{"NFL"})
	if err != nil {
		t.Fatalf("RunAll error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected the configured sports, got=%+v", results)
	}
	if results[0].Sport != "NAS" || results[1].Sport != "PGA" {
		t.Fatalf("unexpected sports: %+v", results)
	}
}

func TestScrapeService_ScrapeSport_DraftGroupAllowLists(t *testing.T) {
	t.Parallel()

	lobby := testLobby()
	lobby.DraftGroups = []ExternalDraftGroup{
		{DraftGroupID: 90, GameTypeID: 1, GameType: "Classic", StartDate: "2025-09-07T17:00:00.0000000Z"},
		{DraftGroupID: 91, GameTypeID: 2, GameType: "Showdown", StartDate: "2025-09-07T17:00:00.0000000Z"},
		{DraftGroupID: 92, GameTypeID: 1, GameType: "Classic", ContestStartTimeSuffix: "(Early Only)", StartDate: "2025-09-07T13:00:00.0000000Z"},
	}
	lobby.Contests = append(lobby.Contests, ExternalContest{
		ContestID:    503,
		Name:         "NFL $50K Showdown Special",
		EntryFee:     5,
		MaxEntries:   5000,
		DraftGroupID: 91,
		PrizePool:    50000,
		Attributes:   map[string]string{"IsGuaranteed": "true"},
	})

	provider := &stubProvider{
		lobby:    lobby,
		details:  map[int64]ExternalContestDetail{501: testDetail(501)},
		salaries: map[int64][]ExternalPlayerSalary{90: {}},
	}
	contests := &stubContestRepo{}
	groups := &stubDraftGroupRepo{}
	svc := newTestScrapeService(provider, contests, groups, &stubGameTypeRepo{}, &stubPayoutRepo{}, &stubSalaryRepo{}, &stubConfigRepo{})

	cfg := scrapeconfig.ScrapeConfig{
		Sport:       "NFL",
		GameTypeIDs: []int64{1},
		SlateTypes:  []string{""},
	}
	result, err := svc.ScrapeSport(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ScrapeSport error: %v", err)
	}
	if failed := result.Failed(); len(failed) != 0 {
		t.Fatalf("expected no failed stages, got=%+v", failed)
	}

	// Group 91 has the wrong game type, group 92 the wrong slate suffix.
	if len(groups.upserted) != 1 || groups.upserted[0].DraftGroupID != 90 {
		t.Fatalf("expected only draft group 90 to survive the allow-lists, got=%+v", groups.upserted)
	}

	// Contest 503 belongs to a filtered group, so it is orphaned.
	if len(contests.upserted) != 1 || contests.upserted[0].ContestID != 501 {
		t.Fatalf("unexpected contests: %+v", contests.upserted)
	}
}

func TestScrapeService_ScrapeSport_EmptyAllowListsKeepEverything(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		lobby:    testLobby(),
		details:  map[int64]ExternalContestDetail{501: testDetail(501)},
		salaries: map[int64][]ExternalPlayerSalary{90: {}},
	}
	groups := &stubDraftGroupRepo{}
	svc := newTestScrapeService(provider, &stubContestRepo{}, groups, &stubGameTypeRepo{}, &stubPayoutRepo{}, &stubSalaryRepo{}, &stubConfigRepo{})

	if _, err := svc.ScrapeSport(context.Background(), scrapeconfig.ScrapeConfig{Sport: "NFL"}); err != nil {
		t.Fatalf("ScrapeSport error: %v", err)
	}
	if len(groups.upserted) != 1 {
		t.Fatalf("expected the lobby draft group to be kept, got=%+v", groups.upserted)
	}
}

func TestScrapeService_RefreshAttributes_ProviderErrorSkipsContest(t *testing.T) {
	t.Parallel()

	details := make(map[int64]ExternalContestDetail, 10)
	tracked := make([]int64, 0, 10)
	for id := int64(1); id <= 10; id++ {
		tracked = append(tracked, id)
		if id != 7 {
			details[id] = testDetail(id)
		}
	}
	provider := &stubProvider{
		details:    details,
		detailErrs: map[int64]error{7: errors.New("provider status=500")},
	}
	contests := &stubContestRepo{trackedIDs: tracked}
	svc := newTestScrapeService(provider, contests, &stubDraftGroupRepo{}, &stubGameTypeRepo{}, &stubPayoutRepo{}, &stubSalaryRepo{}, &stubConfigRepo{})

	count, err := svc.RefreshAttributes(context.Background(), "NFL")
	if err != nil {
		t.Fatalf("RefreshAttributes error: %v", err)
	}
	if count != 9 {
		t.Fatalf("expected 9 updates past the failing contest, got=%d", count)
	}
	if len(contests.updates) != 9 {
		t.Fatalf("expected 9 persisted updates, got=%d", len(contests.updates))
	}
	for _, update := range contests.updates {
		if update.ContestID == 7 {
			t.Fatalf("failing contest must not produce an update: %+v", update)
		}
	}
}

func TestScrapeService_ScrapeSport_SalaryFetchErrorIsIsolated(t *testing.T) {
	t.Parallel()

	lobby := testLobby()
	lobby.DraftGroups = append(lobby.DraftGroups, ExternalDraftGroup{
		DraftGroupID: 91, GameTypeID: 1, GameType: "Classic", StartDate: "2025-09-07T21:00:00.0000000Z",
	})

	provider := &stubProvider{
		lobby:   lobby,
		details: map[int64]ExternalContestDetail{501: testDetail(501)},
		salaries: map[int64][]ExternalPlayerSalary{
			90: {{DraftGroupID: 90, PlayerID: 7, Name: "Justin Jefferson", Position: "WR", Salary: 8900}},
		},
		salaryErrs: map[int64]error{91: errors.New("provider status=500")},
	}
	salaries := &stubSalaryRepo{}
	svc := newTestScrapeService(provider, &stubContestRepo{}, &stubDraftGroupRepo{}, &stubGameTypeRepo{}, &stubPayoutRepo{}, salaries, &stubConfigRepo{})

	result, err := svc.ScrapeSport(context.Background(), scrapeconfig.ScrapeConfig{Sport: "NFL"})
	if err != nil {
		t.Fatalf("ScrapeSport error: %v", err)
	}

	var salaryStage *ScrapeStageResult
	for i := range result.Stages {
		if result.Stages[i].Stage == stagePlayerSalaries {
			salaryStage = &result.Stages[i]
		}
	}
	if salaryStage == nil {
		t.Fatal("expected a player salary stage")
	}
	if salaryStage.Error != "" {
		t.Fatalf("one failing draft group must not fail the stage: %q", salaryStage.Error)
	}
	if len(salaryStage.Failures) != 1 || salaryStage.Failures[0].ID != 91 {
		t.Fatalf("expected the failing draft group recorded, got=%+v", salaryStage.Failures)
	}
	if len(salaries.upserted) != 1 || salaries.upserted[0].DraftGroupID != 90 {
		t.Fatalf("expected the healthy draft group's rows persisted, got=%+v", salaries.upserted)
	}
}

func TestScrapeService_ScrapeSport_ValidationFailuresReported(t *testing.T) {
	t.Parallel()

	lobby := testLobby()
	lobby.GameTypes = append(lobby.GameTypes, ExternalGameType{Name: "Broken"})

	provider := &stubProvider{
		lobby:    lobby,
		details:  map[int64]ExternalContestDetail{501: testDetail(501)},
		salaries: map[int64][]ExternalPlayerSalary{90: {}},
	}
	types := &stubGameTypeRepo{}
	svc := newTestScrapeService(provider, &stubContestRepo{}, &stubDraftGroupRepo{}, types, &stubPayoutRepo{}, &stubSalaryRepo{}, &stubConfigRepo{})

	result, err := svc.ScrapeSport(context.Background(), scrapeconfig.ScrapeConfig{Sport: "NFL"})
	if err != nil {
		t.Fatalf("ScrapeSport error: %v", err)
	}

	var typeStage *ScrapeStageResult
	for i := range result.Stages {
		if result.Stages[i].Stage == stageGameTypes {
			typeStage = &result.Stages[i]
		}
	}
	if typeStage == nil {
		t.Fatal("expected a game type stage")
	}
	if typeStage.Error != "" {
		t.Fatalf("validation skips must not fail the stage: %q", typeStage.Error)
	}
	if len(typeStage.Failures) != 1 || typeStage.Failures[0].Reason == "" {
		t.Fatalf("expected the invalid game type recorded, got=%+v", typeStage.Failures)
	}
	if len(types.upserted) != 1 {
		t.Fatalf("expected the valid game type persisted, got=%+v", types.upserted)
	}
}
