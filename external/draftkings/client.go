package draftkings

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/GGarrido28/dk-scraper/internal/platform/logging"
	"github.com/GGarrido28/dk-scraper/internal/platform/resilience"
	"github.com/GGarrido28/dk-scraper/internal/usecase"
)

const (
	defaultLobbyBaseURL = "https://www.draftkings.com"
	defaultAPIBaseURL   = "https://api.draftkings.com"

	lobbyPath       = "/lobby/getcontests"
	contestPathFmt  = "/contests/v1/contests/%d"
	salariesPathFmt = "/lineup/getavailableplayerscsv"
	standingsFmt    = "/contest/exportfullstandingscsv/%d"
	sportsPath      = "/sites/US-DK/sports/v1/sports"
)

var errDraftKingsTransient = crerr.New("draftkings transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	LobbyBaseURL   string
	APIBaseURL     string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	lobbyBaseURL   string
	apiBaseURL     string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	lobbyBaseURL := strings.TrimRight(strings.TrimSpace(cfg.LobbyBaseURL), "/")
	if lobbyBaseURL == "" {
		lobbyBaseURL = defaultLobbyBaseURL
	}
	apiBaseURL := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		lobbyBaseURL:   lobbyBaseURL,
		apiBaseURL:     apiBaseURL,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchLobby pulls the full contest lobby for one sport and maps it into
// provider-neutral records. Contest order follows the lobby payload.
func (c *Client) FetchLobby(ctx context.Context, sport string) (usecase.ExternalLobby, error) {
	sport = strings.TrimSpace(sport)
	if sport == "" {
		return usecase.ExternalLobby{}, fmt.Errorf("sport is required")
	}

	var envelope lobbyEnvelope
	fullURL := c.lobbyBaseURL + lobbyPath + "?" + url.Values{"sport": {sport}}.Encode()
	if err := c.doJSON(ctx, fullURL, &envelope); err != nil {
		return usecase.ExternalLobby{}, fmt.Errorf("fetch lobby sport=%s: %w", sport, err)
	}

	out := usecase.ExternalLobby{
		Sport:       sport,
		Contests:    make([]usecase.ExternalContest, 0, len(envelope.Contests)),
		DraftGroups: make([]usecase.ExternalDraftGroup, 0, len(envelope.DraftGroups)),
		GameTypes:   make([]usecase.ExternalGameType, 0, len(envelope.GameTypes)),
	}

	for _, item := range envelope.Contests {
		if item.ID <= 0 {
			continue
		}
		out.Contests = append(out.Contests, usecase.ExternalContest{
			ContestID:         item.ID,
			Name:              strings.TrimSpace(item.Name),
			EntryFee:          item.EntryFee,
			MaxEntries:        item.MaxEntries,
			MaxEntriesPerUser: item.MaxEntriesPerUser,
			DraftGroupID:      item.DraftGroupID,
			PrizePool:         item.PrizePool,
			CrownAmount:       item.CrownAmount,
			PayoutDescription: strings.TrimSpace(item.PayoutDescription),
			ContestDate:       strings.TrimSpace(item.ContestDate),
			Attributes:        attributeMap(item.Attributes),
		})
	}

	for _, item := range envelope.DraftGroups {
		if item.DraftGroupID <= 0 {
			continue
		}
		out.DraftGroups = append(out.DraftGroups, usecase.ExternalDraftGroup{
			DraftGroupID:           item.DraftGroupID,
			Sport:                  strings.TrimSpace(item.Sport),
			GameTypeID:             item.GameTypeID,
			GameType:               strings.TrimSpace(item.GameType),
			ContestTypeID:          item.ContestTypeID,
			ContestStartTimeSuffix: strings.TrimSpace(item.ContestStartTimeSuffix),
			ContestStartTimeType:   strings.TrimSpace(item.ContestStartTimeType),
			DraftGroupSeriesID:     item.DraftGroupSeriesID,
			DraftGroupTag:          strings.TrimSpace(item.DraftGroupTag),
			GameCount:              item.GameCount,
			GameSetKey:             strings.TrimSpace(item.GameSetKey),
			SortOrder:              item.SortOrder,
			StartDate:              strings.TrimSpace(item.StartDate),
			StartDateEST:           strings.TrimSpace(item.StartDateEst),
		})
	}

	for _, item := range envelope.GameTypes {
		if item.GameTypeID <= 0 {
			continue
		}
		external := usecase.ExternalGameType{
			GameTypeID:     item.GameTypeID,
			Name:           strings.TrimSpace(item.Name),
			Description:    strings.TrimSpace(item.Description),
			Tag:            strings.TrimSpace(item.Tag),
			SportID:        item.SportID,
			DraftType:      strings.TrimSpace(item.DraftType),
			IsSalaryCapped: item.SalaryCap.IsEnabled,
			AllowLateSwap:  item.AllowLateSwap,
		}
		if item.GameStyle != nil {
			external.GameStyleID = item.GameStyle.GameStyleID
			external.GameStyleName = strings.TrimSpace(item.GameStyle.Name)
		}
		out.GameTypes = append(out.GameTypes, external)
	}

	return out, nil
}

// FetchContestDetail pulls the detail payload for one contest. A 404
// maps to usecase.ErrNotFound so callers can skip the contest instead
// of failing the batch.
func (c *Client) FetchContestDetail(ctx context.Context, contestID int64) (usecase.ExternalContestDetail, error) {
	if contestID <= 0 {
		return usecase.ExternalContestDetail{}, fmt.Errorf("contest id must be greater than zero")
	}

	fullURL := c.apiBaseURL + fmt.Sprintf(contestPathFmt, contestID) + "?format=json"
	var envelope contestDetailEnvelope
	if err := c.doJSON(ctx, fullURL, &envelope); err != nil {
		return usecase.ExternalContestDetail{}, fmt.Errorf("fetch contest detail contest_id=%d: %w", contestID, err)
	}
	if envelope.ContestDetail == nil {
		return usecase.ExternalContestDetail{}, fmt.Errorf("%w: contest %d has no detail payload", usecase.ErrNotFound, contestID)
	}

	detail := envelope.ContestDetail
	out := usecase.ExternalContestDetail{
		ContestID:      contestID,
		Name:           strings.TrimSpace(detail.Name),
		Sport:          strings.ToLower(strings.TrimSpace(detail.Sport)),
		ContestState:   strings.TrimSpace(detail.ContestStateDetail),
		StartTime:      parseProviderDateTime(detail.ContestStartTime),
		Entries:        detail.Entries,
		MaximumEntries: detail.MaximumEntries,
		EntryFee:       detail.EntryFee,
		PayoutSummary:  make([]usecase.ExternalPayoutTier, 0, len(detail.PayoutSummary)),
	}

	for _, step := range detail.PayoutSummary {
		tier := usecase.ExternalPayoutTier{
			MinPosition: step.MinPosition,
			MaxPosition: step.MaxPosition,
			Tiers:       make([]usecase.ExternalTierPayout, 0, len(step.TierPayoutDescriptions)),
		}
		for _, typ := range sortedKeys(step.TierPayoutDescriptions) {
			tier.Tiers = append(tier.Tiers, usecase.ExternalTierPayout{
				Type:    typ,
				Display: step.TierPayoutDescriptions[typ],
			})
		}
		for _, description := range step.PayoutDescriptions {
			tier.CashSum += description.Value
		}
		if raw, err := sonic.Marshal(step.TierPayoutDescriptions); err == nil {
			tier.OriginalTier = string(raw)
		}
		out.PayoutSummary = append(out.PayoutSummary, tier)
	}

	return out, nil
}

// FetchPlayerSalaries downloads and parses the available-players CSV for
// one draft group.
func (c *Client) FetchPlayerSalaries(ctx context.Context, draftGroupID int64) ([]usecase.ExternalPlayerSalary, error) {
	if draftGroupID <= 0 {
		return nil, fmt.Errorf("draft group id must be greater than zero")
	}

	fullURL := c.lobbyBaseURL + salariesPathFmt + "?" + url.Values{"draftGroupId": {fmt.Sprintf("%d", draftGroupID)}}.Encode()
	raw, err := c.doRaw(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch player salaries draft_group_id=%d: %w", draftGroupID, err)
	}

	salaries, skipped, err := parsePlayerSalaryCSV(draftGroupID, raw)
	if err != nil {
		return nil, fmt.Errorf("parse player salaries draft_group_id=%d: %w", draftGroupID, err)
	}
	if skipped > 0 {
		c.logger.WarnContext(ctx, "skipped malformed player salary rows", "draft_group_id", draftGroupID, "skipped", skipped)
	}
	return salaries, nil
}

// FetchSports pulls the sports catalog.
func (c *Client) FetchSports(ctx context.Context) ([]usecase.ExternalSport, error) {
	fullURL := c.apiBaseURL + sportsPath + "?format=json"
	var envelope sportsEnvelope
	if err := c.doJSON(ctx, fullURL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch sports: %w", err)
	}

	out := make([]usecase.ExternalSport, 0, len(envelope.Sports))
	for _, item := range envelope.Sports {
		if item.SportID <= 0 {
			continue
		}
		out = append(out, usecase.ExternalSport{
			SportID:                    item.SportID,
			FullName:                   strings.TrimSpace(item.FullName),
			SortOrder:                  item.SortOrder,
			HasPublicContests:          item.HasPublicContests,
			IsEnabled:                  item.IsEnabled,
			RegionFullSportName:        strings.TrimSpace(item.RegionFullSportName),
			RegionAbbreviatedSportName: strings.TrimSpace(item.RegionAbbreviatedSportName),
		})
	}
	return out, nil
}

// StandingsExportURL returns the CSV export URL the browser downloader
// opens for one contest.
func (c *Client) StandingsExportURL(contestID int64) string {
	return c.lobbyBaseURL + fmt.Sprintf(standingsFmt, contestID)
}

func (c *Client) doJSON(ctx context.Context, fullURL string, target any) error {
	raw, err := c.doRaw(ctx, fullURL)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, fullURL string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "draftkings circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: contest data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isDraftKingsCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json, text/csv")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errDraftKingsTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errDraftKingsTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if resp.StatusCode == http.StatusNotFound {
				return nil, fmt.Errorf("%w: provider status=404", usecase.ErrNotFound)
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errDraftKingsTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "draftkings request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isDraftKingsCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errDraftKingsTransient)
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
