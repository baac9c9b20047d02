package draftkings

import (
	"sort"
	"strings"
	"time"
)

// The lobby payload uses abbreviated keys for contest rows.
type lobbyEnvelope struct {
	Contests    []lobbyContestItem    `json:"Contests"`
	DraftGroups []lobbyDraftGroupItem `json:"DraftGroups"`
	GameTypes   []lobbyGameTypeItem   `json:"GameTypes"`
}

type lobbyContestItem struct {
	ID                int64             `json:"id"`
	Name              string            `json:"n"`
	EntryFee          float64           `json:"a"`
	MaxEntries        int               `json:"m"`
	MaxEntriesPerUser int               `json:"mec"`
	DraftGroupID      int64             `json:"dg"`
	PrizePool         float64           `json:"po"`
	CrownAmount       int               `json:"crownAmount"`
	PayoutDescription string            `json:"pd"`
	ContestDate       string            `json:"sdstring"`
	Attributes        map[string]any    `json:"attr"`
}

type lobbyDraftGroupItem struct {
	DraftGroupID           int64  `json:"DraftGroupId"`
	Sport                  string `json:"Sport"`
	GameTypeID             int64  `json:"GameTypeId"`
	GameType               string `json:"GameType"`
	ContestTypeID          int64  `json:"ContestTypeId"`
	ContestStartTimeSuffix string `json:"ContestStartTimeSuffix"`
	ContestStartTimeType   string `json:"ContestStartTimeType"`
	DraftGroupSeriesID     int64  `json:"DraftGroupSeriesId"`
	DraftGroupTag          string `json:"DraftGroupTag"`
	GameCount              int    `json:"GameCount"`
	GameSetKey             string `json:"GameSetKey"`
	SortOrder              int    `json:"SortOrder"`
	StartDate              string `json:"StartDate"`
	StartDateEst           string `json:"StartDateEst"`
}

type lobbyGameTypeItem struct {
	GameTypeID    int64          `json:"GameTypeId"`
	Name          string         `json:"Name"`
	Description   string         `json:"Description"`
	Tag           string         `json:"Tag"`
	SportID       int64          `json:"SportId"`
	DraftType     string         `json:"DraftType"`
	GameStyle     *gameStyleRef  `json:"GameStyle"`
	SalaryCap     salaryCapRef   `json:"SalaryCap"`
	AllowLateSwap bool           `json:"AllowLateSwap"`
}

type gameStyleRef struct {
	GameStyleID int64  `json:"GameStyleId"`
	Name        string `json:"Name"`
}

type salaryCapRef struct {
	IsEnabled bool `json:"IsEnabled"`
}

type contestDetailEnvelope struct {
	ContestDetail *contestDetailItem `json:"contestDetail"`
}

type contestDetailItem struct {
	Name               string             `json:"name"`
	Sport              string             `json:"sport"`
	ContestStateDetail string             `json:"contestStateDetail"`
	ContestStartTime   string             `json:"contestStartTime"`
	Entries            int                `json:"entries"`
	MaximumEntries     int                `json:"maximumEntries"`
	EntryFee           float64            `json:"entryFee"`
	PayoutSummary      []payoutSummaryRow `json:"payoutSummary"`
}

type payoutSummaryRow struct {
	MinPosition            int                 `json:"minPosition"`
	MaxPosition            int                 `json:"maxPosition"`
	TierPayoutDescriptions map[string]string   `json:"tierPayoutDescriptions"`
	PayoutDescriptions     []payoutDescription `json:"payoutDescriptions"`
}

type payoutDescription struct {
	Value float64 `json:"value"`
}

type sportsEnvelope struct {
	Sports []sportItem `json:"sports"`
}

type sportItem struct {
	SportID                    int64  `json:"sportId"`
	FullName                   string `json:"fullName"`
	SortOrder                  int    `json:"sortOrder"`
	HasPublicContests          bool   `json:"hasPublicContests"`
	IsEnabled                  bool   `json:"isEnabled"`
	RegionFullSportName        string `json:"regionFullSportName"`
	RegionAbbreviatedSportName string `json:"regionAbbreviatedSportName"`
}

// attributeMap normalizes the lobby attr block, whose values arrive as
// booleans or strings depending on the attribute.
func attributeMap(raw map[string]any) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		switch typed := value.(type) {
		case string:
			out[key] = strings.TrimSpace(typed)
		case bool:
			if typed {
				out[key] = "true"
			} else {
				out[key] = "false"
			}
		default:
			out[key] = "true"
		}
	}
	return out
}

func sortedKeys(src map[string]string) []string {
	keys := make([]string, 0, len(src))
	for key := range src {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

var easternLocation = mustLoadEastern()

func mustLoadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// parseProviderDateTime parses an ISO timestamp, dropping the variable
// fractional-second tail the provider appends, and converts it to
// US Eastern time.
func parseProviderDateTime(value string) *time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	if idx := strings.IndexByte(trimmed, '.'); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	trimmed = strings.TrimSuffix(trimmed, "Z")

	parsed, err := time.ParseInLocation("2006-01-02T15:04:05", trimmed, time.UTC)
	if err != nil {
		return nil
	}
	eastern := parsed.In(easternLocation)
	return &eastern
}
