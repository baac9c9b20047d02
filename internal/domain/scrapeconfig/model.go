package scrapeconfig

import (
	"context"
	"strings"
)

// ScrapeConfig is one sport the pipeline knows about and how to route it.
// Sport is the region-abbreviated code used on lobby URLs (NFL, MLB, ...).
// GameTypeIDs and SlateTypes restrict which lobby draft groups the sport
// scrapes; an empty list means no restriction.
type ScrapeConfig struct {
	Sport             string
	SportID           int64
	FullSportName     string
	SortOrder         int
	HasPublicContests bool
	IsEnabled         bool
	IsETL             bool
	IsIgnored         bool
	GameTypeIDs       []int64
	SlateTypes        []string
}

// AllowsGameType reports whether a draft group with the given game type
// passes the sport's game type allow-list.
func (c ScrapeConfig) AllowsGameType(gameTypeID int64) bool {
	if len(c.GameTypeIDs) == 0 {
		return true
	}
	for _, id := range c.GameTypeIDs {
		if id == gameTypeID {
			return true
		}
	}
	return false
}

// AllowsSlate reports whether a draft group with the given start time
// suffix passes the sport's slate allow-list.
func (c ScrapeConfig) AllowsSlate(startTimeSuffix string) bool {
	if len(c.SlateTypes) == 0 {
		return true
	}
	suffix := strings.TrimSpace(startTimeSuffix)
	for _, slate := range c.SlateTypes {
		if slate == suffix {
			return true
		}
	}
	return false
}

// Repository exposes scrape config persistence operations.
type Repository interface {
	ListActive(ctx context.Context) ([]ScrapeConfig, error)
	UpsertMany(ctx context.Context, configs []ScrapeConfig) (int, error)
}
