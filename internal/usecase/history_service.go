package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GGarrido28/dk-scraper/internal/domain/contesthistory"
	"github.com/GGarrido28/dk-scraper/internal/platform/logging"
)

// HistoryImportResult summarizes one pass over the account history
// export.
type HistoryImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// HistoryService imports the account's contest-entry-history export,
// the provider's record of every entry the account ever placed.
type HistoryService struct {
	historyRepo contesthistory.Repository
	username    string
	logger      *logging.Logger
}

func NewHistoryService(historyRepo contesthistory.Repository, username string, logger *logging.Logger) *HistoryService {
	if logger == nil {
		logger = logging.Default()
	}

	return &HistoryService{
		historyRepo: historyRepo,
		username:    username,
		logger:      logger,
	}
}

// ImportFile parses the history CSV at path and upserts every public
// contest entry. Private league rows are skipped.
func (s *HistoryService) ImportFile(ctx context.Context, path string) (HistoryImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.ImportFile")
	defer span.End()

	raw, err := os.ReadFile(path)
	if err != nil {
		return HistoryImportResult{}, fmt.Errorf("read history file %s: %w", path, err)
	}

	rows, skipped, err := parseContestHistoryCSV(raw, s.username)
	if err != nil {
		return HistoryImportResult{}, fmt.Errorf("parse history file %s: %w", path, err)
	}
	if len(rows) == 0 {
		s.logger.WarnContext(ctx, "history file held no importable rows", "path", path, "skipped", skipped)
		return HistoryImportResult{Skipped: skipped}, nil
	}

	imported, err := s.historyRepo.UpsertMany(ctx, rows)
	if err != nil {
		return HistoryImportResult{}, fmt.Errorf("upsert contest history: %w", err)
	}

	s.logger.InfoContext(ctx, "contest history imported", "path", path, "imported", imported, "skipped", skipped)
	return HistoryImportResult{Imported: imported, Skipped: skipped}, nil
}

const historyDateLayout = "2006-01-02 15:04:05"

// parseContestHistoryCSV decodes the export by header name, so column
// reshuffles in the provider's export do not break the import.
func parseContestHistoryCSV(raw []byte, username string) ([]contesthistory.ContestHistory, int, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("decode history csv: %w", err)
	}
	if len(records) < 2 {
		return nil, 0, nil
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Entry_Key", "Contest_Key", "Entry", "Sport"} {
		if _, ok := columns[required]; !ok {
			return nil, 0, fmt.Errorf("history csv is missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var (
		rows    []contesthistory.ContestHistory
		skipped int
	)
	for i := 1; i < len(records); i++ {
		row := records[i]

		entry := field(row, "Entry")
		if contesthistory.SkipEntry(entry) {
			skipped++
			continue
		}

		entryKey, err := strconv.ParseInt(field(row, "Entry_Key"), 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: parse entry key %q: %w", i+1, field(row, "Entry_Key"), err)
		}
		contestKey, err := strconv.ParseInt(field(row, "Contest_Key"), 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: parse contest key %q: %w", i+1, field(row, "Contest_Key"), err)
		}

		var contestDate *time.Time
		if raw := field(row, "Contest_Date_EST"); raw != "" {
			if parsed, err := time.Parse(historyDateLayout, raw); err == nil {
				contestDate = &parsed
			}
		}

		rows = append(rows, contesthistory.ContestHistory{
			EntryKey:          entryKey,
			ContestKey:        contestKey,
			Sport:             field(row, "Sport"),
			GameType:          field(row, "Game_Type"),
			Entry:             entry,
			ContestDateEST:    contestDate,
			Place:             parseIntField(field(row, "Place")),
			Points:            parseFloatField(field(row, "Points")),
			WinningsNonTicket: parseMoney(field(row, "Winnings_Non_Ticket")),
			WinningsTicket:    parseMoney(field(row, "Winnings_Ticket")),
			ContestEntries:    parseIntField(field(row, "Contest_Entries")),
			EntryFee:          parseMoney(field(row, "Entry_Fee")),
			PrizePool:         parseMoney(field(row, "Prize_Pool")),
			PlacesPaid:        parseIntField(field(row, "Places_Paid")),
			Opponent:          contesthistory.Opponent(entry, username),
		})
	}

	return rows, skipped, nil
}

func parseIntField(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func parseFloatField(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

// parseMoney reads a "$1,234.56" style amount. Blank and unparseable
// amounts count as zero.
func parseMoney(value string) float64 {
	cleaned := strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(value), "$"), ",", "")
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}
