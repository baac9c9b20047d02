package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/GGarrido28/dk-scraper/internal/domain/contest"
	"github.com/GGarrido28/dk-scraper/internal/domain/standings"
	"github.com/GGarrido28/dk-scraper/internal/platform/logging"
)

const (
	emptyStandingsReason = "Contest csv is empty."
	guardColumnReason    = "Contest has an empty column filled."
	entryCleaningReason  = "Error with cleaning contest entry."
	playerCleaningReason = "Error with cleaning player results."
)

// StandingsDownloader starts the transfer of one standings export. The
// provider only serves the CSV to an authenticated session, so the
// transfer runs out of process and lands in the watched download
// directory. Shutdown tears the session down; leaked sessions keep
// pending downloads alive past the batch.
type StandingsDownloader interface {
	StartDownload(ctx context.Context, url string) error
	Shutdown(ctx context.Context) error
}

// StandingsExporter builds the export URL for a contest.
type StandingsExporter interface {
	StandingsExportURL(contestID int64) string
}

// ArtifactState is one step of a standings file's lifecycle. Files move
// strictly Downloaded -> Staged -> Imported, with Failed reachable from
// any step.
type ArtifactState string

const (
	ArtifactDownloaded ArtifactState = "downloaded"
	ArtifactStaged     ArtifactState = "staged"
	ArtifactImported   ArtifactState = "imported"
	ArtifactFailed     ArtifactState = "failed"
)

// StandingsArtifact is one standings export file tracked through the
// lifecycle. Reason is only set for failed artifacts; Issues carries
// row-level problems from files that still imported.
type StandingsArtifact struct {
	ContestID int64         `json:"contest_id"`
	Path      string        `json:"path"`
	State     ArtifactState `json:"state"`
	Reason    string        `json:"reason,omitempty"`
	Issues    []string      `json:"issues,omitempty"`
}

// ImportSummary aggregates one import pass, with failures grouped by
// reason so repeating problems stand out.
type ImportSummary struct {
	Imported  int                 `json:"imported"`
	Failed    int                 `json:"failed"`
	Reasons   map[string]int      `json:"reasons,omitempty"`
	Artifacts []StandingsArtifact `json:"artifacts"`
}

type StandingsServiceConfig struct {
	DownloadDir  string
	StagingDir   string
	ImportDir    string
	FailedDir    string
	PollAttempts int
	PollInterval time.Duration
	ParseWorkers int
}

// StandingsService owns the standings file lifecycle: downloading
// exports for finished contests, staging them, parsing entries and
// player exposure into the store, and archiving or quarantining the
// files afterwards.
type StandingsService struct {
	contestRepo   contest.Repository
	standingsRepo standings.Repository
	downloader    StandingsDownloader
	exporter      StandingsExporter
	cfg           StandingsServiceConfig
	logger        *logging.Logger
}

func NewStandingsService(
	contestRepo contest.Repository,
	standingsRepo standings.Repository,
	downloader StandingsDownloader,
	exporter StandingsExporter,
	cfg StandingsServiceConfig,
	logger *logging.Logger,
) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 30
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.ParseWorkers <= 0 {
		cfg.ParseWorkers = 4
	}

	return &StandingsService{
		contestRepo:   contestRepo,
		standingsRepo: standingsRepo,
		downloader:    downloader,
		exporter:      exporter,
		cfg:           cfg,
		logger:        logger,
	}
}

var standingsFilePattern = regexp.MustCompile(`contest-standings-(\d+)`)

// ContestIDFromFilename pulls the contest ID out of an export file
// name like "contest-standings-171396147.csv".
func ContestIDFromFilename(name string) (int64, bool) {
	m := standingsFilePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, false
	}
	contestID, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || contestID <= 0 {
		return 0, false
	}
	return contestID, true
}

// DownloadAll pulls the standings export for every finished contest
// that has not been collected yet and stages the files for import. One
// contest failing does not stop the rest. The downloader is shut down
// once the batch is done so no session outlives the run.
func (s *StandingsService) DownloadAll(ctx context.Context) ([]StandingsArtifact, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.DownloadAll")
	defer span.End()

	contestIDs, err := s.contestRepo.ListReadyForDownload(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contests ready for download: %w", err)
	}
	defer func() {
		if err := s.downloader.Shutdown(ctx); err != nil {
			s.logger.WarnContext(ctx, "downloader shutdown failed", "error", err)
		}
	}()

	artifacts := make([]StandingsArtifact, 0, len(contestIDs))
	for _, contestID := range contestIDs {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}

		artifact, err := s.downloadOne(ctx, contestID)
		if err != nil {
			s.logger.ErrorContext(ctx, "standings download failed", "contest_id", contestID, "error", err)
			artifacts = append(artifacts, StandingsArtifact{ContestID: contestID, State: ArtifactFailed, Reason: err.Error()})
			continue
		}

		staged, err := s.stageArtifact(artifact)
		if err != nil {
			s.logger.ErrorContext(ctx, "standings staging failed", "contest_id", contestID, "path", artifact.Path, "error", err)
			artifacts = append(artifacts, StandingsArtifact{ContestID: contestID, Path: artifact.Path, State: ArtifactFailed, Reason: err.Error()})
			continue
		}
		artifacts = append(artifacts, staged)
	}

	return artifacts, nil
}

func (s *StandingsService) downloadOne(ctx context.Context, contestID int64) (StandingsArtifact, error) {
	url := s.exporter.StandingsExportURL(contestID)
	if err := s.downloader.StartDownload(ctx, url); err != nil {
		return StandingsArtifact{}, fmt.Errorf("start standings download contest_id=%d: %w", contestID, err)
	}

	path, err := s.waitForDownload(ctx, contestID)
	if err != nil {
		return StandingsArtifact{}, err
	}

	path, err = s.extractIfZipped(path)
	if err != nil {
		return StandingsArtifact{}, err
	}

	return StandingsArtifact{ContestID: contestID, Path: path, State: ArtifactDownloaded}, nil
}

// waitForDownload polls the download directory until the export for
// the contest lands without its in-progress suffix. Leftover partial
// files are removed when the wait gives up.
func (s *StandingsService) waitForDownload(ctx context.Context, contestID int64) (string, error) {
	prefix := fmt.Sprintf("contest-standings-%d", contestID)

	for attempt := 0; attempt < s.cfg.PollAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, s.cfg.PollInterval); err != nil {
				return "", err
			}
		}

		entries, err := os.ReadDir(s.cfg.DownloadDir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("read download dir: %w", err)
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasPrefix(name, prefix) {
				continue
			}
			if strings.HasSuffix(name, ".crdownload") {
				continue
			}
			return filepath.Join(s.cfg.DownloadDir, name), nil
		}
	}

	s.removePartialDownloads(ctx, prefix)
	return "", fmt.Errorf("%w: standings export for contest %d never finished downloading", ErrDependencyUnavailable, contestID)
}

func (s *StandingsService) removePartialDownloads(ctx context.Context, prefix string) {
	entries, err := os.ReadDir(s.cfg.DownloadDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".crdownload") {
			continue
		}
		path := filepath.Join(s.cfg.DownloadDir, name)
		if err := os.Remove(path); err != nil {
			s.logger.WarnContext(ctx, "remove partial download failed", "path", path, "error", err)
		} else {
			s.logger.InfoContext(ctx, "removed partial download", "path", path)
		}
	}
}

// extractIfZipped unpacks a zipped export in place and removes the
// archive. Large contests arrive zipped.
func (s *StandingsService) extractIfZipped(path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return path, nil
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open standings archive %s: %w", path, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if !strings.EqualFold(filepath.Ext(file.Name), ".csv") {
			continue
		}

		src, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open archived csv %s: %w", file.Name, err)
		}

		dest := filepath.Join(filepath.Dir(path), filepath.Base(file.Name))
		out, err := os.Create(dest)
		if err != nil {
			src.Close()
			return "", fmt.Errorf("create extracted csv %s: %w", dest, err)
		}
		if _, err := io.Copy(out, src); err != nil {
			out.Close()
			src.Close()
			return "", fmt.Errorf("extract csv %s: %w", dest, err)
		}
		out.Close()
		src.Close()

		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("remove standings archive %s: %w", path, err)
		}
		return dest, nil
	}

	return "", fmt.Errorf("standings archive %s holds no csv", path)
}

func (s *StandingsService) stageArtifact(a StandingsArtifact) (StandingsArtifact, error) {
	if a.State != ArtifactDownloaded {
		return a, fmt.Errorf("%w: cannot stage artifact in state %q", ErrInvalidInput, a.State)
	}

	path, err := moveToDir(a.Path, s.cfg.StagingDir)
	if err != nil {
		return a, err
	}
	return StandingsArtifact{ContestID: a.ContestID, Path: path, State: ArtifactStaged}, nil
}

func (s *StandingsService) finishArtifact(a StandingsArtifact) (StandingsArtifact, error) {
	if a.State != ArtifactStaged {
		return a, fmt.Errorf("%w: cannot import artifact in state %q", ErrInvalidInput, a.State)
	}

	path, err := moveToDir(a.Path, s.cfg.ImportDir)
	if err != nil {
		return a, err
	}
	return StandingsArtifact{ContestID: a.ContestID, Path: path, State: ArtifactImported}, nil
}

func (s *StandingsService) failArtifact(ctx context.Context, a StandingsArtifact, reason string) StandingsArtifact {
	path := a.Path
	if path != "" {
		moved, err := moveToDir(path, s.cfg.FailedDir)
		if err != nil {
			s.logger.WarnContext(ctx, "quarantine standings file failed", "path", path, "error", err)
		} else {
			path = moved
		}
	}
	return StandingsArtifact{ContestID: a.ContestID, Path: path, State: ArtifactFailed, Reason: reason}
}

func moveToDir(path, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir %s: %w", dir, err)
	}
	dest := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("move %s to %s: %w", path, dest, err)
	}
	return dest, nil
}

// ImportStaged parses every staged standings file over a bounded
// worker pool. Files that parse land in the import archive and mark
// their contest collected; files that do not are quarantined with the
// reason recorded on the summary.
func (s *StandingsService) ImportStaged(ctx context.Context) (ImportSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.ImportStaged")
	defer span.End()

	entries, err := os.ReadDir(s.cfg.StagingDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ImportSummary{}, nil
		}
		return ImportSummary{}, fmt.Errorf("read staging dir: %w", err)
	}

	var (
		staged   []StandingsArtifact
		outcomes []StandingsArtifact
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.cfg.StagingDir, entry.Name())
		contestID, ok := ContestIDFromFilename(entry.Name())
		if !ok {
			outcomes = append(outcomes, s.failArtifact(ctx, StandingsArtifact{Path: path, State: ArtifactStaged}, "unrecognized file name"))
			continue
		}
		staged = append(staged, StandingsArtifact{ContestID: contestID, Path: path, State: ArtifactStaged})
	}

	var mu sync.Mutex
	workers := pool.New().WithMaxGoroutines(s.cfg.ParseWorkers)
	for _, artifact := range staged {
		artifact := artifact
		workers.Go(func() {
			outcome := s.importOne(ctx, artifact)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
		})
	}
	workers.Wait()

	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].ContestID < outcomes[j].ContestID
	})

	summary := summarizeImport(outcomes)
	s.logger.InfoContext(ctx, "staged standings imported",
		"imported", summary.Imported,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (s *StandingsService) importOne(ctx context.Context, a StandingsArtifact) StandingsArtifact {
	raw, err := os.ReadFile(a.Path)
	if err != nil {
		return s.failArtifact(ctx, a, fmt.Sprintf("read standings file: %v", err))
	}

	contestEntries, playerResults, issues, err := parseStandingsCSV(a.ContestID, raw)
	if err != nil {
		return s.failArtifact(ctx, a, err.Error())
	}
	if len(contestEntries) == 0 {
		return s.failArtifact(ctx, a, emptyStandingsReason)
	}
	for _, issue := range issues {
		s.logger.WarnContext(ctx, "standings row issue", "contest_id", a.ContestID, "reason", issue)
	}

	if _, err := s.standingsRepo.UpsertEntries(ctx, contestEntries); err != nil {
		// Store errors are retryable; the file stays staged.
		s.logger.ErrorContext(ctx, "upsert contest entries failed", "contest_id", a.ContestID, "error", err)
		a.Reason = err.Error()
		return a
	}
	if len(playerResults) > 0 {
		if _, err := s.standingsRepo.UpsertPlayerResults(ctx, playerResults); err != nil {
			s.logger.ErrorContext(ctx, "upsert player results failed", "contest_id", a.ContestID, "error", err)
			a.Reason = err.Error()
			return a
		}
	}

	imported, err := s.finishArtifact(a)
	if err != nil {
		s.logger.WarnContext(ctx, "archive imported standings file failed", "contest_id", a.ContestID, "error", err)
		a.Reason = err.Error()
		return a
	}
	imported.Issues = issues
	if err := s.contestRepo.MarkDownloaded(ctx, a.ContestID); err != nil {
		s.logger.ErrorContext(ctx, "mark contest downloaded failed", "contest_id", a.ContestID, "error", err)
	}

	return imported
}

func summarizeImport(outcomes []StandingsArtifact) ImportSummary {
	summary := ImportSummary{Artifacts: outcomes}
	addReason := func(reason string) {
		if summary.Reasons == nil {
			summary.Reasons = make(map[string]int)
		}
		summary.Reasons[reason]++
	}
	for _, outcome := range outcomes {
		switch {
		case outcome.State == ArtifactImported:
			summary.Imported++
		default:
			summary.Failed++
			if outcome.Reason != "" {
				addReason(outcome.Reason)
			}
		}
		for _, issue := range outcome.Issues {
			addReason(issue)
		}
	}
	return summary
}

// CrashRecovery picks up after an interrupted run: completed downloads
// that never got staged are staged, partial downloads are discarded,
// and duplicate exports for the same contest are quarantined before a
// normal import pass runs. When several files cover one contest the
// shortest name wins, ties broken lexicographically, which prefers the
// original export over browser " (1)" re-downloads.
func (s *StandingsService) CrashRecovery(ctx context.Context) (ImportSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.CrashRecovery")
	defer span.End()

	entries, err := os.ReadDir(s.cfg.DownloadDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ImportSummary{}, fmt.Errorf("read download dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(s.cfg.DownloadDir, name)
		if strings.HasSuffix(name, ".crdownload") {
			if err := os.Remove(path); err != nil {
				s.logger.WarnContext(ctx, "remove partial download failed", "path", path, "error", err)
			}
			continue
		}

		contestID, ok := ContestIDFromFilename(name)
		if !ok {
			s.failArtifact(ctx, StandingsArtifact{Path: path, State: ArtifactStaged}, "unrecognized file name")
			continue
		}

		path, err := s.extractIfZipped(path)
		if err != nil {
			s.logger.WarnContext(ctx, "extract leftover archive failed", "path", path, "error", err)
			continue
		}
		if _, err := s.stageArtifact(StandingsArtifact{ContestID: contestID, Path: path, State: ArtifactDownloaded}); err != nil {
			s.logger.WarnContext(ctx, "stage leftover download failed", "path", path, "error", err)
		}
	}

	if err := s.dedupeStaged(ctx); err != nil {
		return ImportSummary{}, err
	}

	return s.ImportStaged(ctx)
}

func (s *StandingsService) dedupeStaged(ctx context.Context) error {
	entries, err := os.ReadDir(s.cfg.StagingDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read staging dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) < len(names[j])
		}
		return names[i] < names[j]
	})

	seen := make(map[int64]string)
	for _, name := range names {
		contestID, ok := ContestIDFromFilename(name)
		if !ok {
			continue
		}
		if keeper, dup := seen[contestID]; dup {
			path := filepath.Join(s.cfg.StagingDir, name)
			s.logger.InfoContext(ctx, "quarantining duplicate standings export",
				"contest_id", contestID,
				"kept", keeper,
				"duplicate", name,
			)
			s.failArtifact(ctx, StandingsArtifact{ContestID: contestID, Path: path, State: ArtifactStaged}, "duplicate export")
			continue
		}
		seen[contestID] = name
	}
	return nil
}

// ReprocessImports replays previously imported files through the
// parser, for after a schema change or a bad import.
func (s *StandingsService) ReprocessImports(ctx context.Context) (ImportSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.ReprocessImports")
	defer span.End()

	entries, err := os.ReadDir(s.cfg.ImportDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ImportSummary{}, nil
		}
		return ImportSummary{}, fmt.Errorf("read import dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.cfg.ImportDir, entry.Name())
		if _, err := moveToDir(path, s.cfg.StagingDir); err != nil {
			return ImportSummary{}, err
		}
	}

	return s.ImportStaged(ctx)
}

// parseStandingsCSV decodes a standings export. Each row carries a
// placed entry in the first six columns and, when present, one row of
// the player exposure table in columns eight through eleven, with a
// blank spacer column between the two. A malformed row is reported as
// an issue and skipped; the rest of the file still imports. Only a
// file the csv reader cannot decode fails outright.
func parseStandingsCSV(contestID int64, raw []byte) ([]standings.ContestEntry, []standings.PlayerResult, []string, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode standings csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, nil, nil
	}

	start := 0
	if strings.EqualFold(strings.TrimSpace(rows[0][0]), "Rank") {
		start = 1
	}

	var (
		contestEntries []standings.ContestEntry
		playerResults  []standings.PlayerResult
		issues         []string
	)
	for i := start; i < len(rows); i++ {
		row := rows[i]

		// The spacer column between the entry table and the player
		// table is always blank in a healthy export.
		if len(row) >= 7 && strings.TrimSpace(row[6]) != "" {
			issues = append(issues, guardColumnReason)
		}

		if len(row) >= 6 && strings.TrimSpace(row[0]) != "" {
			entry, err := cleanEntryRow(contestID, row)
			if err != nil {
				issues = append(issues, entryCleaningReason)
			} else {
				contestEntries = append(contestEntries, entry)
			}
		}

		if len(row) >= 11 && strings.TrimSpace(row[7]) != "" {
			player, err := cleanPlayerRow(contestID, row)
			if err != nil {
				issues = append(issues, playerCleaningReason)
			} else {
				playerResults = append(playerResults, player)
			}
		}
	}

	return contestEntries, playerResults, issues, nil
}

func cleanEntryRow(contestID int64, row []string) (standings.ContestEntry, error) {
	rank, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil {
		return standings.ContestEntry{}, fmt.Errorf("parse rank %q: %w", row[0], err)
	}
	entryID, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
	if err != nil {
		return standings.ContestEntry{}, fmt.Errorf("parse entry id %q: %w", row[1], err)
	}
	points, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
	if err != nil {
		return standings.ContestEntry{}, fmt.Errorf("parse points %q: %w", row[4], err)
	}

	user, entryNumber, entryCount := standings.ParseEntryName(row[2])
	return standings.ContestEntry{
		ContestID:     contestID,
		EntryID:       entryID,
		Rank:          rank,
		EntryName:     strings.TrimSpace(row[2]),
		User:          user,
		EntryNumber:   entryNumber,
		EntryCount:    entryCount,
		TimeRemaining: strings.TrimSpace(row[3]),
		Points:        points,
		Lineup:        strings.TrimSpace(row[5]),
	}, nil
}

func cleanPlayerRow(contestID int64, row []string) (standings.PlayerResult, error) {
	percentDrafted, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(row[9]), "%"), 64)
	if err != nil {
		return standings.PlayerResult{}, fmt.Errorf("parse drafted percentage %q: %w", row[9], err)
	}
	fpts, err := strconv.ParseFloat(strings.TrimSpace(row[10]), 64)
	if err != nil {
		return standings.PlayerResult{}, fmt.Errorf("parse fpts %q: %w", row[10], err)
	}

	return standings.PlayerResult{
		ContestID:      contestID,
		Player:         strings.TrimSpace(row[7]),
		RosterPosition: strings.TrimSpace(row[8]),
		PercentDrafted: percentDrafted,
		FPTS:           fpts,
	}, nil
}
