package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"

	"github.com/GGarrido28/dk-scraper/internal/app"
	"github.com/GGarrido28/dk-scraper/internal/config"
	"github.com/GGarrido28/dk-scraper/internal/platform/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = application.Close()
	}()

	if err := run(ctx, application, os.Args[1], os.Args[2:]); err != nil {
		logger.ErrorContext(ctx, "command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, application *app.Application, command string, args []string) error {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "scrape":
		sports := args
		if len(sports) == 0 {
			sports = application.Config.Sports
		}
		results, err := application.Scrape.RunAll(ctx, sports)
		if err != nil {
			return err
		}
		return printJSON(results)

	case "attributes":
		sport := ""
		if len(args) > 0 {
			sport = args[0]
		}
		count, err := application.Scrape.RefreshAttributes(ctx, sport)
		if err != nil {
			return err
		}
		return printJSON(map[string]int{"updated": count})

	case "standings":
		artifacts, err := application.Standings.DownloadAll(ctx)
		if err != nil {
			return err
		}
		summary, err := application.Standings.ImportStaged(ctx)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"downloads": artifacts, "import": summary})

	case "crash-recovery":
		summary, err := application.Standings.CrashRecovery(ctx)
		if err != nil {
			return err
		}
		return printJSON(summary)

	case "reprocess-imports":
		summary, err := application.Standings.ReprocessImports(ctx)
		if err != nil {
			return err
		}
		return printJSON(summary)

	case "history":
		path := application.Config.HistoryFile
		if len(args) > 0 {
			path = args[0]
		}
		result, err := application.History.ImportFile(ctx, path)
		if err != nil {
			return err
		}
		return printJSON(result)

	case "contest":
		contestID, err := parseContestID(args)
		if err != nil {
			return err
		}
		added, err := application.Contests.AddContest(ctx, contestID)
		if err != nil {
			return err
		}
		return printJSON(added)

	case "payout":
		contestID, err := parseContestID(args)
		if err != nil {
			return err
		}
		summary, err := application.Contests.GetContestPayout(ctx, contestID)
		if err != nil {
			return err
		}
		return printJSON(summary)

	case "sync-sports":
		count, err := application.Contests.SyncSports(ctx)
		if err != nil {
			return err
		}
		return printJSON(map[string]int{"synced": count})

	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func parseContestID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("contest id is required")
	}
	contestID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse contest id %q: %w", args[0], err)
	}
	return contestID, nil
}

func printJSON(v any) error {
	out, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: scraper <command> [args]

commands:
  scrape [sport ...]       run the lobby pipeline for the given sports
  attributes [sport]       refresh state flags for tracked contests
  standings                download and import finished contest standings
  crash-recovery           recover leftover standings files, then import
  reprocess-imports        replay previously imported standings files
  history [file]           import the contest entry history export
  contest <id>             track one contest regardless of lobby filters
  payout <id>              print a contest's cash payout table
  sync-sports              refresh the sport catalog`)
}
