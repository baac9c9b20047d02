// Package download launches standings export transfers through a real
// browser. The provider only serves export CSVs to a logged-in
// session, so the browser profile carries the session and its download
// directory is the hand-off point.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/GGarrido28/dk-scraper/internal/platform/logging"
)

type Browser struct {
	binaryPath string
	logger     *logging.Logger

	mu    sync.Mutex
	procs map[int]*exec.Cmd
}

func NewBrowser(binaryPath string, logger *logging.Logger) *Browser {
	if logger == nil {
		logger = logging.Default()
	}

	return &Browser{
		binaryPath: binaryPath,
		logger:     logger,
		procs:      make(map[int]*exec.Cmd),
	}
}

// StartDownload opens the export URL in the browser and returns once
// the process launched. The caller polls the download directory for
// the file itself.
func (b *Browser) StartDownload(ctx context.Context, url string) error {
	if b.binaryPath == "" {
		return fmt.Errorf("browser binary path is not configured (BROWSER_PATH)")
	}

	cmd := exec.CommandContext(ctx, b.binaryPath, url)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch browser %s: %w", b.binaryPath, err)
	}

	pid := cmd.Process.Pid
	b.mu.Lock()
	b.procs[pid] = cmd
	b.mu.Unlock()

	b.logger.InfoContext(ctx, "browser download started", "url", url, "pid", pid)

	// Reap the process so finished tabs do not pile up as zombies.
	go func() {
		_ = cmd.Wait()
		b.mu.Lock()
		delete(b.procs, pid)
		b.mu.Unlock()
	}()

	return nil
}

// Shutdown kills every browser process this instance launched that is
// still running. Called once a download batch finishes so stale tabs
// do not hold the session open.
func (b *Browser) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	procs := b.procs
	b.procs = make(map[int]*exec.Cmd)
	b.mu.Unlock()

	for pid, cmd := range procs {
		if cmd.Process == nil {
			continue
		}
		if err := cmd.Process.Kill(); err != nil {
			if errors.Is(err, os.ErrProcessDone) {
				continue
			}
			b.logger.WarnContext(ctx, "kill browser process failed", "pid", pid, "error", err)
			continue
		}
		b.logger.InfoContext(ctx, "browser process killed", "pid", pid)
	}

	return nil
}
