package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/nova/internal/application/dto"
	"github.com/reglet-dev/nova/internal/domain/execution"
)

const watchDebounce = 300 * time.Millisecond

var watchOpts = struct {
	common   CommonOptions
	display  displayFlags
	interval time.Duration
}{common: DefaultCommonOptions()}

// watchCmd reruns the topfile audit whenever modules or profiles change.
var watchCmd = &cobra.Command{
	Use:   "watch [topfile]",
	Short: "Rerun the topfile audit when modules or profiles change",
	Long: `Watch the module and profile directories and run "nova top" after every
change, and additionally every --interval when set. Each report is written
to the output and the change in compliance since the previous run is logged.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return watchOpts.common.ValidateFlags()
	},
	RunE: withContainer(runWatch),
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchOpts.common.RegisterFlags(watchCmd)
	watchOpts.display.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchOpts.interval, "interval", 0, "Also rerun on this period (0 to disable)")
}

func runWatch(c *CommandContext, cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init failed: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	nova := c.Container.SystemConfig().Nova
	for _, dir := range []string{nova.ModuleDir, nova.ProfileDir} {
		if err := addWatchRecursive(watcher, dir); err != nil {
			return fmt.Errorf("watch failed: %w", err)
		}
	}

	req := dto.TopRequest{Display: watchOpts.display.options(cmd)}
	if len(args) == 1 {
		req.Topfile = args[0]
	}

	svc := c.Container.AuditService()
	run := func(ctx context.Context) {
		if !nova.Autoload {
			if _, err := svc.Load(ctx); err != nil {
				c.Logger.Error("catalog reload failed", "error", err)
			}
		}

		runCtx, cancel := watchOpts.common.ApplyToContext(ctx)
		defer cancel()

		report, err := svc.Top(runCtx, req)
		if err != nil {
			c.Logger.Error("audit failed", "error", err)
			return
		}
		if err := watchOpts.common.writeReport(c.Container.Formatters(), report); err != nil {
			c.Logger.Error("failed to write report", "error", err)
		}
		logComplianceChange(ctx, c.Logger, svc)
	}

	c.Logger.Info("watching for changes", "module_dir", nova.ModuleDir, "profile_dir", nova.ProfileDir)
	watchLoop(ctx, c.Logger, watcher.Events, watcher.Errors, watchDebounce, watchOpts.interval, run)
	return nil
}

// watchLoop runs once immediately, then after each debounced burst of
// events and on every interval tick, until ctx is done. Runs never overlap.
func watchLoop(
	ctx context.Context,
	logger *slog.Logger,
	events <-chan fsnotify.Event,
	errs <-chan error,
	debounce, interval time.Duration,
	run func(context.Context),
) {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	trigger := make(chan struct{}, 1)
	fire := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if isIgnored(ev.Name) {
				continue
			}
			logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, fire)
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Warn("watch error", "error", err)
		case <-tick:
			fire()
		case <-trigger:
			run(ctx)
		}
	}
}

// isIgnored skips editor swap files and other dotfiles.
func isIgnored(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp")
}

func addWatchRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}

// runHistory is the slice of AuditService the watch loop reads.
type runHistory interface {
	History(ctx context.Context, limit int) ([]*execution.AuditRun, error)
}

func logComplianceChange(ctx context.Context, logger *slog.Logger, runs runHistory) {
	recent, err := runs.History(ctx, 2)
	if err != nil || len(recent) == 0 {
		return
	}
	latest := recent[0]
	attrs := []any{"run", latest.ID.String(), "compliance", latest.Compliance, "duration", latest.Duration()}
	if len(recent) == 2 && recent[1].Compliance != latest.Compliance {
		attrs = append(attrs, "previous", recent[1].Compliance)
		logger.Warn("compliance changed", attrs...)
		return
	}
	logger.Info("audit complete", attrs...)
}
