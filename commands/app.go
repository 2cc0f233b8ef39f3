package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/penwyp/go-habit-timeline/internal/config"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/data/snapshot"
	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/penwyp/go-habit-timeline/internal/metrics"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

// app holds what every command needs once flags and config are resolved.
type app struct {
	cfg      *config.Config
	src      source.Source
	store    *snapshot.Store
	fallback *snapshot.Fallback
	recorder metrics.Recorder
}

// bootstrap loads config, starts logging and the time provider, then builds
// the source chain: API or files, snapshot fallback for the API, TTL cache.
func bootstrap(cmd *cobra.Command, recorder metrics.Recorder) (*app, error) {
	cfg, err := config.Load(config.Options{ConfigFile: configFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	if err := util.InitLogger(util.LoggerOptions{
		Level:          level,
		Format:         util.ParseLogFormat(cfg.LogFormat),
		File:           cfg.LogFile,
		DebugToConsole: debug,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := util.InitializeTimeProvider(cfg.Timezone); err != nil {
		return nil, err
	}

	if recorder == nil {
		recorder = metrics.Noop()
	}
	a := &app{cfg: cfg, recorder: recorder}
	if err := a.buildSource(); err != nil {
		a.close()
		return nil, err
	}

	util.LogDebug("Configuration loaded",
		util.F("source", cfg.Source),
		util.F("data_dir", cfg.DataDir),
		util.F("api_url", cfg.APIURL),
		util.F("timezone", cfg.Timezone),
		util.F("offline", offline))
	return a, nil
}

func (a *app) buildSource() error {
	var src source.Source

	if a.cfg.Source == model.SourceAPI || offline {
		store, err := snapshot.NewStore(a.cfg.SnapshotDir)
		if err != nil {
			return err
		}
		a.store = store
	}

	switch {
	case offline:
		snap, err := a.store.Load()
		if err != nil {
			if errors.Is(err, snapshot.ErrNoSnapshot) {
				return fmt.Errorf("--offline needs a snapshot; run once against the API first: %w", err)
			}
			return err
		}
		util.LogInfo("Using offline snapshot", util.F("taken_at", snap.TakenAt), util.F("from", snap.Source))
		src = snapshot.NewSource(snap)
	case a.cfg.Source == model.SourceAPI:
		a.fallback = snapshot.NewFallback(source.NewAPIClient(a.cfg.APIURL, a.cfg.APITimeout), a.store)
		src = a.fallback
	default:
		src = source.NewFileSource(a.cfg.DataDir)
	}

	a.src = source.NewCachedSource(src, a.cfg.CacheTTL, a.cfg.CacheSizeMB, a.recorder)
	return nil
}

// refreshSnapshot stores a fresh copy of the API data for offline use, at
// most once per SnapshotMaxAge.
func (a *app) refreshSnapshot(ctx context.Context) {
	if a.fallback == nil {
		return
	}
	captured, err := a.fallback.Refresh(ctx, a.cfg.SnapshotMaxAge)
	if err != nil {
		util.LogDebug("Snapshot not refreshed", util.F("error", err.Error()))
		return
	}
	if captured {
		util.LogDebug("Snapshot refreshed", util.F("path", a.store.Path()))
	}
}

func (a *app) close() {
	if c, ok := a.src.(interface{ Close() }); ok {
		c.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	util.CloseLogger()
}

// today is the current date in the configured timezone.
func (a *app) today() string {
	return util.Today()
}

// useColor reports whether output goes to a terminal that should get ANSI colors.
func useColor(cmd *cobra.Command) bool {
	if noColor {
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
