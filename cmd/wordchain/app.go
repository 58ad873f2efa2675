package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/wordchain/internal/logger"
	"github.com/bastiangx/wordchain/internal/utils"
	"github.com/bastiangx/wordchain/pkg/config"
	"github.com/bastiangx/wordchain/pkg/corpus"
	"github.com/bastiangx/wordchain/pkg/engine"
	"github.com/charmbracelet/log"
)

// app is the loaded config plus a trained engine.
type app struct {
	cfg        *config.Config
	cfgPath    string
	sourcesDir string
	engine     *engine.Engine
}

// newApp loads the config, resolves and seeds the sources directory and
// trains the engine on it.
func newApp(ctx context.Context) (*app, error) {
	cfg, cfgPath, err := config.LoadConfigWithPriority(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flagSources != "" {
		cfg.Sources.Dir = flagSources
	}

	dir := cfg.Sources.Dir
	if pr, err := utils.NewPathResolver(); err == nil {
		dir = pr.GetSourcesDir(dir)
	} else {
		log.Warnf("Failed to initialize path resolver: %v. Using %s as given", err, dir)
	}

	if cfg.Sources.SeedSamples {
		seeded, err := corpus.SeedSamples(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to seed samples: %w", err)
		}
		if seeded {
			log.Infof("Created %s with sample texts", dir)
		}
	}

	e := engine.New(engine.Options{
		Extensions:  cfg.Sources.Extensions,
		ReadWorkers: cfg.Sources.ReadWorkers,
		Logger:      componentLogger(cfg, "engine"),
	})
	names, err := e.LoadSourcesFromDirectory(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	log.Debugf("Loaded sources from %s: %v", dir, names)

	return &app{cfg: cfg, cfgPath: cfgPath, sourcesDir: dir, engine: e}, nil
}

// watch reloads changed source files until ctx is done. It returns at once
// when watching is disabled or the directory is missing.
func (a *app) watch(ctx context.Context) error {
	if !a.cfg.Sources.Watch {
		return nil
	}
	if !utils.FileExists(a.sourcesDir) {
		log.Warnf("Not watching %s: directory does not exist", a.sourcesDir)
		return nil
	}

	w, err := corpus.NewWatcher(a.sourcesDir, func(paths []string) {
		a.engine.ReloadFiles(ctx, paths)
	}, corpus.WatcherOptions{
		Debounce:   a.cfg.Sources.Debounce(),
		Extensions: a.cfg.Sources.Extensions,
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	<-ctx.Done()
	w.Stop()
	return nil
}

// watchOrWarn runs watch and only logs a failure, so a broken watcher
// leaves the service running without live reload.
func (a *app) watchOrWarn(ctx context.Context) {
	if err := a.watch(ctx); err != nil {
		log.Warnf("Live reload disabled: %v", err)
	}
}

// componentLogger builds a prefixed logger at the current global level in
// the configured format. -d adds timestamps.
func componentLogger(cfg *config.Config, prefix string) *log.Logger {
	return logger.NewWithConfig(prefix, log.GetLevel(), false, flagDebug, logger.ParseFormatter(cfg.Log.Format))
}

// writeRuntimeInfo prints runtime paths as TOML comments, sorted by key.
func writeRuntimeInfo(w io.Writer, info map[string]string) {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "# %s: %s\n", k, info[k])
	}
}

func writeTOML(w io.Writer, v any) error {
	return toml.NewEncoder(w).Encode(v)
}
