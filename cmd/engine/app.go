package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/eligibility"
	"internhunt-engine/internal/events"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/metrics"
	"internhunt-engine/internal/scrape"
	"internhunt-engine/internal/source"
	"internhunt-engine/internal/store"
)

// RunLogFile is the log the dashboard tails and reset truncates.
const RunLogFile = "scraper_run.log"

// app is everything a command needs, built once from the config on disk.
type app struct {
	dataDir string
	cfgPath string
	logPath string
	cfg     config.Config

	log     logger.Logger
	store   store.Store
	filter  *liveFilter
	sources *source.Live
	metrics *metrics.Metrics
	hub     *events.Hub
	runner  *scrape.Runner
}

func bootstrap(opts *rootOptions) (*app, error) {
	if err := os.MkdirAll(opts.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	cfgPath := opts.configPath
	if cfgPath == "" {
		p, err := config.EnsureUserConfig(opts.dataDir, filepath.Join("config", "config.yml"))
		if err != nil {
			return nil, fmt.Errorf("config bootstrap failed: %w", err)
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", cfgPath, err)
	}
	cfg, v := config.NormalizeAndValidate(cfg)
	if !v.OK() {
		return nil, v.Err()
	}

	level := cfg.App.LogLevel
	if opts.debug {
		level = "debug"
	}
	logPath := filepath.Join(opts.dataDir, RunLogFile)
	log, err := logger.New(logger.Config{
		Level:       level,
		OutputPaths: []string{"stdout", logPath},
		Development: opts.debug,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range v.Warnings {
		log.Warn("config warning", logger.String("detail", w))
	}

	st, err := store.Open(cfg.Store.Backend, opts.dataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &app{
		dataDir: opts.dataDir,
		cfgPath: cfgPath,
		logPath: logPath,
		cfg:     cfg,
		log:     log,
		store:   st,
		filter:  newLiveFilter(cfg.Filters),
		sources: source.NewLive(source.Builtin(cfg, source.NewClient(cfg), log)),
		metrics: metrics.New(),
		hub:     events.NewHub(),
	}
	a.runner = &scrape.Runner{
		Sources: a.sources,
		Store:   a.store,
		Filter:  a.filter,
		Log:     log,
		Metrics: a.metrics,
	}
	return a, nil
}

// reload rebuilds the source registry and the filter from a saved config.
// A pass in flight keeps the adapters it already resolved.
func (a *app) reload(cfg config.Config) {
	a.sources.Swap(source.Builtin(cfg, source.NewClient(cfg), a.log))
	a.filter.set(cfg.Filters)
	a.log.Info("config reloaded", logger.Strings("families", a.sources.Families()))
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store", logger.Err(err))
	}
	_ = a.log.Sync()
}

// liveFilter lets a config save swap eligibility thresholds under a running
// server.
type liveFilter struct {
	cur atomic.Pointer[eligibility.Engine]
}

func newLiveFilter(f config.Filters) *liveFilter {
	l := &liveFilter{}
	l.set(f)
	return l
}

func (l *liveFilter) set(f config.Filters) {
	l.cur.Store(eligibility.New(eligibility.FromConfig(f)))
}

func (l *liveFilter) Evaluate(r domain.RawListing, paidOnly bool) (domain.Listing, string, bool) {
	return l.cur.Load().Evaluate(r, paidOnly)
}
