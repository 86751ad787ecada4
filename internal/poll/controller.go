// Package poll hosts ingestion passes: it makes sure only one runs at a time,
// remembers how the last one went and refuses to wipe data while one is live.
package poll

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/events"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/scrape"
	"internhunt-engine/internal/store"
)

var ErrRunInProgress = errors.New("an ingestion pass is already running")

type Outcome string

const (
	Started        Outcome = "started"
	AlreadyRunning Outcome = "running"
)

const (
	stateIdle int32 = iota
	stateRunning
)

// Runner is the pass itself.
type Runner interface {
	Run(ctx context.Context, cfg domain.RunConfig, opts scrape.Options) (scrape.Summary, error)
}

// Resetter clears persisted state.
type Resetter interface {
	Reset(ctx context.Context) error
}

type Status struct {
	State      string          `json:"status"`
	Last       *scrape.Summary `json:"last,omitempty"`
	LastError  string          `json:"last_error,omitempty"`
	LastRunAt  *time.Time      `json:"last_run_at,omitempty"`
	LastDoneAt *time.Time      `json:"last_done_at,omitempty"`
}

type Controller struct {
	runner  Runner
	sources scrape.Resolver
	store   Resetter
	hub     *events.Hub
	log     logger.Logger
	// LogPath is the run log truncated by Reset. Empty skips truncation.
	LogPath string

	base  context.Context
	state atomic.Int32
	wg    sync.WaitGroup

	mu     sync.Mutex
	status Status
}

// New binds the controller to base; cancelling base stops a running pass
// before its next source.
func New(base context.Context, runner Runner, sources scrape.Resolver, store Resetter, hub *events.Hub, log logger.Logger) *Controller {
	if log == nil {
		log = logger.NewNop()
	}
	return &Controller{
		runner:  runner,
		sources: sources,
		store:   store,
		hub:     hub,
		log:     log,
		base:    base,
		status:  Status{State: "idle"},
	}
}

// Start launches a pass in the background. A config naming an unknown
// region, topic or source is rejected here, before anything runs.
func (c *Controller) Start(cfg domain.RunConfig, opts scrape.Options) (Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if c.sources != nil {
		if _, err := c.sources.Resolve(cfg); err != nil {
			return "", err
		}
	}
	if !c.state.CompareAndSwap(stateIdle, stateRunning) {
		return AlreadyRunning, nil
	}

	now := time.Now()
	c.mu.Lock()
	c.status.State = "running"
	c.status.LastRunAt = &now
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(cfg, opts)
	}()
	return Started, nil
}

func (c *Controller) run(cfg domain.RunConfig, opts scrape.Options) {
	defer c.state.Store(stateIdle)

	c.hub.Emit(events.PassStarted, map[string]any{"config": cfg.Normalized(), "dry_run": opts.DryRun})

	sum, err := c.safeRun(cfg, opts)

	done := time.Now()
	c.mu.Lock()
	c.status.State = "idle"
	c.status.Last = &sum
	c.status.LastDoneAt = &done
	c.status.LastError = ""
	if err != nil {
		c.status.LastError = err.Error()
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Error("pass failed", logger.String("pass_id", sum.PassID), logger.Err(err))
	}
	c.hub.Emit(events.PassFinished, sum)
}

func (c *Controller) safeRun(cfg domain.RunConfig, opts scrape.Options) (sum scrape.Summary, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("pass panicked: %v", p)
		}
	}()
	return c.runner.Run(c.base, cfg, opts)
}

func (c *Controller) Running() bool { return c.state.Load() == stateRunning }

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.status
	if c.Running() {
		st.State = "running"
	}
	return st
}

// Reset clears dataset, seen-set, history and the run log.
func (c *Controller) Reset(ctx context.Context) error {
	if c.Running() {
		return ErrRunInProgress
	}
	if err := c.store.Reset(ctx); err != nil {
		if errors.Is(err, store.ErrPassInProgress) {
			return ErrRunInProgress
		}
		return fmt.Errorf("reset store: %w", err)
	}
	if c.LogPath != "" {
		if err := os.Truncate(c.LogPath, 0); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("truncate run log: %w", err)
		}
	}
	c.mu.Lock()
	c.status = Status{State: "idle"}
	c.mu.Unlock()

	c.log.Info("all data cleared")
	c.hub.Emit(events.DataCleared, nil)
	return nil
}

// Wait blocks until the pass in flight, if any, has returned.
func (c *Controller) Wait() { c.wg.Wait() }
