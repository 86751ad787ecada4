// Package scrape runs one ingestion pass: resolve the configured sources, run
// each adapter in turn, filter what they return and admit the survivors.
package scrape

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/metrics"
	"internhunt-engine/internal/source"
	"internhunt-engine/internal/store"
)

// Resolver expands a run config into the ordered adapters to invoke.
type Resolver interface {
	Resolve(cfg domain.RunConfig) ([]source.Adapter, error)
}

// Filter decides whether a raw listing is kept and scores it when it is.
type Filter interface {
	Evaluate(r domain.RawListing, paidOnly bool) (domain.Listing, string, bool)
}

type Options struct {
	// DryRun fetches and filters but never touches the store or the ledger.
	DryRun bool
}

type Summary struct {
	PassID    string        `json:"pass_id"`
	Sources   []string      `json:"sources"`
	Succeeded []string      `json:"succeeded"`
	Failed    []string      `json:"failed"`
	Fetched   int           `json:"fetched"`
	Matched   int           `json:"matched"`
	Added     int           `json:"added"`
	DryRun    bool          `json:"dry_run"`
	Stopped   bool          `json:"stopped"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

type Runner struct {
	Sources Resolver
	Store   store.Store
	Filter  Filter
	Log     logger.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) log() logger.Logger {
	if r.Log == nil {
		return logger.NewNop()
	}
	return r.Log
}

// Run executes one pass. It returns an error only for a configuration problem
// (unknown region, topic or source; nothing ran) or when the ledger could not be written; adapter failures are
// recorded in the summary. A cancelled ctx stops the pass before the next
// adapter starts, never during one.
func (r *Runner) Run(ctx context.Context, cfg domain.RunConfig, opts Options) (Summary, error) {
	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	adapters, err := r.Sources.Resolve(cfg)
	if err != nil {
		return Summary{}, err
	}

	start := r.now()
	sum := Summary{
		PassID:    uuid.NewString(),
		Sources:   make([]string, 0, len(adapters)),
		Succeeded: []string{},
		Failed:    []string{},
		DryRun:    opts.DryRun,
		StartedAt: start,
	}
	for _, a := range adapters {
		sum.Sources = append(sum.Sources, a.Name())
	}
	log := r.log().With(logger.String("pass_id", sum.PassID))

	if len(adapters) == 0 {
		log.Info("no sources selected", logger.Strings("requested", cfg.Sources))
		sum.Duration = r.now().Sub(start)
		return sum, nil
	}

	log.Info("pass started",
		logger.Strings("sources", sum.Sources),
		logger.Strings("regions", cfg.Regions),
		logger.Strings("topics", cfg.Topics),
		logger.Bool("paid_only", cfg.PaidOnly),
		logger.Bool("dry_run", opts.DryRun),
	)

	if !opts.DryRun && r.Store != nil {
		end := r.Store.BeginPass()
		defer end()
	}

	for _, a := range adapters {
		if ctx.Err() != nil {
			sum.Stopped = true
			log.Warn("pass stopped before source", logger.String("source", a.Name()))
			break
		}
		res := r.runSource(ctx, a, cfg, opts, log.With(logger.String("source", a.Name())))
		sum.Fetched += res.fetched
		sum.Matched += res.matched
		sum.Added += res.added
		if res.failed {
			sum.Failed = append(sum.Failed, a.Name())
		} else {
			sum.Succeeded = append(sum.Succeeded, a.Name())
		}
	}

	sum.Duration = r.now().Sub(start)
	outcome := "ok"
	switch {
	case sum.Stopped:
		outcome = "stopped"
	case len(sum.Failed) > 0 && len(sum.Succeeded) == 0:
		outcome = "failed"
	case len(sum.Failed) > 0:
		outcome = "partial"
	}

	if !opts.DryRun && r.Store != nil {
		// The ledger write must land even when the caller already cancelled.
		wctx := context.WithoutCancel(ctx)
		if err := r.Store.RecordRun(wctx, start.Format(store.DateLayout), sum.Added, sum.Failed); err != nil {
			r.Metrics.PassFinished("error")
			return sum, fmt.Errorf("record run: %w", err)
		}
		if snap, err := r.Store.Load(wctx); err == nil {
			r.Metrics.SetDatasetSize(len(snap.Listings))
		}
	}
	r.Metrics.PassFinished(outcome)

	log.Info("pass finished",
		logger.Int("fetched", sum.Fetched),
		logger.Int("matched", sum.Matched),
		logger.Int("added", sum.Added),
		logger.Strings("failed", sum.Failed),
		logger.String("outcome", outcome),
		logger.Duration("took", sum.Duration),
	)
	return sum, nil
}

type sourceResult struct {
	fetched, matched, added int
	failed                  bool
}

func (r *Runner) runSource(ctx context.Context, a source.Adapter, cfg domain.RunConfig, opts Options, log logger.Logger) sourceResult {
	var res sourceResult
	began := time.Now()
	defer func() {
		r.Metrics.ObserveSource(a.Name(), res.fetched, res.matched, res.added, time.Since(began).Seconds(), res.failed)
	}()

	raws, err := fetch(ctx, a, cfg)
	if err != nil {
		log.Error("source failed", logger.Err(err))
		res.failed = true
		return res
	}
	res.fetched = len(raws)

	batch := make([]domain.Listing, 0, len(raws))
	for _, raw := range raws {
		l, reason, ok := r.Filter.Evaluate(raw, cfg.PaidOnly)
		if !ok {
			r.Metrics.Rejected(reason)
			log.Debug("rejected", logger.String("reason", reason), logger.String("title", raw.Title))
			continue
		}
		batch = append(batch, l)
	}
	res.matched = len(batch)

	if !opts.DryRun && r.Store != nil && len(batch) > 0 {
		added, err := r.Store.Admit(context.WithoutCancel(ctx), batch)
		if err != nil {
			log.Error("admit failed", logger.Int("matched", len(batch)), logger.Err(err))
			res.failed = true
			return res
		}
		res.added = added
	}

	log.Info("source done",
		logger.Int("analyzed", res.fetched),
		logger.Int("matched", res.matched),
		logger.Int("saved_new", res.added),
	)
	return res
}

// fetch calls the adapter, turning a panic into an error.
func fetch(ctx context.Context, a source.Adapter, cfg domain.RunConfig) (out []domain.RawListing, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s panicked: %v\n%s", a.Name(), p, debug.Stack())
		}
	}()
	return a.Fetch(ctx, cfg)
}
