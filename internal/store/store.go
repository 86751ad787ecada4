// Package store persists the deduplicated listing dataset, the seen-set and
// the per-day run history.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"internhunt-engine/internal/domain"
)

var ErrPassInProgress = errors.New("store: an ingestion pass is in progress")

const DateLayout = "2006-01-02"

// Snapshot is what the dashboard reads: the dataset in scrape-date order plus
// the ledger and its counters.
type Snapshot struct {
	LastRun   string             `json:"last_run"`
	TotalSeen int                `json:"total_scraped"`
	Listings  []domain.Listing   `json:"listings"`
	History   []domain.RunRecord `json:"run_history"`
}

type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	// Admit persists the listings whose id was never seen and returns how many
	// that was. A batch with nothing new leaves storage untouched.
	Admit(ctx context.Context, batch []domain.Listing) (int, error)
	RecordRun(ctx context.Context, date string, added int, failed []string) error
	// Reset clears dataset, seen-set and history. It fails with
	// ErrPassInProgress while a pass holds the store.
	Reset(ctx context.Context) error
	// BeginPass marks a pass as running until the returned func is called.
	BeginPass() (end func())
	Close() error
}

// Open builds the configured backend rooted at dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFileStore(dataDir)
	case "sqlite":
		return OpenSQLite(filepath.Join(dataDir, "internships.db"))
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

type passGuard struct {
	running atomic.Int32
}

func (g *passGuard) BeginPass() func() {
	g.running.Add(1)
	var done atomic.Bool
	return func() {
		if done.CompareAndSwap(false, true) {
			g.running.Add(-1)
		}
	}
}

func (g *passGuard) checkIdle() error {
	if g.running.Load() > 0 {
		return ErrPassInProgress
	}
	return nil
}

// selectNew returns the listings of batch whose ids are not in seen (nor
// repeated earlier in the batch), marked new, and records them in seen.
func selectNew(seen map[string]bool, batch []domain.Listing) []domain.Listing {
	var fresh []domain.Listing
	for _, l := range batch {
		if l.ID == "" || seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		l.IsNew = true
		fresh = append(fresh, l)
	}
	return fresh
}

func sortByScrapeDate(ls []domain.Listing) {
	slices.SortStableFunc(ls, func(a, b domain.Listing) int {
		return dayOf(b.ScrapedAt).Compare(dayOf(a.ScrapedAt))
	})
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
