package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"internhunt-engine/internal/domain"
)

const (
	DatasetFile = "internships.csv"
	LedgerFile  = "internships_log.json"
	lockFile    = ".internhunt.lock"
)

// ledger is the JSON record next to the dataset.
type ledger struct {
	LastRun    *string            `json:"last_run"`
	TotalSeen  int                `json:"total_scraped"`
	SeenIDs    []string           `json:"seen_ids"`
	RunHistory []domain.RunRecord `json:"run_history"`
}

// FileStore keeps the dataset as CSV and the seen-set plus history as JSON.
// Every write goes to a temp file that is renamed over the old one, so
// readers never see a half-written file.
type FileStore struct {
	passGuard

	dir  string
	mu   sync.Mutex
	lock *flock.Flock
	Now  func() time.Time
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockFile)),
		Now:  time.Now,
	}, nil
}

func (s *FileStore) DatasetPath() string { return filepath.Join(s.dir, DatasetFile) }
func (s *FileStore) LedgerPath() string  { return filepath.Join(s.dir, LedgerFile) }

// withLock serializes writers in this process and across processes sharing the data dir.
func (s *FileStore) withLock(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !ok {
		return errors.New("lock data dir: not acquired")
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn()
}

func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	lg, err := s.readLedger()
	if err != nil {
		return Snapshot{}, err
	}
	rows, err := s.readDataset()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		TotalSeen: lg.TotalSeen,
		Listings:  rows,
		History:   lg.RunHistory,
	}
	if lg.LastRun != nil {
		snap.LastRun = *lg.LastRun
	}
	return snap, nil
}

func (s *FileStore) Admit(ctx context.Context, batch []domain.Listing) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	var added int
	err := s.withLock(ctx, func() error {
		lg, err := s.readLedger()
		if err != nil {
			return err
		}
		rows, err := s.readDataset()
		if err != nil {
			return err
		}

		seen := make(map[string]bool, len(lg.SeenIDs)+len(rows))
		for _, id := range lg.SeenIDs {
			seen[id] = true
		}
		// rows that made it to disk without their ledger still count as seen
		for _, r := range rows {
			if !seen[r.ID] {
				seen[r.ID] = true
				lg.SeenIDs = append(lg.SeenIDs, r.ID)
			}
		}

		fresh := selectNew(seen, batch)
		if len(fresh) == 0 {
			return nil
		}

		rows = append(rows, fresh...)
		sortByScrapeDate(rows)
		for _, f := range fresh {
			lg.SeenIDs = append(lg.SeenIDs, f.ID)
		}
		lg.TotalSeen = len(lg.SeenIDs)
		today := s.Now().Format(DateLayout)
		lg.LastRun = &today

		if err := s.commit(rows, lg); err != nil {
			return err
		}
		added = len(fresh)
		return nil
	})
	return added, err
}

func (s *FileStore) RecordRun(ctx context.Context, date string, added int, failed []string) error {
	return s.withLock(ctx, func() error {
		lg, err := s.readLedger()
		if err != nil {
			return err
		}
		lg.RunHistory = domain.MergeHistory(lg.RunHistory, date, added, failed)
		lg.LastRun = &date
		b, err := json.MarshalIndent(lg, "", "  ")
		if err != nil {
			return err
		}
		tmp, err := writeTemp(s.LedgerPath(), b)
		if err != nil {
			return err
		}
		return os.Rename(tmp, s.LedgerPath())
	})
}

func (s *FileStore) Reset(ctx context.Context) error {
	if err := s.checkIdle(); err != nil {
		return err
	}
	return s.withLock(ctx, func() error {
		for _, p := range []string{s.DatasetPath(), s.LedgerPath()} {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("reset %s: %w", filepath.Base(p), err)
			}
		}
		return nil
	})
}

func (s *FileStore) Close() error { return nil }

// commit stages both files before swapping either into place.
func (s *FileStore) commit(rows []domain.Listing, lg ledger) error {
	csvBytes, err := encodeCSV(rows)
	if err != nil {
		return err
	}
	lgBytes, err := json.MarshalIndent(lg, "", "  ")
	if err != nil {
		return err
	}

	csvTmp, err := writeTemp(s.DatasetPath(), csvBytes)
	if err != nil {
		return err
	}
	lgTmp, err := writeTemp(s.LedgerPath(), lgBytes)
	if err != nil {
		_ = os.Remove(csvTmp)
		return err
	}

	if err := os.Rename(csvTmp, s.DatasetPath()); err != nil {
		_ = os.Remove(csvTmp)
		_ = os.Remove(lgTmp)
		return fmt.Errorf("replace dataset: %w", err)
	}
	if err := os.Rename(lgTmp, s.LedgerPath()); err != nil {
		_ = os.Remove(lgTmp)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

func writeTemp(path string, b []byte) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (s *FileStore) readLedger() (ledger, error) {
	lg := ledger{SeenIDs: []string{}, RunHistory: []domain.RunRecord{}}
	b, err := os.ReadFile(s.LedgerPath())
	if errors.Is(err, os.ErrNotExist) {
		return lg, nil
	}
	if err != nil {
		return lg, err
	}
	if err := json.Unmarshal(b, &lg); err != nil {
		return lg, fmt.Errorf("decode %s: %w", LedgerFile, err)
	}
	lg.SeenIDs = slices.Compact(slices.Sorted(slices.Values(lg.SeenIDs)))
	if lg.RunHistory == nil {
		lg.RunHistory = []domain.RunRecord{}
	}
	return lg, nil
}

func (s *FileStore) readDataset() ([]domain.Listing, error) {
	f, err := os.Open(s.DatasetPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeCSV(f)
}
