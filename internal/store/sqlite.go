package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"internhunt-engine/internal/domain"
)

// SQLiteStore keeps the same data as FileStore in one database file. Each
// admit runs in a single transaction.
type SQLiteStore struct {
	passGuard

	Pool *sql.DB
	Now  func() time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	if err := Migrate(pool); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteStore{Pool: pool, Now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.Pool == nil {
		return nil
	}
	return s.Pool.Close()
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	stmts := []string{`
CREATE TABLE IF NOT EXISTS listings (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  company_name TEXT NOT NULL DEFAULT '',
  role_title TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  location_type TEXT NOT NULL DEFAULT '',
  duration TEXT NOT NULL DEFAULT '',
  stipend TEXT NOT NULL DEFAULT '',
  stipend_numeric REAL NOT NULL DEFAULT 0,
  stipend_currency TEXT NOT NULL DEFAULT '',
  required_skills TEXT NOT NULL DEFAULT '[]',
  application_deadline TEXT NOT NULL DEFAULT '',
  apply_link TEXT NOT NULL DEFAULT '',
  source_platform TEXT NOT NULL DEFAULT '',
  date_scraped TEXT NOT NULL,
  is_new INTEGER NOT NULL DEFAULT 1,
  org_type TEXT NOT NULL DEFAULT '',
  role_type TEXT NOT NULL DEFAULT '',
  match_score INTEGER NOT NULL DEFAULT 0
);`, `
CREATE TABLE IF NOT EXISTS seen_ids (
  id TEXT PRIMARY KEY
);`, `
CREATE TABLE IF NOT EXISTS run_history (
  date TEXT PRIMARY KEY,
  new_listings INTEGER NOT NULL DEFAULT 0,
  sources_failed TEXT NOT NULL DEFAULT '[]'
);`, `
CREATE TABLE IF NOT EXISTS meta (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`, `
CREATE INDEX IF NOT EXISTS idx_listings_date ON listings(date_scraped);`,
	}
	for _, q := range stmts {
		if _, err := tx.Exec(q); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rows, err := s.Pool.QueryContext(ctx, `
SELECT id, company_name, role_title, location, location_type, duration, stipend,
       stipend_numeric, stipend_currency, required_skills, application_deadline,
       apply_link, source_platform, date_scraped, is_new, org_type, role_type, match_score
FROM listings
ORDER BY date_scraped DESC, seq ASC;`)
	if err != nil {
		return snap, err
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.Listing
		var locKind, orgKind, roleKind, skillsJSON, date string
		if err := rows.Scan(
			&l.ID, &l.Organization, &l.Title, &l.Location, &locKind, &l.Duration, &l.StipendText,
			&l.StipendNumeric, &l.StipendCurrency, &skillsJSON, &l.Deadline,
			&l.ApplyURL, &l.SourceName, &date, &l.IsNew, &orgKind, &roleKind, &l.MatchScore,
		); err != nil {
			return snap, err
		}
		l.LocationKind = domain.LocationKind(locKind)
		l.OrgKind = domain.OrgKind(orgKind)
		l.RoleKind = domain.RoleKind(roleKind)
		_ = json.Unmarshal([]byte(skillsJSON), &l.Skills)
		l.ScrapedAt, _ = time.Parse(DateLayout, date)
		snap.Listings = append(snap.Listings, l)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	if err := s.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen_ids;`).Scan(&snap.TotalSeen); err != nil {
		return snap, err
	}
	var lastRun sql.NullString
	err = s.Pool.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'last_run';`).Scan(&lastRun)
	if err != nil && err != sql.ErrNoRows {
		return snap, err
	}
	snap.LastRun = lastRun.String

	snap.History, err = s.history(ctx)
	return snap, err
}

func (s *SQLiteStore) history(ctx context.Context) ([]domain.RunRecord, error) {
	rows, err := s.Pool.QueryContext(ctx, `SELECT date, new_listings, sources_failed FROM run_history ORDER BY date ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.RunRecord{}
	for rows.Next() {
		var r domain.RunRecord
		var failedJSON string
		if err := rows.Scan(&r.Date, &r.NewListings, &failedJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(failedJSON), &r.FailedSources)
		if r.FailedSources == nil {
			r.FailedSources = []string{}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Admit(ctx context.Context, batch []domain.Listing) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	added := 0
	for _, l := range batch {
		if strings.TrimSpace(l.ID) == "" {
			continue
		}
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO seen_ids(id) VALUES (?);`, l.ID)
		if err != nil {
			return 0, fmt.Errorf("insert seen id: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}

		skills, _ := json.Marshal(l.Skills)
		if _, err := tx.ExecContext(ctx, `
INSERT INTO listings(id, company_name, role_title, location, location_type, duration, stipend,
  stipend_numeric, stipend_currency, required_skills, application_deadline,
  apply_link, source_platform, date_scraped, is_new, org_type, role_type, match_score)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,1,?,?,?);`,
			l.ID, l.Organization, l.Title, l.Location, string(l.LocationKind), l.Duration, l.StipendText,
			l.StipendNumeric, l.StipendCurrency, string(skills), l.Deadline,
			l.ApplyURL, l.SourceName, l.ScrapedAt.Format(DateLayout), string(l.OrgKind), string(l.RoleKind), l.MatchScore,
		); err != nil {
			return 0, fmt.Errorf("insert listing: %w", err)
		}
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO meta(key, value) VALUES ('last_run', ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value;`, s.Now().Format(DateLayout)); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

func (s *SQLiteStore) RecordRun(ctx context.Context, date string, added int, failed []string) error {
	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rec := domain.RunRecord{Date: date}
	var failedJSON string
	err = tx.QueryRowContext(ctx, `SELECT new_listings, sources_failed FROM run_history WHERE date = ?;`, date).
		Scan(&rec.NewListings, &failedJSON)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return err
	default:
		_ = json.Unmarshal([]byte(failedJSON), &rec.FailedSources)
	}
	rec = rec.Merge(added, failed)

	b, _ := json.Marshal(rec.FailedSources)
	if _, err := tx.ExecContext(ctx, `
INSERT INTO run_history(date, new_listings, sources_failed) VALUES (?, ?, ?)
ON CONFLICT(date) DO UPDATE SET new_listings = excluded.new_listings, sources_failed = excluded.sources_failed;`,
		rec.Date, rec.NewListings, string(b)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO meta(key, value) VALUES ('last_run', ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value;`, date); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	if err := s.checkIdle(); err != nil {
		return err
	}
	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range []string{"listings", "seen_ids", "run_history", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t+";"); err != nil {
			return fmt.Errorf("reset %s: %w", t, err)
		}
	}
	return tx.Commit()
}
