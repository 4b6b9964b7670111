package repo

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/Chroma-Case/PLDGenerator/internal/domain"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS report_runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at  TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    ok          INTEGER NOT NULL DEFAULT 0,
    error       TEXT NOT NULL DEFAULT '',
    stories     INTEGER NOT NULL DEFAULT 0,
    skipped     INTEGER NOT NULL DEFAULT 0,
    report      TEXT
)`

// SQLite is the single file store used by the CLI and local runs. Locks only
// exclude concurrent runs of the same process.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger

	mu    sync.Mutex
	locks map[int64]bool
}

func OpenSQLite(ctx context.Context, path string, log zerolog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, log: log, locks: map[int64]bool{}}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) TryLock(_ context.Context, key int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[key] {
		return false, nil
	}
	s.locks[key] = true
	return true, nil
}

func (s *SQLite) Unlock(_ context.Context, key int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.locks[key] {
		return errors.New("unlock of a lock not held")
	}
	delete(s.locks, key)
	return nil
}

func (s *SQLite) StartRun(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO report_runs(started_at, ok) VALUES(?, 0)`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLite) FinishRun(ctx context.Context, run domain.Run) error {
	report, err := encodeReport(run.Report)
	if err != nil {
		return err
	}
	var finished any
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}
	var text any
	if report != nil {
		text = string(report)
	}
	const q = `UPDATE report_runs SET finished_at=?, ok=?, error=?, stories=?, skipped=?, report=? WHERE id=?`
	_, err = s.db.ExecContext(ctx, q, finished, run.OK, run.Error, run.Stories, run.Skipped, text, run.ID)
	return err
}

const sqliteRunColumns = `id, started_at, finished_at, ok, error, stories, skipped, report`

func (s *SQLite) LastRun(ctx context.Context) (*domain.Run, error) {
	return s.queryRun(ctx, `SELECT `+sqliteRunColumns+` FROM report_runs ORDER BY id DESC LIMIT 1`)
}

func (s *SQLite) LastSuccessfulRun(ctx context.Context) (*domain.Run, error) {
	return s.queryRun(ctx, `SELECT `+sqliteRunColumns+` FROM report_runs WHERE ok = 1 ORDER BY id DESC LIMIT 1`)
}

func (s *SQLite) queryRun(ctx context.Context, q string) (*domain.Run, error) {
	var (
		run      domain.Run
		finished sql.NullTime
		report   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, q).Scan(&run.ID, &run.StartedAt, &finished, &run.OK, &run.Error, &run.Stories, &run.Skipped, &report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	if report.Valid {
		if run.Report, err = decodeReport([]byte(report.String)); err != nil {
			return nil, err
		}
	}
	return &run, nil
}
