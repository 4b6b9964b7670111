package repo

import (
	"context"
	"errors"
	"time"

	"github.com/Chroma-Case/PLDGenerator/internal/config"
	"github.com/Chroma-Case/PLDGenerator/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS report_runs (
    id          BIGSERIAL PRIMARY KEY,
    started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    finished_at TIMESTAMPTZ,
    ok          BOOLEAN NOT NULL DEFAULT false,
    error       TEXT NOT NULL DEFAULT '',
    stories     INTEGER NOT NULL DEFAULT 0,
    skipped     INTEGER NOT NULL DEFAULT 0,
    report      JSONB
)`

type DB struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

// OpenPostgres connects, pings and ensures the schema.
func OpenPostgres(ctx context.Context, cfg config.Config, log zerolog.Logger) (*DB, error) {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(ctx2); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx2, pgSchema); err != nil {
		pool.Close()
		return nil, err
	}
	return &DB{Pool: pool, log: log}, nil
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
	db, err := OpenPostgres(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	return db
}

func (d *DB) Close() error { d.Pool.Close(); return nil }

func (d *DB) TryLock(ctx context.Context, key int64) (bool, error) {
	var ok bool
	err := d.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
	return ok, err
}

func (d *DB) Unlock(ctx context.Context, key int64) error {
	var ok bool
	err := d.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
	if !ok && err == nil {
		return errors.New("advisory unlock returned false")
	}
	return err
}

func (d *DB) StartRun(ctx context.Context) (int64, error) {
	const q = `INSERT INTO report_runs(started_at, ok) VALUES(now(), false) RETURNING id`
	var id int64
	if err := d.Pool.QueryRow(ctx, q).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (d *DB) FinishRun(ctx context.Context, run domain.Run) error {
	report, err := encodeReport(run.Report)
	if err != nil {
		return err
	}
	const q = `UPDATE report_runs SET finished_at=$2, ok=$3, error=$4, stories=$5, skipped=$6, report=$7 WHERE id=$1`
	_, err = d.Pool.Exec(ctx, q, run.ID, run.FinishedAt, run.OK, run.Error, run.Stories, run.Skipped, report)
	return err
}

const pgRunColumns = `id, started_at, finished_at, ok, error, stories, skipped, report`

func (d *DB) LastRun(ctx context.Context) (*domain.Run, error) {
	return d.queryRun(ctx, `SELECT `+pgRunColumns+` FROM report_runs ORDER BY id DESC LIMIT 1`)
}

func (d *DB) LastSuccessfulRun(ctx context.Context) (*domain.Run, error) {
	return d.queryRun(ctx, `SELECT `+pgRunColumns+` FROM report_runs WHERE ok ORDER BY id DESC LIMIT 1`)
}

func (d *DB) queryRun(ctx context.Context, q string) (*domain.Run, error) {
	var (
		run    domain.Run
		report []byte
	)
	err := d.Pool.QueryRow(ctx, q).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.OK, &run.Error, &run.Stories, &run.Skipped, &report)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if run.Report, err = decodeReport(report); err != nil {
		return nil, err
	}
	return &run, nil
}
