/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */

// Package repo stores report runs in Postgres or SQLite.
package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Chroma-Case/PLDGenerator/internal/config"
	"github.com/Chroma-Case/PLDGenerator/internal/domain"
	"github.com/rs/zerolog"
)

type Store interface {
	StartRun(ctx context.Context) (int64, error)
	FinishRun(ctx context.Context, run domain.Run) error
	LastRun(ctx context.Context) (*domain.Run, error)
	LastSuccessfulRun(ctx context.Context) (*domain.Run, error)
	TryLock(ctx context.Context, key int64) (bool, error)
	Unlock(ctx context.Context, key int64) error
	Close() error
}

// Open opens the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		return OpenPostgres(ctx, cfg, log)
	case config.StoreSQLite, "":
		return OpenSQLite(ctx, cfg.SQLitePath, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func encodeReport(r *domain.Report) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return b, nil
}

func decodeReport(b []byte) (*domain.Report, error) {
	if len(b) == 0 {
		return nil, nil
	}
	r := &domain.Report{}
	if err := json.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return r, nil
}
