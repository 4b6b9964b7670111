package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chroma-Case/PLDGenerator/internal/config"
	"github.com/Chroma-Case/PLDGenerator/internal/domain"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "pld.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_RunLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := s.LastRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, run)

	id, err := s.StartRun(ctx)
	require.NoError(t, err)
	require.Positive(t, id)

	finished := time.Date(2024, 2, 16, 18, 0, 0, 0, time.UTC)
	report := &domain.Report{Doc: domain.Doc{Title: "PLD"}, SprintCharge: 4.5, Stories: []*domain.Story{{ID: 1, Num: "API - 1.1"}}}
	require.NoError(t, s.FinishRun(ctx, domain.Run{ID: id, FinishedAt: &finished, OK: true, Stories: 1, Report: report}))

	failed, err := s.StartRun(ctx)
	require.NoError(t, err)
	require.NoError(t, s.FinishRun(ctx, domain.Run{ID: failed, FinishedAt: &finished, Error: "tracker down"}))

	last, err := s.LastRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, failed, last.ID)
	assert.False(t, last.OK)
	assert.Equal(t, "tracker down", last.Error)
	assert.Nil(t, last.Report)
	require.NotNil(t, last.FinishedAt)
	assert.True(t, finished.Equal(*last.FinishedAt))

	ok, err := s.LastSuccessfulRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, ok)
	assert.Equal(t, id, ok.ID)
	assert.Equal(t, 1, ok.Stories)
	require.NotNil(t, ok.Report)
	assert.Equal(t, "PLD", ok.Report.Doc.Title)
	assert.Equal(t, 4.5, ok.Report.SprintCharge)
	assert.Equal(t, "API - 1.1", ok.Report.Stories[0].Num)
}

func TestSQLite_Locks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.TryLock(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = s.TryLock(ctx, 1)
	require.NoError(t, err)
	assert.False(t, got)

	require.NoError(t, s.Unlock(ctx, 1))
	require.Error(t, s.Unlock(ctx, 1))

	got, err = s.TryLock(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Config{StoreDriver: "mysql"}, zerolog.Nop())
	require.Error(t, err)
}

func TestOpen_SQLite(t *testing.T) {
	cfg := config.Config{StoreDriver: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")}
	s, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestReportCodec(t *testing.T) {
	b, err := encodeReport(nil)
	require.NoError(t, err)
	assert.Nil(t, b)

	r, err := decodeReport(nil)
	require.NoError(t, err)
	assert.Nil(t, r)

	_, err = decodeReport([]byte("{"))
	require.Error(t, err)
}
