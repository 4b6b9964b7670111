package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Chroma-Case/PLDGenerator/internal/repo"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storyBody = "### En tant que\nétudiant\n### Je veux\nun rapport\n### Estimation du temps\n2/J\n"

func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	routes := map[string]any{
		"/repos/o/r/issues": []map[string]any{
			{"number": 1, "title": "Export", "body": storyBody, "state": "open",
				"labels": []map[string]any{{"name": "Backend"}}, "assignees": []map[string]any{{"login": "alice"}}},
		},
		"/repos/o/r/projects":         []map[string]any{{"id": 10, "name": "API"}},
		"/projects/10/columns":        []map[string]any{{"id": 101, "name": "Todo"}},
		"/projects/columns/101/cards": []map[string]any{{"id": 1, "content_url": "https://api.github.com/repos/o/r/issues/1"}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupGenerate(t *testing.T) (settings, dbPath string) {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()
	settings = filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte(settingsYAML), 0o600))
	dbPath = filepath.Join(dir, "pld.db")

	t.Setenv("GITHUB_API_URL", fakeGitHub(t).URL)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", dbPath)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	return settings, dbPath
}

func generate(t *testing.T, settings string, opts *generateOptions) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := runGenerate(context.Background(), cmd, settings, opts)
	return out.String(), err
}

func lastRun(t *testing.T, dbPath string) bool {
	t.Helper()
	s, err := repo.OpenSQLite(context.Background(), dbPath, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	run, err := s.LastRun(context.Background())
	require.NoError(t, err)
	return run != nil
}

func TestGenerate_DeclinedWritesNothing(t *testing.T) {
	settings, dbPath := setupGenerate(t)
	asked := 0
	opts := &generateOptions{format: "json", store: true, quiet: true,
		confirm: func(string, string) (bool, error) { asked++; return false, nil }}

	out, err := generate(t, settings, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, asked)
	assert.Empty(t, out)
	assert.False(t, lastRun(t, dbPath))
}

func TestGenerate_ConfirmedRecordsAndWrites(t *testing.T) {
	settings, dbPath := setupGenerate(t)
	opts := &generateOptions{format: "json", store: true, quiet: true,
		confirm: func(string, string) (bool, error) { return true, nil }}

	out, err := generate(t, settings, opts)
	require.NoError(t, err)
	assert.Contains(t, out, `"stories"`)
	assert.Contains(t, out, "Export")
	assert.True(t, lastRun(t, dbPath))
}

func TestGenerate_YesSkipsConfirm(t *testing.T) {
	settings, _ := setupGenerate(t)
	opts := &generateOptions{format: "yaml", yes: true, quiet: true,
		confirm: func(string, string) (bool, error) { t.Fatal("confirm called"); return false, nil }}

	out, err := generate(t, settings, opts)
	require.NoError(t, err)
	assert.Contains(t, out, "stories:")
}
