package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRun(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRun(true, 3, 1, 7.5)
	m.ObserveRun(true, 2, 0, 4)
	m.ObserveRun(false, 0, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("error")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.StoriesBuilt))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IssuesSkipped))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SprintCharge))
}

func TestObserveRun_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveRun(true, 1, 1, 1) })
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRun(true, 1, 0, 2)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `pld_runs_total{result="ok"} 1`)
	assert.Contains(t, string(body), "pld_sprint_charge 2")
}
