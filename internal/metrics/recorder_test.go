package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tabinspect/internal/ingest"
)

func TestRecorder_Attempt(t *testing.T) {
	r := NewRecorder()

	r.Attempt("utf-8", &ingest.DecodeError{Encoding: "utf-8"})
	r.Attempt("latin1", nil)
	r.Attempt("utf-8", errors.New("bare quote"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.attempts.WithLabelValues("utf-8", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.attempts.WithLabelValues("latin1", OutcomeDecoded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.attempts.WithLabelValues("utf-8", OutcomeFatal)))
}

func TestRecorder_WiredIntoLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n\x93x\x94\n"), 0o644))

	r := NewRecorder()
	loader := ingest.NewLoader(
		nil,
		nil,
		ingest.WithObserver(r),
	)

	res := loader.Load(context.Background(), path, ingest.Delimited)
	require.True(t, res.Loaded())
	loader.Load(context.Background(), "x.txt", ingest.Delimited)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.loads.WithLabelValues("delimited", "loaded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.loads.WithLabelValues("delimited", "InvalidFormat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.attempts.WithLabelValues("cp1252", OutcomeDecoded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.attempts.WithLabelValues("latin1", OutcomeRejected)))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.Loaded(ingest.Spreadsheet, ingest.Result{Failure: &ingest.Failure{Kind: ingest.MissingDependency}}, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tabinspect_loads_total{kind="spreadsheet",result="MissingDependency"} 1`)
	assert.Contains(t, rec.Body.String(), "tabinspect_load_duration_seconds_bucket")
}
