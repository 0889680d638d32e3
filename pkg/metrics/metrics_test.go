package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveEvaluation(t *testing.T) {
	rec := NewRecorder(nil)

	rec.ObserveEvaluation(true, false, time.Millisecond)
	rec.ObserveEvaluation(true, true, time.Millisecond)
	rec.ObserveEvaluation(false, false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.evaluations.WithLabelValues("match", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.evaluations.WithLabelValues("match", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.evaluations.WithLabelValues("no_match", "false")))
}

func TestObserveCacheLookup(t *testing.T) {
	rec := NewRecorder(nil)

	rec.ObserveCacheLookup(true)
	rec.ObserveCacheLookup(true)
	rec.ObserveCacheLookup(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.cacheLookups.WithLabelValues("miss")))
}

func TestObserveScanAndSkips(t *testing.T) {
	rec := NewRecorder(nil)

	rec.ObserveScan(42, 50*time.Millisecond)
	rec.ObserveContentSkip(SkipBinary)
	rec.ObserveContentSkip(SkipOversize)
	rec.ObserveContentSkip(SkipBinary)

	assert.Equal(t, 42.0, testutil.ToFloat64(rec.filesScanned))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.contentSkips.WithLabelValues("binary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.contentSkips.WithLabelValues("oversize")))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder

	rec.ObserveEvaluation(true, true, time.Second)
	rec.ObserveCacheLookup(true)
	rec.ObserveScan(1, time.Second)
	rec.ObserveContentSkip(SkipBinary)

	assert.NotNil(t, rec.Gatherer())
	assert.NotNil(t, rec.Handler())
}

func TestHandlerServesMetrics(t *testing.T) {
	rec := NewRecorder(nil)
	rec.ObserveCacheLookup(true)

	rr := httptest.NewRecorder()
	rec.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rr.Code)
	body, err := io.ReadAll(rr.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "rulescan_cache_lookups_total")
}
