package console

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshotAggregates(t *testing.T) {
	m := NewMetricsService()

	m.ObserveRequest(http.MethodGet, "/api/v3/accounts/students", 200, 10*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/api/v3/bulk/submit", 202, 30*time.Millisecond)
	m.RecordJobTracked()
	m.RecordJobCompleted()
	m.RecordPollTick()
	m.RecordUploadProcessed()

	snap := m.Snapshot()
	require.Equal(t, uint64(2), snap.RequestsTotal)
	require.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.001)
	require.Equal(t, uint64(1), snap.JobsTracked)
	require.Equal(t, uint64(1), snap.JobsCompleted)
	require.Equal(t, uint64(1), snap.PollTicks)
	require.Equal(t, uint64(1), snap.UploadsProcessed)
	require.False(t, snap.GeneratedAt.IsZero())
}

func TestMetricsServiceCacheHitRatio(t *testing.T) {
	m := NewMetricsService()

	m.RecordCacheLookup(false)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(true)

	snap := m.Snapshot()
	require.Equal(t, uint64(3), snap.CacheHits)
	require.Equal(t, uint64(1), snap.CacheMisses)
	require.InDelta(t, 0.75, snap.CacheHitRatio, 0.001)
}

func TestMetricsServiceHandlerExposesRegistry(t *testing.T) {
	m := NewMetricsService()
	m.ObserveRequest(http.MethodGet, "/api/v3/accounts/students", 200, 5*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "console_outbound_requests_total")
	require.Contains(t, string(body), "console_poll_ticks_total")
	require.Contains(t, string(body), "console_goroutines")
}

func TestMetricsServiceNilReceiverIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveRequest(http.MethodGet, "/", 200, time.Millisecond)
	m.RecordPollTick()
	m.RecordJobTracked()
	m.RecordJobCompleted()
	m.RecordJobFailed()
	m.RecordJobStale()
	m.RecordUploadProcessed()
	m.RecordCacheLookup(true)
}
