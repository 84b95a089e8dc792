package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBackend("fetch", 200, 10*time.Millisecond)
	m.ObserveBackend("fetch", 200, 20*time.Millisecond)
	m.ObserveBackend("vote", 0, time.Millisecond)
	m.IncStoreOp("post", "ok")
	m.IncStaleFetch()
	m.SetSessions(3)
	m.ObserveHTTP("GET", "/articles/{article_id}/comments", 200, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("fetch", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("vote", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("post", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.staleFetches))
	require.Equal(t, 3.0, testutil.ToFloat64(m.sessions))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/articles/{article_id}/comments", "200")))

	require.Equal(t, 2, testutil.CollectAndCount(m.backendDuration))
}

// nil-получатель — no-op, без паники.
func TestMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveBackend("fetch", 200, time.Millisecond)
		m.IncStoreOp("post", "ok")
		m.IncStaleFetch()
		m.SetSessions(1)
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
}
