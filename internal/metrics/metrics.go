// Package metrics — prometheus-коллекторы движка комментариев.
//
// Все методы безопасны для nil-получателя: без метрик (в тестах) вызовы — no-op.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "comments_engine"

// Metrics агрегирует коллекторы всех слоёв.
type Metrics struct {
	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	storeOps        *prometheus.CounterVec
	staleFetches    prometheus.Counter
	sessions        prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New регистрирует коллекторы в reg. Для глобального реестра — prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		backendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Outgoing requests to the comments backend by operation and status code.",
		}, []string{"op", "code"}),
		backendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of outgoing requests to the comments backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		storeOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Comment store operations by operation and result.",
		}, []string{"op", "result"}),
		staleFetches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "stale_fetches_total",
			Help:      "Fetch responses discarded because a newer fetch was issued.",
		}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "stores",
			Help:      "Live per-viewer comment stores.",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "View-layer API requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of view-layer API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveBackend учитывает исходящий запрос. code == 0 — транспортная ошибка.
func (m *Metrics) ObserveBackend(op string, code int, dur time.Duration) {
	if m == nil {
		return
	}

	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}

	m.backendRequests.WithLabelValues(op, label).Inc()
	m.backendDuration.WithLabelValues(op).Observe(dur.Seconds())
}

// IncStoreOp учитывает операцию Store с результатом result ("ok", "network", ...).
func (m *Metrics) IncStoreOp(op, result string) {
	if m == nil {
		return
	}

	m.storeOps.WithLabelValues(op, result).Inc()
}

// IncStaleFetch учитывает отброшенный устаревший ответ fetch.
func (m *Metrics) IncStaleFetch() {
	if m == nil {
		return
	}

	m.staleFetches.Inc()
}

// SetSessions выставляет число живых Store в реестре.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}

	m.sessions.Set(float64(n))
}

// ObserveHTTP учитывает входящий запрос view-слоя.
func (m *Metrics) ObserveHTTP(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}

	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(dur.Seconds())
}
