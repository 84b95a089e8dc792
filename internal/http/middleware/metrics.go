package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/news-portal-comments/internal/metrics"
)

// Metrics учитывает запрос по шаблону маршрута chi (/articles/{article_id}/comments),
// запросы мимо маршрутов — как "unmatched".
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			start := time.Now()

			next.ServeHTTP(sw, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
			}

			m.ObserveHTTP(r.Method, route, sw.Status(), time.Since(start))
		})
	}
}
