package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/news-portal-comments/internal/metrics"
	"github.com/pribylovaa/news-portal-comments/internal/pkg/log"
	"github.com/pribylovaa/news-portal-comments/internal/pkg/redact"
)

// Logging — логирование исходящих запросов.
// Поведение:
//   - берёт X-Request-Id из заголовка (или генерирует UUID и добавляет);
//   - пишет одну итоговую запись уровня Info: msg="backend", op, method, path, status, dur;
//     транспортная ошибка — уровень Warn со status=0.
//
// Логгер берётся из контекста запроса (pkg/log), base — запасной.
// Безопасность: тело не логируется, токен заменяется заглушкой (pkg/redact).
func Logging(base *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			rid := r.Header.Get("X-Request-Id")
			if rid == "" {
				rid = uuid.NewString()
				r = r.Clone(r.Context())
				r.Header.Set("X-Request-Id", rid)
			}

			l := log.From(r.Context())
			if l == slog.Default() && base != nil {
				l = base
			}

			resp, err := next.RoundTrip(r)

			attrs := []slog.Attr{
				slog.String("request_id", rid),
				slog.String("op", Operation(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("dur", time.Since(start)),
			}
			if tok, ok := r.Context().Value(CtxAuthToken).(string); ok && tok != "" {
				attrs = append(attrs, slog.String("auth", redact.Token(tok)))
			}
			if err != nil {
				attrs = append(attrs, slog.Int("status", 0), slog.String("err", err.Error()))
				l.LogAttrs(r.Context(), slog.LevelWarn, "backend", attrs...)
				return nil, err
			}

			attrs = append(attrs, slog.Int("status", resp.StatusCode))
			l.LogAttrs(r.Context(), slog.LevelInfo, "backend", attrs...)

			return resp, nil
		})
	}
}

// Metrics — учёт исходящих запросов в prometheus по операции и коду ответа.
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			code := 0
			if err == nil {
				code = resp.StatusCode
			}
			m.ObserveBackend(Operation(r.Context()), code, time.Since(start))

			return resp, err
		})
	}
}
