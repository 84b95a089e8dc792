package transport

import (
	"context"
	"net/http"
)

type CtxKey string

const (
	CtxRequestID CtxKey = "request_id"
	CtxAuthToken CtxKey = "auth_token"
	CtxOperation CtxKey = "backend_op"
)

// WithOperation помечает контекст именем операции бэкенда (для логов и метрик).
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, CtxOperation, op)
}

// Operation — имя операции из контекста или "unknown".
func Operation(ctx context.Context) string {
	if v, _ := ctx.Value(CtxOperation).(string); v != "" {
		return v
	}

	return "unknown"
}

// WithMetadata — добавляет в исходящий запрос заголовки:
//   - X-Request-Id (если есть в контексте),
//   - Authorization: Bearer <token> (если есть в контексте),
//   - User-Agent (если передан параметром).
//
// Уже выставленные вызывающим заголовки не перезаписываются.
func WithMetadata(userAgent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			ctx := r.Context()
			r = r.Clone(ctx)

			if rid, _ := ctx.Value(CtxRequestID).(string); rid != "" && r.Header.Get("X-Request-Id") == "" {
				r.Header.Set("X-Request-Id", rid)
			}
			if tok, _ := ctx.Value(CtxAuthToken).(string); tok != "" && r.Header.Get("Authorization") == "" {
				r.Header.Set("Authorization", "Bearer "+tok)
			}
			if userAgent != "" {
				r.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(r)
		})
	}
}
