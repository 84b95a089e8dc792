package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pribylovaa/news-portal-comments/internal/gateway/transport"
	logctx "github.com/pribylovaa/news-portal-comments/internal/pkg/log"
)

// Timeout — общий дедлайн входящего запроса. Тот же контекст уходит во все
// вызовы бэкенда, поэтому цепочка Store -> gateway укладывается в d целиком.
// Правила те же, что у transport.WithTimeout: d <= 0 или уже выставленный
// дедлайн оставляют контекст как есть.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := transport.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				logctx.From(ctx).Warn("request deadline exceeded", "path", r.URL.Path, "timeout", d)
			}
		})
	}
}
