package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/news-portal-comments/internal/gateway/transport"
)

// AuthBearer извлекает Bearer-токен из Authorization и кладёт "сырой" токен
// в контекст по ключу transport.CtxAuthToken. Токен не проверяется:
// он уходит в бэкенд как есть.
func AuthBearer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "

			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, prefix) {
				if token := strings.TrimSpace(auth[len(prefix):]); token != "" {
					r = r.WithContext(context.WithValue(r.Context(), transport.CtxAuthToken, token))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
