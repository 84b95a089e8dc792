package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/news-portal-comments/internal/gateway/transport"
)

// RequestID обеспечивает наличие X-Request-Id:
//  1. читает заголовок X-Request-Id, если есть;
//  2. иначе генерирует UUID;
//  3. кладёт id в Response Header, Request Header и в контекст по ключу
//     transport.CtxRequestID (его читает исходящий транспорт к бэкенду).
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = uuid.NewString()
				// для errors.WriteError.
				r.Header.Set("X-Request-Id", id)
			}

			w.Header().Set("X-Request-Id", id)

			ctx := context.WithValue(r.Context(), transport.CtxRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
