package middleware

import (
	"context"
	"net/http"
	"strings"

	logctx "github.com/pribylovaa/news-portal-comments/internal/pkg/log"
	"github.com/pribylovaa/news-portal-comments/internal/store"
)

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"

	roleModerator = "moderator"
)

type viewerKey struct{}

// Viewer читает личность зрителя из заголовков, выставленных аутентифицирующим
// прокси: X-User-Id и X-User-Role (moderator). Без X-User-Id зритель анонимен,
// роль без id игнорируется.
func Viewer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := store.ViewerCapabilities{UserID: strings.TrimSpace(r.Header.Get(HeaderUserID))}
			if v.UserID != "" {
				v.Moderator = strings.EqualFold(strings.TrimSpace(r.Header.Get(HeaderUserRole)), roleModerator)
			}

			ctx := context.WithValue(r.Context(), viewerKey{}, v)
			if v.UserID != "" {
				ctx = logctx.With(ctx, "viewer_id", v.UserID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ViewerFrom — зритель из контекста; анонимный, если Viewer не отработал.
func ViewerFrom(ctx context.Context) store.ViewerCapabilities {
	v, _ := ctx.Value(viewerKey{}).(store.ViewerCapabilities)
	return v
}
