package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/news-portal-comments/internal/http/handlers"
	"github.com/pribylovaa/news-portal-comments/internal/http/middleware"
	"github.com/pribylovaa/news-portal-comments/internal/metrics"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(sessions handlers.Sessions, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний). Стек собирается через middleware.Chain
	// внутри chi, чтобы Metrics видел шаблон маршрута.
	stack := []middleware.Middleware{
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(opts.Metrics),
		middleware.AuthBearer(),          // Bearer токен в контекст для исходящих запросов к бэкенду
		middleware.Viewer(),              // X-User-Id / X-User-Role
		middleware.Timeout(opts.Timeout), // общий дедлайн запроса; <= 0 — без дедлайна
	}
	root.Use(func(next http.Handler) http.Handler {
		return middleware.Chain(next, stack...)
	})

	h := handlers.New(sessions)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Route("/articles/{article_id}", func(r chi.Router) {
		r.Get("/comments", h.FetchComments)
		r.Get("/thread", h.Thread)
		r.Put("/sort", h.SetSort)

		r.Post("/comments", h.PostComment)
		r.Put("/comments/{id}", h.UpdateComment)
		r.Delete("/comments/{id}", h.DeleteComment)
		r.Post("/comments/{id}/vote", h.VoteComment)
		r.Patch("/comments/{id}/approve", h.ToggleApproval)
	})
}
