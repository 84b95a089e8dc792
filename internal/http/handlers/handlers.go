package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/news-portal-comments/internal/errors"
	"github.com/pribylovaa/news-portal-comments/internal/http/middleware"
	"github.com/pribylovaa/news-portal-comments/internal/store"
)

// Sessions — источник Store для пары (зритель, статья).
type Sessions interface {
	Get(viewer store.ViewerCapabilities, articleID string) (*store.Store, error)
}

// Handlers агрегирует зависимости обработчиков.
type Handlers struct {
	Sessions Sessions
}

func New(s Sessions) *Handlers {
	return &Handlers{Sessions: s}
}

// storeFor — Store текущего зрителя для статьи из URL.
func (h *Handlers) storeFor(r *http.Request) (*store.Store, error) {
	articleID := strings.TrimSpace(chi.URLParam(r, "article_id"))
	if articleID == "" {
		return nil, fmt.Errorf("%w: empty article_id", apierrors.ErrBadRequest)
	}

	return h.Sessions.Get(middleware.ViewerFrom(r.Context()), articleID)
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %w", apierrors.ErrBadRequest, err)
	}

	return nil
}
