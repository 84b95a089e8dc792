package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/news-portal-comments/internal/gateway"
	"github.com/pribylovaa/news-portal-comments/internal/pkg/log"
)

var (
	// ErrNetwork — бэкенд недоступен или не ответил вовремя.
	ErrNetwork = errors.New("network failure")
	// ErrValidation — бэкенд отверг полезную нагрузку (пустой content и т.п.).
	ErrValidation = errors.New("validation failure")
	// ErrUnauthorized — бэкенд отказал в доступе (401/403).
	ErrUnauthorized = errors.New("authorization failure")
	// ErrNotFound — комментарий или статья отсутствуют.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument — запрос отклонён локально, до обращения к бэкенду.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoViewer — голосование без идентификатора зрителя.
	ErrNoViewer = errors.New("viewer identity required")
	// ErrStale — ответ fetch устарел: после него уже выдан более новый fetch.
	ErrStale = errors.New("stale response")
	// ErrInternal — неожиданный ответ бэкенда или нарушение инвариантов дерева.
	ErrInternal = errors.New("internal")
)

// Result — размеченный результат операции для view-слоя:
// {Success: true, Value} либо {Success: false, Message}.
type Result[T any] struct {
	Success bool   `json:"success"`
	Value   T      `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

// ResultOf собирает Result из пары (value, err).
func ResultOf[T any](v T, err error) Result[T] {
	if err != nil {
		return Result[T]{Message: Message(err)}
	}

	return Result[T]{Success: true, Value: v}
}

// Message — человекочитаемое описание ошибки операции.
// Сообщение бэкенда, если оно есть, имеет приоритет.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var se *gateway.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}

	switch {
	case errors.Is(err, ErrNetwork):
		return "comments service is unreachable, try again"
	case errors.Is(err, ErrValidation):
		return "comment was rejected"
	case errors.Is(err, ErrUnauthorized):
		return "not allowed"
	case errors.Is(err, ErrNotFound):
		return "comment not found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid request"
	case errors.Is(err, ErrNoViewer):
		return "sign in to vote"
	case errors.Is(err, ErrStale):
		return "superseded by a newer request"
	default:
		return "internal error"
	}
}

// Kind — короткое имя класса ошибки (для метрик и кода ответа). nil -> "ok".
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrNoViewer):
		return "no_viewer"
	case errors.Is(err, ErrStale):
		return "stale"
	default:
		return "internal"
	}
}

// mapGatewayError переводит ошибку gateway в ошибку Store и логирует её.
// Исходная ошибка остаётся в цепочке, чтобы Message мог достать текст бэкенда.
func mapGatewayError(ctx context.Context, op string, err error) error {
	lg := log.From(ctx).With("op", op)

	switch {
	case errors.Is(err, gateway.ErrValidation):
		lg.Warn("backend rejected payload", "err", err)
		return fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	case errors.Is(err, gateway.ErrUnauthorized):
		lg.Warn("backend denied access", "err", err)
		return fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, err)
	case errors.Is(err, gateway.ErrNotFound):
		lg.Warn("not found on backend", "err", err)
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case errors.Is(err, gateway.ErrNetwork):
		lg.Error("backend unreachable", "err", err)
		return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
	default:
		lg.Error("unexpected backend error", "err", err)
		return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
	}
}
