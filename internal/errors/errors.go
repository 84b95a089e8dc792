// errors стандартизирует ответы об ошибках HTTP-слоя comments-engine.
// На вход он принимает ошибку операции Store, а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message (сообщение бэкенда, если оно есть);
//   - стабильный машиночитаемый code.
//
// Формат тела совпадает с неуспешным store.Result: {success:false, message, code, request_id}.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/news-portal-comments/internal/gateway"
	"github.com/pribylovaa/news-portal-comments/internal/store"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

var (
	// ErrBadRequest — тело или параметры запроса не разбираются.
	ErrBadRequest = errors.New("bad request")
	// ErrForbidden — действие не входит в набор, выданный зрителю.
	ErrForbidden = errors.New("action not allowed")
)

// ErrorResponse — тело ответа об ошибке.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и тело ответа.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal;
//   - ErrBadRequest, store.ErrInvalidArgument -> 400;
//   - store.ErrNoViewer -> 401; store.ErrUnauthorized -> 401 или 403 по статусу бэкенда;
//   - ErrForbidden -> 403; store.ErrNotFound -> 404; store.ErrStale -> 409;
//   - store.ErrValidation -> 422;
//   - store.ErrNetwork -> 499 (клиент ушёл), 504 (дедлайн) или 503;
//   - прочее -> 500/internal без деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, ErrorResponse{Code: "internal", Message: "internal error"}
	}

	status, code := classify(err)

	msg := store.Message(err)
	switch {
	case errors.Is(err, ErrBadRequest):
		msg = "invalid request"
	case errors.Is(err, ErrForbidden):
		msg = "action not allowed"
	case status == http.StatusInternalServerError:
		msg = "internal error"
	}

	return status, ErrorResponse{Code: code, Message: msg}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, store.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "permission_denied"
	case errors.Is(err, store.ErrNoViewer):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, store.ErrUnauthorized):
		var se *gateway.StatusError
		if errors.As(err, &se) && se.Status == http.StatusUnauthorized {
			return http.StatusUnauthorized, "unauthenticated"
		}
		return http.StatusForbidden, "permission_denied"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, store.ErrStale):
		return http.StatusConflict, "stale"
	case errors.Is(err, store.ErrValidation):
		return http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, store.ErrNetwork):
		switch {
		case errors.Is(err, context.Canceled):
			return StatusClientClosedRequest, "canceled"
		case errors.Is(err, context.DeadlineExceeded):
			return http.StatusGatewayTimeout, "deadline_exceeded"
		default:
			return http.StatusServiceUnavailable, "unavailable"
		}
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
