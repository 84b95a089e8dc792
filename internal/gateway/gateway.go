// Package gateway описывает контракт бэкенда комментариев, через который
// Store выполняет все операции, и таксономию его ошибок.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/news-portal-comments/internal/models"
)

var (
	// ErrNetwork — сбой транспорта или таймаут.
	ErrNetwork = errors.New("network failure")
	// ErrValidation — бэкенд отверг полезную нагрузку (например, пустой content).
	ErrValidation = errors.New("validation failure")
	// ErrUnauthorized — 401/403 от бэкенда.
	ErrUnauthorized = errors.New("authorization failure")
	// ErrNotFound — комментарий или статья отсутствуют.
	ErrNotFound = errors.New("not found")
	// ErrUpstream — неожиданный статус ответа (5xx и прочее).
	ErrUpstream = errors.New("upstream failure")
	// ErrMalformedResponse — тело ответа не разбирается.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError — ошибка с HTTP-статусом и сообщением бэкенда.
// Kind — один из сентинелов пакета; errors.Is(err, ErrValidation) работает через Unwrap.
type StatusError struct {
	Status  int
	Code    string
	Message string
	Kind    error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.Kind, e.Status)
	}

	return fmt.Sprintf("%v (status %d): %s", e.Kind, e.Status, e.Message)
}

func (e *StatusError) Unwrap() error { return e.Kind }

// CreateCommentInput — параметры создания комментария.
// Пустой ParentID — корневой комментарий. Content локально не проверяется.
type CreateCommentInput struct {
	Content  string
	ParentID string
}

// Gateway — операции бэкенда комментариев.
// Реализация обязана возвращать ошибки, совместимые через errors.Is с сентинелами пакета.
type Gateway interface {
	// ListComments возвращает всё дерево комментариев статьи, упорядоченное сервером по sort.
	ListComments(ctx context.Context, articleID string, sort models.SortKey) (models.Tree, error)

	// CreateComment создаёт комментарий или ответ и возвращает его в виде, сохранённом сервером.
	CreateComment(ctx context.Context, articleID string, in CreateCommentInput) (*models.Comment, error)

	// UpdateComment заменяет текст комментария.
	UpdateComment(ctx context.Context, id, content string) (*models.Comment, error)

	// DeleteComment удаляет комментарий.
	DeleteComment(ctx context.Context, id string) error

	// Vote отправляет клик direction (+1/-1) и возвращает агрегаты голосов узла.
	Vote(ctx context.Context, id string, direction models.VoteType) (models.Tally, error)

	// ToggleApproval переключает флаг модерации комментария.
	ToggleApproval(ctx context.Context, id string) error
}
