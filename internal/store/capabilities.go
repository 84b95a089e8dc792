package store

import (
	"context"

	"github.com/pribylovaa/news-portal-comments/internal/models"
)

// Capabilities — политика зрителя: какие действия над узлом ему показывать.
// Store доступ не проверяет: он лишь решает, какие колбэки выдать в Actions.
type Capabilities interface {
	// ViewerID — идентификатор зрителя; пустой — аноним.
	ViewerID() string
	CanReply() bool
	CanVote(c *models.Comment) bool
	CanEdit(c *models.Comment) bool
	CanDelete(c *models.Comment) bool
	CanModerate(c *models.Comment) bool
}

// ViewerCapabilities — политика по умолчанию:
//   - аутентифицированный зритель отвечает и голосует;
//   - автор правит и удаляет свои комментарии;
//   - модератор удаляет любые комментарии и переключает одобрение.
type ViewerCapabilities struct {
	UserID    string
	Moderator bool
}

var _ Capabilities = ViewerCapabilities{}

func (v ViewerCapabilities) ViewerID() string { return v.UserID }

func (v ViewerCapabilities) CanReply() bool { return v.UserID != "" }

func (v ViewerCapabilities) CanVote(c *models.Comment) bool { return v.UserID != "" && c != nil }

func (v ViewerCapabilities) CanEdit(c *models.Comment) bool {
	return v.UserID != "" && c != nil && c.Author != nil && c.Author.ID == v.UserID
}

func (v ViewerCapabilities) CanDelete(c *models.Comment) bool {
	return v.CanEdit(c) || (v.Moderator && c != nil)
}

func (v ViewerCapabilities) CanModerate(c *models.Comment) bool { return v.Moderator && c != nil }

// Actions — набор операций, доступных зрителю над одним узлом.
// Неразрешённые операции равны nil.
type Actions struct {
	Reply          func(ctx context.Context, content string) (*models.Comment, error)
	Edit           func(ctx context.Context, content string) (*models.Comment, error)
	Delete         func(ctx context.Context) error
	Vote           func(ctx context.Context, direction models.VoteType) (VoteOutcome, error)
	ToggleApproval func(ctx context.Context) error
}

// Names — имена доступных действий в фиксированном порядке.
func (a Actions) Names() []string {
	out := make([]string, 0, 5)
	if a.Reply != nil {
		out = append(out, "reply")
	}
	if a.Edit != nil {
		out = append(out, "edit")
	}
	if a.Delete != nil {
		out = append(out, "delete")
	}
	if a.Vote != nil {
		out = append(out, "vote")
	}
	if a.ToggleApproval != nil {
		out = append(out, "approve")
	}

	return out
}

// ActionsFor возвращает операции над узлом c, разрешённые политикой Store.
// c == nil — уровень статьи: доступен только Reply (корневой комментарий).
func (s *Store) ActionsFor(c *models.Comment) Actions {
	var a Actions

	if c == nil {
		if s.caps.CanReply() {
			a.Reply = func(ctx context.Context, content string) (*models.Comment, error) {
				return s.Post(ctx, content, "")
			}
		}
		return a
	}

	id := c.ID
	if s.caps.CanReply() {
		a.Reply = func(ctx context.Context, content string) (*models.Comment, error) {
			return s.Post(ctx, content, id)
		}
	}
	if s.caps.CanEdit(c) {
		a.Edit = func(ctx context.Context, content string) (*models.Comment, error) {
			return s.Update(ctx, id, content)
		}
	}
	if s.caps.CanDelete(c) {
		a.Delete = func(ctx context.Context) error {
			return s.Delete(ctx, id)
		}
	}
	if s.caps.CanVote(c) {
		a.Vote = func(ctx context.Context, direction models.VoteType) (VoteOutcome, error) {
			return s.Vote(ctx, id, direction)
		}
	}
	if s.caps.CanModerate(c) {
		a.ToggleApproval = func(ctx context.Context) error {
			return s.ToggleApproval(ctx, id)
		}
	}

	return a
}
