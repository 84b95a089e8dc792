package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pribylovaa/news-portal-comments/internal/gateway"
	"github.com/pribylovaa/news-portal-comments/internal/models"
	"github.com/pribylovaa/news-portal-comments/internal/pkg/log"
	"github.com/pribylovaa/news-portal-comments/internal/pkg/redact"
	"github.com/pribylovaa/news-portal-comments/internal/tree"
	"github.com/pribylovaa/news-portal-comments/internal/vote"
)

// Точечные правки дерева. Каждая сначала выполняется на бэкенде, затем
// применяется к снапшоту, актуальному на момент ответа.

// VoteOutcome — результат голосования: агрегаты бэкенда и новый голос зрителя.
type VoteOutcome struct {
	Tally models.Tally
	Mine  models.VoteType
}

// Post создаёт комментарий. Пустой parentID — корневой комментарий.
// Content локально не проверяется: пустой текст отвергает бэкенд (ErrValidation).
//
// Созданный узел становится последним в списке корней или в Replies родителя.
// Дерево не меняется до следующего Fetch, если:
//   - снапшот ещё ни разу не загружен;
//   - родителя нет в локальном снапшоте;
//   - узел (или его Replies) повторяет id, уже присутствующие в снапшоте.
func (s *Store) Post(ctx context.Context, content, parentID string) (*models.Comment, error) {
	const op = "store/mutations/Post"

	parentID = strings.TrimSpace(parentID)
	lg := log.From(ctx).With("op", op, "article_id", s.articleID, "parent_id", parentID, "content", redact.Content(content))

	created, err := s.gw.CreateComment(ctx, s.articleID, gateway.CreateCommentInput{
		Content:  content,
		ParentID: parentID,
	})
	if err != nil {
		err = mapGatewayError(ctx, op, err)
		s.observe("post", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch next, ok := tree.InsertUnder(s.tree, parentID, created); {
	case !s.loaded:
		lg.Warn("snapshot not loaded yet, insert skipped", "comment_id", created.ID)
	case !ok:
		lg.Warn("parent not in snapshot, insert skipped", "comment_id", created.ID)
	default:
		if err := tree.Validate(next); err != nil {
			lg.Warn("created comment conflicts with snapshot, insert skipped", "comment_id", created.ID, "err", err)
			break
		}
		s.commit(next)
	}

	s.observe("post", nil)

	return created, nil
}

// Update заменяет текст комментария id. Остальные узлы снапшота
// остаются теми же указателями.
func (s *Store) Update(ctx context.Context, id, content string) (*models.Comment, error) {
	const op = "store/mutations/Update"

	id = strings.TrimSpace(id)
	lg := log.From(ctx).With("op", op, "article_id", s.articleID, "comment_id", id, "content", redact.Content(content))

	if id == "" {
		lg.Warn("invalid argument: empty id")
		s.observe("update", ErrInvalidArgument)
		return nil, fmt.Errorf("%s: %w: empty id", op, ErrInvalidArgument)
	}

	updated, err := s.gw.UpdateComment(ctx, id, content)
	if err != nil {
		err = mapGatewayError(ctx, op, err)
		s.observe("update", err)
		return nil, err
	}

	// Текст, сохранённый сервером, главнее введённого.
	if updated.Content != "" {
		content = updated.Content
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := tree.MapContent(s.tree, id, content)
	if !ok {
		lg.Warn("comment not in snapshot, update skipped")
		s.observe("update", nil)
		return updated, nil
	}
	s.commit(next)
	s.observe("update", nil)

	return tree.Find(next, id), nil
}

// Delete удаляет комментарий id вместе со всем поддеревом ответов.
func (s *Store) Delete(ctx context.Context, id string) error {
	const op = "store/mutations/Delete"

	id = strings.TrimSpace(id)
	lg := log.From(ctx).With("op", op, "article_id", s.articleID, "comment_id", id)

	if id == "" {
		lg.Warn("invalid argument: empty id")
		s.observe("delete", ErrInvalidArgument)
		return fmt.Errorf("%s: %w: empty id", op, ErrInvalidArgument)
	}

	if err := s.gw.DeleteComment(ctx, id); err != nil {
		err = mapGatewayError(ctx, op, err)
		s.observe("delete", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if next, ok := tree.RemoveSubtree(s.tree, id); ok {
		s.commit(next)
	} else {
		lg.Warn("comment not in snapshot, delete skipped")
	}
	s.observe("delete", nil)

	return nil
}

// Vote обрабатывает клик зрителя direction (+1/-1) по комментарию id.
//
// На бэкенд уходит само направление клика. Новый голос зрителя вычисляется
// переходом vote.Next от голоса, известного в момент клика; к снапшоту на момент
// ответа применяется уже готовый результат вместе с агрегатами бэкенда.
// Перезагрузка, пришедшая во время запроса, не приводит к повторному переходу.
//
// Ошибки до запроса:
//   - ErrNoViewer — у Store нет идентификатора зрителя;
//   - ErrInvalidArgument — direction не +1/-1 или пустой id;
//   - ErrNotFound — узла нет в снапшоте.
func (s *Store) Vote(ctx context.Context, id string, direction models.VoteType) (VoteOutcome, error) {
	const op = "store/mutations/Vote"

	id = strings.TrimSpace(id)
	viewer := s.caps.ViewerID()
	lg := log.From(ctx).With("op", op, "article_id", s.articleID, "comment_id", id, "direction", direction.String())

	if viewer == "" {
		lg.Warn("vote without viewer")
		s.observe("vote", ErrNoViewer)
		return VoteOutcome{}, fmt.Errorf("%s: %w", op, ErrNoViewer)
	}
	if id == "" {
		lg.Warn("invalid argument: empty id")
		s.observe("vote", ErrInvalidArgument)
		return VoteOutcome{}, fmt.Errorf("%s: %w: empty id", op, ErrInvalidArgument)
	}
	if !direction.Valid() {
		lg.Warn("invalid argument: bad direction")
		s.observe("vote", ErrInvalidArgument)
		return VoteOutcome{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, vote.ErrInvalidDirection)
	}

	s.mu.RLock()
	node := tree.Find(s.tree, id)
	s.mu.RUnlock()

	if node == nil {
		lg.Warn("comment not in snapshot")
		s.observe("vote", ErrNotFound)
		return VoteOutcome{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	d, err := vote.Decide(node.Votes, viewer, direction)
	if err != nil {
		s.observe("vote", ErrInternal)
		return VoteOutcome{}, fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
	}

	tally, err := s.gw.Vote(ctx, id, direction)
	if err != nil {
		err = mapGatewayError(ctx, op, err)
		s.observe("vote", err)
		return VoteOutcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := VoteOutcome{Tally: tally, Mine: d.Next}

	next, ok := tree.MergeVoteTally(s.tree, id, tally, models.Vote{UserID: viewer, Type: d.Next})
	if !ok {
		lg.Warn("comment left snapshot during vote, merge skipped")
		s.observe("vote", nil)
		return out, nil
	}
	s.commit(next)
	s.observe("vote", nil)

	lg.Debug("vote applied", "prev", d.Prev.String(), "next", d.Next.String())

	return out, nil
}

// MyVote — голос зрителя за комментарий c (VoteNone для анонима).
func (s *Store) MyVote(c *models.Comment) models.VoteType {
	if c == nil {
		return models.VoteNone
	}

	viewer := s.caps.ViewerID()
	if viewer == "" {
		return models.VoteNone
	}

	return vote.Current(c.Votes, viewer)
}
