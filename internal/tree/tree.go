// Package tree — чистые функции над снапшотом дерева комментариев.
//
// Ни одна функция не меняет входное дерево: результат — новое дерево, в котором
// поддеревья вне пути к изменённому узлу переиспользуются по ссылке, а узлы на пути
// (предки изменённого узла) копируются поверхностно.
//
// Поиск узла — обход в глубину по корневому списку, O(размер дерева), индекса по id нет.
package tree

import (
	"errors"
	"fmt"

	"github.com/pribylovaa/news-portal-comments/internal/models"
	"github.com/pribylovaa/news-portal-comments/internal/vote"
)

var (
	// ErrNilNode — в дереве встретился nil-узел.
	ErrNilNode = errors.New("nil node")
	// ErrDuplicateID — id встречается в дереве больше одного раза.
	ErrDuplicateID = errors.New("duplicate comment id")
	// ErrSharedNode — один и тот же узел достижим дважды (цикл или общий потомок).
	ErrSharedNode = errors.New("node reachable twice")
	// ErrDuplicateVote — у узла несколько голосов одного пользователя.
	ErrDuplicateVote = errors.New("duplicate vote record")
)

// InsertUnder добавляет node последним элементом в Replies узла parentID.
// Пустой parentID — вставка последним корнем.
// Второе значение false, если родитель не найден; дерево тогда возвращается как есть.
func InsertUnder(t models.Tree, parentID string, node *models.Comment) (models.Tree, bool) {
	if parentID == "" {
		out := make(models.Tree, len(t), len(t)+1)
		copy(out, t)
		return append(out, node), true
	}

	list, ok := rewrite(t, parentID, func(c models.Comment) *models.Comment {
		replies := make([]*models.Comment, len(c.Replies), len(c.Replies)+1)
		copy(replies, c.Replies)
		c.Replies = append(replies, node)
		return &c
	})

	return models.Tree(list), ok
}

// RemoveSubtree удаляет узел id вместе со всеми его потомками (каскадно).
// Узел отфильтровывается из того списка, где он лежит, до спуска в соседей,
// поэтому его Replies пропадают вместе с ним.
func RemoveSubtree(t models.Tree, id string) (models.Tree, bool) {
	list, ok := removeFrom(t, id)
	return models.Tree(list), ok
}

// MapContent заменяет Content у узла id; остальные поля и узлы не трогаются.
func MapContent(t models.Tree, id, content string) (models.Tree, bool) {
	list, ok := rewrite(t, id, func(c models.Comment) *models.Comment {
		c.Content = content
		return &c
	})

	return models.Tree(list), ok
}

// MergeVoteTally записывает в узел id агрегаты от бэкенда и сверяет множество Votes
// с новым голосом текущего пользователя: mine.Type == VoteNone удаляет его запись,
// иначе запись вставляется или заменяется.
func MergeVoteTally(t models.Tree, id string, tally models.Tally, mine models.Vote) (models.Tree, bool) {
	list, ok := rewrite(t, id, func(c models.Comment) *models.Comment {
		c.Upvotes = tally.Upvotes
		c.Downvotes = tally.Downvotes
		c.Votes = vote.Reconcile(c.Votes, mine.UserID, mine.Type)
		return &c
	})

	return models.Tree(list), ok
}

// Find возвращает узел с указанным id или nil.
func Find(t models.Tree, id string) *models.Comment {
	var found *models.Comment
	Walk(t, func(c *models.Comment, _ int) bool {
		if c.ID == id {
			found = c
			return false
		}
		return true
	})

	return found
}

// Walk обходит дерево в глубину (pre-order). depth корня = 0.
// Обход прекращается, как только fn вернёт false.
func Walk(t models.Tree, fn func(c *models.Comment, depth int) bool) {
	walk(t, 0, fn)
}

func walk(list []*models.Comment, depth int, fn func(*models.Comment, int) bool) bool {
	for _, c := range list {
		if c == nil {
			continue
		}
		if !fn(c, depth) {
			return false
		}
		if !walk(c.Replies, depth+1, fn) {
			return false
		}
	}

	return true
}

// Count — общее число узлов в дереве.
func Count(t models.Tree) int {
	n := 0
	Walk(t, func(*models.Comment, int) bool {
		n++
		return true
	})

	return n
}

// Validate проверяет инварианты дерева: нет nil-узлов и циклов, каждый узел
// достижим ровно один раз, id уникальны, у пользователя не больше одного голоса на узел.
func Validate(t models.Tree) error {
	seenNodes := make(map[*models.Comment]struct{})
	seenIDs := make(map[string]struct{})

	var check func(list []*models.Comment) error
	check = func(list []*models.Comment) error {
		for _, c := range list {
			if c == nil {
				return ErrNilNode
			}
			if _, ok := seenNodes[c]; ok {
				return fmt.Errorf("%w: %s", ErrSharedNode, c.ID)
			}
			seenNodes[c] = struct{}{}

			if _, ok := seenIDs[c.ID]; ok {
				return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
			}
			seenIDs[c.ID] = struct{}{}

			voters := make(map[string]struct{}, len(c.Votes))
			for _, v := range c.Votes {
				if _, ok := voters[v.UserID]; ok {
					return fmt.Errorf("%w: comment %s, user %s", ErrDuplicateVote, c.ID, v.UserID)
				}
				voters[v.UserID] = struct{}{}
			}

			if err := check(c.Replies); err != nil {
				return err
			}
		}
		return nil
	}

	return check(t)
}

// rewrite ищет узел id в глубину и возвращает новый список, где узел заменён
// результатом fn, а его предки скопированы. fn получает копию узла по значению.
func rewrite(list []*models.Comment, id string, fn func(models.Comment) *models.Comment) ([]*models.Comment, bool) {
	for i, c := range list {
		if c == nil {
			continue
		}
		if c.ID == id {
			return replaceAt(list, i, fn(*c)), true
		}
		if sub, ok := rewrite(c.Replies, id, fn); ok {
			cp := *c
			cp.Replies = sub
			return replaceAt(list, i, &cp), true
		}
	}

	return list, false
}

func removeFrom(list []*models.Comment, id string) ([]*models.Comment, bool) {
	for i, c := range list {
		if c != nil && c.ID == id {
			out := make([]*models.Comment, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), true
		}
	}

	for i, c := range list {
		if c == nil {
			continue
		}
		if sub, ok := removeFrom(c.Replies, id); ok {
			cp := *c
			cp.Replies = sub
			return replaceAt(list, i, &cp), true
		}
	}

	return list, false
}

func replaceAt(list []*models.Comment, i int, c *models.Comment) []*models.Comment {
	out := make([]*models.Comment, len(list))
	copy(out, list)
	out[i] = c
	return out
}
