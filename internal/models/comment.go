// Package models содержит доменные сущности движка комментариев.
package models

import (
	"fmt"
	"time"
)

// DeletedAuthorName — подпись вместо автора, если пользователь удалён.
const DeletedAuthorName = "[deleted user]"

// Author — краткая карточка пользователя для отображения рядом с комментарием.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// VoteType — направление голоса. VoteNone означает отсутствие голоса.
type VoteType int8

const (
	VoteDown VoteType = -1
	VoteNone VoteType = 0
	VoteUp   VoteType = 1
)

// Valid сообщает, является ли значение допустимым направлением клика (+1/-1).
func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

func (v VoteType) String() string {
	switch v {
	case VoteUp:
		return "up"
	case VoteDown:
		return "down"
	default:
		return "none"
	}
}

// Vote — голос одного пользователя за комментарий.
// Инвариант: в Comment.Votes не больше одной записи на пользователя.
type Vote struct {
	UserID string   `json:"user_id"`
	Type   VoteType `json:"vote_type"`
}

// Tally — агрегированные счётчики голосов, которые возвращает бэкенд.
type Tally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// Comment — узел дерева комментариев.
// Важно:
//   - ID уникален в пределах статьи, формат непрозрачен для движка;
//   - Author == nil — автор удалён (см. AuthorName);
//   - CreatedAt не меняется после создания;
//   - Replies принадлежат узлу эксклюзивно, обратных ссылок нет.
//
// Узлы снапшота считаются неизменяемыми: любые правки делаются через пакет tree,
// который возвращает новое дерево с переиспользованием нетронутых поддеревьев.
type Comment struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Author    *Author    `json:"author"`
	CreatedAt time.Time  `json:"created_at"`
	Approved  bool       `json:"approved"`
	Upvotes   int        `json:"upvotes"`
	Downvotes int        `json:"downvotes"`
	Votes     []Vote     `json:"votes"`
	Replies   []*Comment `json:"replies"`
}

// AuthorName возвращает имя автора либо DeletedAuthorName.
func (c *Comment) AuthorName() string {
	if c == nil || c.Author == nil {
		return DeletedAuthorName
	}

	return c.Author.Name
}

// Score — разница голосов «за» и «против».
func (c *Comment) Score() int {
	return c.Upvotes - c.Downvotes
}

// Tree — упорядоченный список корневых комментариев одной статьи.
type Tree []*Comment

// SortKey — ключ сортировки ветки. Сортирует сервер, локально порядок не меняется.
type SortKey string

const (
	SortMostLiked   SortKey = "most-liked"
	SortMostReplies SortKey = "most-replies"
	SortNewest      SortKey = "newest"
	SortOldest      SortKey = "oldest"
)

// ParseSortKey проверяет строку и приводит её к SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortMostLiked, SortMostReplies, SortNewest, SortOldest:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}
