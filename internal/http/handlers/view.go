package handlers

import (
	"time"

	"github.com/pribylovaa/news-portal-comments/internal/models"
	"github.com/pribylovaa/news-portal-comments/internal/store"
	"github.com/pribylovaa/news-portal-comments/internal/tree"
)

// commentView — узел дерева глазами конкретного зрителя.
type commentView struct {
	ID         string          `json:"id"`
	Content    string          `json:"content"`
	Author     *models.Author  `json:"author"`
	AuthorName string          `json:"author_name"`
	CreatedAt  time.Time       `json:"created_at"`
	Approved   bool            `json:"approved"`
	Upvotes    int             `json:"upvotes"`
	Downvotes  int             `json:"downvotes"`
	Score      int             `json:"score"`
	MyVote     models.VoteType `json:"my_vote"`
	Actions    []string        `json:"actions"`
	Replies    []commentView   `json:"replies"`
}

// threadView — ветка статьи: снапшот Store плюс действия зрителя.
type threadView struct {
	ArticleID string         `json:"article_id"`
	Sort      models.SortKey `json:"sort"`
	Version   uint64         `json:"version"`
	Loaded    bool           `json:"loaded"`
	Error     string         `json:"error,omitempty"`
	Total     int            `json:"total"`
	Actions   []string       `json:"actions"`
	Comments  []commentView  `json:"comments"`
}

// voteView — итог голосования вместе с обновлённой веткой.
type voteView struct {
	Upvotes   int             `json:"upvotes"`
	Downvotes int             `json:"downvotes"`
	MyVote    models.VoteType `json:"my_vote"`
	Thread    threadView      `json:"thread"`
}

func buildThread(s *store.Store) threadView {
	snap := s.Snapshot()

	return threadView{
		ArticleID: snap.ArticleID,
		Sort:      snap.Sort,
		Version:   snap.Version,
		Loaded:    snap.Loaded,
		Error:     store.Message(snap.Err),
		Total:     tree.Count(snap.Tree),
		Actions:   s.ActionsFor(nil).Names(),
		Comments:  buildList(s, snap.Tree),
	}
}

func buildList(s *store.Store, list []*models.Comment) []commentView {
	out := make([]commentView, 0, len(list))
	for _, c := range list {
		out = append(out, commentView{
			ID:         c.ID,
			Content:    c.Content,
			Author:     c.Author,
			AuthorName: c.AuthorName(),
			CreatedAt:  c.CreatedAt,
			Approved:   c.Approved,
			Upvotes:    c.Upvotes,
			Downvotes:  c.Downvotes,
			Score:      c.Score(),
			MyVote:     s.MyVote(c),
			Actions:    s.ActionsFor(c).Names(),
			Replies:    buildList(s, c.Replies),
		})
	}

	return out
}
