package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/news-portal-comments/internal/errors"
	"github.com/pribylovaa/news-portal-comments/internal/models"
	"github.com/pribylovaa/news-portal-comments/internal/store"
	"github.com/pribylovaa/news-portal-comments/internal/tree"
)

type postCommentRequest struct {
	Content  string `json:"content"`
	ParentID string `json:"parent_id"`
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

type voteRequest struct {
	Direction models.VoteType `json:"direction"`
}

type setSortRequest struct {
	Sort string `json:"sort"`
}

// FetchComments — GET /articles/{article_id}/comments?sort=
// Загружает ветку с бэкенда; без sort — текущий ключ сессии.
func (h *Handlers) FetchComments(w http.ResponseWriter, r *http.Request) {
	s, err := h.storeFor(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	sort := models.SortKey(strings.TrimSpace(r.URL.Query().Get("sort")))
	if _, err := s.Fetch(r.Context(), sort); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, store.ResultOf(buildThread(s), nil))
}

// Thread — GET /articles/{article_id}/thread
// Текущий снапшот сессии без обращения к бэкенду.
func (h *Handlers) Thread(w http.ResponseWriter, r *http.Request) {
	s, err := h.storeFor(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, store.ResultOf(buildThread(s), nil))
}

// PostComment — POST /articles/{article_id}/comments {content, parent_id}.
func (h *Handlers) PostComment(w http.ResponseWriter, r *http.Request) {
	s, err := h.storeFor(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in postCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	// Родителя может не быть в снапшоте: ответ всё равно уходит на бэкенд.
	var parent *models.Comment
	if id := strings.TrimSpace(in.ParentID); id != "" {
		if parent = tree.Find(s.Snapshot().Tree, id); parent == nil {
			parent = &models.Comment{ID: id}
		}
	}

	reply := s.ActionsFor(parent).Reply
	if reply == nil {
		apierrors.WriteError(w, r, apierrors.ErrForbidden)
		return
	}

	if _, err := reply(r.Context(), in.Content); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, store.ResultOf(buildThread(s), nil))
}

// UpdateComment — PUT /articles/{article_id}/comments/{id} {content}.
func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	s, node, err := h.target(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in updateCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	edit := s.ActionsFor(node).Edit
	if edit == nil {
		apierrors.WriteError(w, r, apierrors.ErrForbidden)
		return
	}

	if _, err := edit(r.Context(), in.Content); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, store.ResultOf(buildThread(s), nil))
}

// DeleteComment — DELETE /articles/{article_id}/comments/{id}.
// Комментарий удаляется вместе со всеми ответами.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	s, node, err := h.target(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	del := s.ActionsFor(node).Delete
	if del == nil {
		apierrors.WriteError(w, r, apierrors.ErrForbidden)
		return
	}

	if err := del(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, store.ResultOf(buildThread(s), nil))
}

// VoteComment — POST /articles/{article_id}/comments/{id}/vote {direction}.
func (h *Handlers) VoteComment(w http.ResponseWriter, r *http.Request) {
	s, node, err := h.target(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in voteRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	vote := s.ActionsFor(node).Vote
	if vote == nil {
		apierrors.WriteError(w, r, store.ErrNoViewer)
		return
	}

	out, err := vote(r.Context(), in.Direction)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, store.ResultOf(voteView{
		Upvotes:   out.Tally.Upvotes,
		Downvotes: out.Tally.Downvotes,
		MyVote:    out.Mine,
		Thread:    buildThread(s),
	}, nil))
}

// ToggleApproval — PATCH /articles/{article_id}/comments/{id}/approve.
// После переключения ветка перезагружается целиком.
func (h *Handlers) ToggleApproval(w http.ResponseWriter, r *http.Request) {
	s, node, err := h.target(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	toggle := s.ActionsFor(node).ToggleApproval
	if toggle == nil {
		apierrors.WriteError(w, r, apierrors.ErrForbidden)
		return
	}

	if err := toggle(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, store.ResultOf(buildThread(s), nil))
}

// SetSort — PUT /articles/{article_id}/sort {sort}.
func (h *Handlers) SetSort(w http.ResponseWriter, r *http.Request) {
	s, err := h.storeFor(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in setSortRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if _, err := s.SetSort(r.Context(), strings.TrimSpace(in.Sort)); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, store.ResultOf(buildThread(s), nil))
}

// target — Store и узел {id} из снапшота. Узла нет в снапшоте — store.ErrNotFound.
func (h *Handlers) target(r *http.Request) (*store.Store, *models.Comment, error) {
	s, err := h.storeFor(r)
	if err != nil {
		return nil, nil, err
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		return nil, nil, apierrors.ErrBadRequest
	}

	node := tree.Find(s.Snapshot().Tree, id)
	if node == nil {
		return nil, nil, store.ErrNotFound
	}

	return s, node, nil
}
