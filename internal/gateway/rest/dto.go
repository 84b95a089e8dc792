package rest

import "github.com/pribylovaa/news-portal-comments/internal/models"

// Тела запросов/ответов REST API бэкенда.

// listCommentsResponse — Comments == nil означает, что ключ отсутствует или равен null.
type listCommentsResponse struct {
	Comments *[]*models.Comment `json:"comments"`
}

type commentResponse struct {
	Comment *models.Comment `json:"comment"`
}

// createCommentRequest — parentId == nil сериализуется как null (корневой комментарий).
type createCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

type voteRequest struct {
	Direction models.VoteType `json:"direction"`
}

type tallyResponse struct {
	Upvotes   *int `json:"upvotes"`
	Downvotes *int `json:"downvotes"`
}

// errorResponse — формат ошибки бэкенда: {"error":{"code","message"}}.
// Плоский {"message"} тоже принимается.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}
