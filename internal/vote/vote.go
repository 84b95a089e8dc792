// Package vote — конечный автомат голосования одного пользователя за один комментарий.
//
// Состояния: VoteNone, VoteUp, VoteDown. Переходы по клику direction (+1/-1):
//
//	VoteNone --d--> d          первый голос
//	VoteUp   --+1--> VoteNone  повторный клик снимает голос
//	VoteDown --−1--> VoteNone
//	VoteUp   --−1--> VoteDown  смена голоса
//	VoteDown --+1--> VoteUp
//
// Бэкенд отвечает только агрегатами {upvotes, downvotes}, поэтому членство текущего
// пользователя в Comment.Votes вычисляется здесь, повторяя серверную логику.
// Если пользователь голосует из двух сессий, локальные вычисления могут разойтись
// с сервером до следующей полной загрузки.
package vote

import (
	"errors"

	"github.com/pribylovaa/news-portal-comments/internal/models"
)

// ErrInvalidDirection — направление клика не +1 и не -1.
var ErrInvalidDirection = errors.New("invalid vote direction")

// Decision — результат обработки клика: новое состояние и полезная нагрузка запроса.
type Decision struct {
	Prev      models.VoteType
	Next      models.VoteType
	Direction models.VoteType
}

// Next возвращает состояние после клика direction из состояния state.
func Next(state, direction models.VoteType) (models.VoteType, error) {
	if !direction.Valid() {
		return state, ErrInvalidDirection
	}

	if state == direction {
		return models.VoteNone, nil
	}

	return direction, nil
}

// Current — текущий голос пользователя в множестве votes (VoteNone, если его нет).
func Current(votes []models.Vote, userID string) models.VoteType {
	for _, v := range votes {
		if v.UserID == userID {
			return v.Type
		}
	}

	return models.VoteNone
}

// Decide переводит клик direction и известный голос пользователя в Decision.
// В запрос уходит само направление клика: сервер применяет тот же переход.
func Decide(votes []models.Vote, userID string, direction models.VoteType) (Decision, error) {
	prev := Current(votes, userID)

	next, err := Next(prev, direction)
	if err != nil {
		return Decision{}, err
	}

	return Decision{Prev: prev, Next: next, Direction: direction}, nil
}

// Reconcile возвращает новое множество голосов, в котором у userID ровно одна запись
// с типом next, либо ни одной, если next == VoteNone. Исходный срез не меняется.
// Порядок чужих голосов сохраняется; запись пользователя остаётся на своём месте
// при замене и добавляется в конец при первом голосе.
func Reconcile(votes []models.Vote, userID string, next models.VoteType) []models.Vote {
	out := make([]models.Vote, 0, len(votes)+1)
	placed := false

	for _, v := range votes {
		if v.UserID != userID {
			out = append(out, v)
			continue
		}
		if placed || next == models.VoteNone {
			continue
		}
		out = append(out, models.Vote{UserID: userID, Type: next})
		placed = true
	}

	if !placed && next != models.VoteNone {
		out = append(out, models.Vote{UserID: userID, Type: next})
	}

	return out
}
