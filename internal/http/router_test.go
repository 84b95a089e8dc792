package http

// Сквозные тесты view-слоя (internal/http): chi-роутер -> реестр сессий -> Store -> мок gateway.
//
// Проверяем:
//  - загрузку ветки и набор действий для анонима, автора и модератора;
//  - отказ 403, когда действие не выдано зрителю;
//  - проброс Bearer-токена и X-Request-Id до gateway;
//  - ответ/правку/удаление/голос/модерацию/смену сортировки и коды ошибок;
//  - стек middleware: X-Request-Id в ответе и метрики по шаблону маршрута chi.

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/news-portal-comments/internal/gateway"
	"github.com/pribylovaa/news-portal-comments/internal/gateway/transport"
	"github.com/pribylovaa/news-portal-comments/internal/metrics"
	"github.com/pribylovaa/news-portal-comments/internal/models"
	"github.com/pribylovaa/news-portal-comments/internal/session"
	"github.com/pribylovaa/news-portal-comments/mocks"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Value   json.RawMessage `json:"value"`
}

type nodeJSON struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	AuthorName string     `json:"author_name"`
	Approved   bool       `json:"approved"`
	Upvotes    int        `json:"upvotes"`
	MyVote     int        `json:"my_vote"`
	Actions    []string   `json:"actions"`
	Replies    []nodeJSON `json:"replies"`
}

type threadJSON struct {
	ArticleID string     `json:"article_id"`
	Sort      string     `json:"sort"`
	Loaded    bool       `json:"loaded"`
	Total     int        `json:"total"`
	Actions   []string   `json:"actions"`
	Comments  []nodeJSON `json:"comments"`
}

type viewer struct {
	id, role, token string
}

var (
	anon  = viewer{}
	alice = viewer{id: "alice", token: "tok-alice"}
	bob   = viewer{id: "bob"}
	mod   = viewer{id: "mod", role: "moderator"}
)

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockGateway) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	gw := mocks.NewMockGateway(ctrl)
	reg := session.New(gw, session.Options{MaxStores: 100})

	return NewRouter(reg, Options{}), gw
}

func do(t *testing.T, h http.Handler, v viewer, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if v.id != "" {
		req.Header.Set("X-User-Id", v.id)
	}
	if v.role != "" {
		req.Header.Set("X-User-Role", v.role)
	}
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())

	return rr, env
}

func thread(t *testing.T, env envelope) threadJSON {
	t.Helper()

	var th threadJSON
	require.NoError(t, json.Unmarshal(env.Value, &th))
	return th
}

// sample — 1(alice) -> 2(bob); 3(bob).
func sample() models.Tree {
	return models.Tree{
		{
			ID: "1", Content: "first", Author: &models.Author{ID: "alice", Name: "Alice"},
			Replies: []*models.Comment{{ID: "2", Content: "reply", Author: &models.Author{ID: "bob", Name: "Bob"}}},
		},
		{ID: "3", Content: "orphan author", Author: nil},
	}
}

// load — загрузка ветки статьи a1 зрителем v.
func load(t *testing.T, h http.Handler, gw *mocks.MockGateway, v viewer) threadJSON {
	t.Helper()

	gw.EXPECT().ListComments(gomock.Any(), "a1", models.SortNewest).Return(sample(), nil)

	rr, env := do(t, h, v, http.MethodGet, "/articles/a1/comments", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, env.Success)

	return thread(t, env)
}

func TestFetch_ActionsPerViewer(t *testing.T) {
	h, gw := newTestRouter(t)

	th := load(t, h, gw, anon)
	require.True(t, th.Loaded)
	require.Equal(t, 3, th.Total)
	require.Empty(t, th.Actions)
	require.Empty(t, th.Comments[0].Actions)
	require.Equal(t, models.DeletedAuthorName, th.Comments[1].AuthorName)

	th = load(t, h, gw, alice)
	require.Equal(t, []string{"reply"}, th.Actions)
	require.Equal(t, []string{"reply", "edit", "delete", "vote"}, th.Comments[0].Actions)
	require.Equal(t, []string{"reply", "vote"}, th.Comments[0].Replies[0].Actions)

	th = load(t, h, gw, mod)
	require.Equal(t, []string{"reply", "delete", "vote", "approve"}, th.Comments[1].Actions)
}

func TestFetch_SortParamAndErrors(t *testing.T) {
	h, gw := newTestRouter(t)

	gw.EXPECT().ListComments(gomock.Any(), "a1", models.SortMostLiked).Return(models.Tree{}, nil)
	rr, env := do(t, h, anon, http.MethodGet, "/articles/a1/comments?sort=most-liked", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "most-liked", thread(t, env).Sort)

	rr, env = do(t, h, anon, http.MethodGet, "/articles/a1/comments?sort=hot", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.False(t, env.Success)

	gw.EXPECT().ListComments(gomock.Any(), "a1", models.SortMostLiked).Return(nil, gateway.ErrNetwork)
	rr, env = do(t, h, anon, http.MethodGet, "/articles/a1/comments", nil)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, "unavailable", env.Code)

	// снапшот хранит ошибку и прежнее (пустое) дерево.
	rr, env = do(t, h, anon, http.MethodGet, "/articles/a1/thread", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, thread(t, env).Loaded)
}

func TestPost_ForwardsCredentialsAndInserts(t *testing.T) {
	h, gw := newTestRouter(t)
	load(t, h, gw, alice)

	gw.EXPECT().
		CreateComment(gomock.Any(), "a1", gateway.CreateCommentInput{Content: "hi", ParentID: "2"}).
		DoAndReturn(func(ctx context.Context, _ string, _ gateway.CreateCommentInput) (*models.Comment, error) {
			require.Equal(t, "tok-alice", ctx.Value(transport.CtxAuthToken))
			require.NotEmpty(t, ctx.Value(transport.CtxRequestID))
			return &models.Comment{ID: "7", Content: "hi", Author: &models.Author{ID: "alice", Name: "Alice"}}, nil
		})

	rr, env := do(t, h, alice, http.MethodPost, "/articles/a1/comments", map[string]any{"content": "hi", "parent_id": "2"})
	require.Equal(t, http.StatusCreated, rr.Code)

	th := thread(t, env)
	reply := th.Comments[0].Replies[0]
	require.Len(t, reply.Replies, 1)
	require.Equal(t, "7", reply.Replies[0].ID)
	require.Contains(t, reply.Replies[0].Actions, "edit")
}

func TestPost_Rejections(t *testing.T) {
	h, gw := newTestRouter(t)

	rr, env := do(t, h, anon, http.MethodPost, "/articles/a1/comments", map[string]any{"content": "hi"})
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "permission_denied", env.Code)

	rr, _ = do(t, h, alice, http.MethodPost, "/articles/a1/comments", map[string]any{"content": "hi", "extra": 1})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	gw.EXPECT().CreateComment(gomock.Any(), "a1", gateway.CreateCommentInput{Content: ""}).
		Return(nil, &gateway.StatusError{Status: 422, Kind: gateway.ErrValidation, Message: "content is required"})

	rr, env = do(t, h, alice, http.MethodPost, "/articles/a1/comments", map[string]any{"content": ""})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, "content is required", env.Message)
}

func TestUpdate_OwnOnly(t *testing.T) {
	h, gw := newTestRouter(t)
	load(t, h, gw, alice)

	rr, _ := do(t, h, alice, http.MethodPut, "/articles/a1/comments/2", map[string]any{"content": "x"})
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = do(t, h, alice, http.MethodPut, "/articles/a1/comments/404", map[string]any{"content": "x"})
	require.Equal(t, http.StatusNotFound, rr.Code)

	gw.EXPECT().UpdateComment(gomock.Any(), "1", "edited").Return(&models.Comment{ID: "1", Content: "edited"}, nil)

	rr, env := do(t, h, alice, http.MethodPut, "/articles/a1/comments/1", map[string]any{"content": "edited"})
	require.Equal(t, http.StatusOK, rr.Code)
	th := thread(t, env)
	require.Equal(t, "edited", th.Comments[0].Content)
	require.Equal(t, "reply", th.Comments[0].Replies[0].Content)
}

func TestDelete_ModeratorCascade(t *testing.T) {
	h, gw := newTestRouter(t)
	load(t, h, gw, mod)

	gw.EXPECT().DeleteComment(gomock.Any(), "1").Return(nil)

	rr, env := do(t, h, mod, http.MethodDelete, "/articles/a1/comments/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	th := thread(t, env)
	require.Equal(t, 1, th.Total)
	require.Equal(t, "3", th.Comments[0].ID)
}

func TestVote(t *testing.T) {
	h, gw := newTestRouter(t)
	load(t, h, gw, alice)
	load(t, h, gw, anon)

	rr, env := do(t, h, anon, http.MethodPost, "/articles/a1/comments/2/vote", map[string]any{"direction": 1})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "unauthenticated", env.Code)

	gw.EXPECT().Vote(gomock.Any(), "2", models.VoteUp).Return(models.Tally{Upvotes: 1}, nil)

	rr, env = do(t, h, alice, http.MethodPost, "/articles/a1/comments/2/vote", map[string]any{"direction": 1})
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Upvotes int        `json:"upvotes"`
		MyVote  int        `json:"my_vote"`
		Thread  threadJSON `json:"thread"`
	}
	require.NoError(t, json.Unmarshal(env.Value, &out))
	require.Equal(t, 1, out.Upvotes)
	require.Equal(t, 1, out.MyVote)
	require.Equal(t, 1, out.Thread.Comments[0].Replies[0].MyVote)
	require.Equal(t, 1, out.Thread.Comments[0].Replies[0].Upvotes)

	rr, _ = do(t, h, alice, http.MethodPost, "/articles/a1/comments/2/vote", map[string]any{"direction": 3})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestToggleApproval_ModeratorOnlyAndRefetch(t *testing.T) {
	h, gw := newTestRouter(t)
	load(t, h, gw, bob)
	load(t, h, gw, mod)

	rr, _ := do(t, h, bob, http.MethodPatch, "/articles/a1/comments/2/approve", nil)
	require.Equal(t, http.StatusForbidden, rr.Code)

	approved := sample()
	approved[0].Replies[0].Approved = true

	gomock.InOrder(
		gw.EXPECT().ToggleApproval(gomock.Any(), "2").Return(nil),
		gw.EXPECT().ListComments(gomock.Any(), "a1", models.SortNewest).Return(approved, nil),
	)

	rr, env := do(t, h, mod, http.MethodPatch, "/articles/a1/comments/2/approve", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, thread(t, env).Comments[0].Replies[0].Approved)
}

func TestSetSort(t *testing.T) {
	h, gw := newTestRouter(t)

	rr, _ := do(t, h, anon, http.MethodPut, "/articles/a1/sort", map[string]any{"sort": "best"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	gw.EXPECT().ListComments(gomock.Any(), "a1", models.SortOldest).Return(sample(), nil)

	rr, env := do(t, h, anon, http.MethodPut, "/articles/a1/sort", map[string]any{"sort": "oldest"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "oldest", thread(t, env).Sort)
}

func TestRouter_MiddlewareStack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	h := NewRouter(session.New(mocks.NewMockGateway(ctrl), session.Options{}), Options{Metrics: m, Timeout: time.Second})

	rr, _ := do(t, h, alice, http.MethodGet, "/articles/a1/thread", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	rr, _ = do(t, h, anon, http.MethodPut, "/articles/a1/sort", map[string]any{"sort": "best"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	expected := `
# HELP comments_engine_http_requests_total View-layer API requests by method, route and status.
# TYPE comments_engine_http_requests_total counter
comments_engine_http_requests_total{method="GET",route="/articles/{article_id}/thread",status="200"} 1
comments_engine_http_requests_total{method="PUT",route="/articles/{article_id}/sort",status="400"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "comments_engine_http_requests_total"))
}
