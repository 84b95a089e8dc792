// Package rest — реализация gateway.Gateway поверх REST/JSON API бэкенда комментариев.
//
// Маппинг HTTP-статусов в ошибки gateway:
//
//	400, 422        -> ErrValidation
//	401, 403        -> ErrUnauthorized
//	404             -> ErrNotFound
//	прочие не-2xx   -> ErrUpstream
//	сбой транспорта -> ErrNetwork
//	битое тело 2xx  -> ErrMalformedResponse
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pribylovaa/news-portal-comments/internal/gateway"
	"github.com/pribylovaa/news-portal-comments/internal/gateway/transport"
	"github.com/pribylovaa/news-portal-comments/internal/metrics"
	"github.com/pribylovaa/news-portal-comments/internal/models"
)

// maxErrorBody — сколько байт тела ошибки читаем ради сообщения.
const maxErrorBody = 64 << 10

// Options — параметры клиента.
type Options struct {
	BaseURL   string
	UserAgent string
	// Timeout — дедлайн одного вызова, если у контекста своего нет. 0 — без таймаута.
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Transport — базовый RoundTripper; nil — http.DefaultTransport.
	Transport http.RoundTripper
}

// Client — REST-клиент бэкенда комментариев.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
}

var _ gateway.Gateway = (*Client)(nil)

// New собирает клиент с цепочкой: metadata -> logging -> metrics -> base.
func New(opts Options) (*Client, error) {
	const op = "gateway/rest/New"

	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%s: base url must be absolute: %q", op, opts.BaseURL)
	}

	rt := transport.Chain(opts.Transport,
		transport.WithMetadata(opts.UserAgent),
		transport.Logging(opts.Logger),
		transport.Metrics(opts.Metrics),
	)

	return &Client{
		base:    base,
		http:    &http.Client{Transport: rt},
		timeout: opts.Timeout,
	}, nil
}

// ListComments — GET /articles/{articleId}/comments?sort={sortKey}.
func (c *Client) ListComments(ctx context.Context, articleID string, sort models.SortKey) (models.Tree, error) {
	const op = "gateway/rest/ListComments"

	var out listCommentsResponse
	q := url.Values{"sort": []string{string(sort)}}
	if err := c.do(ctx, "fetch", http.MethodGet, q, nil, &out, "articles", articleID, "comments"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Пустая ветка — только явный "comments": []; без ключа ответ считается битым.
	if out.Comments == nil {
		return nil, fmt.Errorf("%s: %w: missing comments", op, gateway.ErrMalformedResponse)
	}
	if len(*out.Comments) == 0 {
		return models.Tree{}, nil
	}

	return models.Tree(*out.Comments), nil
}

// CreateComment — POST /articles/{articleId}/comments {content, parentId}.
func (c *Client) CreateComment(ctx context.Context, articleID string, in gateway.CreateCommentInput) (*models.Comment, error) {
	const op = "gateway/rest/CreateComment"

	body := createCommentRequest{Content: in.Content}
	if in.ParentID != "" {
		parent := in.ParentID
		body.ParentID = &parent
	}

	var out commentResponse
	if err := c.do(ctx, "post", http.MethodPost, nil, body, &out, "articles", articleID, "comments"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if out.Comment == nil {
		return nil, fmt.Errorf("%s: %w: missing comment", op, gateway.ErrMalformedResponse)
	}

	return out.Comment, nil
}

// UpdateComment — PUT /comments/{id} {content}.
func (c *Client) UpdateComment(ctx context.Context, id, content string) (*models.Comment, error) {
	const op = "gateway/rest/UpdateComment"

	var out commentResponse
	if err := c.do(ctx, "update", http.MethodPut, nil, updateCommentRequest{Content: content}, &out, "comments", id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if out.Comment == nil {
		return nil, fmt.Errorf("%s: %w: missing comment", op, gateway.ErrMalformedResponse)
	}

	return out.Comment, nil
}

// DeleteComment — DELETE /comments/{id}, ожидается 204.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	const op = "gateway/rest/DeleteComment"

	if err := c.do(ctx, "delete", http.MethodDelete, nil, nil, nil, "comments", id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Vote — POST /comments/{id}/vote {direction}.
func (c *Client) Vote(ctx context.Context, id string, direction models.VoteType) (models.Tally, error) {
	const op = "gateway/rest/Vote"

	var out tallyResponse
	if err := c.do(ctx, "vote", http.MethodPost, nil, voteRequest{Direction: direction}, &out, "comments", id, "vote"); err != nil {
		return models.Tally{}, fmt.Errorf("%s: %w", op, err)
	}
	if out.Upvotes == nil || out.Downvotes == nil {
		return models.Tally{}, fmt.Errorf("%s: %w: missing tally", op, gateway.ErrMalformedResponse)
	}

	return models.Tally{Upvotes: *out.Upvotes, Downvotes: *out.Downvotes}, nil
}

// ToggleApproval — PATCH /comments/{id}/approve, ожидается 204.
func (c *Client) ToggleApproval(ctx context.Context, id string) error {
	const op = "gateway/rest/ToggleApproval"

	if err := c.do(ctx, "toggle_approval", http.MethodPatch, nil, nil, nil, "comments", id, "approve"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// do выполняет один запрос: сериализует in, проверяет статус, разбирает out.
// Сегменты пути экранируются по одному.
func (c *Client) do(ctx context.Context, name, method string, query url.Values, in, out any, segments ...string) error {
	ctx = transport.WithOperation(ctx, name)
	ctx, cancel := transport.WithTimeout(ctx, c.timeout)
	defer cancel()

	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := c.base.JoinPath(escaped...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", gateway.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: read body: %w", gateway.ErrNetwork, err)
		}
		return fmt.Errorf("%w: %w", gateway.ErrMalformedResponse, err)
	}

	return nil
}

// statusError строит gateway.StatusError по не-2xx ответу.
func statusError(resp *http.Response) error {
	se := &gateway.StatusError{Status: resp.StatusCode, Kind: kindOf(resp.StatusCode)}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var er errorResponse
	if len(raw) > 0 && json.Unmarshal(raw, &er) == nil {
		se.Code = er.Error.Code
		se.Message = er.Error.Message
		if se.Message == "" {
			se.Message = er.Message
		}
	}

	return se
}

func kindOf(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return gateway.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return gateway.ErrUnauthorized
	case http.StatusNotFound:
		return gateway.ErrNotFound
	default:
		return gateway.ErrUpstream
	}
}
