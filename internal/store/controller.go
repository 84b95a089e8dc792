package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/news-portal-comments/internal/models"
	"github.com/pribylovaa/news-portal-comments/internal/pkg/log"
	"github.com/pribylovaa/news-portal-comments/internal/tree"
)

// Операции, заменяющие дерево целиком: загрузка, смена сортировки, модерация.

// Fetch загружает всё дерево статьи в порядке sort и заменяет им снапшот.
// Пустой sort — текущий ключ Store.
//
// Каждый вызов получает номер поколения. Ответ, пришедший после того, как был
// выдан более новый Fetch, отбрасывается с ErrStale, снапшот не меняется.
//
// Ошибки:
//   - ErrInvalidArgument — неизвестный ключ сортировки;
//   - ErrInternal — бэкенд вернул дерево с нарушенными инвариантами;
//   - ошибки gateway в терминах Store.
//
// Неудачный актуальный Fetch сохраняется в Snapshot.Err, прежнее дерево остаётся.
func (s *Store) Fetch(ctx context.Context, sort models.SortKey) (models.Tree, error) {
	const op = "store/controller/Fetch"

	if sort == "" {
		sort = s.Sort()
	}
	if _, err := models.ParseSortKey(string(sort)); err != nil {
		s.observe("fetch", ErrInvalidArgument)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	gen := s.fetchGen.Add(1)
	lg := log.From(ctx).With("op", op, "article_id", s.articleID, "sort", string(sort), "gen", gen)

	got, err := s.gw.ListComments(ctx, s.articleID, sort)
	if err == nil {
		if verr := tree.Validate(got); verr != nil {
			lg.Error("backend returned invalid tree", "err", verr)
			err = fmt.Errorf("%s: %w: %w", op, ErrInternal, verr)
		}
	} else {
		err = mapGatewayError(ctx, op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.fetchGen.Load() {
		lg.Debug("discarding stale fetch response", "latest", s.fetchGen.Load())
		s.metrics.IncStaleFetch()
		s.observe("fetch", ErrStale)
		return nil, fmt.Errorf("%s: %w", op, ErrStale)
	}

	if err != nil {
		s.fetchErr = err
		s.version++
		s.observe("fetch", err)
		return nil, err
	}

	if got == nil {
		got = models.Tree{}
	}

	s.sort = sort
	s.loaded = true
	s.fetchErr = nil
	s.commit(got)
	s.observe("fetch", nil)

	lg.Debug("tree replaced", "comments", tree.Count(got), "version", s.version)

	return got, nil
}

// SetSort проверяет ключ и перезагружает дерево в новом порядке.
// Локальной пересортировки нет: порядок задаёт сервер.
func (s *Store) SetSort(ctx context.Context, key string) (models.Tree, error) {
	const op = "store/controller/SetSort"

	sort, err := models.ParseSortKey(key)
	if err != nil {
		log.From(ctx).Warn("invalid sort key", "op", op, "sort", key)
		s.observe("set_sort", ErrInvalidArgument)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	t, err := s.Fetch(ctx, sort)
	s.observe("set_sort", err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

// ToggleApproval переключает одобрение комментария id и затем перезагружает
// дерево целиком: одобрение меняет то, какие комментарии зритель вообще видит.
//
// Если перезагрузку обогнал более новый Fetch, операция считается успешной.
func (s *Store) ToggleApproval(ctx context.Context, id string) error {
	const op = "store/controller/ToggleApproval"

	lg := log.From(ctx).With("op", op, "article_id", s.articleID, "comment_id", id)

	if id == "" {
		lg.Warn("invalid argument: empty id")
		s.observe("toggle_approval", ErrInvalidArgument)
		return fmt.Errorf("%s: %w: empty id", op, ErrInvalidArgument)
	}

	if err := s.gw.ToggleApproval(ctx, id); err != nil {
		err = mapGatewayError(ctx, op, err)
		s.observe("toggle_approval", err)
		return err
	}

	_, err := s.Fetch(ctx, "")
	if err != nil && !errors.Is(err, ErrStale) {
		lg.Warn("approval toggled but refetch failed", "err", err)
		s.observe("toggle_approval", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.observe("toggle_approval", nil)

	return nil
}
