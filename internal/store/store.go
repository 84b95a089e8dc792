// Package store — состояние комментариев одной статьи для одного зрителя.
//
// Store выполняет каждую операцию через gateway.Gateway и только после успешного
// ответа строит новый снапшот функциями пакета tree. Неудачная операция снапшот
// не трогает. Снапшот неизменяем: читатели получают его целиком и могут держать
// сколько угодно, изменения публикуются заменой под мьютексом.
package store

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pribylovaa/news-portal-comments/internal/gateway"
	"github.com/pribylovaa/news-portal-comments/internal/metrics"
	"github.com/pribylovaa/news-portal-comments/internal/models"
)

// Options — необязательные параметры Store.
type Options struct {
	// DefaultSort — ключ сортировки до первого fetch. Пусто — newest.
	DefaultSort models.SortKey
	Metrics     *metrics.Metrics
}

// Snapshot — согласованное состояние Store на момент чтения.
type Snapshot struct {
	ArticleID string
	Tree      models.Tree
	Sort      models.SortKey
	// Version растёт при каждом применённом изменении, включая смену состояния ошибки.
	Version uint64
	// Loaded — был ли хотя бы один успешный fetch.
	Loaded bool
	// Err — ошибка последнего fetch; nil после успешного.
	Err error
}

// Store — снапшот дерева комментариев статьи и операции над ним.
// Безопасен для конкурентного использования.
type Store struct {
	gw        gateway.Gateway
	articleID string
	caps      Capabilities
	metrics   *metrics.Metrics

	// fetchGen — номер последнего выданного fetch.
	fetchGen atomic.Uint64

	mu       sync.RWMutex
	tree     models.Tree
	sort     models.SortKey
	version  uint64
	loaded   bool
	fetchErr error
}

// New создаёт Store статьи articleID. caps == nil — анонимный зритель.
func New(gw gateway.Gateway, articleID string, caps Capabilities, opts Options) (*Store, error) {
	const op = "store/store/New"

	if gw == nil {
		return nil, fmt.Errorf("%s: %w: nil gateway", op, ErrInvalidArgument)
	}

	articleID = strings.TrimSpace(articleID)
	if articleID == "" {
		return nil, fmt.Errorf("%s: %w: empty article id", op, ErrInvalidArgument)
	}

	if caps == nil {
		caps = ViewerCapabilities{}
	}

	sort := opts.DefaultSort
	if sort == "" {
		sort = models.SortNewest
	}
	if _, err := models.ParseSortKey(string(sort)); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	return &Store{
		gw:        gw,
		articleID: articleID,
		caps:      caps,
		metrics:   opts.Metrics,
		tree:      models.Tree{},
		sort:      sort,
	}, nil
}

// ArticleID — статья, к которой привязан Store.
func (s *Store) ArticleID() string { return s.articleID }

// ViewerID — зритель, от имени которого работает Store.
func (s *Store) ViewerID() string { return s.caps.ViewerID() }

// Snapshot возвращает текущее состояние без обращения к бэкенду.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		ArticleID: s.articleID,
		Tree:      s.tree,
		Sort:      s.sort,
		Version:   s.version,
		Loaded:    s.loaded,
		Err:       s.fetchErr,
	}
}

// Sort — текущий ключ сортировки.
func (s *Store) Sort() models.SortKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sort
}

// commit публикует новое дерево. Вызывается под s.mu.
func (s *Store) commit(t models.Tree) {
	s.tree = t
	s.version++
}

func (s *Store) observe(op string, err error) {
	s.metrics.IncStoreOp(op, Kind(err))
}
