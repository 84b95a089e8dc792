// Package session держит по одному store.Store на пару (зритель, статья).
//
// Store создаётся лениво при первом обращении и вытесняется:
//   - после IdleTTL без обращений (фоновый Run);
//   - при превышении MaxStores, начиная с самого давно использованного.
package session

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pribylovaa/news-portal-comments/internal/gateway"
	"github.com/pribylovaa/news-portal-comments/internal/metrics"
	"github.com/pribylovaa/news-portal-comments/internal/models"
	"github.com/pribylovaa/news-portal-comments/internal/store"
)

// Key — идентификатор сессии. Роль входит в ключ: смена роли даёт новый Store.
type Key struct {
	ViewerID  string
	Moderator bool
	ArticleID string
}

// Options — параметры реестра.
type Options struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
	MaxStores     int
	DefaultSort   models.SortKey
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	// Now — источник времени; nil — time.Now.
	Now func() time.Time
}

type entry struct {
	key      Key
	store    *store.Store
	lastUsed time.Time
}

// Registry — потокобезопасный реестр Store с LRU-вытеснением.
type Registry struct {
	gw   gateway.Gateway
	opts Options

	mu      sync.Mutex
	entries map[Key]*list.Element
	lru     *list.List // front — самый свежий
}

// New создаёт реестр поверх gw.
func New(gw gateway.Gateway, opts Options) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Registry{
		gw:      gw,
		opts:    opts,
		entries: make(map[Key]*list.Element),
		lru:     list.New(),
	}
}

// Get возвращает Store зрителя viewer для статьи articleID, создавая его при необходимости.
func (r *Registry) Get(viewer store.ViewerCapabilities, articleID string) (*store.Store, error) {
	const op = "session/registry/Get"

	key := Key{ViewerID: viewer.UserID, Moderator: viewer.Moderator, ArticleID: articleID}
	now := r.opts.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.entries[key]; ok {
		e := el.Value.(*entry)
		e.lastUsed = now
		r.lru.MoveToFront(el)
		return e.store, nil
	}

	s, err := store.New(r.gw, articleID, viewer, store.Options{
		DefaultSort: r.opts.DefaultSort,
		Metrics:     r.opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.entries[key] = r.lru.PushFront(&entry{key: key, store: s, lastUsed: now})

	for r.opts.MaxStores > 0 && r.lru.Len() > r.opts.MaxStores {
		oldest := r.lru.Back()
		r.opts.Logger.Debug("session evicted by capacity", "op", op, "article_id", oldest.Value.(*entry).key.ArticleID)
		r.remove(oldest)
	}

	r.opts.Metrics.SetSessions(r.lru.Len())

	return s, nil
}

// Len — число живых Store.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lru.Len()
}

// Sweep удаляет Store, не использованные дольше IdleTTL. Возвращает число удалённых.
func (r *Registry) Sweep() int {
	if r.opts.IdleTTL <= 0 {
		return 0
	}

	deadline := r.opts.Now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for el := r.lru.Back(); el != nil; {
		e := el.Value.(*entry)
		if e.lastUsed.After(deadline) {
			break
		}
		prev := el.Prev()
		r.remove(el)
		el = prev
		n++
	}

	r.opts.Metrics.SetSessions(r.lru.Len())

	return n
}

// Run периодически вызывает Sweep до отмены ctx.
func (r *Registry) Run(ctx context.Context) {
	const op = "session/registry/Run"

	if r.opts.SweepInterval <= 0 || r.opts.IdleTTL <= 0 {
		return
	}

	t := time.NewTicker(r.opts.SweepInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				r.opts.Logger.Debug("idle sessions evicted", "op", op, "evicted", n, "live", r.Len())
			}
		}
	}
}

func (r *Registry) remove(el *list.Element) {
	e := r.lru.Remove(el).(*entry)
	delete(r.entries, e.key)
}
