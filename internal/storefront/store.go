// Package storefront is the data-access layer shared by every storefront
// screen. A Store owns the catalog state cells and coordinates the memory
// tier, a persistent cache and the catalog API behind them.
package storefront

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"Storefront/internal/catalog"
	"Storefront/internal/reactive"
)

// Transport is the catalog API the store reads from and writes to.
type Transport interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id int) (catalog.Product, error)
	Create(ctx context.Context, d catalog.Draft) (catalog.Product, error)
	Update(ctx context.Context, id int, patch catalog.Patch) (catalog.Product, error)
	Delete(ctx context.Context, id int) error
}

// PersistentCache keeps JSON documents across sessions. Any error from Get
// is treated as a miss.
type PersistentCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
}

// Store is the catalog state of one UI session. Create it once with New at
// process start; consumers only ever see the read-only cells.
type Store struct {
	transport Transport
	cache     PersistentCache
	log       *zap.Logger
	metrics   *Metrics
	dedup     *singleflight.Group

	// cacheMu pairs a cell write with the persistent cache change made for
	// it, so concurrent reads and invalidations leave both holding the same
	// response. Never held while subscribers run.
	cacheMu sync.Mutex

	products *reactive.Cell[[]catalog.Product]
	selected *reactive.Cell[*catalog.Product]
	errMsg   *reactive.Cell[string]
	inflight *reactive.Cell[int]
	loading  reactive.Readable[bool]
}

type Option func(*Store)

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithReadDedup collapses concurrent reads of the same cache key into a
// single network call. Without it concurrent reads race and the last
// response wins.
func WithReadDedup() Option {
	return func(s *Store) { s.dedup = &singleflight.Group{} }
}

func New(t Transport, c PersistentCache, opts ...Option) *Store {
	s := &Store{
		transport: t,
		cache:     c,
		log:       zap.NewNop(),
		products:  reactive.NewCell([]catalog.Product{}),
		selected:  reactive.NewCell[*catalog.Product](nil),
		errMsg:    reactive.NewCell("", reactive.WithEqual(reactive.Same[string])),
		inflight:  reactive.NewCell(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.loading = reactive.Computed(s.inflight.ReadOnly(nil), func(n int) bool { return n > 0 }, reactive.Same[bool])
	return s
}

// Products is the last successfully loaded catalog, empty before the first
// load and after every invalidation.
func (s *Store) Products() reactive.Readable[[]catalog.Product] {
	return s.products.ReadOnly(slices.Clone[[]catalog.Product])
}

// SelectedProduct is the last successfully loaded single product, or nil.
func (s *Store) SelectedProduct() reactive.Readable[*catalog.Product] {
	return s.selected.ReadOnly(cloneProduct)
}

// Error is the message of the most recent failed read, or "". It is cleared
// when a later read starts a network fetch.
func (s *Store) Error() reactive.Readable[string] {
	return s.errMsg.ReadOnly(nil)
}

// Loading is true while any network read, list or single product, is in
// flight. Consumers cannot tell which one is pending.
func (s *Store) Loading() reactive.Readable[bool] {
	return s.loading
}

// ClearSelected drops the selected product.
func (s *Store) ClearSelected() {
	s.selected.Set(nil)
}

// Reset restores every cell to its initial value. The persistent cache is
// left alone. Tests use it to isolate cases that share a store.
func (s *Store) Reset() {
	s.products.Set([]catalog.Product{})
	s.selected.Set(nil)
	s.errMsg.Set("")
}

func cloneProduct(p *catalog.Product) *catalog.Product {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
