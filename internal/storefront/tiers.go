package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/persist"
)

const (
	allProductsKey   = "all_products"
	productKeyPrefix = "product_"

	loadAllFallback = "Failed to load products"
	loadOneFallback = "Failed to load product"
)

func productKey(id int) string {
	return productKeyPrefix + strconv.Itoa(id)
}

// LoadAll fills Products. A non-empty memory tier wins outright; otherwise
// the persistent cache is tried before the network. Failures land in Error.
func (s *Store) LoadAll(ctx context.Context) {
	if len(s.products.Get()) > 0 {
		s.metrics.read(opLoadAll, tierMemory)
		return
	}

	if cached, ok := readCache[[]catalog.Product](ctx, s, allProductsKey); ok && cached != nil {
		s.products.Set(cached)
		s.metrics.read(opLoadAll, tierPersistent)
		return
	}

	fetch(ctx, s, opLoadAll, allProductsKey, loadAllFallback, s.transport.List, func(ps []catalog.Product) func() {
		if ps == nil {
			ps = []catalog.Product{}
		}
		return s.products.SetDeferred(ps)
	})
}

// LoadOne fills SelectedProduct with product id, from the persistent cache
// when possible. The memory tier is not consulted for single products.
func (s *Store) LoadOne(ctx context.Context, id int) {
	key := productKey(id)

	if cached, ok := readCache[*catalog.Product](ctx, s, key); ok && cached != nil {
		s.selected.Set(cached)
		s.metrics.read(opLoadOne, tierPersistent)
		return
	}

	get := func(ctx context.Context) (catalog.Product, error) {
		return s.transport.Get(ctx, id)
	}
	fetch(ctx, s, opLoadOne, key, loadOneFallback, get, func(p catalog.Product) func() {
		return s.selected.SetDeferred(&p)
	})
}

// readCache decodes the entry under key. Missing, unreadable and malformed
// entries all count as a miss.
func readCache[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var zero T

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, persist.ErrNotFound) {
			s.log.Warn("persistent cache read failed", zap.String("key", key), zap.Error(err))
		}
		return zero, false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.log.Warn("persistent cache entry malformed", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	return v, true
}

func writeCache(ctx context.Context, s *Store, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("persistent cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.log.Warn("persistent cache write failed", zap.String("key", key), zap.Error(err))
	}
}
