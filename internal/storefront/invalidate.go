package storefront

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"Storefront/internal/catalog"
)

// Create posts d to the catalog. On success every cached product is
// invalidated; the next LoadAll goes to the network. Failures are returned
// and leave the cells untouched.
func (s *Store) Create(ctx context.Context, d catalog.Draft) (catalog.Product, error) {
	p, err := s.transport.Create(ctx, d)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx, reasonCreate)
	return p, nil
}

func (s *Store) Update(ctx context.Context, id int, patch catalog.Patch) (catalog.Product, error) {
	p, err := s.transport.Update(ctx, id, patch)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	s.invalidate(ctx, reasonUpdate)
	return p, nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	if err := s.transport.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	s.invalidate(ctx, reasonDelete)
	return nil
}

// Refresh drops both cache tiers and reloads the catalog from the network.
func (s *Store) Refresh(ctx context.Context) {
	s.invalidate(ctx, reasonRefresh)
	s.LoadAll(ctx)
}

// invalidate empties Products and the whole persistent cache, single
// product entries included. SelectedProduct is kept.
func (s *Store) invalidate(ctx context.Context, reason string) {
	s.cacheMu.Lock()
	notify := s.products.SetDeferred([]catalog.Product{})
	if err := s.cache.Clear(ctx); err != nil {
		s.log.Warn("persistent cache clear failed", zap.String("reason", reason), zap.Error(err))
	}
	s.cacheMu.Unlock()

	notify()
	s.metrics.invalidated(reason)
	s.log.Info("catalog cache invalidated", zap.String("reason", reason))
}
