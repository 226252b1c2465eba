package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

func inc(n int) int { return n + 1 }
func dec(n int) int { return n - 1 }

// flight is one network read. Every caller that shares it settles it, but
// only the first one applies the result.
type flight[T any] struct {
	v    T
	err  error
	once sync.Once
}

// fetch runs one network read through the shared pipeline: Loading goes up
// before the call and always comes back down, a success is applied to its
// cell and written to the persistent cache under key, and a failure is
// recorded in Error instead of being returned.
//
// apply must stage its cell write with SetDeferred and return the notify
// func, so the cell and the cache entry change together.
func fetch[T any](
	ctx context.Context,
	s *Store,
	op, key, fallback string,
	call func(context.Context) (T, error),
	apply func(T) (notify func()),
) {
	s.inflight.Update(inc)
	defer s.inflight.Update(dec)

	s.errMsg.Set("")

	f := startFlight(ctx, s, key, call)
	f.once.Do(func() { settle(ctx, s, op, key, fallback, f, apply) })
}

// startFlight calls the network, or joins the flight already running for
// key when reads are deduplicated. A shared flight ignores cancellation of
// the caller that started it, since the others are waiting on it too.
func startFlight[T any](ctx context.Context, s *Store, key string, call func(context.Context) (T, error)) *flight[T] {
	if s.dedup == nil {
		v, err := call(ctx)
		return &flight[T]{v: v, err: err}
	}

	shared, _, _ := s.dedup.Do(key, func() (any, error) {
		v, err := call(context.WithoutCancel(ctx))
		return &flight[T]{v: v, err: err}, nil
	})
	return shared.(*flight[T])
}

func settle[T any](ctx context.Context, s *Store, op, key, fallback string, f *flight[T], apply func(T) func()) {
	if f.err != nil {
		msg := f.err.Error()
		if msg == "" {
			msg = fallback
		}
		s.errMsg.Set(msg)
		s.metrics.read(op, tierFailed)
		s.log.Warn("catalog read failed", zap.String("op", op), zap.String("key", key), zap.Error(f.err))
		return
	}

	s.cacheMu.Lock()
	notify := apply(f.v)
	writeCache(context.WithoutCancel(ctx), s, key, f.v)
	s.cacheMu.Unlock()

	notify()
	s.metrics.read(op, tierNetwork)
}
