// Package reactive provides synchronously readable value holders that notify
// subscribers whenever their value changes.
package reactive

import "sync"

// Readable is the consumer side of a cell: reads always return the latest
// value and subscribers are called synchronously on change.
type Readable[T any] interface {
	Get() T
	// Subscribe registers fn and returns a function that removes it.
	Subscribe(fn func(T)) (cancel func())
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Cell holds a value of T. Only the owner of a *Cell writes it; consumers are
// handed ReadOnly views.
//
// Notifications are delivered one at a time in write order. A write made
// while the cell is delivering, from a subscriber or from another goroutine,
// is queued and delivered by the goroutine already delivering once the
// current notification returns. Subscribers may therefore write the cell
// they observe.
type Cell[T any] struct {
	mu     sync.RWMutex
	value  T
	equal  func(a, b T) bool
	subs   []subscriber[T]
	nextID uint64

	pending    []T
	delivering bool
}

type CellOption[T any] func(*Cell[T])

// WithEqual suppresses notifications when the new value is equal to the
// current one. Without it every write notifies.
func WithEqual[T any](equal func(a, b T) bool) CellOption[T] {
	return func(c *Cell[T]) { c.equal = equal }
}

// Same is an equality function for comparable types.
func Same[T comparable](a, b T) bool { return a == b }

func NewCell[T any](initial T, opts ...CellOption[T]) *Cell[T] {
	c := &Cell[T]{value: initial}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *Cell[T]) Set(v T) {
	c.Update(func(T) T { return v })
}

// Update replaces the value with fn(current) atomically with respect to
// other writers, then notifies subscribers.
func (c *Cell[T]) Update(fn func(T) T) {
	if c.stage(fn) {
		c.deliver()
	}
}

// SetDeferred stores v and queues its notification without delivering it.
// The caller must call notify, typically after releasing a lock of its own
// that subscribers might need.
func (c *Cell[T]) SetDeferred(v T) (notify func()) {
	c.stage(func(T) T { return v })
	return c.deliver
}

func (c *Cell[T]) stage(fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := fn(c.value)
	if c.equal != nil && c.equal(c.value, next) {
		return false
	}
	c.value = next
	c.pending = append(c.pending, next)
	return true
}

// deliver drains the pending queue unless another call is already doing so.
func (c *Cell[T]) deliver() {
	c.mu.Lock()
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.mu.Lock()
			c.delivering = false
			c.mu.Unlock()
			panic(r)
		}
	}()

	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.pending = nil
			c.delivering = false
			c.mu.Unlock()
			return
		}
		v := c.pending[0]
		c.pending = c.pending[1:]
		subs := make([]subscriber[T], len(c.subs))
		copy(subs, c.subs)
		c.mu.Unlock()

		for _, s := range subs {
			s.fn(v)
		}
	}
}

func (c *Cell[T]) Subscribe(fn func(T)) (cancel func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber[T]{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(id) })
	}
}

func (c *Cell[T]) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
			return
		}
	}
}

// ReadOnly returns a view of c that cannot be written. When clone is not nil
// it is applied to every value handed out, so callers cannot alias the
// cell's storage.
func (c *Cell[T]) ReadOnly(clone func(T) T) Readable[T] {
	return readOnly[T]{c: c, clone: clone}
}

type readOnly[T any] struct {
	c     *Cell[T]
	clone func(T) T
}

func (r readOnly[T]) Get() T {
	v := r.c.Get()
	if r.clone != nil {
		return r.clone(v)
	}
	return v
}

func (r readOnly[T]) Subscribe(fn func(T)) func() {
	if r.clone == nil {
		return r.c.Subscribe(fn)
	}
	return r.c.Subscribe(func(v T) { fn(r.clone(v)) })
}
