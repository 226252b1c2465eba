package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu     sync.RWMutex
	m      map[int]Product
	nextID int
}

func NewMemStore(seed ...Product) *MemStore {
	s := &MemStore{m: make(map[int]Product, len(seed))}
	for _, p := range seed {
		s.m[p.ID] = p
		if p.ID > s.nextID {
			s.nextID = p.ID
		}
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) Create(ctx context.Context, d Draft) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	p := d.Product(s.nextID)
	s.m[p.ID] = p
	return p, nil
}

func (s *MemStore) Update(ctx context.Context, id int, patch Patch) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	p = patch.Apply(p)
	s.m[id] = p
	return p, nil
}

func (s *MemStore) Delete(ctx context.Context, id int) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	delete(s.m, id)
	return p, nil
}
