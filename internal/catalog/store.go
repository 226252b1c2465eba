package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("product not found")

// Store backs the upstream catalog stub served by cmd/catalog.
type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int) (Product, error)
	Create(ctx context.Context, d Draft) (Product, error)
	Update(ctx context.Context, id int, patch Patch) (Product, error)
	Delete(ctx context.Context, id int) (Product, error)
}

func NewStore() Store {
	return NewMemStore(SeedProducts()...)
}

// SeedProducts is the starter catalog of the memory store.
func SeedProducts() []Product {
	return []Product{
		{
			ID:          1,
			Title:       "Mechanical Keyboard",
			Price:       49.90,
			Description: "Tenkeyless board with brown switches.",
			Category:    "electronics",
			Image:       "https://img.example.com/keyboard.png",
			Rating:      Rating{Rate: 4.5, Count: 120},
		},
		{
			ID:          2,
			Title:       "Wireless Mouse",
			Price:       19.90,
			Description: "Two-button mouse with a silent scroll wheel.",
			Category:    "electronics",
			Image:       "https://img.example.com/mouse.png",
			Rating:      Rating{Rate: 4.1, Count: 87},
		},
		{
			ID:          3,
			Title:       "Cotton Jacket",
			Price:       55.99,
			Description: "Lightweight jacket for spring.",
			Category:    "men's clothing",
			Image:       "https://img.example.com/jacket.png",
			Rating:      Rating{Rate: 3.9, Count: 42},
		},
	}
}
