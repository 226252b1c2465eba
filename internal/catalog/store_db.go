package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

const productColumns = `id, title, price, description, category, image, rating_rate, rating_count`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the products table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS products (
  id           serial PRIMARY KEY,
  title        text NOT NULL,
  price        double precision NOT NULL CHECK (price >= 0),
  description  text NOT NULL DEFAULT '',
  category     text NOT NULL DEFAULT '',
  image        text NOT NULL DEFAULT '',
  rating_rate  double precision NOT NULL DEFAULT 0,
  rating_count integer NOT NULL DEFAULT 0
);`)
	return err
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.pool.Ping(ctx)
	})
}

func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int) (Product, error) {
	var p Product
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		p, err = scanProduct(s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
		return err
	})
	return p, notFound(err)
}

func (s *PostgresStore) Create(ctx context.Context, d Draft) (Product, error) {
	var p Product
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		p, err = scanProduct(s.pool.QueryRow(ctx, `
			INSERT INTO products (title, price, description, category, image, rating_rate, rating_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+productColumns,
			d.Title, d.Price, d.Description, d.Category, d.Image, d.Rating.Rate, d.Rating.Count))
		return err
	})
	return p, err
}

func (s *PostgresStore) Update(ctx context.Context, id int, patch Patch) (Product, error) {
	var p Product
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		cur, err := scanProduct(tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		p = patch.Apply(cur)

		_, err = tx.Exec(ctx, `
			UPDATE products
			SET title = $2, price = $3, description = $4, category = $5, image = $6, rating_rate = $7, rating_count = $8
			WHERE id = $1`,
			id, p.Title, p.Price, p.Description, p.Category, p.Image, p.Rating.Rate, p.Rating.Count)
		if err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	return p, notFound(err)
}

func (s *PostgresStore) Delete(ctx context.Context, id int) (Product, error) {
	var p Product
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		p, err = scanProduct(s.pool.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id))
		return err
	})
	return p, notFound(err)
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Title, &p.Price, &p.Description, &p.Category, &p.Image, &p.Rating.Rate, &p.Rating.Count)
	return p, err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
