package persist_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Storefront/internal/persist"
)

type cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
	Close() error
}

func backends(t *testing.T) map[string]func(t *testing.T) cache {
	t.Helper()
	return map[string]func(t *testing.T) cache{
		"memory": func(t *testing.T) cache {
			return persist.NewMemory()
		},
		"sqlite": func(t *testing.T) cache {
			c, err := persist.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
			require.NoError(t, err)
			return c
		},
		"redis": func(t *testing.T) cache {
			mr := miniredis.RunT(t)
			c, err := persist.NewRedis(context.Background(), persist.RedisConfig{Addr: mr.Addr()})
			require.NoError(t, err)
			return c
		},
	}
}

func TestBackends(t *testing.T) {
	ctx := context.Background()

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("Miss", func(t *testing.T) {
				c := open(t)
				t.Cleanup(func() { _ = c.Close() })

				_, err := c.Get(ctx, "all_products")
				assert.ErrorIs(t, err, persist.ErrNotFound)
			})

			t.Run("Set then get overwrites", func(t *testing.T) {
				c := open(t)
				t.Cleanup(func() { _ = c.Close() })

				require.NoError(t, c.Set(ctx, "product_1", []byte(`{"id":1}`)))
				require.NoError(t, c.Set(ctx, "product_1", []byte(`{"id":1,"title":"x"}`)))

				got, err := c.Get(ctx, "product_1")
				require.NoError(t, err)
				assert.JSONEq(t, `{"id":1,"title":"x"}`, string(got))
			})

			t.Run("Clear drops every entry", func(t *testing.T) {
				c := open(t)
				t.Cleanup(func() { _ = c.Close() })

				require.NoError(t, c.Set(ctx, "all_products", []byte(`[]`)))
				require.NoError(t, c.Set(ctx, "product_7", []byte(`{"id":7}`)))

				require.NoError(t, c.Clear(ctx))

				_, err := c.Get(ctx, "all_products")
				assert.ErrorIs(t, err, persist.ErrNotFound)
				_, err = c.Get(ctx, "product_7")
				assert.ErrorIs(t, err, persist.ErrNotFound)
			})
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := persist.NewMemory()

	in := []byte(`[1]`)
	require.NoError(t, c.Set(ctx, "k", in))
	in[1] = '2'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	got[1] = '3'

	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(again))
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := persist.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "all_products", []byte(`[{"id":1}]`)))
	require.NoError(t, c.Close())

	reopened, err := persist.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(ctx, "all_products")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(got))
}

func TestSQLite_RequiresPath(t *testing.T) {
	_, err := persist.OpenSQLite("  ")
	assert.Error(t, err)
}

func TestRedis_ClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("session:abc", "keep"))

	c, err := persist.NewRedis(ctx, persist.RedisConfig{Addr: mr.Addr(), Prefix: "sf:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(ctx, "all_products", []byte(`[]`)))
	assert.True(t, mr.Exists("sf:all_products"))

	require.NoError(t, c.Clear(ctx))

	assert.False(t, mr.Exists("sf:all_products"))
	assert.True(t, mr.Exists("session:abc"))
}

func TestRedis_ConnectFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := persist.NewRedis(context.Background(), persist.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
