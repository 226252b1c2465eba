package storefront

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://fakestoreapi.com/products", cfg.CatalogURL)
	assert.Equal(t, 10*time.Second, cfg.CatalogTimeout)
	assert.False(t, cfg.DedupReads)
	assert.Equal(t, 30, cfg.WriteLimitPerMin)
	assert.Equal(t, BackendSQLite, cfg.Cache.Backend)
	assert.Equal(t, "storefront:", cfg.Cache.RedisPrefix)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("PORT", "9000")
	t.Setenv("CATALOG_TIMEOUT", "250ms")
	t.Setenv("DEDUP_READS", "true")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.CatalogTimeout)
	assert.True(t, cfg.DedupReads)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 3, cfg.Cache.RedisDB)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("CACHE_BACKEND", "floppy")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), `unknown CACHE_BACKEND "floppy"`)
}

func TestCacheConfig_Open(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cases := []CacheConfig{
		{Backend: BackendMemory},
		{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "cache.db")},
		{Backend: BackendRedis, RedisAddr: mr.Addr(), RedisPrefix: "test:"},
	}
	for _, cc := range cases {
		t.Run(cc.Backend, func(t *testing.T) {
			c, err := cc.Open(ctx)
			require.NoError(t, err)
			t.Cleanup(func() { _ = c.Close() })

			require.NoError(t, c.Set(ctx, allProductsKey, []byte(`[]`)))
			raw, err := c.Get(ctx, allProductsKey)
			require.NoError(t, err)
			assert.JSONEq(t, `[]`, string(raw))
		})
	}

	_, err := CacheConfig{Backend: "floppy"}.Open(ctx)
	require.Error(t, err)
}
