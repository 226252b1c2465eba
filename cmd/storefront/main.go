package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"Storefront/internal/auth"
	"Storefront/internal/catalog"
	"Storefront/internal/storefront"
	"Storefront/pkg/kit"
)

func main() {
	service := "storefront"

	cfg, err := storefront.LoadConfig()
	if err != nil {
		log := kit.NewLogger(service, "info")
		log.Fatal("invalid config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, err := cfg.Cache.Open(ctx)
	if err != nil {
		log.Fatal("open persistent cache failed", zap.String("backend", cfg.Cache.Backend), zap.Error(err))
	}
	defer func() { _ = cache.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []storefront.Option{
		storefront.WithLogger(log),
		storefront.WithMetrics(storefront.NewMetrics(reg)),
	}
	if cfg.DedupReads {
		opts = append(opts, storefront.WithReadDedup())
	}
	store := storefront.New(catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout, log), cache, opts...)

	s := &storefront.Server{
		Store:   store,
		Session: auth.NewSession(auth.NewTokenMaker(cfg.JWTSecret), log),
		Log:     log,
	}
	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:              log,
		Service:          service,
		Registry:         reg,
		MetricsEnabled:   true,
		MetricsToken:     cfg.MetricsToken,
		WriteLimitPerMin: cfg.WriteLimitPerMin,
	})

	log.Info("storefront configured",
		zap.String("catalog_url", cfg.CatalogURL),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("dedup_reads", cfg.DedupReads),
	)

	if err := kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
	}
}
