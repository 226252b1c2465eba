package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/pkg/kit"
)

type config struct {
	Port        string `env:"PORT" envDefault:"8082"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	service := "catalog"

	var cfg config
	if err := kit.ParseEnv(&cfg); err != nil {
		kit.NewLogger(service, "info").Fatal("invalid config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := catalog.NewStore()
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db connect failed", zap.Error(err))
		}
		defer pool.Close()

		sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = catalog.EnsureSchema(sctx, pool)
		cancel()
		if err != nil {
			log.Fatal("ensure schema failed", zap.Error(err))
		}

		store = catalog.NewPostgresStore(pool)
		log.Info("using postgres store")
	} else {
		log.Info("using memory store", zap.Int("seeded", len(catalog.SeedProducts())))
	}

	s := &catalog.Server{Store: store, Log: log}
	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:      log,
		Service:  service,
		Registry: prometheus.NewRegistry(),
	})

	if err := kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
	}
}
