package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campuslink/internal/collection"
	"campuslink/internal/config"
	"campuslink/internal/httpmiddleware"
	"campuslink/internal/store"
	"campuslink/internal/storeapi"
)

// Store serves the collection REST API the portal reads and writes.
func main() {
	flag.Parse()
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("store server failed: %v", err)
	}
}

// backend opens the configured backend. healthy reports its connectivity.
func backend(ctx context.Context, cfg config.App) (b collection.Backend, healthy func(context.Context) bool, closeFn func(), err error) {
	noop := func() {}
	switch cfg.StoreBackend {
	case "memory":
		return collection.NewMemory(), func(context.Context) bool { return true }, noop, nil

	case "postgres", "sqlite":
		driver, dsn := store.DriverPostgres, cfg.DatabaseURL
		if cfg.StoreBackend == "sqlite" {
			driver, dsn = store.DriverSQLite, cfg.SQLitePath
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, nil, noop, err
			}
		}
		db, err := store.NewDB(driver, dsn)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("db connect: %w", err)
		}
		sqlBackend := collection.NewSQL(db.Client, db.Driver)
		if err := sqlBackend.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, noop, fmt.Errorf("migrate: %w", err)
		}
		return sqlBackend, db.Healthy, func() { _ = db.Close() }, nil

	case "redis":
		rdb := store.NewRedis(cfg.RedisAddr)
		if !rdb.Healthy(ctx) {
			log.Printf("warning: redis not reachable at %s", cfg.RedisAddr)
		}
		return collection.NewRedis(rdb.Client, ""), rdb.Healthy, func() { _ = rdb.Close() }, nil
	}
	return nil, nil, noop, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}

func run(cfg config.App) error {
	ctx := context.Background()

	b, healthy, closeBackend, err := backend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()
	log.Printf("store backend: %s", cfg.StoreBackend)

	if cfg.SeedPath != "" {
		sf, err := collection.LoadSeedFile(cfg.SeedPath)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		n, err := collection.Seed(ctx, b, sf)
		if err != nil {
			return err
		}
		log.Printf("seeded %d records from %s", n, cfg.SeedPath)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.CORS())
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) {
		ok := healthy(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "backend": cfg.StoreBackend, "healthy": ok})
	})

	storeapi.New(collection.Restrict(b, cfg.Collections)).Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.StorePort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("store listening on :%s (collections %v)", cfg.StorePort, cfg.Collections)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down store...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("store forced shutdown: %v", err)
	}
	log.Println("store exited")
	return nil
}
