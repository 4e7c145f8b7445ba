package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campuslink/internal/bus"
	"campuslink/internal/config"
	"campuslink/internal/handler"
	"campuslink/internal/httpmiddleware"
	"campuslink/internal/portal"
	"campuslink/internal/remote"
	"campuslink/internal/session"
	"campuslink/internal/store"
)

// Portal serves the student portal views and keeps them in sync with the store.
func main() {
	flag.Parse()
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("portal failed: %v", err)
	}
}

func run(cfg config.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rdb *store.Redis
	if cfg.BusBackend == "redis" || cfg.SessionBackend == "redis" {
		rdb = store.NewRedis(cfg.RedisAddr)
		defer rdb.Close()
	}

	local := bus.NewLocal()
	var b bus.Bus = local
	if cfg.BusBackend == "redis" {
		bridge := bus.NewRedisBridge(local, rdb.Client, cfg.BusChannel)
		if err := bridge.Start(ctx); err != nil {
			log.Printf("warning: redis bus unavailable, signals stay in process: %v", err)
		} else {
			b = bridge
			log.Printf("bus: relaying signals on redis channel %s", cfg.BusChannel)
		}
	}

	var storage session.Storage
	switch cfg.SessionBackend {
	case "file":
		storage = session.NewFileStorage(cfg.SessionPath)
	case "redis":
		storage = session.NewRedisStorage(rdb.Client, cfg.SessionKey)
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
	sess, err := session.Open(ctx, storage, b)
	if err != nil {
		return err
	}
	defer sess.Close()

	client := remote.New(cfg.StoreURL, cfg.StoreTimeout)
	if err := client.Health(ctx); err != nil {
		log.Printf("warning: store not reachable at %s: %v", cfg.StoreURL, err)
	} else {
		log.Printf("store: %s", cfg.StoreURL)
	}

	app := portal.New(client, sess, b, portal.Options{
		PollInterval:  cfg.PollInterval,
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	})
	defer app.Close()

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
	handler.New(app, func(c *gin.Context) error { return client.Health(c.Request.Context()) }).Routes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.PortalPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("portal listening on :%s (poll every %s)", cfg.PortalPort, cfg.PollInterval)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down portal...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("portal forced shutdown: %v", err)
	}
	log.Println("portal exited")
	return nil
}
