package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitmind/fitmind/internal/ai"
	"github.com/fitmind/fitmind/internal/config"
	"github.com/fitmind/fitmind/internal/db"
	"github.com/fitmind/fitmind/internal/httpapi"
	"github.com/fitmind/fitmind/internal/httpapi/handlers"
	"github.com/fitmind/fitmind/internal/profile"
	"github.com/fitmind/fitmind/internal/store/rabbitmq"
	"github.com/fitmind/fitmind/internal/store/redisstore"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()

	gdb := db.Connect(cfg.DBDSN)
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	relay, err := ai.NewRelayFromSettings(ctx, cfg.Relay())
	if err != nil {
		log.Fatalf("ai relay: %v", err)
	}

	var cache profile.Cache
	if cfg.RedisAddr != "" {
		rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rds.Close()
		if err := rds.Ping(ctx); err != nil {
			log.Printf("[api] redis unavailable, profile cache disabled addr=%s err=%v", cfg.RedisAddr, err)
		} else {
			cache = rds
		}
	}

	var publisher handlers.JobPublisher
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Fatalf("rabbit publisher: %v", err)
		}
		defer pub.Close()
		publisher = pub
	}

	h := handlers.NewHandler(gdb, cfg, relay, cache, publisher)
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           httpapi.NewRouter(cfg, h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("fitmind api listening on http://localhost:%s provider=%s", cfg.AppPort, cfg.AIProvider)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
