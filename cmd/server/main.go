package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/doctoc/internal/api"
	"github.com/dgallion1/doctoc/internal/cache"
	"github.com/dgallion1/doctoc/internal/config"
	"github.com/dgallion1/doctoc/internal/pathstore"
	"github.com/dgallion1/doctoc/internal/pipeline"
	"github.com/dgallion1/doctoc/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outline cache (optional).
	var outlines *cache.Cache
	if cfg.CacheDir != "" {
		outlines, err = cache.Open(cfg.CacheDir, cfg.CacheTTL, log)
		if err != nil {
			log.Error("failed to open outline cache", "dir", cfg.CacheDir, "error", err)
			os.Exit(1)
		}
		go outlines.RunGC(ctx, 10*time.Minute)
	}

	// Pathstore (optional). Interfaces stay nil when it is not configured.
	var (
		ps        *pathstore.Client
		publisher pipeline.Publisher
		docs      api.DocumentStore
	)
	if cfg.PathstoreURL != "" {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		publisher, docs = ps, ps
	}

	// Initialize pipeline and sessions.
	stats := pipeline.NewRenderStats(time.Hour)
	orch := pipeline.NewOrchestrator(cfg, outlines, publisher, stats, log)
	orch.Start(ctx)

	sessions := session.NewStore(cfg.SessionTTL, log)
	go sessions.Run(ctx, time.Minute)

	// Initialize HTTP server.
	srv := api.NewServer(orch, sessions, docs, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		orch.Stop()
		sessions.CloseAll()
		cancel()
		if err := outlines.Close(); err != nil {
			log.Warn("close outline cache", "error", err)
		}
		if ps != nil {
			ps.Close()
		}
	}()

	log.Info("starting doctoc", "port", cfg.Port, "cache", cfg.CacheDir != "", "pathstore", ps != nil)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
