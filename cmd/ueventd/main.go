package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyaneshwarpardhi/uevcoalesce/internal/api"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/config"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/dispatcher"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/listener"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/queue"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/source"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/trigger"
)

func main() {
	addr := flag.String("addr", ":8080", "admin HTTP listen address")
	cfgPath := flag.String("config", "configs/uevcoalesce.yaml", "path to the rules YAML config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	store, err := config.NewStore(*cfgPath, logger)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	stopWatch, err := store.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}
	store.OnChange(func(cfg *config.RuleConfig) {
		slog.Info("config hot-reloaded", "version", cfg.Version, "merging_enabled", cfg.MergingEnabled())
	})

	src, err := source.OpenNetlink()
	if err != nil {
		slog.Error("failed to open kernel uevent source", "err", err)
		os.Exit(1)
	}

	q := queue.New()

	initial := store.Acquire()
	lockMemory := initial.Config().Listener.LockMemory
	stagingHint := initial.Config().Listener.StagingHint
	initial.Release()

	l := listener.New(src, q, logger,
		listener.WithMemoryLock(lockMemory),
		listener.WithStagingHint(stagingHint),
	)
	disp := dispatcher.New(q, store, logger)
	trig := trigger.NewLogging(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listenerDone := make(chan error, 1)
	go func() { listenerDone <- l.Run(ctx) }()

	dispatchDone := make(chan error, 1)
	go func() { dispatchDone <- disp.Run(ctx, trig) }()

	handler := api.New(store, disp, logger)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		slog.Info("admin server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("admin server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenerStoppedEarly := false
	select {
	case <-quit:
		slog.Info("shutting down…")
	case err := <-listenerDone:
		listenerStoppedEarly = true
		slog.Error("listener stopped unexpectedly", "err", err)
	}

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)

	cancel()
	if !listenerStoppedEarly {
		if err := <-listenerDone; err != nil {
			slog.Warn("listener exited", "err", err)
		}
	}
	if err := <-dispatchDone; err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("dispatcher exited", "err", err)
	}
	slog.Info("goodbye")
	if listenerStoppedEarly {
		os.Exit(1)
	}
}
