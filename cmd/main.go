package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	amqpadapter "item-crowdfund/internal/adapter/amqp"
	httpadapter "item-crowdfund/internal/adapter/http"
	"item-crowdfund/internal/adapter/memory"
	"item-crowdfund/internal/adapter/postgres"
	redisadapter "item-crowdfund/internal/adapter/redis"
	"item-crowdfund/internal/adapter/usecase"
	"item-crowdfund/internal/config"
	"item-crowdfund/internal/config/configs"
	"item-crowdfund/internal/core/port"
	"item-crowdfund/internal/db"
	"item-crowdfund/internal/scheduler"
)

// main loads configuration, wires storage, the minting broker and the
// background jobs, then serves HTTP until SIGINT or SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	if err = run(cfg, logger); err != nil {
		logger.Error("crowdfund stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger(cfg configs.Logger) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	switch cfg.SlogFormat() {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		items      port.CrowdfundRepository
		dispatches port.DispatchRepository
	)
	switch cfg.Crowdfund.Storage {
	case configs.StoragePostgres:
		if cfg.Psql.RunMigrations {
			if err := db.Migrate(cfg.Psql.Addr.String()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return fmt.Errorf("database connection: %w", err)
		}
		defer pool.Close()
		items = postgres.NewCrowdfundRepository(pool)
		dispatches = postgres.NewDispatchRepository(pool)
	default:
		repo := memory.NewRepository()
		items, dispatches = repo, repo
		logger.Warn("using in-memory storage, state is lost on restart")
	}

	var minter port.Minter = amqpadapter.NewLogMinter(logger)
	if cfg.AMQP.URL != "" {
		conn, ch, err := amqpadapter.Dial(cfg.AMQP)
		if err != nil {
			return err
		}
		m := amqpadapter.NewMinter(conn, ch, cfg.AMQP.Exchange, cfg.AMQP.RequestKey)
		defer m.Close()
		minter = m
	}

	tokenizer := usecase.NewTokenizer(items, dispatches, minter, cfg.Crowdfund.TokenSupply, logger)
	svc := usecase.NewCrowdfundUseCase(items, tokenizer, usecase.Options{
		Authority:            cfg.Crowdfund.Authority,
		AcceptedCoin:         cfg.Crowdfund.AcceptedCoin,
		DefaultFeePercentage: cfg.Crowdfund.DefaultFeePercentage,
		MinterAccount:        cfg.Crowdfund.MinterAccount,
	}, logger)

	if cfg.Redis.Addr != "" {
		rdb := redisadapter.NewClient(cfg.Redis)
		defer rdb.Close()
		svc.WithDeduper(redisadapter.NewDeduper(rdb, cfg.Redis.DedupTTL, logger))
	}

	if cfg.Crowdfund.SeedFile != "" {
		if err := db.SeedFile(ctx, svc, cfg.Crowdfund.Authority, cfg.Crowdfund.SeedFile); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("seed fixture applied", slog.String("file", cfg.Crowdfund.SeedFile))
	}

	if cfg.AMQP.URL != "" {
		consumer, err := amqpadapter.NewConsumer(cfg.AMQP, svc, logger)
		if err != nil {
			return err
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("mint result consumer stopped", slog.Any("error", err))
			}
		}()
	}

	if cfg.Scheduler.Enabled {
		jobs, err := scheduler.NewManager(logger)
		if err != nil {
			return err
		}
		err = jobs.Register(scheduler.NewStaleDispatchJob(tokenizer,
			cfg.Scheduler.StaleDispatchInterval, cfg.Scheduler.StaleDispatchAfter, logger))
		if err != nil {
			return err
		}
		jobs.Start()
		defer jobs.Stop()
	}

	handler := httpadapter.NewHandler(svc, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}
