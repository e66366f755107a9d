package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/veto-bracket-backend/internal/config"
	"github.com/DoyleJ11/veto-bracket-backend/internal/httpapi"
	"github.com/DoyleJ11/veto-bracket-backend/internal/hub"
	"github.com/DoyleJ11/veto-bracket-backend/internal/lobby"
	"github.com/DoyleJ11/veto-bracket-backend/internal/logging"
	"github.com/DoyleJ11/veto-bracket-backend/internal/metrics"
	"github.com/DoyleJ11/veto-bracket-backend/internal/storage"
	"github.com/DoyleJ11/veto-bracket-backend/internal/tournament"
	"github.com/DoyleJ11/veto-bracket-backend/internal/veto"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	var repo tournament.Repository = tournament.NewMemoryRepository()
	if cfg.DatabaseURL != "" {
		store, err := storage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer store.Close()
		repo = store
		logger.Info("using postgres match store")
	}

	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.NewRecorder()
	}

	var checker veto.PasswordChecker = veto.PlainChecker{}
	if cfg.PasswordScheme == "bcrypt" {
		checker = veto.BcryptChecker{}
	}

	h := hub.NewHub(ctx, lobby.Options{
		Machine:   veto.Machine{Checker: checker},
		TimerUnit: cfg.TurnTimerUnit,
		Logger:    logger.Named("lobby"),
		Metrics:   rec,
	})

	handler := httpapi.SetupRoutes(httpapi.Deps{
		Hub:           h,
		Tournaments:   tournament.NewRegistry(repo, logger.Named("tournament"), rec),
		Metrics:       rec,
		Logger:        logger.Named("http"),
		HashPasswords: cfg.PasswordScheme == "bcrypt",
	})
	srv := &http.Server{Addr: cfg.Addr(), Handler: handler}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		h.Inbox() <- hub.ShutdownHub{}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
