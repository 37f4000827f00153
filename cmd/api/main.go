package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/kelly-poet/backend/internal/config"
	"github.com/zhouzirui/kelly-poet/backend/internal/handler"
	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	"github.com/zhouzirui/kelly-poet/backend/internal/service/ai"
	"github.com/zhouzirui/kelly-poet/backend/internal/service/chat"
	"github.com/zhouzirui/kelly-poet/backend/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; variables already set in the environment win
	envErr := godotenv.Load()

	ctx, flushLog := log.NewContextWithLogger(ctx, config.IsDebug())
	logger := log.FromCtx(ctx)

	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file loaded, using system environment only")
	}

	if err := run(ctx); err != nil {
		logger.Error().Err(err).Msg("kelly stopped")
		flushLog()
		os.Exit(1)
	}

	logger.Info().Msg("kelly has been shut down gracefully")
	flushLog()
}

// run loads the configuration and serves until ctx is cancelled. It fails before
// listening when the configuration is unusable.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	chatService := chat.NewService(
		personaStore,
		chat.FactoryOf(func(ctx context.Context, p persona.Persona) (*ai.Service, error) {
			return ai.NewServiceFromConfig(ctx, cfg.AI, p)
		}),
		chat.WithWrapWidth(cfg.Render.WrapWidth),
		chat.WithIdleTTL(cfg.Session.IdleTTL),
	)
	if cfg.Session.IdleTTL > 0 {
		go chatService.RunSweeper(ctx, cfg.Session.SweepInterval)
	}
	log.FromCtx(ctx).Info().Str("provider", cfg.AI.Provider).Msg("chat service ready")

	router := handler.NewRouter(*log.FromCtx(ctx), personaStore, chatService)

	return startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.FromCtx(ctx).Info().Str("addr", serverCfg.Addr).Msg("Kelly listening")
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
