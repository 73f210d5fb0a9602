// @title Medication Dashboard
// @version 1.0
// @description Vista HTTP del dashboard de medicación: cache de consultas con escrituras optimistas sobre el API de pacientes.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medication-dashboard/internal/adapters/storage/memory"
	"medication-dashboard/internal/adapters/storage/postgres"
	"medication-dashboard/internal/adapters/storage/redis"
	"medication-dashboard/internal/config"
	"medication-dashboard/internal/platform/httpclient"
	"medication-dashboard/internal/platform/logger"
	"medication-dashboard/internal/ports/session"
	"medication-dashboard/internal/router"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dashboard",
		Short:        "Dashboard de medicación",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Imprime la versión",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	tokens, closer, err := openSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	app, err := router.NewRouter(router.Options{
		Logger: log,
		API: httpclient.Config{
			BaseURL:      cfg.APIBaseURL,
			APIKey:       cfg.APIKey,
			APIKeyHeader: cfg.APIKeyHeader,
			Timeout:      cfg.APITimeout,
		},
		SeedSandbox: cfg.IsDev(),
		Tokens:      tokens,
		LoginURL:    cfg.LoginURL,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout(cfg.APITimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.Bool("sandbox", cfg.UsesSandbox()),
			zap.String("session_backend", cfg.SessionBackend),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// writeTimeout cubre commit + refetch del settle, cada uno hasta apiTimeout.
func writeTimeout(apiTimeout time.Duration) time.Duration {
	return 2*apiTimeout + 5*time.Second
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openSessionStore elige dónde persiste el token según SESSION_BACKEND.
func openSessionStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (session.TokenStore, io.Closer, error) {
	switch cfg.SessionBackend {
	case config.SessionRedis:
		opts := redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
		client := redis.NewClient(opts)
		if err := redis.Ping(ctx, client); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		log.Info("session store: redis", zap.String("addr", cfg.RedisAddr))
		return redis.NewSessionRepo(client, opts), client, nil

	case config.SessionPostgres:
		db, err := postgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		log.Info("session store: postgres")
		return postgres.NewSessionRepo(db), db, nil
	}

	log.Info("session store: memory")
	return memory.NewSessionRepo(), nopCloser{}, nil
}
