// README: Entry point; loads config, wires the store, cache and service, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"propertyapi/internal/config"
	httptransport "propertyapi/internal/http"
	"propertyapi/internal/http/handlers"
	"propertyapi/internal/infra"
	"propertyapi/internal/logger"
	"propertyapi/internal/modules/propertymoney"
)

func main() {
	configPath := flag.String("config", os.Getenv("PMAPI_CONFIG"), "path to YAML config file")
	migrate := flag.Bool("migrate", false, "apply migrations before serving")
	migrationsDir := flag.String("migrations", "migrations", "migrations directory")
	flag.Parse()

	if err := run(*configPath, *migrate, *migrationsDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, migrate bool, migrationsDir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, sync, err := logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := infra.NewTokenVerifier(ctx, cfg.Firebase)
	if err != nil {
		return fmt.Errorf("firebase init: %w", err)
	}
	if verifier == nil {
		log.Warnf("PMAPI_FIREBASE_PROJECT_ID not set, API is unauthenticated")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if migrate {
		if err := infra.ApplyMigrations(ctx, dbPool, migrationsDir); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Infof("migrations applied from %s", migrationsDir)
	}

	redisClient := infra.NewRedis(cfg.Redis)
	defer redisClient.Close()

	store := propertymoney.NewStore(dbPool)
	cache := propertymoney.NewRedisCache(redisClient, cfg.Redis.CacheTTL)
	svc := propertymoney.NewService(store, cache, log)

	srv, err := httptransport.NewServer(httptransport.ServerDeps{
		PropertyMoney:  svc,
		Verifier:       verifier,
		Logger:         log,
		AppName:        cfg.App.Name,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Health: map[string]handlers.PingFunc{
			"db":    dbPool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})
	if err != nil {
		return err
	}

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: srv.Routes()}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("http server listening", "addr", cfg.HTTP.Addr, "app", cfg.App.Name)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
