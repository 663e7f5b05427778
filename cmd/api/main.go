package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/udla/user-directory/docs"
	"github.com/udla/user-directory/internal/api"
	"github.com/udla/user-directory/internal/api/handler"
	"github.com/udla/user-directory/internal/app"
	"github.com/udla/user-directory/internal/infrastructure/db"
	"github.com/udla/user-directory/internal/pkg/config"
	"github.com/udla/user-directory/pkg/logger"
)

// @title                       User Directory API
// @version                     1.0
// @description                 Institutional user registration, authentication and administration.
// @BasePath                    /
// @securityDefinitions.apikey  TokenAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "user-directory",
	})

	store, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("store close failed")
		}
	}()
	if err := store.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate store")
	}
	log.Info().Str("driver", store.Driver).Msg("store ready")

	services, err := app.NewServices(cfg, store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build services")
	}

	if cfg.Bootstrap.Enabled() {
		created, err := app.EnsureAdmin(ctx, services.Registration, cfg.Bootstrap)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to bootstrap admin")
		}
		log.Info().Bool("created", created).Str("username", cfg.Bootstrap.Username).Msg("bootstrap admin checked")
	}

	flags, err := app.NewFlags(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up feature flags")
	}
	defer flags.Close()

	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	flags.Dispatcher.Start(dispatchCtx)

	health := []handler.Dependency{{Name: store.Driver, Ping: store.Ping}}
	if flags.Ping != nil {
		health = append(health, handler.Dependency{Name: "redis", Ping: flags.Ping})
	}

	e := api.NewRouter(api.Deps{
		Auth:         services.Auth,
		Registration: services.Registration,
		Directory:    services.Directory,
		Flags:        flags.Client,
		Health:       health,
		Log:          log,
		Registerer:   prometheus.DefaultRegisterer,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Bool("flags_initialized", flags.Client.Initialized()).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	stopDispatch()
	flags.Dispatcher.Wait()
	log.Info().Msg("shutdown complete")
}
