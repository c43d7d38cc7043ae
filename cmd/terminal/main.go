package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/puntoventa/pos-terminal/internal/api"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
	"github.com/puntoventa/pos-terminal/internal/core/service"
	"github.com/puntoventa/pos-terminal/internal/infrastructure/backend"
	"github.com/puntoventa/pos-terminal/internal/infrastructure/config"
	"github.com/puntoventa/pos-terminal/internal/infrastructure/storage"
	"github.com/puntoventa/pos-terminal/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := buildStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("storage init failed")
	}
	defer cleanup()

	client := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	}, store, log)

	sessionSvc := service.NewSessionService(client, store, log)
	menuSvc := service.NewMenuService(client, log)
	reportSvc := service.NewReportService(client, sessionSvc, log)
	adminSvc := service.NewAdminService(client, sessionSvc, log)
	lockSvc := service.NewLockService(store, log)

	// Restore a persisted session before serving; the terminal may have
	// been restarted mid-shift.
	if state, err := sessionSvc.CheckAuth(ctx); err != nil {
		log.Warn().Err(err).Msg("session restore failed")
	} else if state.IsAuthenticated() {
		if state.Sucursal != nil {
			if err := menuSvc.LoadProducts(ctx, state.Sucursal.ID); err != nil {
				log.Warn().Err(err).Msg("initial catalog load failed")
			}
			_ = menuSvc.LoadCategories(ctx)
		}
	}

	e := api.NewRouter(api.Services{
		Session: sessionSvc,
		Menu:    menuSvc,
		Reports: reportSvc,
		Admin:   adminSvc,
		Lock:    lockSvc,
		Storage: store,
	}, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.URL).Msg("terminal gateway started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

// buildStorage selects the persisted state driver: file (default), redis,
// or mongo.
func buildStorage(ctx context.Context, cfg *config.Config) (ports.Storage, func(), error) {
	switch cfg.Storage.Driver {
	case "file", "":
		store, err := storage.NewFileStore(cfg.Storage.StateDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case "redis":
		client, err := storage.ConnectRedis(ctx, storage.RedisConfig{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisStore(client, cfg.TerminalID), func() { _ = client.Close() }, nil

	case "mongo":
		client, db, err := storage.ConnectMongo(ctx, storage.MongoConfig{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return storage.NewMongoStore(db, cfg.TerminalID), cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
