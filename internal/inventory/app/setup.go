// Package app contains the application setup for stockroom.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/abgdnv/stockroom/internal/config"
	"github.com/abgdnv/stockroom/internal/inventory/persistence"
	"github.com/abgdnv/stockroom/internal/inventory/service"
	"github.com/abgdnv/stockroom/internal/inventory/transport/console"
	"github.com/abgdnv/stockroom/internal/inventory/transport/rest"
	"github.com/abgdnv/stockroom/internal/platform/bootstrap"
	"github.com/abgdnv/stockroom/internal/platform/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	InventoryService service.InventoryService
	Logger           *slog.Logger
	// Close releases storage clients. It is safe to call once.
	Close func()
}

// SetupDependencies opens the configured storage backend and loads the inventory from it.
func SetupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	gateway, closeFn, err := newGateway(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	svc := service.NewService(ctx, gateway, cfg.Report.LowStockThreshold, logger)
	return &Dependencies{
		InventoryService: svc,
		Logger:           logger,
		Close:            closeFn,
	}, nil
}

// newGateway builds the persistence gateway selected by storage.driver.
func newGateway(ctx context.Context, cfg *config.Config, logger *slog.Logger) (persistence.Gateway, func(), error) {
	st := cfg.Storage
	switch st.Driver {
	case config.DriverFile:
		codec, err := persistence.NewCodec(st.File.Format)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using file storage", "path", st.File.Path, "format", st.File.Format)
		return persistence.NewFileGateway(st.File.Path, codec), func() {}, nil

	case config.DriverPostgres:
		if err := persistence.Migrate(st.Postgres.URL); err != nil {
			return nil, nil, err
		}
		dbPool, err := bootstrap.NewDbPool(ctx, st.Postgres.URL, st.Postgres.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Successfully connected to the database!")
		return persistence.NewPgGateway(dbPool), dbPool.Close, nil

	case config.DriverRedis:
		codec, err := persistence.NewCodec(st.Redis.Format)
		if err != nil {
			return nil, nil, err
		}
		client, err := bootstrap.NewRedisClient(ctx, st.Redis.Addr, st.Redis.DB, st.Redis.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Successfully connected to redis!", "addr", st.Redis.Addr, "key", st.Redis.Key)
		return persistence.NewRedisGateway(client, st.Redis.Key, codec), func() { _ = client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %q", st.Driver)
	}
}

// SetupConsole creates the interactive shell on the given streams.
func SetupConsole(deps *Dependencies, in io.Reader, out io.Writer) *console.Shell {
	return console.NewShell(deps.InventoryService, in, out, deps.Logger)
}

// SetupHttpHandler initializes the router and routes for the HTTP shell.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the inventory.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	itemHandler := rest.NewHandler(deps.InventoryService, deps.Logger)
	itemHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the HTTP shell.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ReadTimeout:    cfg.Server.Timeout.Read,
		WriteTimeout:   cfg.Server.Timeout.Write,
		IdleTimeout:    cfg.Server.Timeout.Idle,
		ReadHeader:     cfg.Server.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
