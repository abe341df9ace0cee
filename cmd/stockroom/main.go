// Package main runs the stockroom inventory tracker.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/stockroom/internal/config"
	"github.com/abgdnv/stockroom/internal/inventory/app"
	"github.com/abgdnv/stockroom/internal/platform/bootstrap"
	"github.com/abgdnv/stockroom/internal/platform/configloader"
	"golang.org/x/sync/errgroup"
)

const appName = "stockroom"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
}

// run loads the configuration, opens storage and serves the selected shell until it stops.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](configloader.Options{
		AppName:  appName,
		Defaults: config.Defaults(),
	})
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}

	// stdout belongs to the menu in console mode
	var logOut io.Writer = os.Stdout
	if cfg.Mode == config.ModeConsole {
		logOut = os.Stderr
	}
	logger := bootstrap.NewLogger(cfg.Log.Level, logOut)
	slog.SetDefault(logger)
	logger.Debug("Configuration loaded", slog.String("config", cfg.String()))

	deps, err := app.SetupDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up dependencies: %w", err)
	}
	defer deps.Close()

	if cfg.Mode == config.ModeConsole {
		return app.SetupConsole(deps, os.Stdin, os.Stdout).Run(ctx)
	}
	return serveHTTP(ctx, deps, cfg)
}

// serveHTTP runs the HTTP shell and the optional pprof server, then performs the final save.
func serveHTTP(ctx context.Context, deps *app.Dependencies, cfg *config.Config) error {
	logger := deps.Logger
	httpServer := app.SetupHttpServer(deps, cfg)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		return shutdownServer(httpServer, cfg.Shutdown.Timeout)
	})

	if cfg.PProf.Enabled {
		// nil handler serves http.DefaultServeMux, where net/http/pprof registers itself
		pprofServer := &http.Server{Addr: cfg.PProf.Addr}
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			return shutdownServer(pprofServer, cfg.Shutdown.Timeout)
		})
	}

	runErr := g.Wait()
	if runErr != nil && errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Shutdown.Timeout)
	defer cancel()
	if err := deps.InventoryService.Shutdown(saveCtx); err != nil {
		logger.Error("Final save failed", slog.String("error", err.Error()))
		return errors.Join(runErr, err)
	}
	logger.Info("Inventory saved")
	return runErr
}

func shutdownServer(srv *http.Server, timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
