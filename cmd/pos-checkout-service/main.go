// Package main boots the POS Checkout Service HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/pos-checkout-service/internal/catalog"
	"github.com/fairyhunter13/pos-checkout-service/internal/checkout"
	"github.com/fairyhunter13/pos-checkout-service/internal/config"
	httpapi "github.com/fairyhunter13/pos-checkout-service/internal/http"
	"github.com/fairyhunter13/pos-checkout-service/internal/journal"
	"github.com/fairyhunter13/pos-checkout-service/internal/obs"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting")

	var cat catalog.Store
	if cfg.DatabaseURL != "" {
		pg, err := catalog.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			obs.Logger.Error("catalog_connect_error", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		obs.Logger.Info("catalog_connected", "backend", "postgres")
		cat = pg
	} else {
		obs.Logger.Warn("no DATABASE_URL set, using in-memory catalog")
		cat = catalog.NewMemory()
	}

	jm := journal.NewManager(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	jm.Start(ctx)

	metrics := obs.NewMetrics()
	coord := checkout.NewCoordinator(cat, checkout.NewRegistry(), jm, metrics)
	app := httpapi.NewApp(cfg, cat, coord, jm)
	handler := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	app.StartShutdown()

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}

	obs.Logger.Info("shutdown_drain_begin", "backlog_size", jm.BacklogSize(), "worker_count", jm.WorkerCount())
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := jm.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}
	jm.Stop()
	obs.Logger.Info("service_stopped")
}
