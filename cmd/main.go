package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/immxrtalbeast/roomrent/internal/api/http"
	"github.com/immxrtalbeast/roomrent/internal/app"
	"github.com/immxrtalbeast/roomrent/internal/config"
	"github.com/immxrtalbeast/roomrent/lib/logger/sl"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := app.SetupLogger(cfg.Env)

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to build application", sl.Err(err))
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Migrate(); err != nil {
		log.Error("failed to migrate database", sl.Err(err))
		os.Exit(1)
	}

	router := httpapi.SetupRouter(httpapi.RouterConfig{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
		Log:            log,
	}, httpapi.Controllers{
		Listings:  httpapi.NewListingController(a.Listing, a.Visibility, a.Requests),
		Requests:  httpapi.NewRequestController(a.Requests),
		Contracts: httpapi.NewContractController(a.Contracts, a.Invoices),
		Invoices:  httpapi.NewInvoiceController(a.Invoices, log),
		Events:    httpapi.NewEventsController(a.Broker, log),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.Scheduler.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting application", slog.String("addr", cfg.HTTP.Address), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", sl.Err(err))
	}
}
