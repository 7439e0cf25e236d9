package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"supplytrack/internal/jwtauth"
	ledgerhandler "supplytrack/internal/ledger/handler"
	ledgermetrics "supplytrack/internal/ledger/metrics"
	ledgerservice "supplytrack/internal/ledger/service"
	eventstore "supplytrack/internal/ledger/store/event"
	productstore "supplytrack/internal/ledger/store/product"
	"supplytrack/internal/platform/config"
	"supplytrack/internal/platform/database"
	"supplytrack/internal/platform/httpserver"
	"supplytrack/internal/platform/logger"
	userhandler "supplytrack/internal/users/handler"
	usermetrics "supplytrack/internal/users/metrics"
	userservice "supplytrack/internal/users/service"
	userstore "supplytrack/internal/users/store/user"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var (
		products ledgerservice.ProductStore
		events   ledgerservice.EventStore
		users    userservice.UserStore
		txOpts   []ledgerservice.Option
	)
	if cfg.DatabaseURL != "" {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		products = productstore.NewPostgres(db)
		events = eventstore.NewPostgres(db)
		users = userstore.NewPostgres(db)
		txOpts = append(txOpts, ledgerservice.WithTx(newLedgerPostgresTx(db)))
		log.Info("using postgres stores")
	} else {
		products = productstore.NewInMemory()
		events = eventstore.NewInMemory()
		users = userstore.NewInMemory()
		log.Info("using in-memory stores")
	}

	userSvc := userservice.New(users,
		userservice.WithLogger(log),
		userservice.WithMetrics(usermetrics.New()),
	)
	ledgerSvc := ledgerservice.New(products, events, userSvc,
		append(txOpts,
			ledgerservice.WithLogger(log),
			ledgerservice.WithMetrics(ledgermetrics.New()),
		)...,
	)

	tokens := jwtauth.New(cfg.JWTSigningKey, cfg.TokenTTL)

	router := chi.NewRouter()
	userhandler.New(userSvc, tokens, log, cfg.RequestTimeout).Register(router)
	ledgerhandler.New(ledgerSvc, log, tokens, cfg.RequestTimeout).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting supplytrack", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
