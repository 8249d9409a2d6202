package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orders-demo/internal/auth"
	"github.com/nikolayk812/orders-demo/internal/config"
	"github.com/nikolayk812/orders-demo/internal/handler"
	"github.com/nikolayk812/orders-demo/internal/observability"
	"github.com/nikolayk812/orders-demo/internal/repository"
	"github.com/nikolayk812/orders-demo/internal/service"
	"github.com/nikolayk812/orders-demo/internal/shutdown"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"net/http"
	"os"
	"sync"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log, err := observability.NewLogger("orders", cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("observability.NewLogger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping: %w", err)
	}

	repo, err := repository.NewCart(pool)
	if err != nil {
		return fmt.Errorf("repository.NewCart: %w", err)
	}

	svc, err := service.NewCart(repo, service.WithLogger(log.Named("cart_service")))
	if err != nil {
		return fmt.Errorf("service.NewCart: %w", err)
	}

	authn, err := auth.NewAuthenticator(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("auth.NewAuthenticator: %w", err)
	}

	orders, err := handler.NewOrders(svc, log.Named("http"))
	if err != nil {
		return fmt.Errorf("handler.NewOrders: %w", err)
	}

	router := handler.NewRouter(orders, authn, pool, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           otelhttp.NewHandler(router, "orders"),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", zap.Error(err))
	}

	wg.Wait()
	log.Info("bye")

	return nil
}
