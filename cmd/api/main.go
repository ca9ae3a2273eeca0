package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/medimartid/medimart-gateway/api/routes"
	"github.com/medimartid/medimart-gateway/internal/cart"
	"github.com/medimartid/medimart-gateway/internal/checkout"
	"github.com/medimartid/medimart-gateway/internal/notify"
	"github.com/medimartid/medimart-gateway/internal/orders"
	"github.com/medimartid/medimart-gateway/internal/shipping"
	"github.com/medimartid/medimart-gateway/pkg/config"
	"github.com/medimartid/medimart-gateway/pkg/logger"
	"github.com/medimartid/medimart-gateway/pkg/marketapi"
	"github.com/medimartid/medimart-gateway/pkg/metrics"
	"github.com/medimartid/medimart-gateway/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	marketClient, err := marketapi.NewClient(cfg.Upstream.BaseURL,
		marketapi.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}))
	if err != nil {
		logg.Error(ctx, "failed to build marketplace client", err)
		os.Exit(1)
	}

	notifier := notify.NewMemory(logg)

	remote := cart.NewMarketRemote(marketClient, cfg.Cart.PageLimit)
	cartService, cartRegistry, err := cart.NewService(remote, notifier, logg, cfg.Cart)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}
	go cartRegistry.Run(ctx)

	resolver, err := shipping.NewResolver(marketClient, cfg.Shipping)
	if err != nil {
		logg.Error(ctx, "failed to create shipping resolver", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(cartService, resolver, marketClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(marketClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting gateway server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			Redis:           redisClient,
			Upstream:        marketClient,
			CartService:     cartService,
			CheckoutService: checkoutService,
			OrdersService:   ordersService,
			Notifier:        notifier,
			HTTPMetrics:     httpMetrics,
			Registry:        registry,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(startCtx, "gateway server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(startCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(startCtx, "graceful shutdown failed", err)
		}
	}
}
