package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appOrder "github.com/arteon/exchange/internal/application/order"
	domainOrder "github.com/arteon/exchange/internal/domain/order"
	domainOutbox "github.com/arteon/exchange/internal/domain/outbox"
	domainPayment "github.com/arteon/exchange/internal/domain/payment"
	"github.com/arteon/exchange/internal/infrastructure/httpmetrics"
	"github.com/arteon/exchange/internal/infrastructure/id"
	"github.com/arteon/exchange/internal/infrastructure/inventory"
	"github.com/arteon/exchange/internal/infrastructure/memory"
	infraobs "github.com/arteon/exchange/internal/infrastructure/observability"
	"github.com/arteon/exchange/internal/infrastructure/observability/oteltrace"
	"github.com/arteon/exchange/internal/infrastructure/observability/prometrics"
	"github.com/arteon/exchange/internal/infrastructure/observability/zaplogger"
	"github.com/arteon/exchange/internal/infrastructure/outbox"
	"github.com/arteon/exchange/internal/infrastructure/partner"
	"github.com/arteon/exchange/internal/infrastructure/postgres"
	"github.com/arteon/exchange/internal/infrastructure/rabbitmq"
	"github.com/arteon/exchange/internal/infrastructure/redislock"
	"github.com/arteon/exchange/internal/infrastructure/scheduler"
	"github.com/arteon/exchange/internal/infrastructure/stripegateway"
	"github.com/arteon/exchange/internal/observability"
	"github.com/arteon/exchange/internal/pkg/clock"
	"github.com/arteon/exchange/internal/pkg/config"
	"github.com/arteon/exchange/internal/pkg/logging"
	httppresentation "github.com/arteon/exchange/internal/presentation/http"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	obsLogger := zaplogger.New(baseLogger)

	registry := prometrics.New("", cfg.ServiceName)
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: registry.Counter(
			string(observability.MUsecaseRequests),
			"Total number of use case invocations.",
			"use_case", "outcome",
		),
		observability.MHTTPRequests: registry.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests served.",
			"method", "route", "status",
		),
		observability.MExternalRequests: registry.Counter(
			string(observability.MExternalRequests),
			"Total number of outbound requests to external APIs.",
			"target", "method", "status",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: registry.Histogram(
			string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.",
			nil,
			"use_case",
		),
		observability.MHTTPRequestDuration: registry.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of served HTTP requests in seconds.",
			nil,
			"method", "route", "status",
		),
		observability.MExternalRequestDuration: registry.Histogram(
			string(observability.MExternalRequestDuration),
			"Duration of outbound requests to external APIs in seconds.",
			nil,
			"target", "method", "status",
		),
	}
	tel := infraobs.New(oteltrace.New(cfg.ServiceName), obsLogger, counters, histograms)
	systemLogger := tel.Logger().With(observability.F("component", "main"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.NewSystem()
	idGenerator := id.NewUUIDGenerator()

	var (
		orderRepo       domainOrder.Repository
		transactionRepo domainPayment.TransactionRepository
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			baseLogger.Fatal("postgres_connect_failed", zap.Error(err))
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			baseLogger.Fatal("postgres_migrate_failed", zap.Error(err))
		}
		orderRepo = postgres.NewOrderRepository(pool)
		transactionRepo = postgres.NewTransactionRepository(pool)
		systemLogger.Info("storage_ready", observability.F("backend", "postgres"))
	} else {
		orderRepo = memory.NewOrderRepository()
		transactionRepo = memory.NewTransactionRepository()
		systemLogger.Info("storage_ready", observability.F("backend", "memory"))
	}

	var locks appOrder.Locker
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			baseLogger.Fatal("redis_connect_failed", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		locks = redislock.New(redisClient)
	} else {
		locks = memory.NewLockManager()
	}

	var publisher domainOutbox.Publisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := rabbitmq.NewPublisher(cfg.AMQPURL)
		if err != nil {
			baseLogger.Fatal("rabbitmq_connect_failed", zap.Error(err))
		}
		defer func() { _ = amqpPublisher.Close() }()
		publisher = amqpPublisher
	} else {
		bus := outbox.NewBus(tel.Logger())
		bus.Start(ctx)
		defer bus.Stop(context.Background())
		publisher = bus
	}

	partnerClient := partner.NewClient(cfg.PartnerAPIURL, &http.Client{
		Timeout:   10 * time.Second,
		Transport: httpmetrics.NewTransport("partner", nil, tel),
	})
	inventoryClient := inventory.NewClient(cfg.InventoryAPIURL, &http.Client{
		Timeout:   10 * time.Second,
		Transport: httpmetrics.NewTransport("inventory", nil, tel),
	})

	gateway, err := stripegateway.New(stripegateway.Config{APIKey: cfg.StripeAPIKey})
	if err != nil {
		baseLogger.Fatal("stripe_init_failed", zap.Error(err))
	}

	fees := appOrder.NewFeeCalculator(partnerClient, appOrder.DefaultFeeSchedule)
	inventoryCoordinator := appOrder.NewInventoryCoordinator(inventoryClient, tel.Logger())
	payments := appOrder.NewPaymentAuthorizer(gateway, transactionRepo, idGenerator, clk, tel.Logger())

	followUp := appOrder.NewFollowUpUseCase(orderRepo, publisher, clk, tel)
	followUpTimer := scheduler.NewTimer(func(ctx context.Context, orderID string, fromState domainOrder.State) error {
		_, err := followUp.Execute(ctx, orderID, fromState)
		return err
	}, tel.Logger())
	defer followUpTimer.Stop()

	createOrder := appOrder.NewCreateOrderUseCase(orderRepo, idGenerator, publisher, clk, tel)
	submitOrder := appOrder.NewSubmitOrderUseCase(
		orderRepo, partnerClient, fees, inventoryCoordinator, payments,
		followUpTimer, publisher, locks, clk, tel,
	)
	lifecycle := appOrder.NewLifecycleService(orderRepo, publisher, locks, clk, tel.Logger())

	handler := httppresentation.NewHandler(createOrder, submitOrder, lifecycle, tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	go func() {
		systemLogger.Info("http_server_start",
			observability.F("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				observability.F("error", err.Error()),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			observability.F("error", err.Error()),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
}
