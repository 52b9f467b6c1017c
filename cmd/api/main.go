package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcelsud/webhook-courier/config"
	"github.com/marcelsud/webhook-courier/delivery"
	"github.com/marcelsud/webhook-courier/delivery/backoff"
	deliveryredis "github.com/marcelsud/webhook-courier/delivery/redis"
	"github.com/marcelsud/webhook-courier/internal/http/chi"
	"github.com/marcelsud/webhook-courier/metrics"
	"github.com/marcelsud/webhook-courier/subscription"
	subscriptionredis "github.com/marcelsud/webhook-courier/subscription/redis"
	"github.com/prometheus/client_golang/prometheus"
)

const TIMEOUT = 30 * time.Second

/* main is where the wiring of all packages happens: dependencies are
 * initialized here, configured, and handed to the packages holding the
 * business logic. Imports flow in one direction only: the application
 * imports the business layers, which import the storage layer.
 */

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.GetConfig()
	if err != nil {
		logger.Error("loading config", slog.Any("error", err))
		return
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	// Storage
	deliveryRepo, err := deliveryredis.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connecting delivery repository", slog.Any("error", err))
		return
	}
	defer deliveryRepo.Close(ctx)

	subRepo := subscriptionredis.NewRepository(deliveryRepo.Client())

	if cfg.SubscriptionsFile != "" {
		if err := subscription.LoadFile(ctx, cfg.SubscriptionsFile, subRepo); err != nil {
			logger.Error("preloading subscriptions", slog.Any("error", err))
			return
		}
	}

	// Delivery engine
	table, err := cfg.Backoff()
	if err != nil {
		logger.Error("parsing backoff table", slog.Any("error", err))
		return
	}

	counters := metrics.NewCounters(prometheus.DefaultRegisterer)
	queue := delivery.NewQueue(logger, delivery.WithConcurrency(cfg.Concurrency))
	orchestrator := delivery.NewOrchestrator(
		subRepo,
		deliveryRepo,
		delivery.NewExecutor(cfg.DeliveryTimeout),
		backoff.NewTable(table),
		queue,
		cfg.MaxRetries,
		counters,
		logger,
	)

	queue.Start(orchestrator)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), TIMEOUT)
		defer cancel()
		queue.Stop(stopCtx)
	}()

	go drainOperationalErrors(orchestrator, logger)

	// Re-arm deliveries interrupted by the previous shutdown or crash
	if err := orchestrator.Recover(ctx); err != nil {
		logger.Error("recovering unfinished deliveries", slog.Any("error", err))
		return
	}

	// Metrics
	collector := metrics.NewEngineCollector(deliveryRepo, queue)
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		logger.Error("creating metrics exporter", slog.Any("error", err))
		return
	}
	defer exporter.Shutdown(ctx)

	// HTTP front door
	subService := subscription.NewService(subRepo)
	deliveryService := delivery.NewService(subRepo, deliveryRepo, queue)
	r := chi.Handlers(subService, deliveryService, exporter.ServeHTTP(), cfg.Keys())

	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	logger.Info("listening", slog.String("port", cfg.Port))
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("server", slog.Any("error", err))
		return
	}
	if err := <-errShutdown; err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}

// drainOperationalErrors logs fatal delivery-loop errors (persistence
// failures that halted a webhook) so operators can intervene.
func drainOperationalErrors(orchestrator *delivery.Orchestrator, logger *slog.Logger) {
	for err := range orchestrator.Errors() {
		logger.Error("delivery engine", slog.Any("error", err))
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("forcing the server to close")
	default:
		errShutdown <- fmt.Errorf("forcing the server to close")
	}
}
