package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fulfillment/cmd"
	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/pkg/metrics"
	"fulfillment/internal/pkg/tracing"

	"github.com/labstack/gommon/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	config, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var traceOut io.Writer
	if config.OTELTracesStdout {
		traceOut = os.Stdout
	}
	tracer, err := tracing.Setup(traceOut)
	if err != nil {
		log.Fatalf("Error setting up tracing: %v", err)
	}

	gormDB, err := postgres.Connect(ctx, config.DSN(), logger)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err := postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	m := metrics.New()
	app, err := cmd.NewCompositionRoot(config, gormDB, logger, m)
	if err != nil {
		log.Fatalf("Error wiring application: %v", err)
	}

	e, err := httpin.NewRouter(app.CreateHTTPServer(), m, logger)
	if err != nil {
		log.Fatalf("Error building router: %v", err)
	}

	consumer, err := app.CreateOrderReadyConsumer()
	if err != nil {
		log.Fatalf("Error creating order-ready consumer: %v", err)
	}
	consumerDone := make(chan struct{})
	if consumer != nil {
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("order-ready consumer stopped", "error", err)
			}
		}()
	} else {
		close(consumerDone)
		logger.Info("AMQP_URL not set, order-ready consumer disabled")
	}

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", config.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	jobManager.StopAll()
	<-consumerDone
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", "error", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
