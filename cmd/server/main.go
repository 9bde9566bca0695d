package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"todo-http-demo/internal/clock"
	"todo-http-demo/internal/config"
	"todo-http-demo/internal/controller"
	"todo-http-demo/internal/events"
	"todo-http-demo/internal/metrics"
	"todo-http-demo/internal/notify"
	"todo-http-demo/internal/queue"
	"todo-http-demo/internal/repository"
	"todo-http-demo/internal/routes"
	"todo-http-demo/pkg/logger"
)

func main() {
	config.LoadEnvFile(".env")

	ctx := context.Background()
	cfg := config.Get()
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn(ctx, "Ignoring LOG_LEVEL", "error", err)
	}

	clk := clock.Real{}
	var store *repository.TodoStore
	if cfg.SeedEnabled {
		store = repository.NewSeededTodoStore(clk)
	} else {
		store = repository.NewTodoStore(clk)
	}

	var m *metrics.Collector
	var record events.Recorder
	if cfg.MetricsEnabled {
		m = metrics.NewCollector(store.Count)
		record = m.RecordEvent
	}

	fanout := events.NewFanout(record, eventSinks(ctx, cfg)...)
	defer func() {
		if err := fanout.Close(); err != nil {
			logger.Warn(ctx, "Closing event sinks failed", "error", err)
		}
	}()

	todos := controller.NewTodoController(store, fanout, clk)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      routes.Router(todos, m),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort, "records", store.Count(), "event_sinks", fanout.Sinks())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	logger.Info(ctx, "Server stopped")
}

// eventSinks builds the optional Kafka and Redis publishers.
func eventSinks(ctx context.Context, cfg *config.Config) []events.Sink {
	var sinks []events.Sink
	if len(cfg.KafkaBrokers) > 0 {
		queue.EnsureTopic(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaPartitions)
		sinks = append(sinks, queue.NewPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic))
	}
	rp, err := notify.NewPublisher(ctx, cfg.RedisURL, cfg.RedisChannel, cfg.RedisPoolSize)
	if err != nil {
		logger.Error(ctx, "Redis publisher disabled", "error", err)
	} else if rp != nil {
		sinks = append(sinks, rp)
	}
	return sinks
}
