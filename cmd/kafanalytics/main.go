package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jittakal/kafanalytics/internal/config"
	apperrors "github.com/jittakal/kafanalytics/internal/errors"
	"github.com/jittakal/kafanalytics/internal/generator"
	"github.com/jittakal/kafanalytics/internal/kafka"
	"github.com/jittakal/kafanalytics/internal/metrics"
	"github.com/jittakal/kafanalytics/pkg/event"
	"github.com/jittakal/kafanalytics/pkg/inflector"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// Version information (set during build)
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"

	// Command-line flags
	configFile  = flag.String("config", getEnv("CONFIG_FILE", "config/local.yaml"), "Path to configuration file")
	logLevel    = flag.String("log-level", getEnv("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	metricsPort = flag.String("metrics-port", getEnv("METRICS_PORT", "9090"), "Prometheus metrics port")
)

// eventProducer is the subset of the Kafka producer used by the produce loop
type eventProducer interface {
	ProduceEvent(ctx context.Context, topic string, e *event.Event) (string, error)
}

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := initLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting kafanalytics",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("buildTime", buildTime),
	)

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("configFile", *configFile),
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Topics.Events),
	)

	// Initialize metrics
	metricsCollector := metrics.NewCollector(prometheus.DefaultRegisterer)

	// Start metrics server
	metricsServer := newMetricsServer(*metricsPort)
	go func() {
		logger.Info("Starting metrics server", zap.String("address", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Metrics server failed", zap.Error(err))
		}
	}()

	// Create Kafka producer
	producer, err := kafka.NewProducer(cfg.Kafka, cfg.Event, logger)
	if err != nil {
		logger.Fatal("Failed to create Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	logger.Info("Kafka producer initialized successfully")

	// Create event generator
	eventGen := generator.NewGenerator(cfg.Generator, logger)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start producing events
	done := make(chan struct{})
	go func() {
		defer close(done)
		produceEvents(ctx, producer, eventGen, metricsCollector, cfg, logger)
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for event production to stop")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Metrics server shutdown failed", zap.Error(err))
	}

	underscored, camelCased := inflector.Default().Len()
	logger.Info("Shutdown complete",
		zap.Int("inflectorUnderscoreEntries", underscored),
		zap.Int("inflectorCamelCaseEntries", camelCased),
	)
}

// produceEvents continuously generates and produces events
func produceEvents(
	ctx context.Context,
	producer eventProducer,
	eventGen *generator.Generator,
	metricsCollector *metrics.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) {
	ticker := time.NewTicker(time.Duration(cfg.Generator.IntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping event production")
			return
		case <-ticker.C:
			produceOne(ctx, producer, eventGen.Generate(), metricsCollector, cfg.Topics.Events, logger)
		}
	}
}

// produceOne publishes a single event and records the outcome
func produceOne(
	ctx context.Context,
	producer eventProducer,
	e *event.Event,
	metricsCollector *metrics.Collector,
	topic string,
	logger *zap.Logger,
) {
	eventType, _ := e.GetString(event.FieldEventType)
	start := time.Now()

	id, err := producer.ProduceEvent(ctx, topic, e)
	metricsCollector.ObserveProducerDuration(topic, time.Since(start).Seconds())

	var validationErr *apperrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.Warn("Rejected analytics event",
			zap.Error(err),
			zap.String("field", validationErr.Field),
		)
		metricsCollector.IncEventsRejectedTotal(validationErr.Field)
	case err != nil:
		logger.Error("Failed to produce analytics event",
			zap.Error(err),
			zap.String("eventType", eventType),
		)
		metricsCollector.IncEventsFailedTotal(topic, eventType)
	default:
		logger.Debug("Produced analytics event",
			zap.String("eventId", id),
			zap.String("eventType", eventType),
			zap.String("topic", topic),
		)
		metricsCollector.IncEventsProducedTotal(topic, eventType)
		metricsCollector.ObserveEventFields(e.Len())
	}
}

// newMetricsServer exposes Prometheus metrics and a health endpoint
func newMetricsServer(port string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// initLogger initializes the zap logger based on the log level
func initLogger(level string) (*zap.Logger, error) {
	var config zap.Config

	switch level {
	case "debug":
		config = zap.NewDevelopmentConfig()
	case "info", "warn", "error":
		config = zap.NewProductionConfig()
		config.Level = parseLogLevel(level)
	default:
		config = zap.NewProductionConfig()
	}

	return config.Build()
}

// parseLogLevel parses the log level string
func parseLogLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
