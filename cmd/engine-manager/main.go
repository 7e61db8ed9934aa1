// cmd/engine-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"proposal-workers/internal/common/camunda"
	"proposal-workers/internal/common/config"
	"proposal-workers/internal/common/database"
	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/observability"
	"proposal-workers/internal/engine/catalog"
	"proposal-workers/internal/engine/fieldmap"
	"proposal-workers/internal/engine/techcheck"
	"proposal-workers/internal/provencase"

	// Proposal Workers (2)
	ap "proposal-workers/internal/workers/proposal/audit-proposal"
	gp "proposal-workers/internal/workers/proposal/generate-proposal"

	// Data Import Workers (2)
	ai "proposal-workers/internal/workers/data-import/analyze-import"
	vtd "proposal-workers/internal/workers/data-import/validate-technical-data"

	// Communication Workers (1)
	nr "proposal-workers/internal/workers/communication/notify-reviewer"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting engine manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("engine-manager")
	defer obs.Shutdown()

	if endpoint := os.Getenv("JAEGER_COLLECTOR_ENDPOINT"); endpoint != "" {
		if err := obs.EnableTracing("engine-manager", endpoint); err != nil {
			zapLog.Warn("tracing disabled", zap.Error(err))
		}
	}

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared Engine Components ---
	techCatalog := catalog.Default()
	analyzer := fieldmap.NewAnalyzer(fieldmap.DefaultPatterns())
	checker := techcheck.NewChecker(techcheck.DefaultRanges())

	caseStore := provencase.NewStore(pg.DB)
	caseSearch := provencase.NewSearch(esClient.Client, cfg.Engine.ProvenCases.Index)
	caseService := provencase.NewService(
		caseSearch, caseStore, redis.Client,
		time.Duration(cfg.Engine.ProvenCases.CacheTTL)*time.Second,
		time.Duration(cfg.Engine.ProvenCases.QueryTimeout)*time.Millisecond,
		log,
	)

	zapLog.Info("Engine components initialized")

	var jobWorkers []worker.JobWorker
	register := func(taskType string, handlerFunc camunda.HandlerFunc) {
		if jw := camunda.StartWorker(zeebeClient, taskType, handlerFunc, cfg.Workers[taskType], zapLog); jw != nil {
			jobWorkers = append(jobWorkers, jw)
		}
	}

	// --- START: Register ALL 5 Workers ---

	// --- 1. Proposal Workers (2) ---
	if cfg.Workers[gp.TaskType].Enabled {
		handler := gp.NewHandler(
			&gp.Config{
				Timeout: time.Duration(cfg.Workers[gp.TaskType].Timeout) * time.Millisecond,
			},
			techCatalog, log,
		)
		register(gp.TaskType, handler.Handle)
	}

	if cfg.Workers[ap.TaskType].Enabled {
		handler := ap.NewHandler(
			&ap.Config{
				Timeout:        time.Duration(cfg.Workers[ap.TaskType].Timeout) * time.Millisecond,
				MaxProvenCases: cfg.Engine.ProvenCases.MaxResults,
			},
			caseService, log,
		)
		register(ap.TaskType, handler.Handle)
	}

	// --- 2. Data Import Workers (2) ---
	if cfg.Workers[ai.TaskType].Enabled {
		handler := ai.NewHandler(
			&ai.Config{
				Timeout:    time.Duration(cfg.Workers[ai.TaskType].Timeout) * time.Millisecond,
				PreviewTTL: time.Duration(cfg.Engine.ImportCache.TTL) * time.Second,
			},
			analyzer, redis.Client, log,
		)
		register(ai.TaskType, handler.Handle)
	}

	if cfg.Workers[vtd.TaskType].Enabled {
		handler := vtd.NewHandler(
			&vtd.Config{
				Timeout: time.Duration(cfg.Workers[vtd.TaskType].Timeout) * time.Millisecond,
			},
			checker, log,
		)
		register(vtd.TaskType, handler.Handle)
	}

	// --- 3. Communication Workers (1) ---
	if cfg.Workers[nr.TaskType].Enabled {
		handler, err := nr.NewHandler(
			&nr.Config{
				Timeout:      time.Duration(cfg.Workers[nr.TaskType].Timeout) * time.Millisecond,
				AWSRegion:    cfg.Notifications.AWS.Region,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
			},
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create notify-reviewer handler", zap.Error(err))
		}
		register(nr.TaskType, handler.Handle)
	}
	zapLog.Info("All 5 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, jw := range jobWorkers {
		jw.Close()
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Engine manager stopped gracefully")
}
