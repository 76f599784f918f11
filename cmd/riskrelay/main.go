// ABOUTME: Entry point for the RiskRelay risk-assessment service.
// ABOUTME: Handles configuration parsing, wiring, and starts the consumer loop and HTTP server.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jfeddern/RiskRelay/internal/alerts"
	"github.com/jfeddern/RiskRelay/internal/assess"
	"github.com/jfeddern/RiskRelay/internal/engine"
	"github.com/jfeddern/RiskRelay/internal/inference"
	"github.com/jfeddern/RiskRelay/internal/metrics"
	"github.com/jfeddern/RiskRelay/internal/mock"
	"github.com/jfeddern/RiskRelay/internal/normalize"
	"github.com/jfeddern/RiskRelay/internal/queue"
	"github.com/jfeddern/RiskRelay/internal/scm"
	"github.com/jfeddern/RiskRelay/internal/scorers"
	"github.com/jfeddern/RiskRelay/internal/server"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	// Local development convenience; missing .env is fine
	_ = godotenv.Load()

	config := parseConfig()

	// Set up structured logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Received shutdown signal")
		cancel()
	}()

	app, err := NewApp(ctx, config, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create application")
	}

	if err := app.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start application")
	}
}

func parseConfig() *engine.Config {
	config := &engine.Config{}

	flag.IntVar(&config.Port, "port", 8080, "Port to serve HTTP on")
	flag.IntVar(&config.QueueCapacity, "queue-capacity", 0, "Maximum queued events, 0 for unbounded")
	flag.StringVar(&config.GitHubToken, "github-token", "", "Token for source-control API access")
	flag.StringVar(&config.InferenceURL, "inference-url", "http://localhost:8000", "Base URL of the ML inference service")
	flag.DurationVar(&config.CacheTTL, "cache-ttl", 30*time.Minute, "TTL for cached alert lookups")
	flag.BoolVar(&config.MockMode, "mock", false, "Use mock collaborators for local testing (no external API calls)")
	flag.BoolVar(&config.EnableHeuristic, "enable-heuristic", true, "Enable the heuristic scorer")
	flag.BoolVar(&config.EnableMLModel, "enable-ml-model", true, "Enable the ML-model scorer")
	flag.BoolVar(&config.EnableSecurityScan, "enable-security-scan", true, "Enable the security-scan scorer")
	flag.Float64Var(&config.WeightHeuristic, "weight-heuristic", 0.3, "Aggregation weight of the heuristic scorer")
	flag.Float64Var(&config.WeightMLModel, "weight-ml-model", 0.4, "Aggregation weight of the ML-model scorer")
	flag.Float64Var(&config.WeightSecurityScan, "weight-security-scan", 0.3, "Aggregation weight of the security-scan scorer")
	flag.Parse()

	// Override with environment variables if set
	if envPort := os.Getenv("PORT"); envPort != "" {
		if port, err := strconv.Atoi(envPort); err == nil {
			config.Port = port
		} else {
			log.Printf("Invalid PORT environment variable: %s", envPort)
		}
	}
	if envToken := os.Getenv("GITHUB_TOKEN"); envToken != "" {
		config.GitHubToken = envToken
	}
	if envURL := os.Getenv("INFERENCE_URL"); envURL != "" {
		config.InferenceURL = envURL
	}
	if envCapacity := os.Getenv("QUEUE_CAPACITY"); envCapacity != "" {
		if capacity, err := strconv.Atoi(envCapacity); err == nil {
			config.QueueCapacity = capacity
		}
	}
	if envTTL := os.Getenv("CACHE_TTL"); envTTL != "" {
		if ttl, err := time.ParseDuration(envTTL); err == nil {
			config.CacheTTL = ttl
		}
	}
	if envMock := os.Getenv("MOCK_MODE"); envMock == "true" || envMock == "1" {
		config.MockMode = true
	}

	// Validate configuration
	if !config.MockMode && config.GitHubToken == "" {
		log.Fatal("GitHub token is required (unless using mock mode)")
	}

	return config
}

// App wires the queue, pipeline, and HTTP server together
type App struct {
	config   *engine.Config
	logger   *logrus.Logger
	engine   *engine.Engine
	consumer *queue.Consumer
	metrics  *metrics.Metrics
}

// NewApp builds the full pipeline from configuration
func NewApp(ctx context.Context, config *engine.Config, logger *logrus.Logger) (*App, error) {
	logger.WithFields(logrus.Fields{
		"port":           config.Port,
		"queue_capacity": config.QueueCapacity,
		"inference_url":  config.InferenceURL,
		"mock_mode":      config.MockMode,
	}).Info("Initializing RiskRelay")

	var scmClient scm.Client
	var inferenceClient inference.Client

	if config.MockMode {
		logger.Info("Using mock collaborators for testing")
		scmClient = mock.NewSCMClient(logger)
		inferenceClient = mock.NewInferenceClient(logger)
	} else {
		scmClient = scm.NewGitHubClient(ctx, config.GitHubToken, config.CacheTTL, logger)
		inferenceClient = inference.NewHTTPClient(config.InferenceURL, 30*time.Second, logger)
	}

	appMetrics := metrics.New(prometheus.NewRegistry())

	alertAggregator := alerts.NewAggregator(scmClient, logger)

	// Scorer registry, built explicitly at startup
	registry := []scorers.Scorer{
		scorers.NewHeuristicScorer(config.EnableHeuristic, logger),
		scorers.NewMLModelScorer(inferenceClient, config.EnableMLModel, logger),
		scorers.NewSecurityScanScorer(alertAggregator, config.EnableSecurityScan, logger),
	}

	assessor := assess.NewAssessor(registry, config.Weights(), appMetrics, logger)
	normalizer := normalize.NewNormalizer(scmClient, logger)
	riskEngine := engine.NewEngine(normalizer, assessor, []engine.Sink{engine.NewLogSink(logger)}, logger)

	eventQueue := queue.NewEventQueue(config.QueueCapacity, logger)
	consumer := queue.NewConsumer(eventQueue, riskEngine.ProcessEvent, appMetrics, logger)

	return &App{
		config:   config,
		logger:   logger,
		engine:   riskEngine,
		consumer: consumer,
		metrics:  appMetrics,
	}, nil
}

// Start runs the consumer loop and serves HTTP until ctx is cancelled
func (a *App) Start(ctx context.Context) error {
	go a.consumer.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", a.securityMiddleware(server.CreateWebhookHandler(a.consumer, a.logger), http.MethodPost))
	mux.HandleFunc("/assessments", a.securityMiddleware(server.CreateAssessmentsHandler(a.engine, a.logger), http.MethodGet, http.MethodHead))
	mux.HandleFunc("/metrics", a.securityMiddleware(a.metrics.Handler().ServeHTTP, http.MethodGet, http.MethodHead))
	mux.HandleFunc("/health", a.securityMiddleware(a.healthHandler, http.MethodGet, http.MethodHead))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	go func() {
		<-ctx.Done()
		a.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	a.logger.WithField("port", a.config.Port).Info("Starting HTTP server")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (a *App) securityMiddleware(next http.HandlerFunc, allowedMethods ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Security headers
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		allowed := false
		for _, method := range allowedMethods {
			if r.Method == method {
				allowed = true
				break
			}
		}
		if !allowed {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		a.logger.WithFields(logrus.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"remote_ip": r.RemoteAddr,
		}).Debug("HTTP request received")

		next(w, r)
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok"}`)
}
