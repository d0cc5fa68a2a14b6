package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	feedbackapp "ticket-risk-scoring/internal/application/feedback"
	scoringapp "ticket-risk-scoring/internal/application/scoring"
	domain "ticket-risk-scoring/internal/domain/scoring"
	"ticket-risk-scoring/internal/infrastructure/classifier"
	"ticket-risk-scoring/internal/infrastructure/database/postgres"
	"ticket-risk-scoring/internal/infrastructure/featurestore"
	"ticket-risk-scoring/internal/infrastructure/http/router"
	"ticket-risk-scoring/internal/infrastructure/reasoning"
	"ticket-risk-scoring/internal/infrastructure/rules"
	"ticket-risk-scoring/internal/interfaces/http/handler"
	"ticket-risk-scoring/internal/pkg/config"
	"ticket-risk-scoring/internal/pkg/logger"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, v, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("starting risk scoring API",
		zap.String("version", version),
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)))

	// Scoring parameters behind an atomic pointer; the file watcher
	// swaps in validated updates without a restart.
	paramStore := config.NewStore(cfg)
	config.Watch(v, paramStore, zlog)

	// Result persistence. The service degrades to scoring-only mode
	// when the database is unreachable.
	var dbClient *postgres.Client
	var resultRepo domain.ResultRepository
	var overrideRepo *postgres.OverrideRepository

	dbClient, err = postgres.NewClient(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		zlog.Warn("database connection failed, results will not be persisted", zap.Error(err))
		dbClient = nil
	} else {
		if err := dbClient.Migrate(); err != nil {
			zlog.Warn("database migration failed", zap.Error(err))
		}
		resultRepo = postgres.NewResultRepository(dbClient)
		overrideRepo = postgres.NewOverrideRepository(dbClient)
		zlog.Info("connected to PostgreSQL",
			zap.String("host", cfg.Database.Host), zap.Int("port", cfg.Database.Port))
	}

	// Feature store. When Redis is down every customer scores against
	// the neutral all-zero snapshot instead of failing the request.
	var reader domain.SnapshotReader
	var storeChecker handler.HealthChecker

	redisStore, err := featurestore.NewRedisStore(featurestore.Config{
		Host:         cfg.FeatureStore.Host,
		Port:         cfg.FeatureStore.Port,
		Password:     cfg.FeatureStore.Password,
		DB:           cfg.FeatureStore.DB,
		PoolSize:     cfg.FeatureStore.PoolSize,
		ReadTimeout:  cfg.FeatureStore.ReadTimeout,
		WriteTimeout: cfg.FeatureStore.WriteTimeout,
	})
	if err != nil {
		zlog.Warn("feature store connection failed, scoring with neutral features", zap.Error(err))
		redisStore = nil
		reader = neutralReader{}
	} else {
		reader = featurestore.NewReader(redisStore, cfg.FeatureStore.CacheTTL, cfg.FeatureStore.CacheSize)
		storeChecker = redisStore
		zlog.Info("connected to feature store",
			zap.String("host", cfg.FeatureStore.Host), zap.Int("port", cfg.FeatureStore.Port))
	}

	// Engines: the in-process rule evaluator plus the two external
	// backends, each with its own budget and circuit breaker.
	engines := []domain.Engine{
		rules.NewEvaluator(),
		classifier.NewClient(classifier.Config{
			BaseURL:       cfg.Classifier.BaseURL,
			Timeout:       cfg.Classifier.Timeout,
			FraudPolarity: cfg.Classifier.FraudPolarity,
			FeatureSubset: cfg.Classifier.FeatureSubset,
		}),
		reasoning.NewClient(reasoning.Config{
			BaseURL:       cfg.Reasoning.BaseURL,
			Budget:        cfg.Reasoning.Budget,
			SearchURL:     cfg.Reasoning.SearchURL,
			SearchTimeout: cfg.Reasoning.SearchTimeout,
			TopK:          cfg.Reasoning.TopK,
		}),
	}

	orchestrator := scoringapp.NewOrchestrator(
		reader, engines, paramStore, resultRepo, zlog, cfg.Scoring.InlineReasoning)

	var feedbackService *feedbackapp.Service
	if overrideRepo != nil {
		feedbackService = feedbackapp.NewService(resultRepo, overrideRepo)
	} else {
		feedbackService = feedbackapp.NewService(nil, nil)
	}

	scoringHandler := handler.NewScoringHandler(orchestrator, feedbackService)

	var dbChecker handler.HealthChecker
	if dbClient != nil {
		dbChecker = dbClient
	}
	healthHandler := handler.NewHealthHandler(dbChecker, storeChecker, version)

	r := router.NewRouter(scoringHandler, healthHandler, cfg.Metrics.Enabled)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zlog.Error("server shutdown error", zap.Error(err))
	}

	if dbClient != nil {
		dbClient.Close()
	}
	if redisStore != nil {
		redisStore.Close()
	}

	zlog.Info("server stopped")
}

// neutralReader serves the all-zero snapshot when no feature store is
// configured.
type neutralReader struct{}

func (neutralReader) Read(_ context.Context, customerID string) (*domain.FeatureSnapshot, error) {
	return domain.EmptySnapshot(customerID), nil
}
