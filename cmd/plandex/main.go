package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/plandex/internal/chunker"
	"github.com/kailas-cloud/plandex/internal/config"
	"github.com/kailas-cloud/plandex/internal/db"
	dbRedis "github.com/kailas-cloud/plandex/internal/db/redis"
	"github.com/kailas-cloud/plandex/internal/domain"
	logpkg "github.com/kailas-cloud/plandex/internal/logger"
	"github.com/kailas-cloud/plandex/internal/metrics"
	budgetrepo "github.com/kailas-cloud/plandex/internal/repository/budget"
	"github.com/kailas-cloud/plandex/internal/repository/embcache"
	fragmentrepo "github.com/kailas-cloud/plandex/internal/repository/fragment"
	chiTransport "github.com/kailas-cloud/plandex/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/plandex/internal/transport/openai"
	analyzeuc "github.com/kailas-cloud/plandex/internal/usecase/analyze"
	documentuc "github.com/kailas-cloud/plandex/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/plandex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/plandex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/plandex/internal/usecase/ingest"
	kwuc "github.com/kailas-cloud/plandex/internal/usecase/keyword"
	searchuc "github.com/kailas-cloud/plandex/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/plandex/internal/usecase/suggest"
	usageuc "github.com/kailas-cloud/plandex/internal/usecase/usage"
	"github.com/kailas-cloud/plandex/internal/version"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting plandex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	tax, err := config.LoadTaxonomy(cfg.Taxonomy)
	if err != nil {
		logger.Fatal("Failed to load taxonomy", zap.String("file", cfg.Taxonomy.File), zap.Error(err))
	}
	logger.Info("Taxonomy loaded",
		zap.String("taxonomy_version", tax.Version()),
		zap.Int("phrases", len(tax.Phrases())),
	)

	detector := kwuc.NewDetector(tax)
	analyzer, err := analyzeuc.New(detector, cfg.Analyzer.CacheSize, metrics.AnalyzerCacheTotal)
	if err != nil {
		logger.Fatal("Failed to create query analyzer", zap.Error(err))
	}
	suggester := suggestuc.New(tax)

	provider := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	// One tracker shared by both embedders and the usage report.
	var budget *embeddinguc.BudgetTracker
	if b := cfg.Embedding.Budget; b.Enabled() {
		budget = embeddinguc.NewBudgetTracker(
			cfg.Embedding.Provider, b.DailyTokenLimit, b.MonthlyTokenLimit,
			embeddinguc.BudgetAction(b.Action), logger,
		).WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
	}

	// Pass nil interfaces, not typed nil pointers, when no budget is configured.
	var budgetChecker embeddinguc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	shared := buildEmbedder(provider, cfg.Embedding, store, budgetChecker, logger)
	docEmbedder := withInstruction(shared, cfg.Embedding.DocumentInstruction)
	queryEmbedder := withInstruction(shared, cfg.Embedding.QueryInstruction)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	fragRepo := fragmentrepo.New(store, fragmentrepo.IndexConfig{
		VectorDim:   cfg.Embedding.Dimensions,
		Algorithm:   indexAlgorithm(cfg.Index.Algorithm),
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	if err := fragRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure fragment index", zap.Error(err))
	}

	annotator, err := ingestuc.NewAnnotator(detector, cfg.Ingest.PoolSize, metrics.FragmentsAnnotatedTotal)
	if err != nil {
		logger.Fatal("Failed to create annotation pool", zap.Error(err))
	}
	defer annotator.Release()

	searchSvc := searchuc.New(fragRepo, queryEmbedder, analyzer,
		cfg.Search.CandidateMultiplier, metrics.SearchDegradedTotal)
	ingestSvc := ingestuc.New(fragRepo, annotator, detector, docEmbedder).
		WithMaxFragments(cfg.Ingest.MaxFragments)
	docSvc := documentuc.New(fragRepo, detector)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(provider), tax.Version())

	server := chiTransport.NewServer(chiTransport.Deps{
		Search:    searchSvc,
		Analyzer:  analyzer,
		Detector:  detector,
		Suggester: suggester,
		Ingest:    ingestSvc,
		Splitter:  chunker.New(cfg.Ingest.FragmentSize, cfg.Ingest.FragmentOverlap),
		Documents: docSvc,
		Usage:     usageuc.New(budgetReader),
		Health:    healthSvc,
	}, chiTransport.Limits{
		DefaultLimit:     cfg.Search.DefaultLimit,
		MaxLimit:         cfg.Search.MaxLimit,
		ContextFragments: cfg.Search.ContextFragments,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func indexAlgorithm(name string) db.VectorAlgorithm {
	if name == "flat" {
		return db.VectorFlat
	}
	return db.VectorHNSW
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain shared by documents and queries:
// OpenAI -> Cached -> Instrumented (budget) -> Breaker.
func buildEmbedder(
	base domain.Embedder,
	embCfg config.EmbeddingConfig,
	store db.Store,
	budget embeddinguc.BudgetChecker,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = embcache.New(
		base, store, embCfg.Model,
		time.Duration(embCfg.CacheTTLSec)*time.Second,
		metrics.EmbeddingCacheTotal, logger,
	)

	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, embCfg.Provider, embCfg.Model, budget, embCfg.MaxBatchSize, logger,
	)

	// Cache hits never count against the breaker.
	return embeddinguc.NewBreakerEmbedder(embedder, embCfg.Provider, embeddinguc.BreakerConfig{
		MaxRequests:  embCfg.Breaker.MaxRequests,
		Interval:     time.Duration(embCfg.Breaker.IntervalSec) * time.Second,
		Timeout:      time.Duration(embCfg.Breaker.TimeoutSec) * time.Second,
		MinRequests:  embCfg.Breaker.MinRequests,
		FailureRatio: embCfg.Breaker.FailureRatio,
	}, logger)
}

// withInstruction adds the instruction prefix outermost, so cache keys include it.
func withInstruction(inner domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return inner
	}
	return domain.NewInstructionEmbedder(inner, instruction)
}
