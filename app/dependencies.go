package app

import (
	"context"
	"fmt"

	"github.com/upb/semantic-retrieval/config"
	"github.com/upb/semantic-retrieval/repositories"
	"github.com/upb/semantic-retrieval/services/embedding"
	"github.com/upb/semantic-retrieval/services/providers"
	"github.com/upb/semantic-retrieval/services/providers/openai"
	"github.com/upb/semantic-retrieval/services/retrieval"
	"github.com/upb/semantic-retrieval/services/search"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config      *config.Config
	Logger      *zap.Logger
	VectorStore repositories.VectorStore

	// Embedding
	Provider providers.Provider
	Embedder *embedding.Orchestrator

	// Retrieval pipeline
	Search    *search.Client
	Retrieval *retrieval.Service
}

// NewDependencies creates and wires up all application dependencies,
// connecting to the configured vector store.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	store, err := repositories.NewVectorStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	deps := NewDependenciesWithStore(cfg, store, logger)

	logger.Info("all dependencies initialized successfully",
		zap.String("vector_store", cfg.VectorStore.Backend),
		zap.String("embedding_mode", cfg.Embedding.Mode))
	return deps, nil
}

// NewDependenciesWithStore wires the pipeline around an existing store.
func NewDependenciesWithStore(cfg *config.Config, store repositories.VectorStore, logger *zap.Logger) *Dependencies {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		VectorStore: store,
	}

	deps.initEmbedding(cfg)
	deps.initRetrieval(cfg)

	return deps
}

// initEmbedding builds the OpenAI-compatible provider and the orchestrator around it
func (d *Dependencies) initEmbedding(cfg *config.Config) {
	providerCfg := providers.DefaultProviderConfig()
	providerCfg.APIKey = cfg.Embedding.APIKey
	providerCfg.BaseURL = cfg.Embedding.BaseURL
	providerCfg.OrgID = cfg.Embedding.OrgID
	providerCfg.Timeout = cfg.Embedding.Timeout

	d.Provider = openai.NewOpenAIAdapter(providerCfg)
	d.Embedder = embedding.NewOrchestrator(d.Provider, embedding.Config{
		Model:      cfg.Embedding.Model,
		Mode:       embedding.Mode(cfg.Embedding.Mode),
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    cfg.Embedding.Timeout,
	}, d.Logger)

	d.Logger.Info("embedding provider registered",
		zap.String("provider", d.Provider.Name()),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", d.Embedder.Dimensions()))
}

func (d *Dependencies) initRetrieval(cfg *config.Config) {
	d.Search = search.NewClient(d.VectorStore, cfg.VectorStore.Timeout, d.Logger)
	d.Retrieval = retrieval.NewService(d.Embedder, d.Search, retrieval.Options{
		DefaultTopK:      cfg.Retrieval.DefaultTopK,
		MaxTopK:          cfg.Retrieval.MaxTopK,
		DefaultThreshold: cfg.Retrieval.DefaultThreshold,
		LogQueryChars:    cfg.Retrieval.LogQueryChars,
	}, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.VectorStore != nil {
		if err := d.VectorStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close vector store: %w", err))
		} else {
			d.Logger.Info("vector store closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
