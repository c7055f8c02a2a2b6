// Package retrieval runs the embed-then-search pipeline behind the retrieve
// endpoint.
package retrieval

import (
	"context"
	"strings"
	"time"

	"github.com/upb/semantic-retrieval/internal/observability"
	"github.com/upb/semantic-retrieval/services"
	"github.com/upb/semantic-retrieval/services/embedding"
	"github.com/upb/semantic-retrieval/services/search"
	"go.uber.org/zap"
)

// Embedder turns query text into a vector of the configured dimension
type Embedder interface {
	Embed(ctx context.Context, text string) (*embedding.Result, error)
	Dimensions() int
}

// Searcher runs the thresholded similarity query
type Searcher interface {
	Search(ctx context.Context, vec embedding.Vector, threshold float64, topK int, scopeID *string) ([]search.DocumentMatch, error)
}

// Service orchestrates validation, embedding and search for one request
type Service struct {
	embedder Embedder
	searcher Searcher
	opts     Options
	logger   *zap.Logger
}

// NewService creates a retrieval service. Non-positive topK limits fall back
// to DefaultOptions.
func NewService(embedder Embedder, searcher Searcher, opts Options, logger *zap.Logger) *Service {
	defaults := DefaultOptions()
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = defaults.DefaultTopK
	}
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = defaults.MaxTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		embedder: embedder,
		searcher: searcher,
		opts:     opts,
		logger:   logger,
	}
}

// Options returns the limits the service validates against
func (s *Service) Options() Options {
	return s.opts
}

// Retrieve validates req, embeds the query and returns the matching documents.
// Embedding failures are absorbed by the orchestrator's fallback; only
// validation, search and cancellation errors reach the caller.
func (s *Service) Retrieve(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if err := s.validate(&req); err != nil {
		return nil, err
	}

	logger := observability.LoggerFromContext(ctx, s.logger)
	scope := ""
	if req.ScopeID != nil {
		scope = *req.ScopeID
	}
	logger.Info("retrieval request",
		zap.String("query_preview", observability.QueryPreview(req.Query, s.opts.LogQueryChars)),
		zap.Int("top_k", req.TopK),
		zap.Float64("threshold", req.Threshold),
		zap.String("scope_id", scope))

	result, err := s.embedder.Embed(ctx, strings.TrimSpace(req.Query))
	if err != nil {
		return nil, services.WrapInternal("request aborted while embedding query", err)
	}

	docs, err := s.searcher.Search(ctx, result.Vector, req.Threshold, req.TopK, req.ScopeID)
	if err != nil {
		return nil, err
	}

	logger.Debug("retrieval completed",
		zap.Int("documents", len(docs)),
		zap.String("embedding_source", string(result.Source)),
		zap.Duration("duration", time.Since(start)))

	return &Response{
		Documents:           docs,
		Query:               req.Query,
		EmbeddingDimensions: len(result.Vector),
		EmbeddingSource:     string(result.Source),
	}, nil
}

func (s *Service) validate(req *Request) error {
	if strings.TrimSpace(req.Query) == "" {
		return services.ErrEmptyQuery
	}
	if req.TopK < 1 || req.TopK > s.opts.MaxTopK {
		return services.ErrInvalidTopK.Derive(nil).
			WithDetail("topK", req.TopK).
			WithDetail("max", s.opts.MaxTopK)
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		return services.ErrInvalidThreshold.Derive(nil).
			WithDetail("threshold", req.Threshold)
	}
	if req.ScopeID != nil && strings.TrimSpace(*req.ScopeID) == "" {
		req.ScopeID = nil
	}
	return nil
}
