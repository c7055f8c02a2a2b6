// Package search runs thresholded nearest-neighbor queries against the
// vector store's match_documents function.
package search

import (
	"context"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/upb/semantic-retrieval/internal/observability"
	"github.com/upb/semantic-retrieval/services"
	"github.com/upb/semantic-retrieval/services/embedding"
	"go.uber.org/zap"
)

// DocumentMatch is one row returned by a similarity search.
type DocumentMatch struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	Similarity float64  `json:"similarityScore"`
	Metadata   Metadata `json:"metadata"`
}

// MatchParams are the named arguments of match_documents.
type MatchParams struct {
	QueryEmbedding pgvector.Vector
	MatchThreshold float64
	MatchCount     int
	// FilterScopeID restricts the search to one knowledge base; nil searches everything.
	FilterScopeID *string
}

// Store executes the match_documents RPC. Implementations return rows in
// descending similarity order and must not retry.
type Store interface {
	MatchDocuments(ctx context.Context, params MatchParams) ([]DocumentMatch, error)
}

// Client wraps a Store with a per-call timeout, error classification and
// result-contract enforcement.
type Client struct {
	store   Store
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a search client. A zero timeout adds no bound beyond the
// caller's context.
func NewClient(store Store, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// Search returns at most topK documents with similarity >= threshold, in the
// order the store produced them. Any store failure is returned as a search
// error.
func (c *Client) Search(ctx context.Context, vec embedding.Vector, threshold float64, topK int, scopeID *string) ([]DocumentMatch, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	rows, err := c.store.MatchDocuments(ctx, MatchParams{
		QueryEmbedding: pgvector.NewVector(vec),
		MatchThreshold: threshold,
		MatchCount:     topK,
		FilterScopeID:  scopeID,
	})
	if err != nil {
		return nil, services.ErrSearchFailed.Derive(err)
	}

	return c.enforceContract(ctx, rows, threshold, topK), nil
}

func (c *Client) enforceContract(ctx context.Context, rows []DocumentMatch, threshold float64, topK int) []DocumentMatch {
	out := make([]DocumentMatch, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		if row.Similarity < threshold {
			dropped++
			continue
		}
		if row.Metadata == nil {
			row.Metadata = Metadata{}
		}
		out = append(out, row)
	}

	truncated := 0
	if topK >= 0 && len(out) > topK {
		truncated = len(out) - topK
		out = out[:topK]
	}

	if dropped > 0 || truncated > 0 {
		observability.LoggerFromContext(ctx, c.logger).Warn("vector store returned rows outside the requested bounds",
			zap.Int("below_threshold", dropped),
			zap.Int("over_top_k", truncated),
			zap.Float64("threshold", threshold),
			zap.Int("top_k", topK))
	}
	return out
}
