// Package repositories selects and builds the vector-store backend that
// serves match_documents.
package repositories

import (
	"context"

	"github.com/upb/semantic-retrieval/services/search"
)

// VectorStore is a match_documents backend with a lifecycle
type VectorStore interface {
	search.Store

	// HealthCheck verifies the backend is reachable
	HealthCheck(ctx context.Context) error

	// Close releases pooled connections
	Close() error
}
