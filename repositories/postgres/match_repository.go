package postgres

import (
	"context"
	"fmt"

	"github.com/upb/semantic-retrieval/services/search"
	"go.uber.org/zap"
)

// MatchRepository calls the match_documents SQL function directly over lib/pq.
type MatchRepository struct {
	db     *DB
	query  string
	logger *zap.Logger
}

// NewMatchRepository creates a repository bound to the named SQL function.
// function must be a plain or schema-qualified identifier; config validates it.
func NewMatchRepository(db *DB, function string, logger *zap.Logger) *MatchRepository {
	return &MatchRepository{
		db: db,
		query: fmt.Sprintf(`
		SELECT id, content, similarity, metadata
		FROM %s(
			query_embedding => $1::vector,
			match_threshold => $2,
			match_count => $3,
			filter_scope_id => $4
		)
	`, function),
		logger: logger,
	}
}

// MatchDocuments implements search.Store
func (r *MatchRepository) MatchDocuments(ctx context.Context, params search.MatchParams) ([]search.DocumentMatch, error) {
	rows, err := r.db.QueryContext(ctx, r.query,
		params.QueryEmbedding,
		params.MatchThreshold,
		params.MatchCount,
		params.FilterScopeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query match function: %w", err)
	}
	defer rows.Close()

	matches := make([]search.DocumentMatch, 0)
	for rows.Next() {
		var m search.DocumentMatch
		if err := rows.Scan(&m.ID, &m.Content, &m.Similarity, &m.Metadata); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}

	r.logger.Debug("match function returned rows", zap.Int("count", len(matches)))
	return matches, nil
}
