package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/upb/semantic-retrieval/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Check if we can query
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// schemaTemplate creates a minimal documents table and the match function.
// Placeholders: dimensions, function name, dimensions.
const schemaTemplate = `
	CREATE EXTENSION IF NOT EXISTS vector;
	CREATE EXTENSION IF NOT EXISTS pgcrypto;

	CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		knowledge_base_id TEXT,
		content TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
		embedding vector(%d) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_documents_knowledge_base_id ON documents(knowledge_base_id);

	CREATE OR REPLACE FUNCTION %s(
		query_embedding vector(%d),
		match_threshold float,
		match_count int,
		filter_scope_id text DEFAULT NULL
	)
	RETURNS TABLE (id uuid, content text, similarity float, metadata jsonb)
	LANGUAGE sql STABLE
	AS $$
		SELECT d.id, d.content, 1 - (d.embedding <=> query_embedding) AS similarity, d.metadata
		FROM documents d
		WHERE (filter_scope_id IS NULL OR d.knowledge_base_id = filter_scope_id)
			AND 1 - (d.embedding <=> query_embedding) >= match_threshold
		ORDER BY d.embedding <=> query_embedding
		LIMIT match_count;
	$$;
`

// InitSchema creates the pgvector extension, the documents table and the
// match function when they do not exist. It does not build ANN indexes.
func (db *DB) InitSchema(ctx context.Context, function string, dimensions int) error {
	schema := fmt.Sprintf(schemaTemplate, dimensions, function, dimensions)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("vector store schema initialized",
		zap.String("function", function),
		zap.Int("dimensions", dimensions))
	return nil
}
