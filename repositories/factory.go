package repositories

import (
	"context"
	"fmt"

	"github.com/upb/semantic-retrieval/config"
	"github.com/upb/semantic-retrieval/repositories/postgres"
	"github.com/upb/semantic-retrieval/repositories/postgrest"
	"go.uber.org/zap"
)

// NewVectorStore builds the backend named by cfg.VectorStore.Backend. With
// the postgres backend and InitSchema set, the documents table and match
// function are created before the store is returned.
func NewVectorStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (VectorStore, error) {
	vs := cfg.VectorStore

	switch vs.Backend {
	case config.BackendPostgres:
		db, err := postgres.NewDB(vs.Database, logger)
		if err != nil {
			return nil, err
		}
		if vs.InitSchema {
			if err := db.InitSchema(ctx, vs.Function, cfg.Embedding.Dimensions); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &postgresStore{
			MatchRepository: postgres.NewMatchRepository(db, vs.Function, logger),
			db:              db,
		}, nil

	case config.BackendPostgREST:
		if vs.InitSchema {
			logger.Warn("VECTOR_STORE_INIT_SCHEMA is ignored for the postgrest backend")
		}
		return postgrest.NewClient(vs.PostgREST, vs.Function, vs.Timeout, logger), nil

	default:
		return nil, fmt.Errorf("unknown vector store backend %q", vs.Backend)
	}
}

// postgresStore pairs the match repository with the pool it queries
type postgresStore struct {
	*postgres.MatchRepository
	db *postgres.DB
}

func (s *postgresStore) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}
