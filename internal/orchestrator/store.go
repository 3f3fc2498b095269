// Package orchestrator wires the process lifecycle: opening the configured
// store and turning OS signals into context cancellation.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/care-vitals/internal/config"
	"stealthcompany.com/care-vitals/internal/dal"
	"stealthcompany.com/care-vitals/internal/dal/inmem"
)

// OpenStore connects the backend selected by cfg.StorageDriver. For
// Couchbase the collections and indexes are created before returning, so
// a nil error means the store is ready to serve.
func OpenStore(ctx context.Context, cfg config.Config) (dal.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn().Msg("Using in-memory store, data is lost on exit")
		return inmem.NewStore(), nil

	case config.StorageCouchbase:
		conn, err := dal.NewConnection(ctx, dal.ConnectionConfig{
			URL:        cfg.CouchbaseURL,
			Username:   cfg.CouchbaseUser,
			Password:   cfg.CouchbasePass,
			BucketName: cfg.CouchbaseBucket,
		})
		if err != nil {
			return nil, err
		}

		if err := dal.EnsureCollections(ctx, conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure collections: %w", err)
		}
		return dal.NewCouchbaseStore(conn), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
