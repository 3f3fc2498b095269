package dal

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"
)

const (
	defaultScope = "_default"

	PatientsCollection = "patients"
	VitalsCollection   = "vitals"
	CountersCollection = "counters"
)

// collectionIndex is a secondary index created at startup
type collectionIndex struct {
	collection string
	indexName  string
	fields     string
}

var collectionIndexes = []collectionIndex{
	{PatientsCollection, "idx_patients_created", "createdMicros DESC, patientId DESC"},
	{PatientsCollection, "idx_patients_name", "name"},
	{VitalsCollection, "idx_vitals_patient_ts", "patientRef, tsMicros DESC"},
}

// EnsureCollections creates the collections and indexes the store needs.
// Existing collections and indexes are left alone.
func EnsureCollections(ctx context.Context, conn *Connection) error {
	bucketName := conn.GetBucketName()

	for _, collectionName := range []string{PatientsCollection, VitalsCollection, CountersCollection} {
		query := fmt.Sprintf("CREATE COLLECTION `%s`.`%s`.`%s`", bucketName, defaultScope, collectionName)
		_, err := conn.GetCluster().Query(query, &gocb.QueryOptions{Context: ctx})
		if err != nil {
			if !isAlreadyExistsError(err) {
				return fmt.Errorf("failed to create collection %s: %w", collectionName, err)
			}
			log.Debug().Str("collection", collectionName).Msg("Collection already exists")
			continue
		}
		log.Info().Str("collection", collectionName).Msg("Collection created successfully")
	}

	for _, idx := range collectionIndexes {
		query := fmt.Sprintf("CREATE INDEX IF NOT EXISTS `%s` ON %s(%s)",
			idx.indexName, conn.keyspace(idx.collection), idx.fields)

		_, err := conn.GetCluster().Query(query, &gocb.QueryOptions{Context: ctx})
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.indexName, err)
		}
		log.Debug().
			Str("collection", idx.collection).
			Str("index", idx.indexName).
			Msg("Index ensured")
	}

	log.Info().Msg("Collections and indexes are ready")
	return nil
}

// isAlreadyExistsError checks if the error indicates the collection already exists
func isAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "already exists") || strings.Contains(errStr, "duplicate")
}
