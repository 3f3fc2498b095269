package dal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"
	"stealthcompany.com/care-vitals/internal/model"
)

// patientDoc is the stored form of a patient. createdMicros gives the
// listing a numeric sort key that the index can serve.
type patientDoc struct {
	model.Patient
	CreatedMicros int64 `json:"createdMicros"`
}

// vitalDoc is the stored form of a vital reading
type vitalDoc struct {
	model.Vital
	TsMicros int64 `json:"tsMicros"`
}

// CouchbaseStore keeps patients, vitals and counters in three collections
// of the default scope
type CouchbaseStore struct {
	conn     *Connection
	patients *gocb.Collection
	vitals   *gocb.Collection
	counters *gocb.Collection
}

// NewCouchbaseStore creates a store on an open connection
func NewCouchbaseStore(conn *Connection) *CouchbaseStore {
	scope := conn.GetBucket().Scope(defaultScope)
	return &CouchbaseStore{
		conn:     conn,
		patients: scope.Collection(PatientsCollection),
		vitals:   scope.Collection(VitalsCollection),
		counters: scope.Collection(CountersCollection),
	}
}

// Increment is a server-side counter operation: the document is created
// holding initial if missing, otherwise incremented by one.
func (s *CouchbaseStore) Increment(ctx context.Context, name string, initial uint64) (uint64, error) {
	res, err := s.counters.Binary().Increment(name, &gocb.IncrementOptions{
		Initial: int64(initial),
		Delta:   1,
		Context: ctx,
	})
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}
	return res.Content(), nil
}

func (s *CouchbaseStore) InsertPatient(ctx context.Context, p *model.Patient) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	start := time.Now()
	_, err := s.patients.Insert(p.ID, patientDoc{Patient: *p, CreatedMicros: now.UnixMicro()}, &gocb.InsertOptions{Context: ctx})
	if err != nil {
		log.Error().
			Err(err).
			Str("doc_id", p.ID).
			Msg("Failed to insert patient")
		return fmt.Errorf("insert patient %s: %w", p.ID, err)
	}

	log.Debug().
		Str("doc_id", p.ID).
		Int64("patient_id", p.PatientID).
		Dur("duration", time.Since(start)).
		Msg("Successfully inserted patient")
	return nil
}

func (s *CouchbaseStore) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	result, err := s.patients.Get(id, &gocb.GetOptions{Context: ctx})
	if err != nil {
		if errors.Is(err, gocb.ErrDocumentNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get patient %s: %w", id, err)
	}

	var doc patientDoc
	if err := result.Content(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode patient %s: %w", id, err)
	}
	return &doc.Patient, nil
}

func (s *CouchbaseStore) PatientExists(ctx context.Context, id string) (bool, error) {
	result, err := s.patients.Exists(id, &gocb.ExistsOptions{Context: ctx})
	if err != nil {
		return false, fmt.Errorf("failed to check patient existence %s: %w", id, err)
	}
	return result.Exists(), nil
}

func (s *CouchbaseStore) FindPatients(ctx context.Context, q PatientQuery) ([]model.Patient, error) {
	query := fmt.Sprintf("SELECT p.* FROM %s AS p "+
		"WHERE p.createdMicros IS NOT MISSING AND CONTAINS(p.name, $search) "+
		"ORDER BY p.createdMicros DESC, p.patientId DESC LIMIT $limit OFFSET $offset",
		s.conn.keyspace(PatientsCollection))

	rows, err := s.query(ctx, query, map[string]interface{}{
		"search": q.Search,
		"limit":  q.Limit,
		"offset": q.Offset,
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []model.Patient{}
	for rows.Next() {
		var doc patientDoc
		if err := rows.Row(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode patient row: %w", err)
		}
		patients = append(patients, doc.Patient)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patient query failed: %w", err)
	}
	return patients, nil
}

func (s *CouchbaseStore) CountPatients(ctx context.Context, search string) (int, error) {
	query := fmt.Sprintf("SELECT RAW COUNT(*) FROM %s AS p "+
		"WHERE p.createdMicros IS NOT MISSING AND CONTAINS(p.name, $search)",
		s.conn.keyspace(PatientsCollection))

	rows, err := s.query(ctx, query, map[string]interface{}{"search": search})
	if err != nil {
		return 0, err
	}

	var count int
	if err := rows.One(&count); err != nil {
		return 0, fmt.Errorf("failed to read patient count: %w", err)
	}
	return count, nil
}

func (s *CouchbaseStore) InsertVital(ctx context.Context, v *model.Vital) error {
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := s.vitals.Insert(v.ID, vitalDoc{Vital: *v, TsMicros: v.Timestamp.UnixMicro()}, &gocb.InsertOptions{Context: ctx})
	if err != nil {
		log.Error().
			Err(err).
			Str("doc_id", v.ID).
			Str("patient_ref", v.PatientRef).
			Msg("Failed to insert vital")
		return fmt.Errorf("insert vital %s: %w", v.ID, err)
	}
	return nil
}

func (s *CouchbaseStore) FindVitals(ctx context.Context, patientRef string, limit int) ([]model.Vital, error) {
	query := fmt.Sprintf("SELECT v.* FROM %s AS v WHERE v.patientRef = $ref ORDER BY v.tsMicros DESC",
		s.conn.keyspace(VitalsCollection))
	params := map[string]interface{}{"ref": patientRef}
	if limit > 0 {
		query += " LIMIT $limit"
		params["limit"] = limit
	}

	rows, err := s.query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vitals := []model.Vital{}
	for rows.Next() {
		var doc vitalDoc
		if err := rows.Row(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode vital row: %w", err)
		}
		vitals = append(vitals, doc.Vital)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vital query failed: %w", err)
	}
	return vitals, nil
}

// Ping checks that the KV service of the bucket answers
func (s *CouchbaseStore) Ping(ctx context.Context) error {
	result, err := s.conn.GetBucket().Ping(&gocb.PingOptions{
		ServiceTypes: []gocb.ServiceType{gocb.ServiceTypeKeyValue},
		Context:      ctx,
	})
	if err != nil {
		return fmt.Errorf("ping bucket: %w", err)
	}

	for service, reports := range result.Services {
		for _, report := range reports {
			if report.State != gocb.PingStateOk {
				return fmt.Errorf("service %v endpoint %s is %v: %s", service, report.Remote, report.State, report.Error)
			}
		}
	}
	return nil
}

func (s *CouchbaseStore) Close() error {
	return s.conn.Close()
}

// query runs a N1QL statement with request_plus consistency so that
// writes made by earlier requests are visible
func (s *CouchbaseStore) query(ctx context.Context, statement string, params map[string]interface{}) (*gocb.QueryResult, error) {
	start := time.Now()
	rows, err := s.conn.GetCluster().Query(statement, &gocb.QueryOptions{
		Context:         ctx,
		NamedParameters: params,
		ScanConsistency: gocb.QueryScanConsistencyRequestPlus,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("query", statement).
			Msg("Query failed")
		return nil, fmt.Errorf("query failed: %w", err)
	}

	log.Debug().
		Str("query", statement).
		Dur("duration", time.Since(start)).
		Msg("Query executed")
	return rows, nil
}
