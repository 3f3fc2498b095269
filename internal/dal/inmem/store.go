// Package inmem is a process-local dal.Store used by tests and by
// STORAGE_DRIVER=memory for local development.
package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"stealthcompany.com/care-vitals/internal/dal"
	"stealthcompany.com/care-vitals/internal/model"
)

type Store struct {
	lock     sync.Mutex
	patients map[string]model.Patient
	order    []string
	vitals   map[string][]model.Vital
	counters map[string]uint64
	locks    map[string]time.Time

	// now is swapped in tests to get distinct, ordered creation times
	now func() time.Time
	// Fail, when set, is returned by every operation
	Fail error
}

func NewStore() *Store {
	return &Store{
		patients: map[string]model.Patient{},
		vitals:   map[string][]model.Vital{},
		counters: map[string]uint64{},
		locks:    map[string]time.Time{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used for createdAt/updatedAt
func (s *Store) SetClock(now func() time.Time) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.now = now
}

func (s *Store) Increment(ctx context.Context, name string, initial uint64) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}

	value, ok := s.counters[name]
	if !ok {
		value = initial
	} else {
		value++
	}
	s.counters[name] = value
	return value, nil
}

func (s *Store) InsertPatient(ctx context.Context, p *model.Patient) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Fail != nil {
		return s.Fail
	}

	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.patients[p.ID] = *p
	s.order = append(s.order, p.ID)
	return nil
}

func (s *Store) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}

	p, ok := s.patients[id]
	if !ok {
		return nil, dal.ErrNotFound
	}
	return &p, nil
}

func (s *Store) PatientExists(ctx context.Context, id string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Fail != nil {
		return false, s.Fail
	}

	_, ok := s.patients[id]
	return ok, nil
}

// matching returns patients whose name contains search, newest first
func (s *Store) matching(search string) []model.Patient {
	var out []model.Patient
	for _, id := range s.order {
		p := s.patients[id]
		if strings.Contains(p.Name, search) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].PatientID > out[j].PatientID
	})
	return out
}

func (s *Store) FindPatients(ctx context.Context, q dal.PatientQuery) ([]model.Patient, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}

	all := s.matching(q.Search)
	page := []model.Patient{}
	if q.Offset >= len(all) {
		return page, nil
	}
	end := q.Offset + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return append(page, all[q.Offset:end]...), nil
}

func (s *Store) CountPatients(ctx context.Context, search string) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}

	return len(s.matching(search)), nil
}

func (s *Store) InsertVital(ctx context.Context, v *model.Vital) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Fail != nil {
		return s.Fail
	}

	now := s.now()
	v.CreatedAt = now
	v.UpdatedAt = now
	s.vitals[v.PatientRef] = append(s.vitals[v.PatientRef], *v)
	return nil
}

func (s *Store) FindVitals(ctx context.Context, patientRef string, limit int) ([]model.Vital, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}

	out := append([]model.Vital{}, s.vitals[patientRef]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// VitalCount returns how many readings are stored in total
func (s *Store) VitalCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	n := 0
	for _, vs := range s.vitals {
		n += len(vs)
	}
	return n
}

// Lock mirrors the expiring lock document of the Couchbase store
func (s *Store) Lock(ctx context.Context, name, owner string, ttl time.Duration) (dal.UnlockFunc, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}

	now := s.now()
	if expires, ok := s.locks[name]; ok && now.Before(expires) {
		return nil, dal.ErrLocked
	}
	s.locks[name] = now.Add(ttl)

	return func(ctx context.Context) error {
		s.lock.Lock()
		defer s.lock.Unlock()
		delete(s.locks, name)
		return nil
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.Fail
}

func (s *Store) Close() error {
	return nil
}

var (
	_ dal.Store  = (*Store)(nil)
	_ dal.Locker = (*Store)(nil)
)
