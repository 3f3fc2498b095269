package dal_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"stealthcompany.com/care-vitals/internal/dal"
	"stealthcompany.com/care-vitals/internal/dal/inmem"
	"stealthcompany.com/care-vitals/internal/model"
	"stealthcompany.com/care-vitals/internal/sequence"
	"stealthcompany.com/care-vitals/internal/validation"
)

type fixture struct {
	store    *inmem.Store
	patients *dal.PatientModel
	vitals   *dal.VitalModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := inmem.NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	tick := 0
	store.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	patients := dal.NewPatientModel(store, sequence.NewGenerator(store))
	return &fixture{
		store:    store,
		patients: patients,
		vitals:   dal.NewVitalModel(store, patients),
	}
}

func (f *fixture) createPatient(t *testing.T, name string) *model.Patient {
	t.Helper()
	p, err := f.patients.Create(context.Background(), validation.PatientPayload{
		Name:   name,
		Age:    70,
		Gender: model.GenderOther,
	})
	require.NoError(t, err)
	return p
}

func TestPatientCreateAssignsSequence(t *testing.T) {
	f := newFixture(t)

	first := f.createPatient(t, "a")
	second := f.createPatient(t, "b")

	assert.Equal(t, int64(1001), first.PatientID)
	assert.Equal(t, int64(1002), second.PatientID)
	assert.NotEqual(t, first.ID, second.ID)
	_, err := uuid.Parse(first.ID)
	assert.NoError(t, err)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)
}

func TestPatientCreateConcurrent(t *testing.T) {
	f := newFixture(t)

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := f.patients.Create(context.Background(), validation.PatientPayload{Name: "x", Age: 1, Gender: model.GenderMale})
			if assert.NoError(t, err) {
				ids <- p.PatientID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		require.False(t, seen[id], "patientId %d issued twice", id)
		seen[id] = true
	}
	require.Len(t, seen, n)
	for id := int64(1001); id <= 1050; id++ {
		assert.True(t, seen[id], "missing patientId %d", id)
	}
}

func TestPatientNameRoundTrip(t *testing.T) {
	f := newFixture(t)

	payload, errs := validation.ValidatePatient([]byte(`{"name":"  Jane Doe  ","age":30,"gender":"female"}`))
	require.Empty(t, errs)
	created, err := f.patients.Create(context.Background(), payload)
	require.NoError(t, err)

	got, err := f.patients.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane doe", got.Name)
	assert.Equal(t, created.PatientID, got.PatientID)
}

func TestPatientGetByIDNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.patients.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, dal.ErrNotFound)

	_, err = f.patients.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, dal.ErrNotFound)
}

func TestPatientListPagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 23; i++ {
		f.createPatient(t, "patient")
	}

	page, err := f.patients.List(context.Background(), dal.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, model.Pagination{CurrentPage: 1, TotalPages: 3, TotalCount: 23, Limit: 10}, page.Pagination)
	// newest first
	assert.Equal(t, int64(1023), page.Data[0].PatientID)
	assert.Equal(t, int64(1014), page.Data[9].PatientID)

	last, err := f.patients.List(context.Background(), dal.PageRequest{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, last.Data, 3)
	assert.Equal(t, int64(1001), last.Data[2].PatientID)

	beyond, err := f.patients.List(context.Background(), dal.PageRequest{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, beyond.Data)
	assert.Empty(t, beyond.Data)
	assert.Equal(t, 9, beyond.Pagination.CurrentPage)
}

func TestPatientListClampsRequest(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 60; i++ {
		f.createPatient(t, "p")
	}

	tests := []struct {
		name     string
		req      dal.PageRequest
		size     int
		page     int
		limit    int
		lastPage int
	}{
		{"limit over max", dal.PageRequest{Page: 1, Limit: 1000}, 50, 1, 50, 2},
		{"limit zero", dal.PageRequest{Page: 1, Limit: 0}, 1, 1, 1, 60},
		{"negative page", dal.PageRequest{Page: -2, Limit: 7}, 7, 1, 7, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.patients.List(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Len(t, page.Data, tt.size)
			assert.Equal(t, tt.page, page.Pagination.CurrentPage)
			assert.Equal(t, tt.limit, page.Pagination.Limit)
			assert.Equal(t, tt.lastPage, page.Pagination.TotalPages)
			assert.Equal(t, 60, page.Pagination.TotalCount)
		})
	}
}

func TestPatientListSearch(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"jane doe", "john doe", "janet smith", "bob"} {
		f.createPatient(t, name)
	}

	for _, term := range []string{"jan", "JAN", "JaN"} {
		page, err := f.patients.List(context.Background(), dal.PageRequest{Page: 1, Limit: 10, Search: term})
		require.NoError(t, err)
		var names []string
		for _, p := range page.Data {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"janet smith", "jane doe"}, names, term)
		assert.Equal(t, 2, page.Pagination.TotalCount)
		assert.Equal(t, 1, page.Pagination.TotalPages)
	}

	none, err := f.patients.List(context.Background(), dal.PageRequest{Page: 1, Limit: 10, Search: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, none.Data)
	assert.Equal(t, 0, none.Pagination.TotalPages)
}

func TestPatientStorageError(t *testing.T) {
	f := newFixture(t)
	cause := errors.New("cluster unreachable")
	f.store.Fail = cause

	_, err := f.patients.Create(context.Background(), validation.PatientPayload{Name: "x", Age: 1, Gender: model.GenderMale})
	var se *dal.StorageError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, sequence.ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)

	_, err = f.patients.List(context.Background(), dal.PageRequest{Page: 1, Limit: 10})
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "list patients", se.Op)
}

func TestVitalsForMissingPatient(t *testing.T) {
	f := newFixture(t)
	missing := uuid.NewString()

	_, err := f.vitals.Create(context.Background(), missing, validation.VitalPayload{HeartRate: 70, SpO2: 98, BodyTemperature: 36.6})
	assert.ErrorIs(t, err, dal.ErrNotFound)
	assert.Equal(t, 0, f.store.VitalCount())

	_, err = f.vitals.ListForPatient(context.Background(), missing)
	assert.ErrorIs(t, err, dal.ErrNotFound)

	_, err = f.vitals.LatestForPatient(context.Background(), "garbage")
	assert.ErrorIs(t, err, dal.ErrNotFound)
}

func TestVitalsOrderedByTimestamp(t *testing.T) {
	f := newFixture(t)
	p := f.createPatient(t, "jane")

	t1 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)
	for _, ts := range []time.Time{t2, t3, t1} {
		ts := ts
		_, err := f.vitals.Create(context.Background(), p.ID, validation.VitalPayload{
			HeartRate: 70, SpO2: 98, BodyTemperature: 36.6, Timestamp: &ts,
		})
		require.NoError(t, err)
	}

	list, err := f.vitals.ListForPatient(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []time.Time{t3, t2, t1}, []time.Time{list[0].Timestamp, list[1].Timestamp, list[2].Timestamp})

	latest, err := f.vitals.LatestForPatient(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, t3, latest.Timestamp)
	assert.Equal(t, p.ID, latest.PatientRef)
}

func TestVitalsLatestEmpty(t *testing.T) {
	f := newFixture(t)
	p := f.createPatient(t, "jane")

	latest, err := f.vitals.LatestForPatient(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	list, err := f.vitals.ListForPatient(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestVitalDefaultsTimestampToNow(t *testing.T) {
	f := newFixture(t)
	p := f.createPatient(t, "jane")

	before := time.Now().UTC()
	v, err := f.vitals.Create(context.Background(), p.ID, validation.VitalPayload{HeartRate: 70, SpO2: 98, BodyTemperature: 36.6})
	require.NoError(t, err)
	after := time.Now().UTC()

	assert.False(t, v.Timestamp.Before(before))
	assert.False(t, v.Timestamp.After(after))
	assert.NotEmpty(t, v.ID)
	assert.False(t, v.CreatedAt.IsZero())
}
