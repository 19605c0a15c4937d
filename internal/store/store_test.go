package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/common/logger"
	"visa-tracker/internal/common/validation"
	"visa-tracker/internal/models"
	"visa-tracker/internal/storage"
	"visa-tracker/pkg/catalog"
)

// ==========================
// Helpers
// ==========================

type flakyKV struct {
	*storage.Memory
	failGet bool
	failSet bool
}

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errors.New("connection refused")
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("quota exceeded")
	}
	return f.Memory.Set(ctx, key, value)
}

func createTestRecord(id string) models.ApplicationRecord {
	return models.ApplicationRecord{
		ID:            id,
		LodgeDate:     models.NewDate(2025, time.March, 1),
		ApplicantName: "Priya Patel",
		University:    "RMIT",
		Course:        "Bachelor of IT",
		Status:        models.StatusUnderProcess,
	}
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	})
}

func newTestStore(t *testing.T, kv storage.KV, opts ...Option) *Store {
	t.Helper()
	v := validation.NewRecordValidator(catalog.Builtin())
	s := New(kv, v, logger.NewTestLogger(t), opts...)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func emptyStore(t *testing.T, kv storage.KV) *Store {
	t.Helper()
	return newTestStore(t, kv, WithDefaults(nil), sequentialIDs())
}

func ids(records []models.ApplicationRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// ==========================
// Init
// ==========================

func TestInit_SeedsDefaultsWhenMissing(t *testing.T) {
	mem := storage.NewMemory()
	s := newTestStore(t, mem)

	assert.Len(t, s.Snapshot(), len(DefaultRecords()))
	assert.NotEmpty(t, s.Version())

	_, found, err := mem.Get(context.Background(), storage.KeyApplications)
	require.NoError(t, err)
	assert.True(t, found, "defaults are persisted on first start")
}

func TestInit_LoadsEnvelope(t *testing.T) {
	mem := storage.NewMemory()
	payload, err := EncodePayload([]models.ApplicationRecord{createTestRecord("a"), createTestRecord("b")})
	require.NoError(t, err)
	require.NoError(t, mem.Set(context.Background(), storage.KeyApplications, payload))

	s := newTestStore(t, mem)
	assert.Equal(t, []string{"a", "b"}, ids(s.Snapshot()))
}

func TestInit_ReadsLegacyArray(t *testing.T) {
	mem := storage.NewMemory()
	legacy := `[{"id":"x1","lodgeDate":"2025-03-01","applicantName":"Old","furtherAssessmentDate":"",` +
		`"university":"RMIT","course":"Bachelor of IT","status":"Granted","finalisedDate":"2025-03-20"}]`
	require.NoError(t, mem.Set(context.Background(), storage.KeyApplications, []byte(legacy)))

	s := newTestStore(t, mem)
	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Nil(t, snap[0].FurtherAssessmentDate)
	assert.Equal(t, "2025-03-20", snap[0].FinalisedDate.String())

	// the next write upgrades the layout
	require.NoError(t, s.Delete(context.Background(), "x1"))
	data, _, _ := mem.Get(context.Background(), storage.KeyApplications)
	assert.JSONEq(t, `{"schemaVersion":1,"records":[]}`, string(data))
}

func TestInit_FallsBackOnCorruptPayload(t *testing.T) {
	tests := map[string]string{
		"not json":       "{{{",
		"future version": `{"schemaVersion":99,"records":[]}`,
		"unknown field":  `[{"id":"a","colour":"red"}]`,
		"duplicate ids":  `[{"id":"a","lodgeDate":"2025-01-01"},{"id":"a","lodgeDate":"2025-01-02"}]`,
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			mem := storage.NewMemory()
			require.NoError(t, mem.Set(context.Background(), storage.KeyApplications, []byte(payload)))

			s := newTestStore(t, mem)
			assert.Len(t, s.Snapshot(), len(DefaultRecords()))
		})
	}
}

func TestInit_FallsBackOnReadError(t *testing.T) {
	kv := &flakyKV{Memory: storage.NewMemory(), failGet: true, failSet: true}
	s := newTestStore(t, kv)

	assert.Len(t, s.Snapshot(), len(DefaultRecords()))
	assert.Empty(t, s.Version(), "nothing was persisted")
}

// ==========================
// Mutations
// ==========================

func TestAdd(t *testing.T) {
	s := emptyStore(t, storage.NewMemory())
	ctx := context.Background()

	rec := createTestRecord("")
	rec.Status = ""
	out, err := s.Add(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "gen-1", out.ID)
	assert.Equal(t, models.StatusUnderProcess, out.Status)

	got, err := s.Get("gen-1")
	require.NoError(t, err)
	assert.Equal(t, out, got)

	_, err = s.Add(ctx, createTestRecord("gen-1"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDuplicateRecordID))
	assert.Equal(t, 1, s.Len())
}

func TestAdd_ValidationFailure(t *testing.T) {
	s := emptyStore(t, storage.NewMemory())

	rec := createTestRecord("a")
	rec.University = "Hogwarts"
	_, err := s.Add(context.Background(), rec)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidationFailed))

	bad := createTestRecord("b")
	fin := models.NewDate(2025, time.March, 10)
	bad.FinalisedDate = &fin
	_, err = s.Add(context.Background(), bad)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidationFailed), "under process records cannot carry a finalised date")

	assert.Empty(t, s.Snapshot())
}

func TestUpdate(t *testing.T) {
	s := emptyStore(t, storage.NewMemory())
	ctx := context.Background()
	_, err := s.Add(ctx, createTestRecord("a"))
	require.NoError(t, err)

	granted := models.StatusGranted
	out, err := s.Update(ctx, "a", models.Patch{
		Status:        &granted,
		FinalisedDate: models.SetDate(models.NewDate(2025, time.March, 11)),
	})
	require.NoError(t, err)
	assert.Equal(t, "a", out.ID)
	assert.Equal(t, models.StatusGranted, out.Status)
	assert.Equal(t, "2025-03-11", out.FinalisedDate.String())

	back := models.StatusUnderProcess
	out, err = s.Update(ctx, "a", models.Patch{Status: &back})
	require.NoError(t, err)
	assert.Nil(t, out.FinalisedDate)
}

func TestUpdate_Failures(t *testing.T) {
	s := emptyStore(t, storage.NewMemory())
	ctx := context.Background()
	_, err := s.Add(ctx, createTestRecord("a"))
	require.NoError(t, err)
	before := s.Version()

	name := "Nobody"
	_, err = s.Update(ctx, "missing", models.Patch{ApplicantName: &name})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRecordNotFound))

	granted := models.StatusGranted
	_, err = s.Update(ctx, "a", models.Patch{Status: &granted})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidationFailed), "granted needs a finalised date")

	assert.Equal(t, before, s.Version())
	assert.Equal(t, models.StatusUnderProcess, s.Snapshot()[0].Status)
}

func TestDelete(t *testing.T) {
	s := emptyStore(t, storage.NewMemory())
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := s.Add(ctx, createTestRecord(id))
		require.NoError(t, err)
	}

	require.NoError(t, s.Delete(ctx, "b"))
	assert.Equal(t, []string{"a", "c"}, ids(s.Snapshot()))

	err := s.Delete(ctx, "b")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRecordNotFound))
	assert.Equal(t, 2, s.Len())
}

func TestReplaceAll(t *testing.T) {
	s := emptyStore(t, storage.NewMemory())
	ctx := context.Background()

	// business rules are not enforced on import
	odd := createTestRecord("x")
	odd.University = "Not In Catalog"
	require.NoError(t, s.ReplaceAll(ctx, []models.ApplicationRecord{odd, createTestRecord("")}))
	assert.Equal(t, []string{"x", "gen-1"}, ids(s.Snapshot()))

	err := s.ReplaceAll(ctx, []models.ApplicationRecord{createTestRecord("d"), createTestRecord("d")})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDuplicateRecordID))
	assert.Equal(t, []string{"x", "gen-1"}, ids(s.Snapshot()))
}

func TestReset(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	ctx := context.Background()

	require.NoError(t, s.ReplaceAll(ctx, nil))
	assert.Empty(t, s.Snapshot())

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, ids(DefaultRecords()), ids(s.Snapshot()))
}

func TestMutation_WriteFailureLeavesStoreUnchanged(t *testing.T) {
	kv := &flakyKV{Memory: storage.NewMemory()}
	s := emptyStore(t, kv)
	ctx := context.Background()
	_, err := s.Add(ctx, createTestRecord("a"))
	require.NoError(t, err)
	before := s.Version()

	kv.failSet = true
	_, err = s.Add(ctx, createTestRecord("b"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStorageWriteFailed))
	err = s.Delete(ctx, "a")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStorageWriteFailed))
	err = s.ReplaceAll(ctx, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStorageWriteFailed))

	assert.Equal(t, []string{"a"}, ids(s.Snapshot()))
	assert.Equal(t, before, s.Version())
}

// ==========================
// Reads
// ==========================

func TestSnapshot_IsACopy(t *testing.T) {
	s := emptyStore(t, storage.NewMemory())
	rec := createTestRecord("a")
	rec.Status = models.StatusRefused
	fin := models.NewDate(2025, time.April, 1)
	rec.FinalisedDate = &fin
	_, err := s.Add(context.Background(), rec)
	require.NoError(t, err)

	snap := s.Snapshot()
	snap[0].ApplicantName = "changed"
	*snap[0].FinalisedDate = models.NewDate(2030, time.January, 1)

	again := s.Snapshot()
	assert.Equal(t, "Priya Patel", again[0].ApplicantName)
	assert.Equal(t, "2025-04-01", again[0].FinalisedDate.String())
}

func TestVersion_ChangesOnMutation(t *testing.T) {
	s := emptyStore(t, storage.NewMemory())
	v0 := s.Version()

	_, err := s.Add(context.Background(), createTestRecord("a"))
	require.NoError(t, err)
	v1 := s.Version()
	assert.NotEqual(t, v0, v1)

	records, version := s.SnapshotWithVersion()
	assert.Len(t, records, 1)
	assert.Equal(t, v1, version)
}

func TestConcurrentAccess(t *testing.T) {
	s := emptyStore(t, storage.NewMemory())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := s.Add(ctx, createTestRecord(fmt.Sprintf("r-%d", i)))
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, s.Len())
}

func TestDefaultRecords(t *testing.T) {
	v := validation.NewRecordValidator(catalog.Builtin())
	records := DefaultRecords()
	require.NotEmpty(t, records)
	for _, r := range records {
		assert.NoError(t, v.Validate(r), r.ID)
	}
}
