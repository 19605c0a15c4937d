// internal/store/store.go
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/common/logger"
	"visa-tracker/internal/common/metrics"
	"visa-tracker/internal/models"
	"visa-tracker/internal/storage"
)

// Validator checks a record's business invariants.
type Validator interface {
	Validate(r models.ApplicationRecord) error
}

// Store owns the ordered record list and mirrors every change to durable storage.
// Callers only ever see copies.
type Store struct {
	mu       sync.RWMutex
	kv       storage.KV
	validate Validator
	log      logger.Logger
	backend  string
	newID    func() string
	defaults func() []models.ApplicationRecord

	records []models.ApplicationRecord
	version string
}

type Option func(*Store)

// WithIDGenerator replaces the UUID generator used for blank ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithDefaults replaces the bundled dataset used by Init fallbacks and Reset.
func WithDefaults(records []models.ApplicationRecord) Option {
	return func(s *Store) {
		s.defaults = func() []models.ApplicationRecord { return models.CloneRecords(records) }
	}
}

func New(kv storage.KV, v Validator, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		validate: v,
		log:      log.Component("store"),
		backend:  "unknown",
		newID:    func() string { return uuid.New().String() },
		defaults: DefaultRecords,
		records:  []models.ApplicationRecord{},
	}
	if named, ok := kv.(interface{ Name() string }); ok {
		s.backend = named.Name()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the persisted list. A missing, unreadable, or corrupt payload installs the
// default dataset instead; Init never fails because of storage.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, found, err := s.kv.Get(ctx, storage.KeyApplications)
	switch {
	case err != nil:
		s.log.Warn("failed to read stored applications, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.StoreLoadFallbacks.WithLabelValues("read_error").Inc()
		s.installDefaults(ctx)
		return nil
	case !found:
		s.log.Info("no stored applications, seeding defaults", nil)
		metrics.StoreLoadFallbacks.WithLabelValues("missing").Inc()
		s.installDefaults(ctx)
		return nil
	}

	records, version, err := DecodePayload(data)
	if err != nil {
		s.log.Warn("stored applications are corrupt, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.StoreLoadFallbacks.WithLabelValues("corrupt").Inc()
		s.installDefaults(ctx)
		return nil
	}

	s.records = records
	s.version = versionOf(data)
	metrics.StoreRecords.Set(float64(len(records)))
	s.log.Info("applications loaded", map[string]interface{}{
		"count":          len(records),
		"schema_version": version,
		"backend":        s.backend,
	})
	return nil
}

// installDefaults must be called with the write lock held. A failed write is logged and the
// defaults are still served from memory.
func (s *Store) installDefaults(ctx context.Context) {
	records := s.defaults()
	if err := s.commit(ctx, records); err != nil {
		s.log.Warn("failed to persist default applications", map[string]interface{}{
			"error": err.Error(),
		})
		s.records = records
		s.version = ""
		metrics.StoreRecords.Set(float64(len(records)))
	}
}

// commit persists next and swaps it in. It must be called with the write lock held.
// On failure the store is unchanged.
func (s *Store) commit(ctx context.Context, next []models.ApplicationRecord) error {
	payload, err := EncodePayload(next)
	if err != nil {
		return apperrors.NewStorageWriteError(storage.KeyApplications, err)
	}

	start := time.Now()
	err = s.kv.Set(ctx, storage.KeyApplications, payload)
	metrics.StorePersistDuration.WithLabelValues(s.backend).Observe(time.Since(start).Seconds())
	if err != nil {
		return apperrors.NewStorageWriteError(storage.KeyApplications, err)
	}

	s.records = next
	s.version = versionOf(payload)
	metrics.StoreRecords.Set(float64(len(next)))
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func observe(op string, err error) {
	metrics.StoreMutations.WithLabelValues(op, metrics.ResultOf(err)).Inc()
}

// ==========================
// Mutations
// ==========================

// Add validates and appends a record, generating an id when it is blank.
func (s *Store) Add(ctx context.Context, record models.ApplicationRecord) (out models.ApplicationRecord, err error) {
	defer func() { observe("add", err) }()

	rec := record.Clone()
	rec.Normalize()
	rec.ID = strings.TrimSpace(rec.ID)
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if err := s.validate.Validate(rec); err != nil {
		return models.ApplicationRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(rec.ID) >= 0 {
		return models.ApplicationRecord{}, apperrors.NewDuplicateIDError(rec.ID)
	}

	next := append(models.CloneRecords(s.records), rec)
	if err := s.commit(ctx, next); err != nil {
		return models.ApplicationRecord{}, err
	}

	s.log.Info("application added", map[string]interface{}{"id": rec.ID})
	return rec.Clone(), nil
}

// Update merges a patch into the record with the given id and validates the result.
func (s *Store) Update(ctx context.Context, id string, patch models.Patch) (out models.ApplicationRecord, err error) {
	defer func() { observe("update", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.ApplicationRecord{}, apperrors.NewNotFoundError(id)
	}

	merged := patch.Apply(s.records[idx])
	merged.Normalize()
	if err := s.validate.Validate(merged); err != nil {
		return models.ApplicationRecord{}, err
	}

	next := models.CloneRecords(s.records)
	next[idx] = merged
	if err := s.commit(ctx, next); err != nil {
		return models.ApplicationRecord{}, err
	}

	s.log.Info("application updated", map[string]interface{}{"id": id, "status": merged.Status})
	return merged.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, id string) (err error) {
	defer func() { observe("delete", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return apperrors.NewNotFoundError(id)
	}

	next := make([]models.ApplicationRecord, 0, len(s.records)-1)
	for i, r := range s.records {
		if i != idx {
			next = append(next, r.Clone())
		}
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.log.Info("application deleted", map[string]interface{}{"id": id})
	return nil
}

// ReplaceAll installs records as the whole list. Business invariants are not checked;
// blank ids are filled in and duplicate ids rejected.
func (s *Store) ReplaceAll(ctx context.Context, records []models.ApplicationRecord) (err error) {
	defer func() { observe("replace_all", err) }()
	return s.replaceAll(ctx, records)
}

// Reset restores the default dataset.
func (s *Store) Reset(ctx context.Context) (err error) {
	defer func() { observe("reset", err) }()
	return s.replaceAll(ctx, s.defaults())
}

func (s *Store) replaceAll(ctx context.Context, records []models.ApplicationRecord) error {
	next := models.CloneRecords(records)
	for i := range next {
		next[i].Normalize()
		next[i].ID = strings.TrimSpace(next[i].ID)
		if next[i].ID == "" {
			next[i].ID = s.newID()
		}
	}
	if id, dup := firstDuplicate(next); dup {
		return apperrors.NewDuplicateIDError(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.log.Info("applications replaced", map[string]interface{}{"count": len(next)})
	return nil
}

// ==========================
// Reads
// ==========================

// Snapshot returns a deep copy of the current list in insertion order.
func (s *Store) Snapshot() []models.ApplicationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneRecords(s.records)
}

func (s *Store) Get(id string) (models.ApplicationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexOf(id); idx >= 0 {
		return s.records[idx].Clone(), nil
	}
	return models.ApplicationRecord{}, apperrors.NewNotFoundError(id)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Version identifies the current contents; it changes whenever the persisted list changes.
// It is empty until the list has been persisted once.
func (s *Store) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// SnapshotWithVersion returns the list and its version from the same instant.
func (s *Store) SnapshotWithVersion() ([]models.ApplicationRecord, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneRecords(s.records), s.version
}
