// internal/store/payload.go
package store

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"visa-tracker/internal/models"
)

// SchemaVersion is the persisted layout version written by this build.
// Version 0 is the bare record array.
const SchemaVersion = 1

//go:embed data/applications.json
var defaultPayload []byte

type envelope struct {
	SchemaVersion int                        `json:"schemaVersion"`
	Records       []models.ApplicationRecord `json:"records"`
}

// EncodePayload serializes records into the current persisted layout.
func EncodePayload(records []models.ApplicationRecord) ([]byte, error) {
	if records == nil {
		records = []models.ApplicationRecord{}
	}
	return json.Marshal(envelope{SchemaVersion: SchemaVersion, Records: records})
}

// DecodePayload reads either persisted layout and reports the schema version it found.
func DecodePayload(data []byte) ([]models.ApplicationRecord, int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, 0, fmt.Errorf("empty payload")
	}

	var (
		records []models.ApplicationRecord
		version int
	)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	if trimmed[0] == '[' {
		if err := dec.Decode(&records); err != nil {
			return nil, 0, fmt.Errorf("decode record array: %w", err)
		}
	} else {
		var env envelope
		if err := dec.Decode(&env); err != nil {
			return nil, 0, fmt.Errorf("decode envelope: %w", err)
		}
		if env.SchemaVersion < 1 || env.SchemaVersion > SchemaVersion {
			return nil, env.SchemaVersion, fmt.Errorf("unsupported schema version %d", env.SchemaVersion)
		}
		records, version = env.Records, env.SchemaVersion
	}

	out := make([]models.ApplicationRecord, 0, len(records))
	for _, r := range records {
		r.Normalize()
		out = append(out, r)
	}
	if id, dup := firstDuplicate(out); dup {
		return nil, version, fmt.Errorf("duplicate record id %q", id)
	}
	return out, version, nil
}

// DefaultRecords returns a fresh copy of the bundled dataset.
func DefaultRecords() []models.ApplicationRecord {
	records, _, err := DecodePayload(defaultPayload)
	if err != nil {
		panic(fmt.Sprintf("bundled dataset is invalid: %v", err))
	}
	return records
}

func versionOf(payload []byte) string {
	digest := xxhash.New()
	digest.Write(payload)
	return hex.EncodeToString(digest.Sum(nil))
}

func firstDuplicate(records []models.ApplicationRecord) (string, bool) {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			return r.ID, true
		}
		seen[r.ID] = struct{}{}
	}
	return "", false
}
