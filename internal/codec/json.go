// internal/codec/json.go
package codec

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/common/validation"
	"visa-tracker/internal/models"
)

var (
	listSchema     = validation.MustSchemaValidator("record list", validation.RecordListSchema)
	envelopeSchema = validation.MustSchemaValidator("envelope", validation.EnvelopeSchema)
)

// EncodeJSON writes the records as a two-space indented JSON array.
func EncodeJSON(w io.Writer, records []models.ApplicationRecord) error {
	if records == nil {
		records = []models.ApplicationRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// DecodeJSON accepts a bare record array or a persisted envelope. The document is checked
// against the closed record schema first, so unknown fields are rejected.
func DecodeJSON(data []byte) ([]models.ApplicationRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, apperrors.NewDecodeError("json", 0, 0, "empty document")
	}

	isList := trimmed[0] == '['
	schema := envelopeSchema
	if isList {
		schema = listSchema
	}
	if err := schema.Validate(trimmed); err != nil {
		return nil, err
	}

	var records []models.ApplicationRecord
	if isList {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, jsonDecodeError(trimmed, err)
		}
	} else {
		var env struct {
			Records []models.ApplicationRecord `json:"records"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, jsonDecodeError(trimmed, err)
		}
		records = env.Records
	}

	out := make([]models.ApplicationRecord, 0, len(records))
	for _, r := range records {
		r.ID = strings.TrimSpace(r.ID)
		if r.ID == "" {
			r.ID = newID()
		}
		r.Normalize()
		out = append(out, r)
	}
	return out, nil
}

// jsonDecodeError locates a decode failure by byte offset when the decoder reports one.
func jsonDecodeError(data []byte, err error) error {
	var offset int64
	switch e := err.(type) {
	case *json.SyntaxError:
		offset = e.Offset
	case *json.UnmarshalTypeError:
		offset = e.Offset
	default:
		return apperrors.NewDecodeError("json", 0, 0, err.Error())
	}
	line, col := position(data, offset)
	return apperrors.NewDecodeError("json", line, col, err.Error())
}

func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := data[:offset]
	line = bytes.Count(prefix, []byte("\n")) + 1
	col = int(offset) - bytes.LastIndexByte(prefix, '\n')
	return line, col
}
