// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "visa-tracker/internal/common/errors"
)

const recordDefinition = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["lodgeDate", "applicantName", "university", "course"],
  "properties": {
    "id": {"type": ["string", "null"]},
    "lodgeDate": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
    "applicantName": {"type": "string"},
    "furtherAssessmentDate": {"type": ["string", "null"], "pattern": "^([0-9]{4}-[0-9]{2}-[0-9]{2})?$"},
    "university": {"type": "string"},
    "course": {"type": "string"},
    "status": {"type": "string", "enum": ["Under Process", "Granted", "Refused"]},
    "finalisedDate": {"type": ["string", "null"], "pattern": "^([0-9]{4}-[0-9]{2}-[0-9]{2})?$"}
  }
}`

// RecordListSchema describes the JSON export format: a bare array of records.
var RecordListSchema = fmt.Sprintf(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {"record": %s},
  "type": "array",
  "items": {"$ref": "#/definitions/record"}
}`, recordDefinition)

// EnvelopeSchema describes the persisted layout: {"schemaVersion": n, "records": [...]}.
var EnvelopeSchema = fmt.Sprintf(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {"record": %s},
  "type": "object",
  "additionalProperties": false,
  "required": ["records"],
  "properties": {
    "schemaVersion": {"type": "integer", "minimum": 0},
    "records": {"type": "array", "items": {"$ref": "#/definitions/record"}}
  }
}`, recordDefinition)

// SchemaValidator validates raw JSON documents against one compiled schema.
type SchemaValidator struct {
	name   string
	schema *gojsonschema.Schema
}

// NewSchemaValidator compiles schemaJSON. name labels errors.
func NewSchemaValidator(name, schemaJSON string) (*SchemaValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", name, err)
	}
	return &SchemaValidator{name: name, schema: schema}, nil
}

// MustSchemaValidator is NewSchemaValidator for the package-level schemas, which are constants.
func MustSchemaValidator(name, schemaJSON string) *SchemaValidator {
	sv, err := NewSchemaValidator(name, schemaJSON)
	if err != nil {
		panic(err)
	}
	return sv
}

// Validate checks a JSON document. A malformed document or any schema violation yields a
// DECODE_FAILED StandardError whose Fields name each offending JSON path.
func (sv *SchemaValidator) Validate(document []byte) error {
	result, err := sv.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return apperrors.NewDecodeError("json", 0, 0, fmt.Sprintf("malformed JSON: %v", err))
	}
	if result.Valid() {
		return nil
	}

	fields := make([]apperrors.FieldError, 0, len(result.Errors()))
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		fields = append(fields, apperrors.FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
		msgs = append(msgs, desc.String())
	}

	stdErr := apperrors.NewDecodeError("json", 0, 0, fmt.Sprintf("%s schema: %s", sv.name, strings.Join(msgs, "; ")))
	stdErr.Fields = fields
	return stdErr
}
