package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/models"
)

type stubCatalog struct{}

func (stubCatalog) HasUniversity(name string) bool { return name == "RMIT" || name == "Deakin University" }
func (stubCatalog) HasCourse(name string) bool     { return name == "Bachelor of IT" }

func createTestRecord() models.ApplicationRecord {
	return models.ApplicationRecord{
		ID:            "rec-1",
		LodgeDate:     models.NewDate(2025, time.March, 1),
		ApplicantName: "Priya",
		University:    "RMIT",
		Course:        "Bachelor of IT",
		Status:        models.StatusUnderProcess,
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	stdErr := apperrors.Wrap(err)
	require.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
	out := map[string]string{}
	for _, f := range stdErr.Fields {
		out[f.Field] = f.Code
	}
	return out
}

// ==========================
// Record rules
// ==========================

func TestRecordValidator_Valid(t *testing.T) {
	rv := NewRecordValidator(stubCatalog{})
	assert.NoError(t, rv.Validate(createTestRecord()))

	granted := createTestRecord()
	granted.Status = models.StatusGranted
	fin := models.NewDate(2025, time.March, 1)
	granted.FinalisedDate = &fin
	assert.NoError(t, rv.Validate(granted), "finalised on the lodge date is allowed")
}

func TestRecordValidator_RequiredFields(t *testing.T) {
	rv := NewRecordValidator(stubCatalog{})
	rec := createTestRecord()
	rec.LodgeDate = models.Date{}
	rec.ApplicantName = "   "
	rec.University = ""
	rec.Course = ""

	fields := fieldsOf(t, rv.Validate(rec))
	assert.Equal(t, CodeRequired, fields["lodgeDate"])
	assert.Equal(t, CodeRequired, fields["applicantName"])
	assert.Equal(t, CodeRequired, fields["university"])
	assert.Equal(t, CodeRequired, fields["course"])
}

func TestRecordValidator_UnderProcessWithFinalisedDate(t *testing.T) {
	rv := NewRecordValidator(nil)
	rec := createTestRecord()
	fin := models.NewDate(2025, time.March, 11)
	rec.FinalisedDate = &fin

	fields := fieldsOf(t, rv.Validate(rec))
	assert.Equal(t, CodeForbidden, fields["finalisedDate"])
}

func TestRecordValidator_DateRules(t *testing.T) {
	rv := NewRecordValidator(nil)
	tests := []struct {
		name  string
		mut   func(r *models.ApplicationRecord)
		field string
		code  string
	}{
		{
			name: "granted without finalised date",
			mut:  func(r *models.ApplicationRecord) { r.Status = models.StatusGranted },
			field: "finalisedDate", code: CodeRequired,
		},
		{
			name: "finalised before lodge",
			mut: func(r *models.ApplicationRecord) {
				r.Status = models.StatusRefused
				d := models.NewDate(2025, time.February, 27)
				r.FinalisedDate = &d
			},
			field: "finalisedDate", code: CodeDateBeforeLodge,
		},
		{
			name: "assessment before lodge",
			mut: func(r *models.ApplicationRecord) {
				d := models.NewDate(2025, time.January, 2)
				r.FurtherAssessmentDate = &d
			},
			field: "furtherAssessmentDate", code: CodeDateBeforeLodge,
		},
		{
			name:  "unknown status",
			mut:   func(r *models.ApplicationRecord) { r.Status = "Pending" },
			field: "status", code: CodeInvalidEnum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := createTestRecord()
			tt.mut(&rec)
			fields := fieldsOf(t, rv.Validate(rec))
			assert.Equal(t, tt.code, fields[tt.field])
		})
	}
}

func TestRecordValidator_Catalog(t *testing.T) {
	rec := createTestRecord()
	rec.University = "Hogwarts"

	fields := fieldsOf(t, NewRecordValidator(stubCatalog{}).Validate(rec))
	assert.Equal(t, CodeNotInCatalog, fields["university"])

	assert.NoError(t, NewRecordValidator(nil).Validate(rec), "nil catalog skips membership")
}

func TestRecordValidator_ValidateAll(t *testing.T) {
	rv := NewRecordValidator(stubCatalog{})
	assert.NoError(t, rv.ValidateAll(nil))

	bad := createTestRecord()
	bad.ApplicantName = ""
	bad.University = "Nowhere"
	fin := models.NewDate(2025, time.February, 1)
	bad.FinalisedDate = &fin

	fields := fieldsOf(t, rv.ValidateAll([]models.ApplicationRecord{createTestRecord(), bad}))
	assert.Equal(t, CodeRequired, fields["records[1].applicantName"])
	assert.Equal(t, CodeNotInCatalog, fields["records[1].university"])
	assert.Equal(t, CodeForbidden, fields["records[1].finalisedDate"])
	assert.NotContains(t, fields, "records[0].applicantName")
}

// ==========================
// Import schemas
// ==========================

func TestSchemaValidator_RecordList(t *testing.T) {
	sv := MustSchemaValidator("records", RecordListSchema)

	valid := `[{"id":"1","lodgeDate":"2025-03-01","applicantName":"A","furtherAssessmentDate":null,
	  "university":"RMIT","course":"Bachelor of IT","status":"Granted","finalisedDate":"2025-03-11"}]`
	assert.NoError(t, sv.Validate([]byte(valid)))

	unknownField := `[{"lodgeDate":"2025-03-01","applicantName":"A","university":"RMIT","course":"C","nickname":"x"}]`
	err := sv.Validate([]byte(unknownField))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDecodeFailed))

	badStatus := `[{"lodgeDate":"2025-03-01","applicantName":"A","university":"RMIT","course":"C","status":"Done"}]`
	assert.Error(t, sv.Validate([]byte(badStatus)))

	badDate := `[{"lodgeDate":"01/03/2025","applicantName":"A","university":"RMIT","course":"C"}]`
	assert.Error(t, sv.Validate([]byte(badDate)))

	assert.Error(t, sv.Validate([]byte(`[{`)))
}

func TestSchemaValidator_Envelope(t *testing.T) {
	sv := MustSchemaValidator("envelope", EnvelopeSchema)
	assert.NoError(t, sv.Validate([]byte(`{"schemaVersion":1,"records":[]}`)))
	assert.Error(t, sv.Validate([]byte(`{"schemaVersion":1}`)))
	assert.Error(t, sv.Validate([]byte(`{"schemaVersion":1,"records":[],"extra":true}`)))
}
