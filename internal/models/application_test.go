package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Date
// ==========================

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.March, 1), d)
	assert.Equal(t, "2025-03-01", d.String())

	_, err = ParseDate("01/03/2025")
	assert.Error(t, err)

	opt, err := ParseOptionalDate("  ")
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestDate_DaysSince(t *testing.T) {
	lodge := NewDate(2025, time.March, 1)
	assert.Equal(t, 10, NewDate(2025, time.March, 11).DaysSince(lodge))
	assert.Equal(t, -3, NewDate(2025, time.February, 26).DaysSince(lodge))
	// crosses a leap day
	assert.Equal(t, 2, NewDate(2024, time.March, 1).DaysSince(NewDate(2024, time.February, 28)))
}

func TestDateOf_UsesLocation(t *testing.T) {
	loc := time.FixedZone("AEST", 10*3600)
	instant := time.Date(2025, time.March, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, NewDate(2025, time.March, 2), DateOf(instant.In(loc)))
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Required Date  `json:"required"`
		Optional *Date `json:"optional"`
	}

	out, err := json.Marshal(wrapper{Required: NewDate(2025, time.January, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"required":"2025-01-05","optional":null}`, string(out))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"required":"2025-01-05","optional":""}`), &w))
	assert.Equal(t, NewDate(2025, time.January, 5), w.Required)
	assert.Nil(t, OptionalDate(w.Optional))

	assert.Error(t, json.Unmarshal([]byte(`{"required":"5 Jan"}`), &w))
}

// ==========================
// Status
// ==========================

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Under Process")
	require.NoError(t, err)
	assert.Equal(t, StatusUnderProcess, s)
	assert.False(t, s.Finalised())
	assert.True(t, StatusRefused.Finalised())

	_, err = ParseStatus("granted")
	assert.Error(t, err)
}

// ==========================
// Patch
// ==========================

func createTestRecord() ApplicationRecord {
	fin := NewDate(2025, time.March, 11)
	return ApplicationRecord{
		ID:            "a1",
		LodgeDate:     NewDate(2025, time.March, 1),
		ApplicantName: "Asha",
		University:    "RMIT",
		Course:        "Bachelor of IT",
		Status:        StatusGranted,
		FinalisedDate: &fin,
	}
}

func TestPatch_StatusToUnderProcessClearsFinalised(t *testing.T) {
	p, err := DecodePatch([]byte(`{"status":"Under Process"}`))
	require.NoError(t, err)

	got := p.Apply(createTestRecord())
	assert.Equal(t, StatusUnderProcess, got.Status)
	assert.Nil(t, got.FinalisedDate)
	assert.Equal(t, "a1", got.ID)
}

func TestPatch_ExplicitNullClears(t *testing.T) {
	rec := createTestRecord()
	fad := NewDate(2025, time.March, 5)
	rec.FurtherAssessmentDate = &fad

	p, err := DecodePatch([]byte(`{"furtherAssessmentDate":null,"applicantName":"Asha K"}`))
	require.NoError(t, err)

	got := p.Apply(rec)
	assert.Nil(t, got.FurtherAssessmentDate)
	assert.Equal(t, "Asha K", got.ApplicantName)
	assert.NotNil(t, rec.FurtherAssessmentDate, "input record must not be mutated")
}

func TestPatch_AbsentKeysUnchanged(t *testing.T) {
	p, err := DecodePatch([]byte(`{"course":"Diploma"}`))
	require.NoError(t, err)

	rec := createTestRecord()
	got := p.Apply(rec)
	assert.Equal(t, "Diploma", got.Course)
	assert.Equal(t, rec.FinalisedDate, got.FinalisedDate)
	assert.Equal(t, rec.LodgeDate, got.LodgeDate)
}

func TestDecodePatch_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"id change", `{"id":"other"}`},
		{"unknown field", `{"nickname":"x"}`},
		{"not an object", `[1,2]`},
		{"bad date", `{"lodgeDate":"yesterday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePatch([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestCloneRecords_DeepCopy(t *testing.T) {
	in := []ApplicationRecord{createTestRecord()}
	out := CloneRecords(in)
	*out[0].FinalisedDate = NewDate(2030, time.January, 1)
	assert.Equal(t, NewDate(2025, time.March, 11), *in[0].FinalisedDate)

	assert.NotNil(t, CloneRecords(nil))
}
