package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/models"
)

func createTestRecords() []models.ApplicationRecord {
	fa := models.NewDate(2025, time.March, 4)
	fin := models.NewDate(2025, time.April, 1)
	return []models.ApplicationRecord{
		{
			ID:                    "a1",
			LodgeDate:             models.NewDate(2025, time.March, 1),
			ApplicantName:         `Sam "Sammy" O'Neil, Jr`,
			FurtherAssessmentDate: &fa,
			University:            "RMIT",
			Course:                "Bachelor of IT",
			Status:                models.StatusGranted,
			FinalisedDate:         &fin,
		},
		{
			ID:            "b2",
			LodgeDate:     models.NewDate(2025, time.March, 2),
			ApplicantName: "Ngozi\nAdeyemi",
			University:    "Deakin University",
			Course:        "AEP/EAP",
			Status:        models.StatusUnderProcess,
		},
		{
			ID:            "c3",
			LodgeDate:     models.NewDate(2025, time.March, 3),
			ApplicantName: " Alice Smith ",
			University:    "RMIT",
			Course:        "PhD",
			Status:        models.StatusUnderProcess,
		},
	}
}

func assertDecodeError(t *testing.T, err error, line int) {
	t.Helper()
	require.Error(t, err)
	stdErr := apperrors.Wrap(err)
	assert.Equal(t, apperrors.ErrCodeDecodeFailed, stdErr.Code)
	if line > 0 {
		assert.Equal(t, line, stdErr.Metadata["line"], stdErr.Details)
	}
}

// ==========================
// CSV
// ==========================

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, createTestRecords()[:1]))

	want := "ID,Lodge Date,Applicant Name,Further Assessment Date,University,Course,Status,Finalised Date\n" +
		`"a1","2025-03-01","Sam ""Sammy"" O'Neil, Jr","2025-03-04","RMIT","Bachelor of IT","Granted","2025-04-01"`
	assert.Equal(t, want, buf.String())
}

func TestEncodeCSV_AbsentDatesAreEmpty(t *testing.T) {
	var buf bytes.Buffer
	rec := createTestRecords()[1]
	rec.ApplicantName = "Ngozi Adeyemi"
	require.NoError(t, EncodeCSV(&buf, []models.ApplicationRecord{rec}))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"b2","2025-03-02","Ngozi Adeyemi","","Deakin University","AEP/EAP","Under Process",""`, lines[1])
}

func TestCSV_RoundTrip(t *testing.T) {
	records := createTestRecords()
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, records))

	got, err := DecodeCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, got)
	assert.Equal(t, " Alice Smith ", got[2].ApplicantName, "quoted text cells keep their padding")
}

func TestDecodeCSV_Lenient(t *testing.T) {
	input := "\xef\xbb\xbfID,Lodge Date,Applicant Name,Further Assessment Date,University,Course,Status,Finalised Date\n" +
		"\n" +
		`"","2025-03-01","New Person","","RMIT","PhD","",""` + "\n" +
		"   \n" +
		`x2, 2025-03-02 ,Plain Cells,,ICMS,Diploma,Refused,2025-03-09` + "\n"

	got, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.NotEmpty(t, got[0].ID, "blank ids are generated")
	assert.Equal(t, models.StatusUnderProcess, got[0].Status)
	assert.Nil(t, got[0].FinalisedDate)

	assert.Equal(t, "x2", got[1].ID)
	assert.Equal(t, "2025-03-02", got[1].LodgeDate.String())
	assert.Equal(t, models.StatusRefused, got[1].Status)
	assert.Equal(t, "2025-03-09", got[1].FinalisedDate.String())
}

func TestDecodeCSV_Errors(t *testing.T) {
	header := strings.Join(CSVHeader, ",") + "\n"
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"too few columns", header + `"a","2025-03-01","Name"`, 2},
		{"bad date", header + `"a","2025-03-01","N","","U","C","Granted","01/04/2025"`, 2},
		{"bad status on later line", header + `"a","2025-03-01","N","","U","C","Granted","2025-03-05"` + "\n" +
			`"b","2025-03-01","N","","U","C","Approved",""`, 3},
		{"bare quote", header + `"a","2025-03-01","N "quoted" x","","U","C","Granted",""`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCSV(strings.NewReader(tt.input))
			assert.Nil(t, got)
			assertDecodeError(t, err, tt.line)
		})
	}
}

func TestDecodeCSV_HeaderOnly(t *testing.T) {
	got, err := DecodeCSV(strings.NewReader(strings.Join(CSVHeader, ",")))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = DecodeCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

// ==========================
// JSON
// ==========================

func TestJSON_RoundTrip(t *testing.T) {
	records := createTestRecords()
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, records))
	assert.Contains(t, buf.String(), "\n  {\n    \"id\": \"a1\"")
	assert.Contains(t, buf.String(), `"finalisedDate": null`)

	got, err := DecodeJSON(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestEncodeJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestDecodeJSON_Envelope(t *testing.T) {
	doc := `{"schemaVersion":1,"records":[{"id":"","lodgeDate":"2025-03-01","applicantName":"A",` +
		`"university":"RMIT","course":"PhD","furtherAssessmentDate":""}]}`

	got, err := DecodeJSON([]byte(doc))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.Nil(t, got[0].FurtherAssessmentDate, "empty string and null are both absent")
	assert.Equal(t, models.StatusUnderProcess, got[0].Status)
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":         "  ",
		"not json":      "[{",
		"unknown field": `[{"lodgeDate":"2025-03-01","applicantName":"A","university":"U","course":"C","colour":"red"}]`,
		"bad status":    `[{"lodgeDate":"2025-03-01","applicantName":"A","university":"U","course":"C","status":"Approved"}]`,
		"missing field": `[{"lodgeDate":"2025-03-01","university":"U","course":"C"}]`,
		"bad date":      `[{"lodgeDate":"2025-13-45","applicantName":"A","university":"U","course":"C"}]`,
		"wrong shape":   `{"items":[]}`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeJSON([]byte(doc))
			assert.Nil(t, got)
			assertDecodeError(t, err, 0)
		})
	}
}

// ==========================
// Filenames
// ==========================

func TestExportFilename(t *testing.T) {
	loc := time.FixedZone("AEST", 10*3600)
	now := time.Date(2025, time.June, 9, 23, 30, 0, 0, time.UTC).In(loc)

	assert.Equal(t, "visa-applications-2025-06-10.csv", ExportFilename(FormatCSV, now))
	assert.Equal(t, "visa-applications-2025-06-10.json", ExportFilename(FormatJSON, now))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, "application/json", FormatJSON.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
