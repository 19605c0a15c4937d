// internal/codec/csv.go
package codec

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/models"
)

// CSVHeader is the first line of every CSV export.
var CSVHeader = []string{
	"ID",
	"Lodge Date",
	"Applicant Name",
	"Further Assessment Date",
	"University",
	"Course",
	"Status",
	"Finalised Date",
}

const csvColumns = 8

func quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// EncodeCSV writes the header and one row per record. Every data cell is quoted and
// rows are separated by a single "\n" with no trailing newline.
func EncodeCSV(w io.Writer, records []models.ApplicationRecord) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(CSVHeader, ","))

	for _, r := range records {
		cells := []string{
			r.ID,
			r.LodgeDate.String(),
			r.ApplicantName,
			models.FormatOptional(r.FurtherAssessmentDate),
			r.University,
			r.Course,
			string(r.Status),
			models.FormatOptional(r.FinalisedDate),
		}
		for i := range cells {
			cells[i] = quote(cells[i])
		}
		bw.WriteString("\n")
		bw.WriteString(strings.Join(cells, ","))
	}
	return bw.Flush()
}

// DecodeCSV parses a CSV export. The first line is the header and is discarded; blank lines
// are skipped and a blank id is replaced with a fresh one. The first malformed row aborts
// the whole decode with a DECODE_FAILED error naming its line and column.
func DecodeCSV(r io.Reader) ([]models.ApplicationRecord, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
		br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	out := make([]models.ApplicationRecord, 0)
	header := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, apperrors.NewDecodeError("csv", perr.Line, perr.Column, perr.Err.Error())
			}
			return nil, apperrors.NewDecodeError("csv", 0, 0, err.Error())
		}
		if header {
			header = false
			continue
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		line, _ := reader.FieldPos(0)
		if len(row) != csvColumns {
			return nil, apperrors.NewDecodeError("csv", line, 1, fmt.Sprintf("expected %d columns, got %d", csvColumns, len(row)))
		}

		rec, col, err := parseRow(row)
		if err != nil {
			_, column := reader.FieldPos(col)
			return nil, apperrors.NewDecodeError("csv", line, column, err.Error())
		}
		out = append(out, rec)
	}
	return out, nil
}

// parseRow maps a row positionally. On failure it returns the offending column index.
// Text cells are kept verbatim; only the id, dates and status are trimmed.
func parseRow(row []string) (models.ApplicationRecord, int, error) {
	for _, i := range []int{0, 1, 3, 6, 7} {
		row[i] = strings.TrimSpace(row[i])
	}

	rec := models.ApplicationRecord{
		ID:            row[0],
		ApplicantName: row[2],
		University:    row[4],
		Course:        row[5],
	}
	if rec.ID == "" {
		rec.ID = newID()
	}

	lodge, err := models.ParseOptionalDate(row[1])
	if err != nil {
		return rec, 1, err
	}
	if lodge != nil {
		rec.LodgeDate = *lodge
	}
	if rec.FurtherAssessmentDate, err = models.ParseOptionalDate(row[3]); err != nil {
		return rec, 3, err
	}
	if row[6] != "" {
		status, err := models.ParseStatus(row[6])
		if err != nil {
			return rec, 6, err
		}
		rec.Status = status
	}
	if rec.FinalisedDate, err = models.ParseOptionalDate(row[7]); err != nil {
		return rec, 7, err
	}

	rec.Normalize()
	return rec, 0, nil
}
