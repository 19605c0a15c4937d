// Package codec converts record lists to and from the CSV and JSON export formats.
package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

const filenamePrefix = "visa-applications-"

// ExportFilename names an export file after the civil date of now in its own location.
func ExportFilename(format Format, now time.Time) string {
	return filenamePrefix + now.Format("2006-01-02") + "." + string(format)
}

var newID = uuid.NewString
