// internal/exporter/exporter.go
package exporter

import (
	"bytes"
	"context"
	"time"

	"visa-tracker/internal/codec"
	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/common/logger"
	"visa-tracker/internal/common/metrics"
	"visa-tracker/internal/models"
)

// Exporter encodes record lists and stores them in a sink under the dated export filename.
type Exporter struct {
	sink Sink
	log  logger.Logger
}

func New(sink Sink, log logger.Logger) *Exporter {
	return &Exporter{sink: sink, log: log.Component("exporter")}
}

// Encode renders records in format. It does not touch the sink.
func Encode(format codec.Format, records []models.ApplicationRecord) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case codec.FormatCSV:
		err = codec.EncodeCSV(&buf, records)
	case codec.FormatJSON:
		err = codec.EncodeJSON(&buf, records)
	default:
		return nil, apperrors.NewInvalidArgumentError("unsupported export format " + string(format))
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export encodes records and stores the result as ExportFilename(format, now).
func (e *Exporter) Export(ctx context.Context, format codec.Format, records []models.ApplicationRecord, now time.Time) (info Info, err error) {
	defer func() {
		metrics.CodecOperations.WithLabelValues("export", string(format), metrics.ResultOf(err)).Inc()
	}()

	data, err := Encode(format, records)
	if err != nil {
		return Info{}, err
	}

	name := codec.ExportFilename(format, now)
	info, err = e.sink.Put(ctx, name, format.ContentType(), bytes.NewReader(data))
	if err != nil {
		e.log.Error("export failed", map[string]interface{}{
			"name":  name,
			"sink":  e.sink.Driver(),
			"error": err.Error(),
		})
		return Info{}, apperrors.NewExportError(name, err)
	}

	e.log.Info("export written", map[string]interface{}{
		"name":     name,
		"location": info.Location,
		"records":  len(records),
		"bytes":    info.Size,
	})
	return info, nil
}
