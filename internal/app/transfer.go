// internal/app/transfer.go
package app

import (
	"bytes"
	"context"

	"visa-tracker/internal/codec"
	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/common/metrics"
	"visa-tracker/internal/exporter"
	"visa-tracker/internal/models"
)

// Import decodes a CSV or JSON export and replaces the whole record list with it.
// Every decoded record must pass validation; nothing changes when decoding or validation fails.
func (a *App) Import(ctx context.Context, format codec.Format, data []byte) (records []models.ApplicationRecord, err error) {
	defer func() {
		metrics.CodecOperations.WithLabelValues("import", string(format), metrics.ResultOf(err)).Inc()
	}()

	switch format {
	case codec.FormatCSV:
		records, err = codec.DecodeCSV(bytes.NewReader(data))
	case codec.FormatJSON:
		records, err = codec.DecodeJSON(data)
	default:
		return nil, apperrors.NewInvalidArgumentError("unsupported import format " + string(format))
	}
	if err != nil {
		return nil, err
	}
	if err := a.validate.ValidateAll(records); err != nil {
		return nil, err
	}

	if err := a.Store.ReplaceAll(ctx, records); err != nil {
		return nil, err
	}

	a.log.Info("applications imported", map[string]interface{}{
		"format":  format,
		"records": len(records),
	})
	return a.Store.Snapshot(), nil
}

// Download encodes the current list for a client download.
func (a *App) Download(format codec.Format) (name string, data []byte, err error) {
	data, err = exporter.Encode(format, a.Store.Snapshot())
	metrics.CodecOperations.WithLabelValues("download", string(format), metrics.ResultOf(err)).Inc()
	if err != nil {
		return "", nil, err
	}
	return codec.ExportFilename(format, a.Now()), data, nil
}

// Export writes the current list to the configured export sink.
func (a *App) Export(ctx context.Context, format codec.Format) (exporter.Info, error) {
	if a.Exporter == nil {
		return exporter.Info{}, apperrors.NewExportError(codec.ExportFilename(format, a.Now()), errNoSink)
	}
	return a.Exporter.Export(ctx, format, a.Store.Snapshot(), a.Now())
}
