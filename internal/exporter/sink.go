// Package exporter writes encoded record exports to a configured destination.
package exporter

import (
	"context"
	"fmt"
	"io"
	"time"

	"visa-tracker/internal/common/aws"
	"visa-tracker/internal/common/config"
	"visa-tracker/internal/common/logger"
)

// Info describes a stored export file.
type Info struct {
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Sink stores export files. Writing an existing name replaces it.
type Sink interface {
	Driver() string
	Put(ctx context.Context, name, contentType string, r io.Reader) (Info, error)
}

// OpenSink builds the sink named by cfg.Driver.
func OpenSink(ctx context.Context, cfg config.ExportConfig, log logger.Logger) (Sink, error) {
	var (
		sink Sink
		err  error
	)
	switch cfg.Driver {
	case config.SinkFS, "":
		sink, err = NewFSSink(cfg.Dir)
	case config.SinkS3:
		var client *aws.S3Client
		if client, err = aws.NewS3Client(ctx, cfg.S3); err == nil {
			sink = NewS3Sink(client, cfg.S3.Bucket, cfg.S3.Prefix)
		}
	default:
		return nil, fmt.Errorf("unsupported export driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s export sink: %w", cfg.Driver, err)
	}

	log.Info("export sink ready", map[string]interface{}{"driver": sink.Driver()})
	return sink, nil
}
