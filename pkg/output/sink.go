package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNilReport is returned by sinks asked to store a nil report.
var ErrNilReport = errors.New("report is nil")

// Sink stores reports somewhere durable.
type Sink interface {
	Name() string
	Put(ctx context.Context, r *Report) error
}

// FileSink writes each report to Dir/<id><ext>.
type FileSink struct {
	Dir    string
	Format Format
}

func (s *FileSink) Name() string { return "file" }

// Put writes the report atomically: a temp file is written and renamed.
func (s *FileSink) Put(ctx context.Context, r *Report) error {
	if r == nil {
		return ErrNilReport
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}

	var buf bytes.Buffer
	if err := r.Encode(&buf, s.Format); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	path := filepath.Join(s.Dir, r.ID+s.Format.Ext())
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename report: %w", err)
	}
	return nil
}

// Path returns where Put stores the report with the given id.
func (s *FileSink) Path(id string) string {
	return filepath.Join(s.Dir, id+s.Format.Ext())
}

// UploadRecorder observes sink writes. *metrics.Registry implements it.
type UploadRecorder interface {
	RecordUpload(sink, status string, d time.Duration)
}

// MultiSink writes every report to each of its sinks in order and
// returns the joined errors of those that failed.
type MultiSink struct {
	Sinks    []Sink
	Recorder UploadRecorder
}

func (m *MultiSink) Name() string { return "multi" }

func (m *MultiSink) Put(ctx context.Context, r *Report) error {
	var errs []error
	for _, s := range m.Sinks {
		start := time.Now()
		err := s.Put(ctx, r)
		if m.Recorder != nil {
			status := "success"
			if err != nil {
				status = "error"
			}
			m.Recorder.RecordUpload(s.Name(), status, time.Since(start))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s sink: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
