package main

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-overcode/pkg/config"
	"github.com/dd0wney/cluso-overcode/pkg/health"
	"github.com/dd0wney/cluso-overcode/pkg/metrics"
	"github.com/dd0wney/cluso-overcode/pkg/output"
)

// buildSinks connects every configured report sink. It returns a nil
// sink when none is configured. The returned func releases connections.
func buildSinks(ctx context.Context, exp *config.Experiment, reg *metrics.Registry, checker *health.Checker) (output.Sink, func(), error) {
	var (
		sinks   []output.Sink
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if exp.Reports.Dir != "" {
		sinks = append(sinks, &output.FileSink{Dir: exp.Reports.Dir, Format: exp.Reports.Format})
	}

	if exp.S3.Bucket != "" {
		s3Sink, err := output.DialS3(ctx, exp.S3, exp.Reports.Format)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, s3Sink)
	}

	if exp.Postgres.URL != "" {
		pg, err := output.DialPostgres(ctx, exp.Postgres.URL)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { pg.Close() })
		checker.Register("postgres", health.SinkCheck("postgres", pg.Ping, 2*time.Second))
		sinks = append(sinks, pg)
	}

	if len(sinks) == 0 {
		return nil, closeAll, nil
	}
	return &output.MultiSink{Sinks: sinks, Recorder: reg}, closeAll, nil
}
