// Command overcode runs ensembles of the OverCoDe protocol on synthetic
// or file-backed graphs and writes the detected overlapping communities.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-overcode/pkg/config"
	"github.com/dd0wney/cluso-overcode/pkg/health"
	"github.com/dd0wney/cluso-overcode/pkg/logging"
	"github.com/dd0wney/cluso-overcode/pkg/metrics"
	"github.com/dd0wney/cluso-overcode/pkg/output"
	"github.com/dd0wney/cluso-overcode/pkg/overcode"
	"github.com/dd0wney/cluso-overcode/pkg/server"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if overcode.IsCancelled(err) {
			fmt.Fprintln(os.Stderr, "overcode: interrupted")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "overcode: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	exp, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if err := exp.Validate(); err != nil {
		return err
	}
	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}

	level := logging.InfoLevel
	if exp.LogLevel != "" {
		if level, err = logging.ParseLevel(exp.LogLevel); err != nil {
			return err
		}
	}
	logger := logging.NewJSONLogger(stderr, level).With(logging.ExperimentID(exp.ID))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	checker := health.NewChecker()
	checker.Register("memory", health.MemoryCheck(func() (uint64, uint64) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return m.HeapAlloc, m.Sys
	}))

	sink, closeSinks, err := buildSinks(ctx, exp, reg, checker)
	if err != nil {
		return err
	}
	defer closeSinks()

	r := newRunner(exp, logger, reg, sink)
	checker.Register("experiment", health.ProgressCheck(r.progress))

	if exp.MetricsAddr != "" {
		tel := server.NewTelemetry(exp.MetricsAddr, reg.GetPrometheusRegistry(), checker, logger)
		if err := tel.Start(); err != nil {
			return fmt.Errorf("failed to start telemetry: %w", err)
		}
		defer tel.Shutdown(5 * time.Second)
	}

	start := time.Now()
	rows, err := r.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, renderSummary(exp, rows, time.Since(start)))
	return nil
}

// parseFlags layers configuration: defaults, then the -config file, then
// OVERCODE_* variables, then flags given on the command line.
func parseFlags(args []string, stderr io.Writer) (*config.Experiment, error) {
	fs := flag.NewFlagSet("overcode", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  = fs.String("config", "", "YAML experiment file")
		id          = fs.String("id", "", "Experiment ID stamped on reports (default: random UUID)")
		mode        = fs.String("mode", "", "Graph source: clustered, ego or file")
		graphPath   = fs.String("graph", "", "Edge-list file for -mode file (.sz for snappy)")
		out         = fs.String("out", "", "Cluster output file; ground truth goes to <out>_truth")
		graphs      = fs.Int("graphs", 0, "Number of graphs to generate")
		runs        = fs.Int("runs", 0, "Ensembles per graph")
		nodes       = fs.Int("nodes", 0, "Nodes per planted community (clustered mode)")
		overlaps    = fs.String("overlaps", "", "Shared node counts per combination size, e.g. 10,5")
		alpha       = fs.Float64("alpha", 0, "Majority threshold in (0,1]")
		beta        = fs.Float64("beta", 0, "Similarity threshold in (0,1]")
		rounds      = fs.Int("rounds", 0, "Rounds T (default derived from n)")
		pushes      = fs.Int("pushes", 0, "Pushes k (default derived from n)")
		pull        = fs.Int("pull", 0, "Pull samples h (default derived from n)")
		rho         = fs.Int("rho", 0, "Majority samples rho (default 3)")
		ensemble    = fs.Int("ensemble-runs", 0, "Protocol runs per ensemble (default derived from n)")
		workers     = fs.Int("workers", 0, "Maximum concurrent runs (default GOMAXPROCS)")
		seed        = fs.Uint64("seed", 0, "Base seed; 0 picks a fresh one")
		window      = fs.String("window", "", "Counting window: majority or full")
		history     = fs.Bool("history", false, "Write per-node signatures for every ensemble")
		compress    = fs.Bool("compress", false, "Snappy-compress history files")
		metricsAddr = fs.String("metrics-addr", "", "Serve /metrics and /healthz on this address")
		reportDir   = fs.String("report-dir", "", "Write one structured report per ensemble here")
		format      = fs.String("format", "", "Report format: json or yaml")
		s3Bucket    = fs.String("s3-bucket", "", "Upload reports to this S3 bucket")
		s3Prefix    = fs.String("s3-prefix", "", "Key prefix for uploaded reports")
		s3Endpoint  = fs.String("s3-endpoint", "", "Custom S3 endpoint (MinIO, LocalStack)")
		s3Region    = fs.String("s3-region", "", "S3 region")
		pgURL       = fs.String("pg-url", "", "Store reports in this Postgres database")
		logLevel    = fs.String("log-level", "", "debug, info, warn or error")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	exp, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	var errs []error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "id":
			exp.ID = *id
		case "mode":
			exp.Mode = config.Mode(*mode)
		case "graph":
			exp.Graph = *graphPath
		case "out":
			exp.Output = *out
		case "graphs":
			exp.Graphs = *graphs
		case "runs":
			exp.Runs = *runs
		case "nodes":
			exp.NodesPerCluster = *nodes
		case "overlaps":
			parsed, err := config.ParseOverlaps(*overlaps)
			if err != nil {
				errs = append(errs, fmt.Errorf("-overlaps: %w", err))
				return
			}
			exp.Overlaps = parsed
		case "alpha":
			exp.Params.Alpha = *alpha
		case "beta":
			exp.Params.Beta = *beta
		case "rounds":
			exp.Params.Rounds = *rounds
		case "pushes":
			exp.Params.Pushes = *pushes
		case "pull":
			exp.Params.PullSamples = *pull
		case "rho":
			exp.Params.MajoritySamples = *rho
		case "ensemble-runs":
			exp.Params.Runs = *ensemble
		case "workers":
			exp.Params.MaxWorkers = *workers
		case "seed":
			exp.Params.Seed = *seed
		case "window":
			exp.Params.Window = overcode.Window(*window)
		case "history":
			exp.History = *history
		case "compress":
			exp.Compress = *compress
		case "metrics-addr":
			exp.MetricsAddr = *metricsAddr
		case "report-dir":
			exp.Reports.Dir = *reportDir
		case "format":
			exp.Reports.Format = output.Format(*format)
		case "s3-bucket":
			exp.S3.Bucket = *s3Bucket
		case "s3-prefix":
			exp.S3.Prefix = *s3Prefix
		case "s3-endpoint":
			exp.S3.Endpoint = *s3Endpoint
		case "s3-region":
			exp.S3.Region = *s3Region
		case "pg-url":
			exp.Postgres.URL = *pgURL
		case "log-level":
			exp.LogLevel = *logLevel
		}
	})
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	return exp, nil
}
