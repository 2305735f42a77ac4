package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dd0wney/cluso-overcode/pkg/config"
	"github.com/dd0wney/cluso-overcode/pkg/evaluation"
	"github.com/dd0wney/cluso-overcode/pkg/generator"
	"github.com/dd0wney/cluso-overcode/pkg/graph"
	"github.com/dd0wney/cluso-overcode/pkg/health"
	"github.com/dd0wney/cluso-overcode/pkg/logging"
	"github.com/dd0wney/cluso-overcode/pkg/metrics"
	"github.com/dd0wney/cluso-overcode/pkg/output"
	"github.com/dd0wney/cluso-overcode/pkg/overcode"
	"github.com/dd0wney/cluso-overcode/pkg/random"
)

// row summarizes one ensemble for the final table.
type row struct {
	Graph, Run int
	Nodes      int
	Clusters   int
	Seed       uint64
	Elapsed    time.Duration
	Eval       *evaluation.Report
}

// runner drives the graphs x runs experiment loop.
type runner struct {
	exp    *config.Experiment
	logger logging.Logger
	reg    *metrics.Registry
	sink   output.Sink

	done   atomic.Int64
	failed atomic.Int64
}

func newRunner(exp *config.Experiment, logger logging.Logger, reg *metrics.Registry, sink output.Sink) *runner {
	return &runner{exp: exp, logger: logger, reg: reg, sink: sink}
}

func (r *runner) progress() health.Progress {
	return health.Progress{
		Done:   int(r.done.Load()),
		Failed: int(r.failed.Load()),
		Total:  r.exp.Graphs * r.exp.Runs,
	}
}

// source is one graph ready for the ensemble, with its planted
// communities when they are known and the file ids of its nodes when it
// was loaded from a sparse edge list.
type source struct {
	g      *graph.Graph
	truth  [][]int
	labels graph.Labels
	kind   string
}

func (r *runner) graphFor(index int, src random.Source) (*source, error) {
	switch r.exp.Mode {
	case config.ModeFile:
		g, labels, err := graph.LoadEdgeList(r.exp.Graph)
		if err != nil {
			return nil, err
		}
		return &source{g: g, labels: labels, kind: "file"}, nil
	case config.ModeEgo:
		res, err := generator.DefaultEgo().Generate(src)
		if err != nil {
			return nil, err
		}
		return &source{g: res.Graph, truth: res.Truth, kind: "ego"}, nil
	default:
		gen := generator.Clustered{NodesPerCluster: r.exp.NodesPerCluster, Overlaps: r.exp.Overlaps}
		res, err := gen.Generate(src)
		if err != nil {
			return nil, err
		}
		return &source{g: res.Graph, truth: res.Truth, kind: "clustered"}, nil
	}
}

// Run executes every ensemble. Output files are truncated first; each
// ensemble appends to them once it has fully completed.
func (r *runner) Run(ctx context.Context) (rows []row, err error) {
	base := r.exp.Params.Seed
	if base == 0 {
		base = random.FreshSeed()
	}
	r.logger.Info("experiment starting",
		logging.String("mode", string(r.exp.Mode)),
		logging.Int("graphs", r.exp.Graphs),
		logging.Int("runs", r.exp.Runs),
		logging.Uint64("seed", base))

	clusterFile, err := output.Create(r.exp.Output)
	if err != nil {
		return nil, err
	}
	defer closeInto(clusterFile, &err)

	var truthFile io.WriteCloser
	if r.exp.Mode != config.ModeFile {
		if truthFile, err = output.Create(r.exp.Output + "_truth"); err != nil {
			return nil, err
		}
		defer closeInto(truthFile, &err)
	}

	var cached *source
	for i := 0; i < r.exp.Graphs; i++ {
		graphSeed := random.Derive(base, i)

		src := cached
		if src == nil {
			if src, err = r.graphFor(i, random.New(random.Derive(graphSeed, 0))); err != nil {
				return nil, fmt.Errorf("graph %d: %w", i, err)
			}
			if r.exp.Mode == config.ModeFile {
				cached = src
			}
		}
		r.reg.RecordGraph(src.kind, src.g.NodeCount(), src.g.EdgeCount())

		n := r.exp.Nodes()
		if n == 0 {
			n = src.g.NodeCount()
		}
		params := r.exp.Derive(n)
		r.logger.Info("graph ready",
			logging.Int("graph", i),
			logging.Nodes(src.g.NodeCount()),
			logging.Int("edges", src.g.EdgeCount()),
			logging.Rounds(params.Rounds),
			logging.Int("ensemble_runs", params.Runs))

		for j := 0; j < r.exp.Runs; j++ {
			params.Seed = random.Derive(graphSeed, j+1)
			rw, err := r.ensemble(ctx, i, j, src, params, clusterFile, truthFile)
			if err != nil {
				r.failed.Add(1)
				return nil, fmt.Errorf("graph %d run %d: %w", i, j, err)
			}
			r.done.Add(1)
			rows = append(rows, rw)
		}
	}
	return rows, nil
}

func (r *runner) ensemble(ctx context.Context, i, j int, src *source, params overcode.Params, clusterFile, truthFile io.Writer) (row, error) {
	logger := r.logger.With(logging.Int("graph", i), logging.Int("run", j))
	engine, err := overcode.NewEngine(src.g, params,
		overcode.WithLogger(logger),
		overcode.WithRecorder(r.reg))
	if err != nil {
		return row{}, err
	}
	res, err := engine.Run(ctx)
	if err != nil {
		return row{}, err
	}
	r.reg.RecordOverlap(res.MembershipCounts())

	clusters := res.Clusters()
	if err := output.AppendExperiment(clusterFile, i, j, output.Relabel(clusters, src.labels)); err != nil {
		return row{}, fmt.Errorf("failed to write clusters: %w", err)
	}

	rw := row{
		Graph:    i,
		Run:      j,
		Nodes:    res.NodeCount(),
		Clusters: len(clusters),
		Seed:     res.Seed(),
		Elapsed:  res.Elapsed(),
	}

	if src.truth != nil {
		if err := output.AppendTruth(truthFile, i, j, src.truth); err != nil {
			return row{}, fmt.Errorf("failed to write truth: %w", err)
		}
		members := make([][]int, len(clusters))
		for c, cl := range clusters {
			members[c] = cl.Members
		}
		rw.Eval = evaluation.Evaluate(members, src.truth, res.NodeCount())
		r.reg.RecordEvaluation(rw.Eval.Jaccards(), rw.Eval.Misclassified)
	}

	if r.exp.History {
		if err := r.saveHistory(i, j, res, src.labels); err != nil {
			return row{}, err
		}
	}

	if r.sink != nil {
		report := output.NewReport(output.GraphInfo{
			Source: src.kind,
			Index:  i,
			Nodes:  src.g.NodeCount(),
			Edges:  src.g.EdgeCount(),
		}, j, engine.Params(), res)
		report.ExperimentID = r.exp.ID
		report.Relabel(src.labels)
		report.Evaluation = rw.Eval
		if err := r.sink.Put(ctx, report); err != nil {
			logger.Warn("report upload failed", logging.Error(err), logging.String("report", report.ID))
		}
	}

	logger.Info("ensemble finished",
		logging.Clusters(len(clusters)),
		logging.Latency(res.Elapsed()))
	return rw, nil
}

func (r *runner) saveHistory(i, j int, res *overcode.Result, labels graph.Labels) error {
	dir := r.exp.Output + "_history"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}
	name := fmt.Sprintf("%d_%d.txt", i, j)
	if r.exp.Compress {
		name += output.SnappySuffix
	}
	return output.SaveHistory(filepath.Join(dir, name), res.Signatures(), labels)
}

func closeInto(c io.Closer, err *error) {
	if cerr := c.Close(); *err == nil && cerr != nil {
		*err = cerr
	}
}
