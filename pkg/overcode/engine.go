package overcode

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dd0wney/cluso-overcode/pkg/graph"
	"github.com/dd0wney/cluso-overcode/pkg/logging"
	"github.com/dd0wney/cluso-overcode/pkg/parallel"
	"github.com/dd0wney/cluso-overcode/pkg/random"
	"github.com/dd0wney/cluso-overcode/pkg/validation"
)

// Engine runs the ensemble over one immutable graph. An Engine may be run
// more than once; each Run produces an independent Result.
type Engine struct {
	g        *graph.Graph
	p        Params
	logger   logging.Logger
	recorder Recorder

	// newSource builds each worker's stream; tests swap it.
	newSource func(seed uint64) seededSource

	mu   sync.Mutex
	last *Result
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// NewEngine validates the parameters against the graph. Nothing is
// simulated until Run.
func NewEngine(g *graph.Graph, p Params, opts ...Option) (*Engine, error) {
	if p.Window == "" {
		p.Window = WindowMajority
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cv := validation.NewConfigValidator("Engine").
		Custom("Graph", func() error {
			if g == nil || g.NodeCount() == 0 {
				return graph.ErrEmptyGraph
			}
			return nil
		}).
		MaxInt("MaxWorkers", p.MaxWorkers, parallel.MaxWorkers)
	cv.When(g != nil && g.NodeCount() > 0, func(v *validation.ConfigValidator) {
		v.Custom("Rounds", func() error {
			if p.HistoryLen() > math.MaxInt/g.NodeCount() {
				return fmt.Errorf("history of %d rounds over %d nodes overflows", p.HistoryLen(), g.NodeCount())
			}
			return nil
		})
	})
	if err := cv.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	e := &Engine{
		g:         g,
		p:         p,
		logger:    logging.NopLogger{},
		recorder:  nopRecorder{},
		newSource: newPCG,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(logging.Component("overcode"))
	return e, nil
}

// Params returns the validated parameters, defaults applied.
func (e *Engine) Params() Params {
	return e.p
}

// Graph returns the graph the engine simulates on.
func (e *Engine) Graph() *graph.Graph {
	return e.g
}

// Run executes the ensemble, aggregates signatures after every run has
// joined, and identifies clusters. On error no partial result is
// returned and the previous result, if any, is kept.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	base := e.p.Seed
	if base == 0 {
		base = random.FreshSeed()
	}

	n := e.g.NodeCount()
	timer := logging.StartTimer(e.logger, "ensemble complete",
		logging.Nodes(n), logging.Rounds(e.p.Rounds), logging.Count(e.p.Runs))
	e.logger.Info("ensemble starting",
		logging.Nodes(n),
		logging.Rounds(e.p.Rounds),
		logging.Count(e.p.Runs),
		logging.Int("workers", e.p.Workers()),
		logging.String("window", string(e.p.Window)),
		logging.Uint64("seed", base))

	start := time.Now()
	slots, err := e.ensemble(ctx, base)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	e.recorder.RecordEnsemble(e.p.Runs, time.Since(start))

	sigs := assemble(slots, n)
	e.recorder.RecordSymbols(symbolCounts(sigs))

	clusters := Identify(sigs, e.p.Beta)
	res := &Result{
		signatures:  sigs,
		clusters:    clusters,
		memberships: memberships(clusters, n),
		seed:        base,
		elapsed:     time.Since(start),
	}
	e.recorder.RecordClusters(len(clusters), res.totalMemberships())
	timer.EndWith(logging.Clusters(len(clusters)))

	e.mu.Lock()
	e.last = res
	e.mu.Unlock()
	return res, nil
}

// Result returns the outcome of the most recent successful Run.
func (e *Engine) Result() (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return nil, ErrEngineNotRun
	}
	return e.last, nil
}

// Result holds the frozen signatures and clusters of one Run. It is safe
// for concurrent reads; callers must not modify returned slices.
type Result struct {
	signatures  []Signature
	clusters    []Cluster
	memberships [][]int
	seed        uint64
	elapsed     time.Duration
}

// NodeCount returns the number of nodes covered by the result.
func (r *Result) NodeCount() int {
	return len(r.signatures)
}

// Signatures returns every node's signature, indexed by node.
func (r *Result) Signatures() []Signature {
	return r.signatures
}

// Signature returns node u's signature.
func (r *Result) Signature(u int) (Signature, error) {
	if u < 0 || u >= len(r.signatures) {
		return nil, fmt.Errorf("%w: %d", graph.ErrNodeOutOfRange, u)
	}
	return r.signatures[u], nil
}

// Clusters returns the clusters in the order their representatives were
// accepted.
func (r *Result) Clusters() []Cluster {
	return r.clusters
}

// Representatives returns each cluster's representative signature.
func (r *Result) Representatives() []Signature {
	reps := make([]Signature, len(r.clusters))
	for i, c := range r.clusters {
		reps[i] = c.Signature
	}
	return reps
}

// Memberships returns the IDs of the clusters node u belongs to.
func (r *Result) Memberships(u int) ([]int, error) {
	if u < 0 || u >= len(r.memberships) {
		return nil, fmt.Errorf("%w: %d", graph.ErrNodeOutOfRange, u)
	}
	return r.memberships[u], nil
}

// MembershipCounts returns, per node, how many clusters it belongs to.
func (r *Result) MembershipCounts() []int {
	counts := make([]int, len(r.memberships))
	for u, ids := range r.memberships {
		counts[u] = len(ids)
	}
	return counts
}

// ClusterMap maps each representative signature, in String form, to its
// members.
func (r *Result) ClusterMap() map[string][]int {
	m := make(map[string][]int, len(r.clusters))
	for _, c := range r.clusters {
		m[c.Signature.String()] = c.Members
	}
	return m
}

// Seed is the base seed the ensemble ran with. Running again with
// Params.Seed set to it reproduces the result.
func (r *Result) Seed() uint64 {
	return r.seed
}

// Elapsed is the wall time from ensemble start to cluster extraction.
func (r *Result) Elapsed() time.Duration {
	return r.elapsed
}

func (r *Result) totalMemberships() int {
	total := 0
	for _, ids := range r.memberships {
		total += len(ids)
	}
	return total
}

// IsCancelled reports whether err stems from context cancellation or a
// deadline.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
