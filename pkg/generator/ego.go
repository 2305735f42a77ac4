package generator

import (
	"fmt"

	"gonum.org/v1/gonum/graph/graphs/gen"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/dd0wney/cluso-overcode/pkg/graph"
	"github.com/dd0wney/cluso-overcode/pkg/random"
	"github.com/dd0wney/cluso-overcode/pkg/validation"
)

// Ego models the neighborhood of one person: several dense circles that
// overlap pairwise and all contain the ego node.
type Ego struct {
	MinClusters, MaxClusters int
	MeanSize, SizeStdDev     int
	MinOverlap, MaxOverlap   int
	MinBridges, MaxBridges   int
}

// DefaultEgo returns 4-6 circles of Normal(125, 25) size with 0-10 shared
// nodes and 10-20 bridge edges per circle pair.
func DefaultEgo() Ego {
	return Ego{
		MinClusters: 4, MaxClusters: 6,
		MeanSize: 125, SizeStdDev: 25,
		MinOverlap: 0, MaxOverlap: 10,
		MinBridges: 10, MaxBridges: 20,
	}
}

func (e Ego) Name() string { return "ego" }

func (e Ego) Validate() error {
	cv := validation.NewConfigValidator("Ego").
		Positive("MinClusters", e.MinClusters).
		MinInt("MaxClusters", e.MaxClusters, e.MinClusters).
		MaxInt("MaxClusters", e.MaxClusters, maxClusters).
		Positive("MeanSize", e.MeanSize).
		NonNegative("SizeStdDev", e.SizeStdDev).
		NonNegative("MinOverlap", e.MinOverlap).
		MinInt("MaxOverlap", e.MaxOverlap, e.MinOverlap).
		NonNegative("MinBridges", e.MinBridges).
		MinInt("MaxBridges", e.MaxBridges, e.MinBridges)
	if err := cv.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// layout draws circle sizes and pairwise overlaps and assigns node ids.
// The ego node gets the last id.
func (e Ego) layout(src random.Source) ([][]int, int, error) {
	k, err := src.IntRange(e.MinClusters, e.MaxClusters)
	if err != nil {
		return nil, 0, err
	}
	truth := make([][]int, k)

	next := 0
	for j := range truth {
		size := max(src.NormInt(e.MeanSize, e.SizeStdDev), 1)
		for rep := 0; rep < size; rep++ {
			truth[j] = append(truth[j], next)
			next++
		}
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			overlap, err := src.IntRange(e.MinOverlap, e.MaxOverlap)
			if err != nil {
				return nil, 0, err
			}
			for rep := 0; rep < overlap; rep++ {
				truth[i] = append(truth[i], next)
				truth[j] = append(truth[j], next)
				next++
			}
		}
	}
	for j := range truth {
		truth[j] = append(truth[j], next)
	}
	return truth, next + 1, nil
}

// Generate draws a graph: each circle is a clique, and every circle pair
// gets a random number of bridge edges between random members.
func (e Ego) Generate(src random.Source) (*Result, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	truth, n, err := e.layout(src)
	if err != nil {
		return nil, err
	}

	g := simple.NewUndirectedGraph()
	for u := 0; u < n; u++ {
		g.AddNode(simple.Node(u))
	}
	for _, members := range truth {
		ids := make(gen.IDSet, len(members))
		for i, u := range members {
			ids[i] = int64(u)
		}
		gen.Complete(g, ids)
	}

	for i := range truth {
		for j := i + 1; j < len(truth); j++ {
			bridges, err := src.IntRange(e.MinBridges, e.MaxBridges)
			if err != nil {
				return nil, err
			}
			for rep := 0; rep < bridges; rep++ {
				u := truth[i][src.Intn(len(truth[i]))]
				v := truth[j][src.Intn(len(truth[j]))]
				if u != v {
					g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
				}
			}
		}
	}

	out, _, err := graph.FromGonum(g)
	if err != nil {
		return nil, err
	}
	sortTruth(truth)
	return &Result{Graph: out, Truth: truth}, nil
}
