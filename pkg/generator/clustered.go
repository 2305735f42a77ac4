package generator

import (
	"fmt"
	"math"

	"github.com/dd0wney/cluso-overcode/pkg/graph"
	"github.com/dd0wney/cluso-overcode/pkg/random"
	"github.com/dd0wney/cluso-overcode/pkg/validation"
)

// maxClusters bounds the cluster count so membership fits a bit mask.
const maxClusters = 64

// Clustered plants len(Overlaps)+1 communities of NodesPerCluster nodes.
// Overlaps[i] is the number of nodes shared by every combination of i+2
// communities. Pairs that share a community are joined with probability
// p = 2.5*(log2 n / n)^(1/4); all other pairs with q = p/150. If p would
// exceed 1, p is 1 and q is 1/150.
type Clustered struct {
	NodesPerCluster int
	Overlaps        []int
}

func (c Clustered) Name() string { return "clustered" }

// Clusters is the number of planted communities.
func (c Clustered) Clusters() int {
	return len(c.Overlaps) + 1
}

// Probabilities returns the intra- and inter-community edge probabilities.
func (c Clustered) Probabilities() (intra, inter float64) {
	n := float64(c.NodesPerCluster)
	p := 2.5 * math.Pow(math.Log2(n)/n, 0.25)
	if p > 1 {
		return 1, 1.0 / 150
	}
	return p, p / 150
}

// exclusive is the number of nodes that belong to one community only.
func (c Clustered) exclusive() int {
	k := c.Clusters()
	ex := c.NodesPerCluster
	for i, ov := range c.Overlaps {
		ex -= ov * binomial(k-1, i+1)
	}
	return ex
}

// Validate reports configurations that cannot be generated.
func (c Clustered) Validate() error {
	cv := validation.NewConfigValidator("Clustered").
		Positive("NodesPerCluster", c.NodesPerCluster).
		MaxInt("Clusters", c.Clusters(), maxClusters)
	for i, ov := range c.Overlaps {
		cv.NonNegative(fmt.Sprintf("Overlaps[%d]", i), ov)
	}
	cv.When(!cv.HasErrors(), func(v *validation.ConfigValidator) {
		v.NonNegative("exclusive nodes", c.exclusive())
	})
	if err := cv.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// layout assigns node ids to communities: first the exclusive nodes of
// each community, then for r = 2..k the shared nodes of every
// r-combination.
func (c Clustered) layout() (truth [][]int, total int) {
	k := c.Clusters()
	truth = make([][]int, k)
	ex := c.exclusive()

	next := 0
	for j := range truth {
		for rep := 0; rep < ex; rep++ {
			truth[j] = append(truth[j], next)
			next++
		}
	}
	for i, ov := range c.Overlaps {
		combos := combinations(k, i+2)
		for rep := 0; rep < ov; rep++ {
			for _, comb := range combos {
				for _, j := range comb {
					truth[j] = append(truth[j], next)
				}
				next++
			}
		}
	}
	return truth, next
}

// Generate draws a graph. Every node pair is decided exactly once.
func (c Clustered) Generate(src random.Source) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	truth, n := c.layout()
	if n == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrInvalidConfig)
	}

	mask := make([]uint64, n)
	for j, members := range truth {
		for _, u := range members {
			mask[u] |= 1 << uint(j)
		}
	}

	intra, inter := c.Probabilities()
	var edges []graph.Edge
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			prob := inter
			if mask[u]&mask[v] != 0 {
				prob = intra
			}
			if src.Bernoulli(prob) {
				edges = append(edges, graph.Edge{U: u, V: v})
			}
		}
	}

	g, err := graph.FromEdges(n, edges)
	if err != nil {
		return nil, err
	}
	sortTruth(truth)
	return &Result{Graph: g, Truth: truth}, nil
}
