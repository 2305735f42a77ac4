// Package generator builds synthetic graphs with known overlapping
// community structure for experiments.
package generator

import (
	"errors"
	"sort"

	"github.com/dd0wney/cluso-overcode/pkg/graph"
	"github.com/dd0wney/cluso-overcode/pkg/random"
)

// ErrInvalidConfig is returned when a generator cannot produce a graph
// from its configuration.
var ErrInvalidConfig = errors.New("invalid generator configuration")

// Result is a generated graph together with its planted communities.
type Result struct {
	Graph *graph.Graph
	// Truth lists the members of each planted community, ascending.
	Truth [][]int
}

// Generator produces a fresh random graph on every call.
type Generator interface {
	Name() string
	Generate(src random.Source) (*Result, error)
}

// binomial returns n choose r.
func binomial(n, r int) int {
	if r < 0 || r > n {
		return 0
	}
	if r > n-r {
		r = n - r
	}
	ans := 1
	for i := 1; i <= r; i++ {
		ans = ans * (n - r + i) / i
	}
	return ans
}

// combinations returns every r-subset of {0..n-1} in lexicographic order.
func combinations(n, r int) [][]int {
	var out [][]int
	comb := make([]int, r)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == r {
			out = append(out, append([]int(nil), comb...))
			return
		}
		for i := start; i <= n-(r-depth); i++ {
			comb[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
	return out
}

func sortTruth(truth [][]int) {
	for _, members := range truth {
		sort.Ints(members)
	}
}
