// Package graph holds the immutable adjacency structure the ensemble runs
// over. A Graph is built once, validated, and then only read; concurrent
// reads from any number of goroutines need no synchronization.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

// Common sentinel errors
var (
	ErrEmptyGraph      = errors.New("graph has no nodes")
	ErrNodeOutOfRange  = errors.New("node id out of range")
	ErrAsymmetric      = errors.New("adjacency is not symmetric")
	ErrSelfLoop        = errors.New("self-loop not allowed")
	ErrNegativeNodeNum = errors.New("node count must be non-negative")
)

// Graph is an undirected graph over dense node ids 0..n-1 stored in
// compressed sparse row form.
type Graph struct {
	offsets   []int // len n+1
	neighbors []int
}

// Edge is an undirected edge between two node ids.
type Edge struct {
	U, V int
}

// New builds a Graph from an adjacency list. The input is copied. Every
// edge u-v must also appear as v-u; duplicate neighbor entries are kept,
// which weights uniform neighbor sampling accordingly.
func New(adj [][]int) (*Graph, error) {
	n := len(adj)
	if n == 0 {
		return nil, ErrEmptyGraph
	}

	total := 0
	for _, nbrs := range adj {
		total += len(nbrs)
	}

	g := &Graph{
		offsets:   make([]int, n+1),
		neighbors: make([]int, 0, total),
	}
	for u, nbrs := range adj {
		for _, v := range nbrs {
			if v < 0 || v >= n {
				return nil, fmt.Errorf("%w: node %d lists neighbor %d (n=%d)", ErrNodeOutOfRange, u, v, n)
			}
			if v == u {
				return nil, fmt.Errorf("%w: node %d", ErrSelfLoop, u)
			}
		}
		g.neighbors = append(g.neighbors, nbrs...)
		g.offsets[u+1] = len(g.neighbors)
	}

	if err := g.checkSymmetric(); err != nil {
		return nil, err
	}
	return g, nil
}

// FromEdges builds a Graph with n nodes from an edge list. Duplicate edges
// (in either orientation) are collapsed and self-loops are dropped.
func FromEdges(n int, edges []Edge) (*Graph, error) {
	if n < 0 {
		return nil, ErrNegativeNodeNum
	}
	if n == 0 {
		return nil, ErrEmptyGraph
	}

	seen := make(map[Edge]struct{}, len(edges))
	adj := make([][]int, n)
	for _, e := range edges {
		if e.U < 0 || e.U >= n || e.V < 0 || e.V >= n {
			return nil, fmt.Errorf("%w: edge %d-%d (n=%d)", ErrNodeOutOfRange, e.U, e.V, n)
		}
		if e.U == e.V {
			continue
		}
		key := canonical(e)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		adj[e.U] = append(adj[e.U], e.V)
		adj[e.V] = append(adj[e.V], e.U)
	}
	return New(adj)
}

func canonical(e Edge) Edge {
	if e.U > e.V {
		return Edge{U: e.V, V: e.U}
	}
	return e
}

// checkSymmetric verifies that every directed entry has a mate of the same
// multiplicity.
func (g *Graph) checkSymmetric() error {
	counts := make(map[Edge]int, len(g.neighbors))
	for u := 0; u < g.NodeCount(); u++ {
		for _, v := range g.Neighbors(u) {
			counts[Edge{U: u, V: v}]++
		}
	}
	for e, c := range counts {
		if counts[Edge{U: e.V, V: e.U}] != c {
			return fmt.Errorf("%w: edge %d->%d has no matching %d->%d", ErrAsymmetric, e.U, e.V, e.V, e.U)
		}
	}
	return nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.offsets) - 1
}

// Neighbors returns the neighbor list of u. The slice aliases internal
// storage and must not be modified.
func (g *Graph) Neighbors(u int) []int {
	return g.neighbors[g.offsets[u]:g.offsets[u+1]:g.offsets[u+1]]
}

// Degree returns the number of neighbor entries of u.
func (g *Graph) Degree(u int) int {
	return g.offsets[u+1] - g.offsets[u]
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return len(g.neighbors) / 2
}

// Isolated returns the ids of nodes with no neighbors, ascending.
func (g *Graph) Isolated() []int {
	var out []int
	for u := 0; u < g.NodeCount(); u++ {
		if g.Degree(u) == 0 {
			out = append(out, u)
		}
	}
	return out
}

// Edges returns every undirected edge once with U < V, sorted.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.EdgeCount())
	for u := 0; u < g.NodeCount(); u++ {
		for _, v := range g.Neighbors(u) {
			if u < v {
				out = append(out, Edge{U: u, V: v})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].U != out[j].U {
			return out[i].U < out[j].U
		}
		return out[i].V < out[j].V
	})
	return out
}
