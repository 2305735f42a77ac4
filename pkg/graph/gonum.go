package graph

import (
	"sort"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// FromGonum converts a gonum undirected graph. Node ids are remapped to
// the dense range 0..n-1 in ascending order of the gonum ids; the returned
// slice maps each dense id back to its gonum id.
func FromGonum(g gonumgraph.Undirected) (*Graph, []int64, error) {
	nodes := gonumgraph.NodesOf(g.Nodes())
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	dense := make(map[int64]int, len(ids))
	for i, id := range ids {
		dense[id] = i
	}

	adj := make([][]int, len(ids))
	for i, id := range ids {
		it := g.From(id)
		for it.Next() {
			v := it.Node().ID()
			if v == id {
				continue
			}
			adj[i] = append(adj[i], dense[v])
		}
		sort.Ints(adj[i])
	}

	out, err := New(adj)
	if err != nil {
		return nil, nil, err
	}
	return out, ids, nil
}

// ToGonum returns g as a gonum simple undirected graph with node ids equal
// to the dense ids.
func (g *Graph) ToGonum() *simple.UndirectedGraph {
	out := simple.NewUndirectedGraph()
	for u := 0; u < g.NodeCount(); u++ {
		out.AddNode(simple.Node(u))
	}
	for _, e := range g.Edges() {
		out.SetEdge(simple.Edge{F: simple.Node(e.U), T: simple.Node(e.V)})
	}
	return out
}
