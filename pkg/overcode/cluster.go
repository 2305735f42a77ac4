package overcode

// Cluster is one detected community: a representative signature and every
// node whose signature is at least beta-similar to it.
type Cluster struct {
	ID             int       `json:"id" yaml:"id"`
	Representative int       `json:"representative" yaml:"representative"`
	Signature      Signature `json:"-" yaml:"-"`
	Members        []int     `json:"members" yaml:"members"`
}

// Size returns the number of member nodes.
func (c Cluster) Size() int {
	return len(c.Members)
}

// candidates returns the nodes whose signatures have at least beta*ell
// decided symbols, in ascending node order.
func candidates(sigs []Signature, beta float64) []int {
	var out []int
	for u, sig := range sigs {
		if float64(sig.Decided()) >= beta*float64(len(sig)) {
			out = append(out, u)
		}
	}
	return out
}

// representatives walks the candidates in order and keeps each one whose
// similarity to every kept representative is below beta. The outcome
// depends on the candidate order, which is fixed to ascending node id.
func representatives(sigs []Signature, beta float64) []int {
	var reps []int
	for _, u := range candidates(sigs, beta) {
		distinct := true
		for _, r := range reps {
			if Similarity(sigs[u], sigs[r]) >= beta {
				distinct = false
				break
			}
		}
		if distinct {
			reps = append(reps, u)
		}
	}
	return reps
}

// Identify extracts overlapping clusters from node signatures. Every node,
// candidate or not, joins each cluster whose representative it matches
// with similarity >= beta; a node may join none, one or several.
func Identify(sigs []Signature, beta float64) []Cluster {
	reps := representatives(sigs, beta)
	clusters := make([]Cluster, len(reps))
	for i, r := range reps {
		clusters[i] = Cluster{ID: i, Representative: r, Signature: sigs[r]}
	}
	for u, sig := range sigs {
		for i := range clusters {
			if Similarity(sig, clusters[i].Signature) >= beta {
				clusters[i].Members = append(clusters[i].Members, u)
			}
		}
	}
	return clusters
}

// memberships inverts clusters into a per-node list of cluster IDs,
// ascending.
func memberships(clusters []Cluster, n int) [][]int {
	out := make([][]int, n)
	for _, c := range clusters {
		for _, u := range c.Members {
			out[u] = append(out[u], c.ID)
		}
	}
	return out
}
