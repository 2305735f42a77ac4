// Package evaluation scores detected communities against planted ground
// truth.
package evaluation

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Jaccard returns |a ∩ b| / |a ∪ b| for two sets given as id lists.
// Duplicates are ignored. Two empty sets score 0.
func Jaccard(a, b []int) float64 {
	sa := toSet(a)
	sb := toSet(b)
	inter := 0
	for u := range sa {
		if _, ok := sb[u]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func toSet(ids []int) map[int]struct{} {
	s := make(map[int]struct{}, len(ids))
	for _, u := range ids {
		s[u] = struct{}{}
	}
	return s
}

// difference returns the ids of a missing from b, ascending.
func difference(a, b []int) []int {
	sb := toSet(b)
	var out []int
	for u := range toSet(a) {
		if _, ok := sb[u]; !ok {
			out = append(out, u)
		}
	}
	sort.Ints(out)
	return out
}

// Match pairs one detected community with one planted community.
type Match struct {
	Detected int     `json:"detected" yaml:"detected"`
	Truth    int     `json:"truth" yaml:"truth"`
	Jaccard  float64 `json:"jaccard" yaml:"jaccard"`
	Extra    []int   `json:"extra,omitempty" yaml:"extra,omitempty"`
	Missing  []int   `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// MatchClusters pairs detected and planted communities one-to-one,
// repeatedly taking the remaining pair with the highest Jaccard index.
// Pairs with no shared node are never matched. Ties go to the lower
// detected index, then the lower truth index.
func MatchClusters(detected, truth [][]int) []Match {
	type pair struct {
		d, t int
		j    float64
	}
	var pairs []pair
	for d := range detected {
		for t := range truth {
			if j := Jaccard(detected[d], truth[t]); j > 0 {
				pairs = append(pairs, pair{d, t, j})
			}
		}
	}
	sort.SliceStable(pairs, func(i, k int) bool {
		return pairs[i].j > pairs[k].j
	})

	usedD := make([]bool, len(detected))
	usedT := make([]bool, len(truth))
	var matches []Match
	for _, p := range pairs {
		if usedD[p.d] || usedT[p.t] {
			continue
		}
		usedD[p.d], usedT[p.t] = true, true
		matches = append(matches, Match{
			Detected: p.d,
			Truth:    p.t,
			Jaccard:  p.j,
			Extra:    difference(detected[p.d], truth[p.t]),
			Missing:  difference(truth[p.t], detected[p.d]),
		})
	}
	sort.Slice(matches, func(i, k int) bool { return matches[i].Truth < matches[k].Truth })
	return matches
}

// GroupStats summarizes node-level Jaccard scores for nodes that belong
// to the same number of planted communities.
type GroupStats struct {
	Memberships int     `json:"memberships" yaml:"memberships"`
	Nodes       int     `json:"nodes" yaml:"nodes"`
	Mean        float64 `json:"mean" yaml:"mean"`
	StdDev      float64 `json:"std_dev" yaml:"std_dev"`
}

// Report is the comparison of one detection against its ground truth.
type Report struct {
	Matches           []Match      `json:"matches" yaml:"matches"`
	UnmatchedDetected []int        `json:"unmatched_detected,omitempty" yaml:"unmatched_detected,omitempty"`
	UnmatchedTruth    []int        `json:"unmatched_truth,omitempty" yaml:"unmatched_truth,omitempty"`
	ExtraNodes        int          `json:"extra_nodes" yaml:"extra_nodes"`
	MissingNodes      int          `json:"missing_nodes" yaml:"missing_nodes"`
	MeanJaccard       float64      `json:"mean_jaccard" yaml:"mean_jaccard"`
	StdJaccard        float64      `json:"std_jaccard" yaml:"std_jaccard"`
	CountMatches      bool         `json:"count_matches" yaml:"count_matches"`
	Misclassified     int          `json:"misclassified" yaml:"misclassified"`
	Unclustered       int          `json:"unclustered" yaml:"unclustered"`
	OverlapMissed     int          `json:"overlap_missed" yaml:"overlap_missed"`
	ByMemberships     []GroupStats `json:"by_memberships" yaml:"by_memberships"`
}

// Jaccards returns the Jaccard index of every match.
func (r *Report) Jaccards() []float64 {
	out := make([]float64, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Jaccard
	}
	return out
}

// Evaluate compares detected communities over n nodes with the planted
// ones. Detected communities are first matched to planted ones; each
// node's detected memberships are then translated through the matching
// and compared with its planted memberships.
func Evaluate(detected, truth [][]int, n int) *Report {
	r := &Report{
		Matches:      MatchClusters(detected, truth),
		CountMatches: len(detected) == len(truth),
	}

	toTruth := make(map[int]int, len(r.Matches))
	matchedT := make(map[int]bool, len(r.Matches))
	for _, m := range r.Matches {
		toTruth[m.Detected] = m.Truth
		matchedT[m.Truth] = true
		r.ExtraNodes += len(m.Extra)
		r.MissingNodes += len(m.Missing)
	}
	for d := range detected {
		if _, ok := toTruth[d]; !ok {
			r.UnmatchedDetected = append(r.UnmatchedDetected, d)
			r.ExtraNodes += len(toSet(detected[d]))
		}
	}
	for t := range truth {
		if !matchedT[t] {
			r.UnmatchedTruth = append(r.UnmatchedTruth, t)
			r.MissingNodes += len(toSet(truth[t]))
		}
	}

	if j := r.Jaccards(); len(j) > 0 {
		r.MeanJaccard, r.StdJaccard = meanStdDev(j)
	}

	// Unmatched detected communities get negative labels so they never
	// agree with a planted one.
	got := memberships(detected, n, func(d int) int {
		if t, ok := toTruth[d]; ok {
			return t
		}
		return -1 - d
	})
	want := memberships(truth, n, func(t int) int { return t })

	groups := make(map[int][]float64)
	for u := 0; u < n; u++ {
		if len(got[u]) == 0 && len(want[u]) > 0 {
			r.Unclustered++
		}
		if len(want[u]) > 1 && len(got[u]) < len(want[u]) {
			r.OverlapMissed++
		}
		j := Jaccard(got[u], want[u])
		if len(got[u]) == 0 && len(want[u]) == 0 {
			j = 1
		}
		if j < 1 {
			r.Misclassified++
		}
		groups[len(want[u])] = append(groups[len(want[u])], j)
	}

	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		mean, std := meanStdDev(groups[k])
		r.ByMemberships = append(r.ByMemberships, GroupStats{
			Memberships: k,
			Nodes:       len(groups[k]),
			Mean:        mean,
			StdDev:      std,
		})
	}
	return r
}

// memberships lists, per node, the labels of the communities containing
// it after relabeling through label.
func memberships(communities [][]int, n int, label func(int) int) [][]int {
	out := make([][]int, n)
	for c, members := range communities {
		id := label(c)
		for _, u := range members {
			if u >= 0 && u < n {
				out[u] = append(out[u], id)
			}
		}
	}
	return out
}

// meanStdDev is stat.MeanStdDev with a zero deviation for a single sample.
func meanStdDev(x []float64) (mean, std float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
