package overcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sigs(t *testing.T, texts ...string) []Signature {
	t.Helper()
	out := make([]Signature, len(texts))
	for i, s := range texts {
		out[i] = mustSig(t, s)
	}
	return out
}

func TestCandidates(t *testing.T) {
	s := sigs(t,
		"RRRRR", // 5 decided
		"RRRUU", // 3 decided
		"UUUUU", // none
		"BBBBU", // 4 decided
	)
	assert.Equal(t, []int{0, 1, 3}, candidates(s, 0.6))
	assert.Equal(t, []int{0, 3}, candidates(s, 0.8))
	assert.Equal(t, []int{0}, candidates(s, 1))
}

func TestIdentifyDisjointGroups(t *testing.T) {
	s := sigs(t,
		"RRBBRR",
		"RRBBRR",
		"BBRRBB",
		"BBRRBB",
	)
	clusters := Identify(s, 0.6)
	require.Len(t, clusters, 2)

	assert.Equal(t, 0, clusters[0].Representative)
	assert.Equal(t, []int{0, 1}, clusters[0].Members)
	assert.Equal(t, 2, clusters[1].Representative)
	assert.Equal(t, []int{2, 3}, clusters[1].Members)
}

func TestIdentifyOverlap(t *testing.T) {
	// The two representatives disagree on the second half, where node 2
	// is uncertain, so node 2 matches both.
	s := sigs(t,
		"RRRRBBBB",
		"RRRRBBBB",
		"RRRRUUUU",
		"RRRRRRRR",
		"RRRRRRRR",
	)
	clusters := Identify(s, 0.75)
	require.Len(t, clusters, 2)

	m := memberships(clusters, len(s))
	assert.Equal(t, []int{0, 1}, m[2], "node 2 should join both clusters")
	assert.Equal(t, []int{0}, m[0])
	assert.Equal(t, []int{1}, m[3])
}

func TestIdentifyNonCandidatesStillJoin(t *testing.T) {
	s := sigs(t,
		"RRRRRR",
		"RUUUUU", // too few decided to be a candidate
	)
	clusters := Identify(s, 0.5)
	require.Len(t, clusters, 1)
	assert.Equal(t, []int{0, 1}, clusters[0].Members)
}

func TestIdentifyNoCandidates(t *testing.T) {
	clusters := Identify(sigs(t, "UUUU", "UUUU"), 0.5)
	assert.Empty(t, clusters)
}

func TestRepresentativesAreDistinct(t *testing.T) {
	s := sigs(t,
		"RRRRRRRRRR",
		"RRRRRRRRRB",
		"RRRRRBBBBB",
		"BBBBBBBBBB",
		"BRBRBRBRBR",
		"RBRBRBRBRB",
		"RRRRRRRRBB",
	)
	for _, beta := range []float64{0.3, 0.5, 0.6, 0.8, 0.95, 1} {
		clusters := Identify(s, beta)
		for i := range clusters {
			for j := i + 1; j < len(clusters); j++ {
				sim := Similarity(clusters[i].Signature, clusters[j].Signature)
				assert.Less(t, sim, beta, "beta=%v reps %d and %d", beta, clusters[i].Representative, clusters[j].Representative)
			}
			assert.Contains(t, clusters[i].Members, clusters[i].Representative)
		}
	}
}

func TestIdentifyIsOrderDependent(t *testing.T) {
	// The middle signature is close to both ends, which are not close to
	// each other. Scanning in node order, the first node wins.
	a := "RRRRRRBBBB"
	mid := "RRRRRRRRBB"
	b := "RRRRRRRRRR"

	first := Identify(sigs(t, a, mid, b), 0.75)
	require.Len(t, first, 2)
	assert.Equal(t, 0, first[0].Representative)
	assert.Equal(t, 2, first[1].Representative)

	second := Identify(sigs(t, mid, a, b), 0.75)
	require.Len(t, second, 1)
	assert.Equal(t, 0, second[0].Representative)
}

func TestMemberships(t *testing.T) {
	clusters := []Cluster{
		{ID: 0, Members: []int{0, 1}},
		{ID: 1, Members: []int{1, 2}},
	}
	m := memberships(clusters, 4)
	assert.Equal(t, []int{0}, m[0])
	assert.Equal(t, []int{0, 1}, m[1])
	assert.Equal(t, []int{1}, m[2])
	assert.Empty(t, m[3])
}
