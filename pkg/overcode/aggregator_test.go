package overcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		r, b      int
		threshold float64
		want      Symbol
	}{
		{"R reaches threshold", 6, 4, 6, SymbolR},
		{"B reaches threshold", 3, 7, 6, SymbolB},
		{"neither", 5, 5, 6, SymbolUncertain},
		{"fractional threshold", 7, 3, 6.5, SymbolR},
		{"R checked first", 10, 10, 10, SymbolR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.r, tt.b, tt.threshold))
		})
	}
}

// history builds a round-major history from per-round token strings.
func history(rounds ...string) []Token {
	var h []Token
	for _, r := range rounds {
		for _, c := range r {
			if c == 'R' {
				h = append(h, TokenR)
			} else {
				h = append(h, TokenB)
			}
		}
	}
	return h
}

func TestSummarizeWindow(t *testing.T) {
	// Two nodes, T=4: rounds 0..5. Node 0 is B during setup and R after;
	// node 1 is R during setup and split after.
	h := history(
		"BR", // round 0
		"BR", // round 1
		"RR",
		"RB",
		"RR",
		"RB",
	)
	p := Params{Rounds: 4, Alpha: 1}

	dst := make([]Symbol, 2)
	summarize(h, 2, p, dst)
	assert.Equal(t, []Symbol{SymbolR, SymbolUncertain}, dst)

	p.Window = WindowFull
	p.Alpha = 1
	summarize(h, 2, p, dst)
	// Full window: node 0 has 4 R of 6, node 1 has 4 R of 6; threshold 4.
	assert.Equal(t, []Symbol{SymbolR, SymbolR}, dst)
}

func TestAssembleRunOrder(t *testing.T) {
	slots := [][]Symbol{
		{SymbolR, SymbolB, SymbolUncertain},
		{SymbolB, SymbolB, SymbolR},
	}
	got := assemble(slots, 3)
	assert.Equal(t, "RB", got[0].String())
	assert.Equal(t, "BB", got[1].String())
	assert.Equal(t, "UR", got[2].String())

	got[0] = append(got[0], SymbolR)
	assert.Equal(t, "BB", got[1].String(), "appending to one signature must not touch the next")
}

func TestSymbolCounts(t *testing.T) {
	r, b, u := symbolCounts([]Signature{
		{SymbolR, SymbolB},
		{SymbolUncertain, SymbolR},
	})
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, b)
	assert.Equal(t, 1, u)
}
