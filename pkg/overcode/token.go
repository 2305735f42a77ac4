// Package overcode detects overlapping communities by running an ensemble
// of randomized gossip/majority simulations over a graph and clustering the
// per-node outcome signatures.
package overcode

import (
	"fmt"
	"strings"
)

// Token is the binary state a node holds during one round.
type Token uint8

const (
	TokenR Token = iota
	TokenB
)

func (t Token) String() string {
	if t == TokenR {
		return "R"
	}
	return "B"
}

// Symbol is one entry of a node signature: the outcome of a single run.
// The zero value is SymbolUncertain.
type Symbol uint8

const (
	SymbolUncertain Symbol = iota
	SymbolR
	SymbolB
)

// Decided reports whether the symbol is R or B.
func (s Symbol) Decided() bool {
	return s == SymbolR || s == SymbolB
}

// Valid reports whether s is one of the three defined symbols.
func (s Symbol) Valid() bool {
	return s <= SymbolB
}

func (s Symbol) String() string {
	switch s {
	case SymbolR:
		return "R"
	case SymbolB:
		return "B"
	case SymbolUncertain:
		return "U"
	default:
		return fmt.Sprintf("Symbol(%d)", uint8(s))
	}
}

// Signature is a node's sequence of run outcomes, one symbol per run in
// run-index order.
type Signature []Symbol

// Decided counts the non-uncertain symbols.
func (s Signature) Decided() int {
	n := 0
	for _, sym := range s {
		if sym.Decided() {
			n++
		}
	}
	return n
}

// String encodes the signature as a string over {R, B, U}.
func (s Signature) String() string {
	var b strings.Builder
	b.Grow(len(s))
	for _, sym := range s {
		b.WriteString(sym.String())
	}
	return b.String()
}

// ParseSignature decodes the String form.
func ParseSignature(text string) (Signature, error) {
	sig := make(Signature, len(text))
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case 'R':
			sig[i] = SymbolR
		case 'B':
			sig[i] = SymbolB
		case 'U':
			sig[i] = SymbolUncertain
		default:
			return nil, fmt.Errorf("invalid symbol %q at position %d", text[i], i)
		}
	}
	return sig, nil
}
