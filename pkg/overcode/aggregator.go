package overcode

// summarize reduces one run's history to a symbol per node, written into
// dst (len n). A node decides R when its R count over the window reaches
// alpha*T, else B under the same test, else it is uncertain.
func summarize(history []Token, n int, p Params, dst []Symbol) {
	from, to := p.window()
	threshold := p.threshold()
	for u := 0; u < n; u++ {
		var r, b int
		for t := from; t < to; t++ {
			if history[t*n+u] == TokenR {
				r++
			} else {
				b++
			}
		}
		dst[u] = classify(r, b, threshold)
	}
}

func classify(r, b int, threshold float64) Symbol {
	switch {
	case float64(r) >= threshold:
		return SymbolR
	case float64(b) >= threshold:
		return SymbolB
	default:
		return SymbolUncertain
	}
}

// assemble builds node signatures from per-run symbol slots. Symbols are
// appended in run-index order, so the result does not depend on which
// worker finished first. Every slot must be filled.
func assemble(slots [][]Symbol, n int) []Signature {
	ell := len(slots)
	backing := make([]Symbol, n*ell)
	sigs := make([]Signature, n)
	for u := range sigs {
		sigs[u] = backing[u*ell : (u+1)*ell : (u+1)*ell]
	}
	for i, slot := range slots {
		for u, sym := range slot {
			sigs[u][i] = sym
		}
	}
	return sigs
}

// symbolCounts tallies symbols across all signatures.
func symbolCounts(sigs []Signature) (r, b, uncertain int) {
	for _, sig := range sigs {
		for _, sym := range sig {
			switch sym {
			case SymbolR:
				r++
			case SymbolB:
				b++
			default:
				uncertain++
			}
		}
	}
	return r, b, uncertain
}
