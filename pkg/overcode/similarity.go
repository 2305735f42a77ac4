package overcode

// Similarity is the fraction of agreeing positions among those where both
// signatures are decided. It is 0 when no such position exists. Signatures
// of different lengths are compared over the shorter prefix.
func Similarity(a, b Signature) float64 {
	n := min(len(a), len(b))
	valid, equal := 0, 0
	for i := 0; i < n; i++ {
		if !a[i].Decided() || !b[i].Decided() {
			continue
		}
		valid++
		if a[i] == b[i] {
			equal++
		}
	}
	if valid == 0 {
		return 0
	}
	return float64(equal) / float64(valid)
}
