package overcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolString(t *testing.T) {
	assert.Equal(t, "R", SymbolR.String())
	assert.Equal(t, "B", SymbolB.String())
	assert.Equal(t, "U", SymbolUncertain.String())
	assert.Equal(t, "Symbol(7)", Symbol(7).String())
	assert.False(t, Symbol(7).Valid())
}

func TestSignatureRoundTrip(t *testing.T) {
	sig := Signature{SymbolR, SymbolUncertain, SymbolB, SymbolB}
	assert.Equal(t, "RUBB", sig.String())
	assert.Equal(t, 3, sig.Decided())

	parsed, err := ParseSignature("RUBB")
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)

	_, err = ParseSignature("RXB")
	assert.Error(t, err)
}

func TestZeroSymbolIsUncertain(t *testing.T) {
	var s Symbol
	assert.Equal(t, SymbolUncertain, s)
	assert.False(t, s.Decided())
}
