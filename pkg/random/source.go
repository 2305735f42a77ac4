// Package random provides the per-worker random streams used by the
// ensemble. A Source is owned by exactly one goroutine; nothing in this
// package is safe for concurrent use, and nothing here is global.
package random

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/exp/rand"
)

// ErrInvalidRange is returned when a range has min greater than max.
var ErrInvalidRange = errors.New("min must not be greater than max")

// Source is the random stream consumed by the round executor and the
// synthetic graph generators.
type Source interface {
	// Intn returns a uniform integer in [0, n). It panics if n <= 0.
	Intn(n int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
	// Coin returns a fair coin flip.
	Coin() bool
	// NormInt draws a rounded normal variate.
	NormInt(mean, dev int) int
	// IntRange returns a uniform integer in [min, max].
	IntRange(min, max int) (int, error)
	// Bernoulli reports true with probability prob.
	Bernoulli(prob float64) bool
}

// PCG is a Source backed by a permuted congruential generator.
type PCG struct {
	rng *rand.Rand
}

var entropyCounter atomic.Uint64

// New creates a PCG stream. A zero seed draws a fresh seed from the clock.
func New(seed uint64) *PCG {
	if seed == 0 {
		seed = FreshSeed()
	}
	return &PCG{rng: rand.New(rand.NewSource(seed))}
}

// Derive mixes a base seed with a stream index so that streams created for
// different workers are decorrelated even for adjacent indices.
func Derive(base uint64, index int) uint64 {
	z := base + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	if z == 0 {
		z = 1
	}
	return z
}

// Reseed restarts the stream from seed. A zero seed draws a fresh one.
func (p *PCG) Reseed(seed uint64) {
	if seed == 0 {
		seed = FreshSeed()
	}
	p.rng.Seed(seed)
}

// FreshSeed returns a non-zero seed mixed from the clock and a process-wide
// call counter.
func FreshSeed() uint64 {
	return Derive(uint64(time.Now().UnixNano()), int(entropyCounter.Add(1)))
}

// Intn returns a uniform integer in [0, n).
func (p *PCG) Intn(n int) int {
	return p.rng.Intn(n)
}

// Float64 returns a uniform float in [0, 1).
func (p *PCG) Float64() float64 {
	return p.rng.Float64()
}

// Coin returns a fair coin flip.
func (p *PCG) Coin() bool {
	return p.rng.Uint64()&1 == 1
}

// IntRange returns a uniform integer in [min, max], inclusive.
func (p *PCG) IntRange(min, max int) (int, error) {
	if min > max {
		return 0, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, min, max)
	}
	return min + p.rng.Intn(max-min+1), nil
}

// FloatRange returns a uniform float in [min, max).
func (p *PCG) FloatRange(min, max float64) (float64, error) {
	if min > max {
		return 0, fmt.Errorf("%w: [%g, %g]", ErrInvalidRange, min, max)
	}
	return min + p.rng.Float64()*(max-min), nil
}

// NormInt draws from a normal distribution and rounds to the nearest
// integer, saturating at the int bounds.
func (p *PCG) NormInt(mean, dev int) int {
	v := p.rng.NormFloat64()*float64(dev) + float64(mean)
	if v <= math.MinInt {
		return math.MinInt
	}
	if v >= math.MaxInt {
		return math.MaxInt
	}
	return int(math.Round(v))
}

// Bernoulli reports true with probability prob.
func (p *PCG) Bernoulli(prob float64) bool {
	return p.rng.Float64() < prob
}

var _ Source = (*PCG)(nil)
