// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package genrel generates the synthetic R/S relations the join engine
// consumes: R as a dense random permutation of primary keys, S as foreign
// keys drawn either uniformly or from a Zipfian distribution over R's key
// range.
package genrel

import (
	"math"
	"math/rand/v2"

	"github.com/ajroetker/radixjoin/join"
)

// Options configures relation generation.
type Options struct {
	// RSize and SSize are the number of tuples in R and S respectively.
	RSize, SSize uint64

	// Skew is the Zipf exponent (theta) for S's foreign-key distribution.
	// Zero means uniform.
	Skew float64

	// Seed seeds the PRNG; fixed seeds make runs reproducible, so running
	// twice with the same Options yields byte-identical relations.
	Seed uint64

	// RandomPayload draws each tuple's payload independently from the same
	// PRNG stream instead of setting it to the tuple's key. By default
	// payload equals key, so checksums stay reproducible across runs with
	// the same seed.
	RandomPayload bool
}

// Generate builds R and S according to opts.
func Generate(opts Options) (r, s *join.Relation, err error) {
	if opts.RSize == 0 {
		return nil, nil, errRelationSize("R", opts.RSize)
	}
	if opts.SSize == 0 {
		return nil, nil, errRelationSize("S", opts.SSize)
	}

	src := rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)

	r = join.NewRelation('R', opts.RSize)
	fillPermutation(r.Tuples, rng)
	setPayloads(r.Tuples, rng, opts.RandomPayload)

	s = join.NewRelation('S', opts.SSize)
	if opts.Skew > 0 {
		fillZipfian(s.Tuples, rng, opts.RSize, opts.Skew)
	} else {
		fillUniform(s.Tuples, rng, opts.RSize)
	}
	setPayloads(s.Tuples, rng, opts.RandomPayload)

	return r, s, nil
}

func errRelationSize(name string, size uint64) error {
	return join.Fatalf("relation-size", "%s must have at least one tuple, got %d", name, size)
}

// fillPermutation fills dst with a Fisher-Yates shuffle of [1, len(dst)],
// giving R's dense, unique primary keys.
func fillPermutation(dst []join.Tuple, rng *rand.Rand) {
	for i := range dst {
		dst[i].Key = uint32(i + 1)
	}
	for i := len(dst) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		dst[i].Key, dst[j].Key = dst[j].Key, dst[i].Key
	}
}

// fillUniform draws |S| foreign keys uniformly from [1, rSize].
func fillUniform(dst []join.Tuple, rng *rand.Rand, rSize uint64) {
	for i := range dst {
		dst[i].Key = uint32(rng.Uint64N(rSize) + 1)
	}
}

// fillZipfian draws |S| foreign keys from a Zipfian distribution over
// [1, rSize] with exponent theta, using a closed-form approximate inverse
// of the Zipf CDF (one uniform draw per key, no rejection loop) rather
// than math/rand/v2's Zipf (which
// requires the domain size up front and samples from [0, n) with a
// different parameterization than the CLI's familiar --skew exponent).
func fillZipfian(dst []join.Tuple, rng *rand.Rand, rSize uint64, theta float64) {
	z := newZipfGenerator(rng, theta, rSize)
	for i := range dst {
		dst[i].Key = uint32(z.next())
	}
}

// zipfGenerator draws integers in [1, n] such that rank k has probability
// proportional to 1/k^theta, via a closed-form approximate inverse CDF.
type zipfGenerator struct {
	rng      *rand.Rand
	n        uint64
	theta    float64
	alpha    float64
	zetaN    float64
	zeta2    float64
	eta      float64
}

func newZipfGenerator(rng *rand.Rand, theta float64, n uint64) *zipfGenerator {
	zetaN := zeta(n, theta)
	zeta2 := zeta(2, theta)
	alpha := 1.0 / (1.0 - theta)
	eta := (1 - math.Pow(2.0/float64(n), 1-theta)) / (1 - zeta2/zetaN)
	return &zipfGenerator{rng: rng, n: n, theta: theta, alpha: alpha, zetaN: zetaN, zeta2: zeta2, eta: eta}
}

func zeta(n uint64, theta float64) float64 {
	var sum float64
	for i := uint64(1); i <= n; i++ {
		sum += 1.0 / math.Pow(float64(i), theta)
	}
	return sum
}

func (z *zipfGenerator) next() uint64 {
	u := z.rng.Float64()
	uz := u * z.zetaN

	if uz < 1.0 {
		return 1
	}
	if uz < 1.0+math.Pow(0.5, z.theta) {
		return 2
	}

	v := 1.0 + float64(z.n)*math.Pow(z.eta*u-z.eta+1.0, z.alpha)
	rank := uint64(v)
	if rank > z.n {
		rank = z.n
	}
	if rank < 1 {
		rank = 1
	}
	return rank
}

func setPayloads(dst []join.Tuple, rng *rand.Rand, random bool) {
	for i := range dst {
		if random {
			dst[i].Payload = rng.Uint32()
		} else {
			dst[i].Payload = dst[i].Key
		}
	}
}
