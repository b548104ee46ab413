// Package ladder generates the validation ladder: reproducible unbalanced
// semiprime gates from 10 to 130 bits. The small factor gets a quarter of
// the target bits, so it sits far below sqrt(N) instead of clustering near
// it — a harder search target than a balanced semiprime. Base seed 42 with
// per-gate derivation makes every gate reproducible from its name alone;
// the canonical 127-bit challenge slots into the ladder with its factors
// unknown.
package ladder

import (
	"fmt"
	"math/big"
	"math/rand"

	"github.com/talgya/cellview/internal/challenge"
	"github.com/talgya/cellview/internal/entropy"
)

const (
	// BaseSeed anchors per-gate seed derivation; gate seed = BaseSeed + bits.
	BaseSeed int64 = 42
	// Ratio is the fraction of target bits the small factor receives.
	Ratio = 0.25

	minFactorBits = 4
)

// Gate is one rung of the ladder.
type Gate struct {
	Name          string   // "G010" .. "G130", plus "G127"
	TargetBits    int
	ActualBits    int
	N             *big.Int
	P, Q          *big.Int // nil for the challenge gate
	EffectiveSeed int64
	SqrtN         *big.Int
	Note          string
}

// Known reports whether the gate's factors are on record.
func (g Gate) Known() bool {
	return g.P != nil
}

// Generate builds one unbalanced semiprime gate of roughly bits total:
// a small prime of about ratio*bits, a large prime filling the rest, both
// drawn from the gate's own seeded generator.
func Generate(bits int, seed int64, ratio float64) Gate {
	rng := entropy.New(seed)

	pBits := int(float64(bits) * ratio)
	if pBits < minFactorBits {
		pBits = minFactorBits
	}
	p := nextPrime(randomOdd(rng, pBits))

	qBits := bits - p.BitLen()
	if qBits < p.BitLen()+1 {
		qBits = p.BitLen() + 1
	}
	q := nextPrime(randomOdd(rng, qBits))

	if p.Cmp(q) > 0 {
		p, q = q, p
	}
	n := new(big.Int).Mul(p, q)

	return Gate{
		Name:          fmt.Sprintf("G%03d", bits),
		TargetBits:    bits,
		ActualBits:    n.BitLen(),
		N:             n,
		P:             p,
		Q:             q,
		EffectiveSeed: seed,
		SqrtN:         new(big.Int).Sqrt(n),
	}
}

// randomOdd draws an odd integer of exactly bits length.
func randomOdd(rng *rand.Rand, bits int) *big.Int {
	span := new(big.Int).Lsh(one, uint(bits-1))
	v := new(big.Int).Rand(rng, span)
	v.Add(v, span) // now in [2^(bits-1), 2^bits)
	v.SetBit(v, 0, 1)
	return v
}

// Gates returns the full ladder in ascending bit order, the canonical
// challenge slotted between G120 and G130.
func Gates() []Gate {
	var out []Gate
	for bits := 10; bits <= 130; bits += 10 {
		if bits > challenge.Canonical.BitLen && len(out) > 0 && out[len(out)-1].TargetBits <= challenge.Canonical.BitLen {
			out = append(out, challengeGate())
		}
		out = append(out, Generate(bits, BaseSeed+int64(bits), Ratio))
	}
	return out
}

// Find returns the gate with the given name, e.g. "G030" or "G127".
func Find(name string) (Gate, error) {
	for _, g := range Gates() {
		if g.Name == name {
			return g, nil
		}
	}
	return Gate{}, fmt.Errorf("ladder: unknown gate %q", name)
}

func challengeGate() Gate {
	c := challenge.Canonical
	return Gate{
		Name:       "G127",
		TargetBits: c.BitLen,
		ActualBits: c.BitLen,
		N:          c.N,
		SqrtN:      c.SqrtN,
		Note:       "canonical challenge, factors unknown",
	}
}
