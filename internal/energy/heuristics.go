// Resonance heuristics. Residues are taken exactly in big.Int before any
// rounded arithmetic happens, so two candidates with different residues can
// never collapse onto the same energy through intermediate drift.
package energy

import (
	"fmt"
	"math"
	"math/big"
	"sort"
)

func newFloat() *big.Float {
	return new(big.Float).SetPrec(Prec)
}

// ratio returns a/b at full precision. b must be nonzero.
func ratio(a, b *big.Int) (*big.Float, error) {
	if b.Sign() == 0 {
		return nil, fmt.Errorf("%w: division by zero", ErrDomain)
	}
	fa := newFloat().SetInt(a)
	fb := newFloat().SetInt(b)
	return fa.Quo(fa, fb), nil
}

func sqrtOf(modulus *big.Int, p Params) *big.Int {
	if p.SqrtN != nil {
		return p.SqrtN
	}
	return new(big.Int).Sqrt(modulus)
}

// Dirichlet scores by the Dirichlet kernel amplitude |D_j(2π·(N mod n)/n)|.
// With Invert set, energy is low where the residue sits near zero.
func Dirichlet(n, modulus *big.Int, p Params) (*big.Float, error) {
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive candidate %s", ErrDomain, n)
	}
	j := p.J
	if j <= 0 {
		j = 5
	}
	mod := new(big.Int).Mod(modulus, n)
	frac, err := ratio(mod, n) // in [0, 1), exact to Prec bits
	if err != nil {
		return nil, err
	}
	x64, _ := frac.Float64()
	x := 2 * math.Pi * x64
	s := 1.0
	for k := 1; k <= j; k++ {
		s += 2 * math.Cos(float64(k)*x)
	}
	if p.Normalize {
		s /= float64(2*j + 1)
	}
	val := math.Abs(s)
	if p.Invert {
		val = 1 - val
	}
	return newFloat().SetFloat64(val), nil
}

// ArctanGeodesic scores by arctan curvature of the relative distance from
// sqrt(N). Smooth near zero, so the valley around sqrt(N) stays gentle.
func ArctanGeodesic(n, modulus *big.Int, p Params) (*big.Float, error) {
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive candidate %s", ErrDomain, n)
	}
	sqrtN := sqrtOf(modulus, p)
	scale := p.Scale
	if scale == 0 {
		scale = 1.0
	}
	diff := new(big.Int).Sub(n, sqrtN)
	diff.Abs(diff)
	rel, err := ratio(diff, sqrtN)
	if err != nil {
		return nil, err
	}
	r64, _ := rel.Float64()
	return newFloat().SetFloat64(math.Abs(math.Atan(scale * r64))), nil
}

// ZMetric penalizes distance from sqrt(N) and residue magnitude together:
// alpha·(|n−sqrtN|/sqrtN) + beta·((N mod n)/n). Both ratios stay in big.Float
// so the sum is comparison-stable at challenge magnitudes.
func ZMetric(n, modulus *big.Int, p Params) (*big.Float, error) {
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive candidate %s", ErrDomain, n)
	}
	sqrtN := sqrtOf(modulus, p)
	alpha, beta := p.Alpha, p.Beta
	if alpha == 0 && beta == 0 {
		alpha, beta = 1.0, 1.0
	}

	dist := new(big.Int).Sub(n, sqrtN)
	dist.Abs(dist)
	distTerm, err := ratio(dist, sqrtN)
	if err != nil {
		return nil, err
	}
	resTerm, err := ratio(new(big.Int).Mod(modulus, n), n)
	if err != nil {
		return nil, err
	}

	distTerm.Mul(distTerm, newFloat().SetFloat64(alpha))
	resTerm.Mul(resTerm, newFloat().SetFloat64(beta))
	return distTerm.Add(distTerm, resTerm), nil
}

// Residue scores by normalized residue magnitude (N mod n)/n. Lower is
// better; the ratio is exact to Prec bits.
func Residue(n, modulus *big.Int, p Params) (*big.Float, error) {
	if n.Sign() == 0 {
		return nil, fmt.Errorf("%w: division by zero", ErrDomain)
	}
	return ratio(new(big.Int).Mod(modulus, n), n)
}

// Composite blends registry functions by weight. Sub-energies are evaluated
// in sorted-name order so rounding is reproducible across runs. Unknown
// names fail loudly at evaluation time rather than silently skewing the
// blend.
func Composite(n, modulus *big.Int, p Params) (*big.Float, error) {
	names := make([]string, 0, len(p.Weights))
	for name := range p.Weights {
		names = append(names, name)
	}
	sort.Strings(names)

	total := newFloat()
	wsum := 0.0
	for _, name := range names {
		w := p.Weights[name]
		fn, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("energy: composite references unknown function %q", name)
		}
		sub, err := fn(n, modulus, p.Sub[name])
		if err != nil {
			return nil, err
		}
		sub.Mul(sub, newFloat().SetFloat64(w))
		total.Add(total, sub)
		wsum += w
	}
	if wsum == 0 {
		return newFloat(), nil
	}
	return total.Quo(total, newFloat().SetFloat64(wsum)), nil
}
