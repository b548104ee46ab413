// Package energy provides the pluggable scoring layer for the cell-view
// engine. A scoring function maps (candidate value, modulus) to a totally
// ordered energy; the dynamics engine is agnostic to which function backs
// which behavioral type. Scores are purely geometric — computable from
// (N, n) with no access to factor information.
package energy

import (
	"errors"
	"fmt"
	"math/big"
)

// Prec is the mantissa width, in bits, for every energy value. 256 bits
// keeps comparisons exact well past the 127-bit magnitudes the challenge
// modulus produces.
const Prec = 256

// ErrDomain marks inputs a scoring function cannot evaluate, such as a zero
// divisor. The engine treats the affected swap as rejected and keeps going.
var ErrDomain = errors.New("energy: domain fault")

// Func scores candidate n against modulus N. Implementations must be pure:
// no side effects, no dependence on lattice position or run history.
type Func func(n, modulus *big.Int, p Params) (*big.Float, error)

// Params carries per-spec tuning. Fields unused by a given function are
// ignored.
type Params struct {
	J         int      // Dirichlet kernel order
	Normalize bool     // divide kernel amplitude by 2J+1
	Invert    bool     // low energy near residue 0
	SqrtN     *big.Int // precomputed floor(sqrt(N)), nil = derive
	Scale     float64  // arctan steepness
	Alpha     float64  // zmetric distance weight
	Beta      float64  // zmetric residue weight

	// Composite only: weighted sub-functions looked up by registry name.
	Weights map[string]float64
	Sub     map[string]Params
}

// Spec binds a behavioral-type label to a scoring function and its tuning.
type Spec struct {
	Name   string
	Fn     Func
	Params Params
}

// Score evaluates the spec for one candidate.
func (s Spec) Score(n, modulus *big.Int) (*big.Float, error) {
	return s.Fn(n, modulus, s.Params)
}

var registry map[string]Func

func init() {
	registry = map[string]Func{
		"dirichlet": Dirichlet,
		"arctan":    ArctanGeodesic,
		"zmetric":   ZMetric,
		"residue":   Residue,
		"composite": Composite,
	}
}

// Resolve looks up a scoring function by registry name.
func Resolve(name string) (Func, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("energy: unknown function %q", name)
	}
	return fn, nil
}

// DefaultSpecs returns the ready-to-use spec set keyed by behavioral-type
// label. sqrtN may be nil; functions that need it derive it per call.
func DefaultSpecs(sqrtN *big.Int) map[string]Spec {
	return map[string]Spec{
		"dirichlet5": {
			Name:   "dirichlet5",
			Fn:     Dirichlet,
			Params: Params{J: 5, Normalize: true, Invert: true},
		},
		"dirichlet11": {
			Name:   "dirichlet11",
			Fn:     Dirichlet,
			Params: Params{J: 11, Normalize: true, Invert: true},
		},
		"arctan": {
			Name:   "arctan",
			Fn:     ArctanGeodesic,
			Params: Params{SqrtN: sqrtN, Scale: 2.0},
		},
		"residue": {
			Name: "residue",
			Fn:   Residue,
		},
		"zmetric": {
			Name:   "zmetric",
			Fn:     ZMetric,
			Params: Params{SqrtN: sqrtN, Alpha: 0.2, Beta: 1.0},
		},
		"combo_dir11_arctan": {
			Name: "combo_dir11_arctan",
			Fn:   Composite,
			Params: Params{
				Weights: map[string]float64{"dirichlet": 0.6, "arctan": 0.4},
				Sub: map[string]Params{
					"dirichlet": {J: 11, Normalize: true, Invert: true},
					"arctan":    {SqrtN: sqrtN, Scale: 2.5},
				},
			},
		},
		"combo_dir11_res": {
			Name: "combo_dir11_res",
			Fn:   Composite,
			Params: Params{
				Weights: map[string]float64{"dirichlet": 0.6, "residue": 0.4},
				Sub: map[string]Params{
					"dirichlet": {J: 11, Normalize: true, Invert: true},
					"residue":   {},
				},
			},
		},
	}
}
