// Package metrics extracts the emergent signals of a run: monotonicity of
// the energy ordering, behavioral-type clustering, and the backtracking
// index over the monotonicity series. Everything here is a pure function of
// completed data — nothing feeds back into the dynamics.
package metrics

import "math/big"

// Monotonicity is the fraction of adjacent pairs whose energies are in
// non-decreasing order. Defined as 1.0 for lattices shorter than 2.
// Comparisons use big.Float.Cmp, so there is no drift at any magnitude.
func Monotonicity(energies []*big.Float) float64 {
	if len(energies) < 2 {
		return 1.0
	}
	ordered := 0
	for i := 0; i+1 < len(energies); i++ {
		if energies[i].Cmp(energies[i+1]) <= 0 {
			ordered++
		}
	}
	return float64(ordered) / float64(len(energies)-1)
}

// Clustering is the fraction of interior positions whose left, self, and
// right neighbors all share one behavioral type. Defined as 0.0 when there
// are no interior positions.
func Clustering(types []string) float64 {
	if len(types) < 3 {
		return 0.0
	}
	same := 0
	for i := 1; i+1 < len(types); i++ {
		if types[i-1] == types[i] && types[i] == types[i+1] {
			same++
		}
	}
	return float64(same) / float64(len(types)-2)
}
