// Package cert performs the arithmetic certification of a corridor: only
// modulus and gcd checks, nothing heuristic. The engine never calls this —
// it consumes corridor output after a run is complete.
package cert

import (
	"math/big"

	"github.com/talgya/cellview/internal/corridor"
)

// Result is the certification verdict for one corridor entry.
type Result struct {
	Rank      int
	Value     *big.Int
	Energy    *big.Float
	Quotient  *big.Int
	Remainder *big.Int
	Gcd       *big.Int
	IsFactor  bool
}

// Certify checks every corridor entry against the modulus. Entries arrive
// already ranked; ranks are preserved in the results.
func Certify(entries []corridor.Entry, modulus *big.Int) []Result {
	out := make([]Result, len(entries))
	for i, e := range entries {
		q, r := new(big.Int).DivMod(modulus, e.Value, new(big.Int))
		out[i] = Result{
			Rank:      e.Rank,
			Value:     e.Value,
			Energy:    e.Energy,
			Quotient:  q,
			Remainder: r,
			Gcd:       new(big.Int).GCD(nil, nil, modulus, e.Value),
			IsFactor:  r.Sign() == 0,
		}
	}
	return out
}
