// Package challenge pins the canonical modulus for the cell-view engine.
// There is exactly one in-scope N (a 127-bit semiprime); all other packages
// import it from here so no run can drift onto a different target.
package challenge

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

// decimal digits of the canonical 127-bit challenge modulus.
const nDecimal = "137524771864208156028430259349934309717"

// Challenge bundles the modulus with values derived from it once.
type Challenge struct {
	N       *big.Int
	BitLen  int
	SqrtN   *big.Int // floor(sqrt(N))
	SeedHex string   // SHA-256 of the decimal form of N
}

// Canonical is the single source of truth for the in-scope modulus.
var Canonical = newChallenge(nDecimal)

func newChallenge(decimal string) Challenge {
	n, ok := new(big.Int).SetString(decimal, 10)
	if !ok {
		panic("challenge: bad modulus literal")
	}
	return Challenge{
		N:       n,
		BitLen:  n.BitLen(),
		SqrtN:   new(big.Int).Sqrt(n),
		SeedHex: DeriveSeedHex(n),
	}
}

// DeriveSeedHex maps a modulus to a 256-bit hex seed, deterministically.
// The hex string (not an integer) is the stored form so seeds survive
// serialization without platform-dependent width issues.
func DeriveSeedHex(n *big.Int) string {
	sum := sha256.Sum256([]byte(n.String()))
	return hex.EncodeToString(sum[:])
}
