// Probabilistic prime search for gate construction. ProbablyPrime at 20
// rounds is exact below 2^64 and leaves a composite-acceptance chance under
// 4^-20 above it, which is far past what reproducible test gates need.
package ladder

import "math/big"

const mrRounds = 20

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// nextPrime returns the smallest probable prime >= n.
func nextPrime(n *big.Int) *big.Int {
	p := new(big.Int).Set(n)
	if p.Cmp(two) <= 0 {
		return big.NewInt(2)
	}
	if p.Bit(0) == 0 {
		p.Add(p, one)
	}
	for !p.ProbablyPrime(mrRounds) {
		p.Add(p, two)
	}
	return p
}

// IsPrime tests n probabilistically, at the same confidence the ladder's
// own factors are generated with.
func IsPrime(n *big.Int) bool {
	return n != nil && n.Sign() > 0 && n.ProbablyPrime(mrRounds)
}
