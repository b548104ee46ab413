// Package entropy provides deterministic per-run randomness.
// Every run owns one generator seeded from a hex string (by default the
// SHA-256 of the challenge modulus), so independent runs never share state
// and any run can be replayed from its seed alone.
package entropy

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand"
)

// SeedFromHex folds an arbitrary-length hex string into a 64-bit seed.
// The fold XORs consecutive 8-byte words so the whole digest contributes.
func SeedFromHex(seedHex string) (int64, error) {
	raw, err := hex.DecodeString(seedHex)
	if err != nil {
		return 0, fmt.Errorf("entropy: decode seed %q: %w", seedHex, err)
	}
	if len(raw) == 0 {
		return 0, fmt.Errorf("entropy: empty seed")
	}
	var folded uint64
	for i := 0; i < len(raw); i += 8 {
		var buf [8]byte
		copy(buf[:], raw[i:min(i+8, len(raw))])
		folded ^= binary.BigEndian.Uint64(buf[:])
	}
	return int64(folded), nil
}

// New returns a generator owned by a single run. Callers must not share it
// across concurrent runs.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewFromHex combines SeedFromHex and New.
func NewFromHex(seedHex string) (*rand.Rand, error) {
	seed, err := SeedFromHex(seedHex)
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}
