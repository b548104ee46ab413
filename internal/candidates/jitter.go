// Quasi-random corridor sampling backed by simplex noise. Unlike the
// uniform sampler, consecutive draws are correlated, which concentrates
// coverage into drifting patches of the corridor instead of scattering it.
package candidates

import (
	"math/big"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// jitterStride controls how far the noise coordinate advances per draw.
// Small strides keep neighboring draws correlated.
const jitterStride = 0.17

// Jittered samples `samples` distinct integers from the corridor
// [center-window, center+window] by walking a 1D slice of normalized
// simplex noise. Deterministic for a given seed. Collisions probe forward
// (wrapping) to the next free value.
func Jittered(n *big.Int, seed int64, samples int, window int64, center *big.Int) []*big.Int {
	if center == nil {
		center = new(big.Int).Sqrt(n)
	}
	low := clampLow(center, window)
	high := new(big.Int).Add(center, big.NewInt(window))
	span := new(big.Int).Sub(high, low)
	span.Add(span, big.NewInt(1))
	if !span.IsInt64() || int64(samples) >= span.Int64() {
		return rangeInclusive(low, high)
	}
	width := span.Int64()

	noise := opensimplex.NewNormalized(seed)
	seen := make(map[int64]struct{}, samples)
	out := make([]*big.Int, 0, samples)
	for k := 0; len(out) < samples; k++ {
		u := noise.Eval2(float64(k)*jitterStride, 0)
		off := int64(u * float64(width))
		if off >= width {
			off = width - 1
		}
		for {
			if _, dup := seen[off]; !dup {
				break
			}
			off = (off + 1) % width
		}
		seen[off] = struct{}{}
		out = append(out, new(big.Int).Add(low, big.NewInt(off)))
	}
	return out
}
