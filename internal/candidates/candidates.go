// Package candidates generates the initial ordered value sequences the
// engine reorders. Validation mode materializes the full [2, sqrt(N)]
// domain for small moduli; challenge mode samples sparse or dense corridors
// around sqrt(N). Every generator is deterministic given its seed source.
package candidates

import (
	"fmt"
	"math/big"
	"math/rand"
	"sort"
)

// DefaultWindow is the half-width of a challenge-mode corridor.
const DefaultWindow int64 = 10_000_000

// SafeCountLimit caps how many candidates a single run may materialize.
// 50 million values is roughly the memory ceiling a run should ever claim.
const SafeCountLimit = 50_000_000

// GuardCount rejects candidate sets that would blow the memory ceiling.
// Called for challenge-mode runs before the lattice is built.
func GuardCount(count int) error {
	if count > SafeCountLimit {
		return fmt.Errorf("candidates: count %d exceeds safe limit %d", count, SafeCountLimit)
	}
	return nil
}

var two = big.NewInt(2)

// clampLow returns max(2, center-half).
func clampLow(center *big.Int, half int64) *big.Int {
	low := new(big.Int).Sub(center, big.NewInt(half))
	if low.Cmp(two) < 0 {
		return new(big.Int).Set(two)
	}
	return low
}

// DenseBand returns the contiguous band [center-half, center+half],
// clamped below at 2.
func DenseBand(center *big.Int, half int64) []*big.Int {
	low := clampLow(center, half)
	high := new(big.Int).Add(center, big.NewInt(half))
	return rangeInclusive(low, high)
}

// Band is one (center, half-width) dense segment.
type Band struct {
	Center *big.Int
	Half   int64
}

// DenseBands merges overlapping bands and returns their full coverage as
// one deduplicated ascending sequence.
func DenseBands(bands []Band) []*big.Int {
	type seg struct{ low, high *big.Int }
	segs := make([]seg, 0, len(bands))
	for _, b := range bands {
		segs = append(segs, seg{
			low:  clampLow(b.Center, b.Half),
			high: new(big.Int).Add(b.Center, big.NewInt(b.Half)),
		})
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].low.Cmp(segs[j].low) < 0 })

	var merged []seg
	for _, s := range segs {
		if len(merged) == 0 {
			merged = append(merged, s)
			continue
		}
		last := &merged[len(merged)-1]
		// Adjacent or overlapping: low <= last.high + 1.
		next := new(big.Int).Add(last.high, big.NewInt(1))
		if s.low.Cmp(next) > 0 {
			merged = append(merged, s)
			continue
		}
		if s.high.Cmp(last.high) > 0 {
			last.high = s.high
		}
	}

	var out []*big.Int
	for _, s := range merged {
		out = append(out, rangeInclusive(s.low, s.high)...)
	}
	return out
}

// DomainLimit is the largest modulus whose full [2, sqrt(n)] domain the
// validation generator will materialize.
var DomainLimit = new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)

// ValidationDomain returns the full [2, floor(sqrt(n))] domain. Refused for
// moduli past DomainLimit — the full domain is for small n only.
func ValidationDomain(n *big.Int) ([]*big.Int, error) {
	if n.Cmp(DomainLimit) > 0 {
		return nil, fmt.Errorf("candidates: modulus %s too large for validation domain", n)
	}
	upper := new(big.Int).Sqrt(n)
	return rangeInclusive(two, upper), nil
}

// Corridor samples distinct integers uniformly from
// [center-window, center+window] (center defaults to floor(sqrt(n))).
// Rejection sampling keeps values distinct without materializing the span.
// When full is set, or samples covers the span, the whole corridor is
// returned instead.
func Corridor(n *big.Int, rng *rand.Rand, samples int, window int64, center *big.Int, full bool) []*big.Int {
	if center == nil {
		center = new(big.Int).Sqrt(n)
	}
	low := clampLow(center, window)
	high := new(big.Int).Add(center, big.NewInt(window))
	span := new(big.Int).Sub(high, low)
	span.Add(span, big.NewInt(1))

	if full || !span.IsInt64() || int64(samples) >= span.Int64() {
		return rangeInclusive(low, high)
	}

	seen := make(map[string]struct{}, samples)
	out := make([]*big.Int, 0, samples)
	for len(out) < samples {
		val := new(big.Int).Add(low, big.NewInt(rng.Int63n(span.Int64())))
		key := val.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, val)
	}
	return out
}

// SampledBand is one (center, window, samples) corridor.
type SampledBand struct {
	Center  *big.Int
	Window  int64
	Samples int
}

// Multiband concatenates corridor samples from several bands, deduplicating
// while preserving band-relative order.
func Multiband(n *big.Int, rng *rand.Rand, bands []SampledBand) []*big.Int {
	seen := make(map[string]struct{})
	var out []*big.Int
	for _, b := range bands {
		for _, v := range Corridor(n, rng, b.Samples, b.Window, b.Center, false) {
			key := v.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func rangeInclusive(low, high *big.Int) []*big.Int {
	var out []*big.Int
	for v := new(big.Int).Set(low); v.Cmp(high) <= 0; v.Add(v, big.NewInt(1)) {
		out = append(out, new(big.Int).Set(v))
	}
	return out
}
