// One sweep of the dynamics: visit every position in the run's fixed order,
// let each non-frozen cell try a left-pair swap, then a right-pair swap,
// committing only swaps that strictly reduce local inversions. Ties never
// swap — that is what prevents livelock.
package engine

import (
	"fmt"
	"math/big"

	"github.com/talgya/cellview/internal/lattice"
)

// doSweep runs one full pass and reports the swap count plus every position
// a committed swap touched, in execution order.
func (e *Engine) doSweep() (int, []int) {
	swaps := 0
	var positions []int
	for _, i := range e.visit {
		if e.lat.Cells[i].Frozen {
			// Frozen cells never initiate; they can still be relocated when
			// a neighbor's swap lands on them.
			continue
		}
		if i > 0 && e.tryPairSwap(i, i-1, i) {
			swaps++
			positions = append(positions, i-1, i)
			continue
		}
		if i+1 < e.lat.Len() && e.tryPairSwap(i, i, i+1) {
			swaps++
			positions = append(positions, i, i+1)
		}
	}
	return swaps, positions
}

// tryPairSwap evaluates exchanging the cells at positions a and b against
// the local-inversion count over the neighborhood centered on position
// center (spanning center-1 through center+1, clipped at the boundaries).
// The swap commits only on a strict reduction. Any energy fault rejects the
// evaluation as non-improving.
func (e *Engine) tryPairSwap(center, a, b int) bool {
	lo := max(center-1, 0)
	hi := min(center+1, e.lat.Len()-1)

	en := make(map[int]*big.Float, hi-lo+1)
	for p := lo; p <= hi; p++ {
		v, err := e.energyAt(p, e.lat.Cells[p])
		if err != nil {
			return false
		}
		en[p] = v
	}

	inverted := func(x, y *big.Float) int {
		if x.Cmp(y) > 0 {
			return 1
		}
		return 0
	}
	// Energy at position p under the hypothetical exchange of a and b.
	exchanged := func(p int) *big.Float {
		switch p {
		case a:
			return en[b]
		case b:
			return en[a]
		default:
			return en[p]
		}
	}

	before, after := 0, 0
	for p := lo; p < hi; p++ {
		before += inverted(en[p], en[p+1])
		after += inverted(exchanged(p), exchanged(p+1))
	}
	if after >= before {
		return false
	}
	e.lat.Swap(a, b)
	return true
}

// energyAt returns the cached or freshly computed energy for the cell at
// pos. Faults are recorded once per (type, value) pair, against the sweep
// where they first surfaced; later hits on the same fault bump its count
// instead of appending, so a permanently bad candidate cannot flood the
// report.
func (e *Engine) energyAt(pos int, c *lattice.Cell) (*big.Float, error) {
	if c.Energy != nil {
		return c.Energy, nil
	}
	key := c.Type + "|" + c.Value.String()
	if v, ok := e.cache[key]; ok {
		c.Energy = v
		return v, nil
	}
	if err, ok := e.failed[key]; ok {
		e.faults[e.faultIdx[key]].Count++
		return nil, err
	}

	spec, ok := e.cfg.Specs[c.Type]
	if !ok {
		err := fmt.Errorf("engine: no energy spec for behavioral type %q", c.Type)
		e.recordFault(pos, c, err)
		return nil, err
	}
	v, err := spec.Score(c.Value, e.cfg.Modulus)
	if err != nil {
		e.recordFault(pos, c, err)
		return nil, err
	}
	e.cache[key] = v
	c.Energy = v
	return v, nil
}

// energyOrInf ranks unevaluable cells last instead of dropping them.
func (e *Engine) energyOrInf(pos int, c *lattice.Cell) *big.Float {
	v, err := e.energyAt(pos, c)
	if err != nil {
		return new(big.Float).SetInf(false)
	}
	return v
}

func (e *Engine) energies() []*big.Float {
	out := make([]*big.Float, e.lat.Len())
	for i, c := range e.lat.Cells {
		out[i] = e.energyOrInf(i, c)
	}
	return out
}

func (e *Engine) types() []string {
	out := make([]string, e.lat.Len())
	for i, c := range e.lat.Cells {
		out[i] = c.Type
	}
	return out
}

func (e *Engine) recordFault(pos int, c *lattice.Cell, err error) {
	key := c.Type + "|" + c.Value.String()
	e.failed[key] = err
	e.faultIdx[key] = len(e.faults)
	e.faults = append(e.faults, EnergyFault{
		Step:     e.sweep,
		Position: pos,
		Type:     c.Type,
		Value:    c.Value.String(),
		Err:      err.Error(),
		Count:    1,
	})
}
