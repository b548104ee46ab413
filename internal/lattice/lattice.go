// Package lattice provides the cell record and the ordered container the
// dynamics engine evolves. Cells move between positions by swap only; a
// cell's value never changes once assigned, so the value multiset of the
// lattice is conserved across the whole run. Checksum gives the engine a
// cheap tripwire for that invariant.
package lattice

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
)

// Cell is one positioned entity.
type Cell struct {
	Value  *big.Int // immutable once assigned
	Type   string   // behavioral-type label, fixed for the run
	Frozen bool     // never initiates a swap; may still be relocated
	Origin int      // index in the initial candidate ordering

	// Energy is the cached score for (Value, Type). The engine owns it and
	// only ever writes values a fresh evaluation would also produce.
	Energy *big.Float
}

// Lattice is the ordered sequence of cells, length fixed for the run.
type Lattice struct {
	Cells []*Cell
}

// New wraps cells in a lattice without copying them.
func New(cells []*Cell) *Lattice {
	return &Lattice{Cells: cells}
}

// Len returns the number of positions.
func (l *Lattice) Len() int {
	return len(l.Cells)
}

// Swap exchanges the cells at positions i and j.
func (l *Lattice) Swap(i, j int) {
	l.Cells[i], l.Cells[j] = l.Cells[j], l.Cells[i]
}

// Checksum fingerprints the value multiset, independent of cell order.
// Wrapping addition over per-value digests keeps duplicates distinguishable
// (unlike XOR, where a repeated value would cancel itself out).
func (l *Lattice) Checksum() uint64 {
	var sum uint64
	for _, c := range l.Cells {
		d := sha256.Sum256(c.Value.Bytes())
		sum += binary.BigEndian.Uint64(d[:8])
	}
	return sum
}
