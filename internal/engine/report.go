// Run report types: the per-sweep history, energy fault records, and the
// final lattice snapshot handed to the corridor selector and certification.
package engine

import (
	"math/big"

	"github.com/talgya/cellview/internal/metrics"
)

// State is the dynamics state machine.
type State int

const (
	// Running — sweeps are still producing swaps and the cap is not hit.
	Running State = iota
	// Quiescent — a full sweep performed zero swaps. Terminal.
	Quiescent
	// StepLimitReached — the sweep cap was hit before quiescence. Terminal.
	StepLimitReached
)

// String returns the state name used in logs and persisted reports.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Quiescent:
		return "quiescent"
	case StepLimitReached:
		return "step_limit_reached"
	default:
		return "unknown"
	}
}

// HistoryEntry is one per-sweep record. Appended exactly once per completed
// sweep and never mutated afterward.
type HistoryEntry struct {
	Step         int     `json:"step"`
	Monotonicity float64 `json:"monotonicity"`
	Clustering   float64 `json:"clustering"`
	Swaps        int     `json:"swaps"`

	// SwappedPositions lists every position touched by a swap this sweep,
	// in execution order. Used post-run to attribute backtracking episodes
	// to corridor entries.
	SwappedPositions []int `json:"swapped_positions,omitempty"`
}

// EnergyFault records a recoverable scoring failure. The swap evaluation
// that hit it was treated as non-improving and the run continued. One record
// exists per (type, value); Step and Position are from the first hit, Count
// tallies every evaluation that ran into the same fault.
type EnergyFault struct {
	Step     int    `json:"step"`
	Position int    `json:"position"`
	Type     string `json:"type"`
	Value    string `json:"value"`
	Err      string `json:"error"`
	Count    int    `json:"count"`
}

// Snapshot is one cell of the final lattice.
type Snapshot struct {
	Position int
	Value    *big.Int
	Type     string
	Frozen   bool
	Origin   int
	Energy   *big.Float // +Inf when every evaluation for this cell faulted
}

// Report is the complete output of one run.
type Report struct {
	State          State
	Sweeps         int // completed sweep count (== len(History))
	History        []HistoryEntry
	Episodes       []metrics.Episode
	BacktrackIndex float64
	Final          []Snapshot
	Faults         []EnergyFault
	TotalSwaps     int
}
