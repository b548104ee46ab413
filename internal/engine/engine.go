// Package engine provides the sweep/swap dynamics for the cell-view
// lattice. Evolution is driven purely by local energy comparisons — there
// is no global controller, and the metrics computed on a run never feed
// back into it.
package engine

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/talgya/cellview/internal/energy"
	"github.com/talgya/cellview/internal/lattice"
	"github.com/talgya/cellview/internal/metrics"
)

// SweepOrder selects how positions are visited within a sweep. Both choices
// are fixed for the whole run; there is no per-sweep nondeterminism.
type SweepOrder string

const (
	// OrderAscending visits positions strictly left to right.
	OrderAscending SweepOrder = "ascending"
	// OrderSeeded visits positions in one permutation drawn from the run's
	// generator at construction time.
	OrderSeeded SweepOrder = "seeded"
)

// ErrInvariant marks a core invariant violation (value multiset or lattice
// length changed by a sweep). Runs abort immediately on it.
var ErrInvariant = errors.New("engine: lattice invariant violated")

// Config describes one run. Everything is explicit — no process-wide state.
type Config struct {
	Modulus    *big.Int
	Candidates []*big.Int // distinct, ordered; positions 0..L-1 at start
	Types      []string   // behavioral-type labels, drawn uniformly per cell
	Specs      map[string]energy.Spec

	SweepOrder SweepOrder
	MaxSweeps  int
	Epsilon    float64 // backtracking hysteresis; negative means metrics default, zero disables

	FrozenCount   int   // randomly frozen positions, drawn from the run RNG
	FrozenIndices []int // explicitly frozen positions

	Rng *rand.Rand // owned by this run
}

// Engine owns and mutates one lattice for the duration of one run.
type Engine struct {
	cfg      Config
	lat      *lattice.Lattice
	visit    []int
	cache    map[string]*big.Float
	failed   map[string]error
	faultIdx map[string]int // (type, value) key -> index into faults
	history  []HistoryEntry
	faults   []EnergyFault
	state    State
	length   int
	checksum uint64
	sweep    int // current sweep index while running
}

// New validates cfg and builds the initial lattice. All configuration
// errors surface here, before any sweep begins.
func New(cfg Config) (*Engine, error) {
	if len(cfg.Candidates) == 0 {
		return nil, fmt.Errorf("engine: empty candidate sequence")
	}
	if cfg.Modulus == nil || cfg.Modulus.Sign() <= 0 {
		return nil, fmt.Errorf("engine: modulus must be positive")
	}
	if cfg.MaxSweeps <= 0 {
		return nil, fmt.Errorf("engine: max sweeps must be positive, got %d", cfg.MaxSweeps)
	}
	if len(cfg.Types) == 0 {
		return nil, fmt.Errorf("engine: no behavioral types configured")
	}
	if cfg.Rng == nil {
		return nil, fmt.Errorf("engine: run RNG is required")
	}
	for _, t := range cfg.Types {
		if _, ok := cfg.Specs[t]; !ok {
			return nil, fmt.Errorf("engine: no energy spec for behavioral type %q", t)
		}
	}

	L := len(cfg.Candidates)
	seen := make(map[string]struct{}, L)
	for _, v := range cfg.Candidates {
		key := v.String()
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("engine: duplicate candidate value %s", key)
		}
		seen[key] = struct{}{}
	}
	if cfg.FrozenCount < 0 || cfg.FrozenCount > L {
		return nil, fmt.Errorf("engine: frozen count %d out of range for lattice length %d", cfg.FrozenCount, L)
	}
	for _, idx := range cfg.FrozenIndices {
		if idx < 0 || idx >= L {
			return nil, fmt.Errorf("engine: frozen index %d out of range for lattice length %d", idx, L)
		}
	}

	// Behavioral types are a uniform seeded draw, fixed for the run.
	cells := make([]*lattice.Cell, L)
	for i, v := range cfg.Candidates {
		cells[i] = &lattice.Cell{
			Value:  v,
			Type:   cfg.Types[cfg.Rng.Intn(len(cfg.Types))],
			Origin: i,
		}
	}
	frozen := 0
	for _, idx := range cfg.FrozenIndices {
		if !cells[idx].Frozen {
			cells[idx].Frozen = true
			frozen++
		}
	}
	if cfg.FrozenCount > L-frozen {
		return nil, fmt.Errorf("engine: frozen count %d exceeds %d unfrozen cells", cfg.FrozenCount, L-frozen)
	}
	for n := 0; n < cfg.FrozenCount; {
		idx := cfg.Rng.Intn(L)
		if !cells[idx].Frozen {
			cells[idx].Frozen = true
			n++
		}
	}

	lat := lattice.New(cells)
	e := &Engine{
		cfg:      cfg,
		lat:      lat,
		cache:    make(map[string]*big.Float),
		failed:   make(map[string]error),
		faultIdx: make(map[string]int),
		state:    Running,
		length:   L,
		checksum: lat.Checksum(),
	}

	switch cfg.SweepOrder {
	case OrderSeeded:
		e.visit = cfg.Rng.Perm(L)
	case OrderAscending, "":
		e.visit = make([]int, L)
		for i := range e.visit {
			e.visit[i] = i
		}
	default:
		return nil, fmt.Errorf("engine: unknown sweep order %q", cfg.SweepOrder)
	}

	return e, nil
}

// State returns the current state machine state.
func (e *Engine) State() State {
	return e.state
}

// Lattice exposes the lattice for read-only inspection in tests.
func (e *Engine) Lattice() *lattice.Lattice {
	return e.lat
}

// Run executes sweeps until a terminal state and assembles the report.
// It returns an error only for invariant violations — energy domain faults
// are local, recorded in the report, and never fatal.
func (e *Engine) Run() (*Report, error) {
	for e.state == Running {
		swaps, positions := e.doSweep()

		if err := e.checkInvariants(); err != nil {
			return nil, err
		}

		e.history = append(e.history, HistoryEntry{
			Step:             e.sweep,
			Monotonicity:     metrics.Monotonicity(e.energies()),
			Clustering:       metrics.Clustering(e.types()),
			Swaps:            swaps,
			SwappedPositions: positions,
		})

		switch {
		case swaps == 0:
			e.state = Quiescent
		case e.sweep+1 >= e.cfg.MaxSweeps:
			e.state = StepLimitReached
		default:
			e.sweep++
		}
	}

	series := make([]float64, len(e.history))
	total := 0
	for i, h := range e.history {
		series[i] = h.Monotonicity
		total += h.Swaps
	}
	episodes, index := metrics.Backtracking(series, e.cfg.Epsilon)

	final := make([]Snapshot, e.lat.Len())
	for i, c := range e.lat.Cells {
		final[i] = Snapshot{
			Position: i,
			Value:    c.Value,
			Type:     c.Type,
			Frozen:   c.Frozen,
			Origin:   c.Origin,
			Energy:   e.energyOrInf(i, c),
		}
	}

	return &Report{
		State:          e.state,
		Sweeps:         len(e.history),
		History:        e.history,
		Episodes:       episodes,
		BacktrackIndex: index,
		Final:          final,
		Faults:         e.faults,
		TotalSwaps:     total,
	}, nil
}

func (e *Engine) checkInvariants() error {
	if e.lat.Len() != e.length {
		return fmt.Errorf("%w: length changed from %d to %d", ErrInvariant, e.length, e.lat.Len())
	}
	if sum := e.lat.Checksum(); sum != e.checksum {
		return fmt.Errorf("%w: value multiset changed (checksum %x != %x)", ErrInvariant, sum, e.checksum)
	}
	return nil
}
