package engine

import (
	"fmt"
	"math/big"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/cellview/internal/energy"
	"github.com/talgya/cellview/internal/entropy"
	"github.com/talgya/cellview/internal/metrics"
)

// identitySpec scores a cell by its own value, so lattice order by energy
// is lattice order by value. Monotone and trivially exact.
func identitySpec() map[string]energy.Spec {
	return map[string]energy.Spec{
		"ident": {
			Name: "ident",
			Fn: func(n, modulus *big.Int, p energy.Params) (*big.Float, error) {
				return new(big.Float).SetPrec(energy.Prec).SetInt(n), nil
			},
		},
	}
}

func bigs(vals ...int64) []*big.Int {
	out := make([]*big.Int, len(vals))
	for i, v := range vals {
		out[i] = big.NewInt(v)
	}
	return out
}

func testConfig(candidates []*big.Int) Config {
	return Config{
		Modulus:    big.NewInt(1_000_003),
		Candidates: candidates,
		Types:      []string{"ident"},
		Specs:      identitySpec(),
		MaxSweeps:  100,
		Rng:        entropy.New(7),
	}
}

func TestSortedLatticeImmediatelyQuiescent(t *testing.T) {
	eng, err := New(testConfig(bigs(2, 3, 4, 5, 6, 7)))
	require.NoError(t, err)

	rep, err := eng.Run()
	require.NoError(t, err)

	assert.Equal(t, Quiescent, rep.State)
	require.Len(t, rep.History, 1)
	assert.Equal(t, 0, rep.History[0].Step)
	assert.Equal(t, 0, rep.History[0].Swaps)
	assert.Equal(t, 1.0, rep.History[0].Monotonicity)
	assert.Equal(t, 0, rep.TotalSwaps)
}

func TestReversedLatticeSortsToQuiescence(t *testing.T) {
	eng, err := New(testConfig(bigs(7, 6, 5, 4, 3, 2)))
	require.NoError(t, err)

	rep, err := eng.Run()
	require.NoError(t, err)

	assert.Equal(t, Quiescent, rep.State)
	last := rep.History[len(rep.History)-1]
	assert.Equal(t, 1.0, last.Monotonicity)

	got := make([]string, len(rep.Final))
	for i, c := range rep.Final {
		got[i] = c.Value.String()
	}
	assert.Equal(t, []string{"2", "3", "4", "5", "6", "7"}, got)

	// Adjacent transpositions fix exactly one inversion each; the fully
	// reversed 6-lattice starts with 15.
	assert.Equal(t, 15, rep.TotalSwaps)
}

func TestValueMultisetConservedAcrossRun(t *testing.T) {
	input := bigs(31, 4, 27, 9, 16, 2, 45, 8, 19, 3)
	eng, err := New(testConfig(input))
	require.NoError(t, err)

	rep, err := eng.Run()
	require.NoError(t, err)

	want := make([]string, len(input))
	for i, v := range input {
		want[i] = v.String()
	}
	got := make([]string, len(rep.Final))
	for i, c := range rep.Final {
		got[i] = c.Value.String()
	}
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
	assert.Len(t, rep.Final, len(input))
}

func TestFrozenCellIsRelocatedByNeighbors(t *testing.T) {
	// The highest-energy cell sits at position 0 of a fully reversed
	// lattice, frozen. It can never initiate, but neighbors drag it along,
	// so the run still fully sorts.
	input := bigs(7, 6, 5, 4, 3, 2)

	control, err := New(testConfig(input))
	require.NoError(t, err)
	controlRep, err := control.Run()
	require.NoError(t, err)

	cfg := testConfig(input)
	cfg.FrozenIndices = []int{0}
	frozen, err := New(cfg)
	require.NoError(t, err)
	frozenRep, err := frozen.Run()
	require.NoError(t, err)

	assert.Equal(t, Quiescent, frozenRep.State)
	assert.Equal(t, 1.0, frozenRep.History[len(frozenRep.History)-1].Monotonicity)
	assert.Equal(t, "7", frozenRep.Final[5].Value.String())
	assert.True(t, frozenRep.Final[5].Frozen)
	assert.GreaterOrEqual(t, frozenRep.TotalSwaps, controlRep.TotalSwaps)
	assert.GreaterOrEqual(t, frozenRep.Sweeps, controlRep.Sweeps)
}

func TestStepLimitReached(t *testing.T) {
	cfg := testConfig(bigs(9, 8, 7, 6, 5, 4, 3, 2))
	cfg.MaxSweeps = 2
	eng, err := New(cfg)
	require.NoError(t, err)

	rep, err := eng.Run()
	require.NoError(t, err)

	assert.Equal(t, StepLimitReached, rep.State)
	assert.Len(t, rep.History, 2)
}

func TestDeterministicAcrossIdenticalSeeds(t *testing.T) {
	input := bigs(12, 7, 19, 3, 25, 14, 8, 21, 5, 17)
	run := func() *Report {
		cfg := testConfig(input)
		cfg.Types = []string{"ident", "ident2", "ident3"}
		cfg.Specs["ident2"] = cfg.Specs["ident"]
		cfg.Specs["ident3"] = cfg.Specs["ident"]
		cfg.SweepOrder = OrderSeeded
		cfg.Rng = entropy.New(99)
		eng, err := New(cfg)
		require.NoError(t, err)
		rep, err := eng.Run()
		require.NoError(t, err)
		return rep
	}

	a, b := run(), run()
	assert.Equal(t, a.State, b.State)
	assert.Equal(t, a.History, b.History)
	assert.Equal(t, a.BacktrackIndex, b.BacktrackIndex)
	for i := range a.Final {
		assert.Equal(t, a.Final[i].Value.String(), b.Final[i].Value.String())
		assert.Equal(t, a.Final[i].Type, b.Final[i].Type)
	}
}

func TestMonotonicityWithinBoundsEverySweep(t *testing.T) {
	cfg := testConfig(bigs(50, 3, 47, 8, 42, 13, 37, 18, 31, 23))
	cfg.SweepOrder = OrderSeeded
	eng, err := New(cfg)
	require.NoError(t, err)

	rep, err := eng.Run()
	require.NoError(t, err)

	for _, h := range rep.History {
		assert.GreaterOrEqual(t, h.Monotonicity, 0.0)
		assert.LessOrEqual(t, h.Monotonicity, 1.0)
		assert.GreaterOrEqual(t, h.Clustering, 0.0)
		assert.LessOrEqual(t, h.Clustering, 1.0)
	}
	assert.GreaterOrEqual(t, rep.BacktrackIndex, 0.0)
}

func TestConfigurationErrorsFailFast(t *testing.T) {
	base := func() Config { return testConfig(bigs(2, 3, 4)) }

	t.Run("empty candidates", func(t *testing.T) {
		cfg := base()
		cfg.Candidates = nil
		_, err := New(cfg)
		assert.Error(t, err)
	})

	t.Run("duplicate values", func(t *testing.T) {
		cfg := base()
		cfg.Candidates = bigs(2, 3, 2)
		_, err := New(cfg)
		assert.ErrorContains(t, err, "duplicate")
	})

	t.Run("non-positive sweep cap", func(t *testing.T) {
		cfg := base()
		cfg.MaxSweeps = 0
		_, err := New(cfg)
		assert.Error(t, err)
	})

	t.Run("frozen index out of range", func(t *testing.T) {
		cfg := base()
		cfg.FrozenIndices = []int{3}
		_, err := New(cfg)
		assert.ErrorContains(t, err, "out of range")
	})

	t.Run("frozen count out of range", func(t *testing.T) {
		cfg := base()
		cfg.FrozenCount = 4
		_, err := New(cfg)
		assert.Error(t, err)
	})

	t.Run("type without spec", func(t *testing.T) {
		cfg := base()
		cfg.Types = []string{"missing"}
		_, err := New(cfg)
		assert.ErrorContains(t, err, "missing")
	})

	t.Run("unknown sweep order", func(t *testing.T) {
		cfg := base()
		cfg.SweepOrder = "bogus"
		_, err := New(cfg)
		assert.Error(t, err)
	})
}

func TestEnergyFaultIsLocalNotFatal(t *testing.T) {
	// Scoring faults on one poisoned value: the run must finish anyway,
	// with the fault on record and the healthy cells fully sorted.
	poisoned := big.NewInt(13)
	specs := map[string]energy.Spec{
		"faulty": {
			Name: "faulty",
			Fn: func(n, modulus *big.Int, p energy.Params) (*big.Float, error) {
				if n.Cmp(poisoned) == 0 {
					return nil, fmt.Errorf("%w: excluded value %s", energy.ErrDomain, n)
				}
				return new(big.Float).SetPrec(energy.Prec).SetInt(n), nil
			},
		},
	}

	cfg := testConfig(bigs(9, 13, 5, 2, 7))
	cfg.Types = []string{"faulty"}
	cfg.Specs = specs
	eng, err := New(cfg)
	require.NoError(t, err)

	rep, err := eng.Run()
	require.NoError(t, err)

	assert.Contains(t, []State{Quiescent, StepLimitReached}, rep.State)
	require.NotEmpty(t, rep.Faults)
	assert.Equal(t, "13", rep.Faults[0].Value)

	// The poisoned cell ranks last (infinite energy) in the snapshot.
	for _, c := range rep.Final {
		if c.Value.String() == "13" {
			assert.True(t, c.Energy.IsInf())
		} else {
			assert.False(t, c.Energy.IsInf())
		}
	}
}

func TestEnergyFaultRecurrenceIsCountedNotDuplicated(t *testing.T) {
	// The poisoned cell gets evaluated again on every sweep (neighbors
	// probing swaps, metric collection, the final snapshot). One fault
	// record must absorb all of that, with its count keeping the tally.
	poisoned := big.NewInt(13)
	specs := map[string]energy.Spec{
		"faulty": {
			Name: "faulty",
			Fn: func(n, modulus *big.Int, p energy.Params) (*big.Float, error) {
				if n.Cmp(poisoned) == 0 {
					return nil, fmt.Errorf("%w: excluded value %s", energy.ErrDomain, n)
				}
				return new(big.Float).SetPrec(energy.Prec).SetInt(n), nil
			},
		},
	}

	cfg := testConfig(bigs(9, 13, 5, 2, 7))
	cfg.Types = []string{"faulty"}
	cfg.Specs = specs
	eng, err := New(cfg)
	require.NoError(t, err)

	rep, err := eng.Run()
	require.NoError(t, err)

	require.Len(t, rep.Faults, 1)
	f := rep.Faults[0]
	assert.Equal(t, "13", f.Value)
	assert.Equal(t, 0, f.Step)
	assert.Greater(t, f.Count, 1)
}

func TestClusteringExpectationAtInitialization(t *testing.T) {
	// With 3 equiprobable types, an interior triple matches with
	// probability 1/9. Averaged over 30 seeded lattices of length 1000
	// the sample mean must sit within ±0.05 of that.
	specs := identitySpec()
	specs["b"] = specs["ident"]
	specs["c"] = specs["ident"]

	candidates := make([]*big.Int, 1000)
	for i := range candidates {
		candidates[i] = big.NewInt(int64(i + 2))
	}

	total := 0.0
	const runs = 30
	for seed := int64(0); seed < runs; seed++ {
		cfg := testConfig(candidates)
		cfg.Types = []string{"ident", "b", "c"}
		cfg.Specs = specs
		cfg.Rng = entropy.New(seed)
		eng, err := New(cfg)
		require.NoError(t, err)

		types := make([]string, eng.Lattice().Len())
		for i, c := range eng.Lattice().Cells {
			types[i] = c.Type
		}
		total += metrics.Clustering(types)
	}

	assert.InDelta(t, 1.0/9.0, total/runs, 0.05)
}

func TestHistoryAppendsExactlyOncePerSweep(t *testing.T) {
	eng, err := New(testConfig(bigs(5, 2, 9, 1, 7)))
	require.NoError(t, err)

	rep, err := eng.Run()
	require.NoError(t, err)

	assert.Equal(t, rep.Sweeps, len(rep.History))
	for i, h := range rep.History {
		assert.Equal(t, i, h.Step)
	}
	// Terminal sweep performed zero swaps.
	assert.Equal(t, 0, rep.History[len(rep.History)-1].Swaps)
}
