package energy

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/cellview/internal/challenge"
)

func TestResidueExactness(t *testing.T) {
	t.Run("divisor scores zero", func(t *testing.T) {
		e, err := Residue(big.NewInt(10), big.NewInt(100), Params{})
		require.NoError(t, err)
		assert.Equal(t, 0, e.Sign())
	})

	t.Run("matches exact ratio", func(t *testing.T) {
		// 100 mod 7 = 2, so the energy is exactly 2/7 at full precision.
		e, err := Residue(big.NewInt(7), big.NewInt(100), Params{})
		require.NoError(t, err)

		want := new(big.Float).SetPrec(Prec).SetInt64(2)
		want.Quo(want, new(big.Float).SetPrec(Prec).SetInt64(7))
		assert.Equal(t, 0, e.Cmp(want))
	})

	t.Run("zero divisor is a domain fault", func(t *testing.T) {
		_, err := Residue(big.NewInt(0), big.NewInt(100), Params{})
		assert.True(t, errors.Is(err, ErrDomain))
	})
}

func TestNoComparisonDriftAtChallengeMagnitude(t *testing.T) {
	// Adjacent candidates near sqrt(N) must not collapse onto equal
	// energies — that is the whole point of exact residues.
	n := challenge.Canonical.N
	a := new(big.Int).Set(challenge.Canonical.SqrtN)
	b := new(big.Int).Add(a, big.NewInt(1))

	ea, err := Residue(a, n, Params{})
	require.NoError(t, err)
	eb, err := Residue(b, n, Params{})
	require.NoError(t, err)

	assert.NotEqual(t, 0, ea.Cmp(eb))
}

func TestDirichlet(t *testing.T) {
	p := Params{J: 5, Normalize: true, Invert: true}

	t.Run("bounded", func(t *testing.T) {
		for _, n := range []int64{3, 7, 11, 100, 9973} {
			e, err := Dirichlet(big.NewInt(n), big.NewInt(1_000_003), p)
			require.NoError(t, err)
			f, _ := e.Float64()
			assert.GreaterOrEqual(t, f, 0.0)
			assert.LessOrEqual(t, f, 1.0)
		}
	})

	t.Run("inverted kernel rewards zero residue", func(t *testing.T) {
		// 100 mod 10 = 0: the kernel peaks, inversion sends energy to 0.
		e, err := Dirichlet(big.NewInt(10), big.NewInt(100), p)
		require.NoError(t, err)
		f, _ := e.Float64()
		assert.InDelta(t, 0.0, f, 1e-12)
	})

	t.Run("pure and repeatable", func(t *testing.T) {
		a, err := Dirichlet(big.NewInt(7919), big.NewInt(1_000_003), p)
		require.NoError(t, err)
		b, err := Dirichlet(big.NewInt(7919), big.NewInt(1_000_003), p)
		require.NoError(t, err)
		assert.Equal(t, 0, a.Cmp(b))
	})

	t.Run("non-positive candidate faults", func(t *testing.T) {
		_, err := Dirichlet(big.NewInt(-3), big.NewInt(100), p)
		assert.True(t, errors.Is(err, ErrDomain))
	})
}

func TestArctanGeodesicValleyAtSqrt(t *testing.T) {
	modulus := big.NewInt(1_000_003)
	sqrtN := new(big.Int).Sqrt(modulus) // 1000
	p := Params{Scale: 2.0}

	at, err := ArctanGeodesic(sqrtN, modulus, p)
	require.NoError(t, err)
	off, err := ArctanGeodesic(big.NewInt(1200), modulus, p)
	require.NoError(t, err)

	assert.Equal(t, 0, at.Sign())
	assert.Equal(t, -1, at.Cmp(off))
}

func TestZMetricCombinesBothTerms(t *testing.T) {
	modulus := big.NewInt(10403) // 101 × 103
	p := Params{Alpha: 0.2, Beta: 1.0}

	// 101 divides the modulus and sits next to sqrt(10403) = 101.
	factor, err := ZMetric(big.NewInt(101), modulus, p)
	require.NoError(t, err)
	other, err := ZMetric(big.NewInt(97), modulus, p)
	require.NoError(t, err)

	assert.Equal(t, -1, factor.Cmp(other))
}

func TestComposite(t *testing.T) {
	t.Run("unknown sub-function fails", func(t *testing.T) {
		_, err := Composite(big.NewInt(7), big.NewInt(100), Params{
			Weights: map[string]float64{"nope": 1.0},
		})
		assert.ErrorContains(t, err, "unknown function")
	})

	t.Run("zero weights score zero", func(t *testing.T) {
		e, err := Composite(big.NewInt(7), big.NewInt(100), Params{})
		require.NoError(t, err)
		assert.Equal(t, 0, e.Sign())
	})

	t.Run("deterministic blend", func(t *testing.T) {
		p := Params{
			Weights: map[string]float64{"residue": 0.4, "dirichlet": 0.6},
			Sub: map[string]Params{
				"dirichlet": {J: 11, Normalize: true, Invert: true},
			},
		}
		a, err := Composite(big.NewInt(7919), big.NewInt(1_000_003), p)
		require.NoError(t, err)
		b, err := Composite(big.NewInt(7919), big.NewInt(1_000_003), p)
		require.NoError(t, err)
		assert.Equal(t, 0, a.Cmp(b))
	})

	t.Run("propagates sub-function domain faults", func(t *testing.T) {
		_, err := Composite(big.NewInt(0), big.NewInt(100), Params{
			Weights: map[string]float64{"residue": 1.0},
		})
		assert.True(t, errors.Is(err, ErrDomain))
	})
}

func TestResolve(t *testing.T) {
	for _, name := range []string{"dirichlet", "arctan", "zmetric", "residue", "composite"} {
		fn, err := Resolve(name)
		require.NoError(t, err)
		assert.NotNil(t, fn)
	}

	_, err := Resolve("unknown")
	assert.Error(t, err)
}

func TestDefaultSpecsEvaluate(t *testing.T) {
	modulus := big.NewInt(1_000_003)
	specs := DefaultSpecs(new(big.Int).Sqrt(modulus))

	require.Contains(t, specs, "dirichlet5")
	require.Contains(t, specs, "combo_dir11_res")
	for name, spec := range specs {
		e, err := spec.Score(big.NewInt(977), modulus)
		require.NoError(t, err, "spec %s", name)
		assert.NotNil(t, e)
	}
}
