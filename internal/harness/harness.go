// Package harness assembles and executes complete runs: candidate
// generation, engine construction, corridor selection, and certification.
// Each run owns its lattice, history, and generator, so independent runs
// share no mutable state and the grid executor can fan them out freely.
package harness

import (
	"fmt"
	"log/slog"
	"math/big"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/cellview/internal/candidates"
	"github.com/talgya/cellview/internal/cert"
	"github.com/talgya/cellview/internal/config"
	"github.com/talgya/cellview/internal/corridor"
	"github.com/talgya/cellview/internal/energy"
	"github.com/talgya/cellview/internal/engine"
	"github.com/talgya/cellview/internal/entropy"
)

// Outcome is everything one run produced.
type Outcome struct {
	RunID          string
	Config         config.Run
	Modulus        *big.Int
	SeedHex        string
	CandidateCount int
	Report         *engine.Report
	Corridor       []corridor.Entry
	Certification  []cert.Result
	Elapsed        time.Duration
}

// Execute runs one configuration end to end.
func Execute(cfg config.Run) (*Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	modulus, err := cfg.Modulus()
	if err != nil {
		return nil, err
	}
	seedHex := cfg.Seed(modulus)
	seed, err := entropy.SeedFromHex(seedHex)
	if err != nil {
		return nil, err
	}
	rng := entropy.New(seed)

	cands, err := buildCandidates(cfg, modulus, rng, seed)
	if err != nil {
		return nil, err
	}
	if cfg.Mode == config.ModeChallenge {
		if err := candidates.GuardCount(len(cands)); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	eng, err := engine.New(engine.Config{
		Modulus:       modulus,
		Candidates:    cands,
		Types:         cfg.Types,
		Specs:         energy.DefaultSpecs(new(big.Int).Sqrt(modulus)),
		SweepOrder:    engine.SweepOrder(cfg.SweepOrder),
		MaxSweeps:     cfg.MaxSweeps,
		Epsilon:       cfg.Epsilon,
		FrozenCount:   cfg.FrozenCount,
		FrozenIndices: cfg.FrozenIndices,
		Rng:           rng,
	})
	if err != nil {
		return nil, err
	}

	rep, err := eng.Run()
	if err != nil {
		return nil, err
	}

	corr, err := corridor.Select(rep, cfg.TopM)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		RunID:          uuid.NewString(),
		Config:         cfg,
		Modulus:        modulus,
		SeedHex:        seedHex,
		CandidateCount: len(cands),
		Report:         rep,
		Corridor:       corr,
		Certification:  cert.Certify(corr, modulus),
		Elapsed:        time.Since(start),
	}

	slog.Info("run complete",
		"run_id", out.RunID,
		"state", rep.State.String(),
		"sweeps", rep.Sweeps,
		"total_swaps", rep.TotalSwaps,
		"backtrack_index", fmt.Sprintf("%.4f", rep.BacktrackIndex),
		"episodes", len(rep.Episodes),
		"faults", len(rep.Faults),
		"corridor", len(corr),
		"elapsed", out.Elapsed,
	)
	return out, nil
}

// buildCandidates realizes the configured candidate source. Order of
// precedence mirrors the run surface: explicit dense bands, dense window,
// validation domain, sampled bands, then the plain corridor samplers.
func buildCandidates(cfg config.Run, modulus *big.Int, rng *rand.Rand, seed int64) ([]*big.Int, error) {
	if len(cfg.DenseBands) > 0 {
		bands := make([]candidates.Band, len(cfg.DenseBands))
		for i, b := range cfg.DenseBands {
			center, ok := new(big.Int).SetString(b.Center, 10)
			if !ok {
				return nil, fmt.Errorf("harness: bad dense band center %q", b.Center)
			}
			bands[i] = candidates.Band{Center: center, Half: b.Half}
		}
		return candidates.DenseBands(bands), nil
	}
	if cfg.DenseWindow > 0 {
		return candidates.DenseBand(new(big.Int).Sqrt(modulus), cfg.DenseWindow), nil
	}
	// Validation gates above the full-domain limit fall through to the
	// sampled sources, same as challenge mode.
	if cfg.Mode == config.ModeValidation && modulus.Cmp(candidates.DomainLimit) <= 0 {
		return candidates.ValidationDomain(modulus)
	}
	if len(cfg.Bands) > 0 {
		bands := make([]candidates.SampledBand, len(cfg.Bands))
		for i, b := range cfg.Bands {
			center, ok := new(big.Int).SetString(b.Center, 10)
			if !ok {
				return nil, fmt.Errorf("harness: bad band center %q", b.Center)
			}
			bands[i] = candidates.SampledBand{Center: center, Window: b.Window, Samples: b.Samples}
		}
		return candidates.Multiband(modulus, rng, bands), nil
	}
	if cfg.Sampler == config.SamplerJittered {
		return candidates.Jittered(modulus, seed, cfg.Samples, cfg.Window, nil), nil
	}
	return candidates.Corridor(modulus, rng, cfg.Samples, cfg.Window, nil, false), nil
}
