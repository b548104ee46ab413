// Package config defines a run's full configuration, loadable from YAML.
// Validation is fail-fast: a config that cannot produce a well-formed run
// is rejected before any sweep begins, so no partial run is ever reported.
package config

import (
	"fmt"
	"math/big"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/cellview/internal/candidates"
	"github.com/talgya/cellview/internal/challenge"
	"github.com/talgya/cellview/internal/ladder"
)

// Run modes.
const (
	ModeChallenge  = "challenge"  // canonical 127-bit modulus, sparse corridors
	ModeValidation = "validation" // small override modulus, dense domain
)

// Samplers for challenge-mode corridors.
const (
	SamplerUniform  = "uniform"
	SamplerJittered = "jittered"
)

// Band is a sampled corridor band (challenge mode).
type Band struct {
	Center  string `yaml:"center"` // decimal integer
	Window  int64  `yaml:"window"`
	Samples int    `yaml:"samples"`
}

// DenseBand is a fully materialized band.
type DenseBand struct {
	Center string `yaml:"center"`
	Half   int64  `yaml:"half"`
}

// Run is one complete run configuration.
type Run struct {
	Mode      string `yaml:"mode"`
	OverrideN string `yaml:"override_n,omitempty"` // decimal, validation mode
	Gate      string `yaml:"gate,omitempty"`       // validation ladder gate, e.g. G030
	SeedHex   string `yaml:"seed_hex,omitempty"`   // default SHA-256(N)

	// Candidate generation.
	Samples     int         `yaml:"samples"`
	Window      int64       `yaml:"window"`
	Sampler     string      `yaml:"sampler"`
	DenseWindow int64       `yaml:"dense_window,omitempty"`
	Bands       []Band      `yaml:"bands,omitempty"`
	DenseBands  []DenseBand `yaml:"dense_bands,omitempty"`

	// Dynamics.
	Types         []string `yaml:"types"`
	SweepOrder    string   `yaml:"sweep_order"`
	MaxSweeps     int      `yaml:"max_sweeps"`
	Epsilon       float64  `yaml:"epsilon"`
	FrozenCount   int      `yaml:"frozen_count"`
	FrozenIndices []int    `yaml:"frozen_indices,omitempty"`

	// Output.
	TopM   int    `yaml:"top_m"`
	LogDir string `yaml:"log_dir"`
	DBPath string `yaml:"db_path,omitempty"`
}

// Default returns the baseline challenge-mode configuration.
func Default() Run {
	return Run{
		Mode:       ModeChallenge,
		Samples:    50_000,
		Window:     candidates.DefaultWindow,
		Sampler:    SamplerUniform,
		Types:      []string{"dirichlet5"},
		SweepOrder: "ascending",
		MaxSweeps:  50,
		Epsilon:    0.01,
		TopM:       50,
		LogDir:     "logs",
	}
}

// Load reads a YAML config, layered over Default.
func Load(path string) (Run, error) {
	r := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return r, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return r, nil
}

// Validate rejects configurations that cannot run. Lattice-shape checks
// that need the realized candidate count (frozen index range, duplicates)
// happen in the engine constructor, also before any sweep.
func (r Run) Validate() error {
	switch r.Mode {
	case ModeChallenge, ModeValidation:
	default:
		return fmt.Errorf("config: unknown mode %q", r.Mode)
	}
	switch r.Sampler {
	case SamplerUniform, SamplerJittered:
	default:
		return fmt.Errorf("config: unknown sampler %q", r.Sampler)
	}
	if r.Mode == ModeChallenge && (r.OverrideN != "" || r.Gate != "") {
		return fmt.Errorf("config: challenge mode must use the canonical modulus; use validation mode to override")
	}
	if r.Mode == ModeValidation && r.OverrideN == "" && r.Gate == "" {
		return fmt.Errorf("config: validation mode requires override_n or gate")
	}
	if r.OverrideN != "" && r.Gate != "" {
		return fmt.Errorf("config: override_n and gate are mutually exclusive")
	}
	if r.Samples <= 0 && r.DenseWindow <= 0 && len(r.Bands) == 0 && len(r.DenseBands) == 0 {
		return fmt.Errorf("config: no candidate source configured")
	}
	if len(r.Types) == 0 {
		return fmt.Errorf("config: at least one behavioral type is required")
	}
	if r.SweepOrder != "ascending" && r.SweepOrder != "seeded" {
		return fmt.Errorf("config: unknown sweep order %q", r.SweepOrder)
	}
	if r.MaxSweeps <= 0 {
		return fmt.Errorf("config: max_sweeps must be positive, got %d", r.MaxSweeps)
	}
	if r.Epsilon < 0 {
		return fmt.Errorf("config: epsilon must be non-negative, got %v", r.Epsilon)
	}
	if r.FrozenCount < 0 {
		return fmt.Errorf("config: frozen_count must be non-negative, got %d", r.FrozenCount)
	}
	for _, idx := range r.FrozenIndices {
		if idx < 0 {
			return fmt.Errorf("config: negative frozen index %d", idx)
		}
	}
	if r.TopM <= 0 {
		return fmt.Errorf("config: top_m must be positive, got %d", r.TopM)
	}
	return nil
}

// Modulus resolves the run's N: a ladder gate, an explicit override, or the
// canonical challenge.
func (r Run) Modulus() (*big.Int, error) {
	if r.Gate != "" {
		g, err := ladder.Find(r.Gate)
		if err != nil {
			return nil, err
		}
		return g.N, nil
	}
	if r.OverrideN == "" {
		return challenge.Canonical.N, nil
	}
	n, ok := new(big.Int).SetString(r.OverrideN, 10)
	if !ok || n.Sign() <= 0 {
		return nil, fmt.Errorf("config: bad override_n %q", r.OverrideN)
	}
	return n, nil
}

// Seed resolves the run's hex seed, defaulting to SHA-256 of the modulus.
func (r Run) Seed(modulus *big.Int) string {
	if r.SeedHex != "" {
		return r.SeedHex
	}
	return challenge.DeriveSeedHex(modulus)
}
