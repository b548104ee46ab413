package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/cellview/internal/config"
	"github.com/talgya/cellview/internal/harness"
	"github.com/talgya/cellview/internal/persistence"
)

var runFlags struct {
	configPath  string
	mode        string
	overrideN   string
	gate        string
	seedHex     string
	samples     int
	window      int64
	sampler     string
	denseWindow int64
	types       string
	sweepOrder  string
	maxSweeps   int
	epsilon     float64
	frozenCount int
	topM        int
	logDir      string
	dbPath      string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one run and write its report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(cmd)
		if err != nil {
			return err
		}

		out, err := harness.Execute(cfg)
		if err != nil {
			return err
		}

		path, err := persistence.WriteReport(cfg.LogDir, out)
		if err != nil {
			return err
		}
		slog.Info("report written", "path", path)

		if cfg.DBPath != "" {
			db, err := persistence.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.SaveOutcome(out); err != nil {
				return fmt.Errorf("save run: %w", err)
			}
			slog.Info("run saved", "db", cfg.DBPath, "run_id", out.RunID)
		}

		fmt.Printf("Run %s: %s after %s sweeps over %s candidates\n",
			out.RunID, out.Report.State,
			humanize.Comma(int64(out.Report.Sweeps)),
			humanize.Comma(int64(out.CandidateCount)))
		printCertification(out, 5)
		return nil
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.configPath, "config", "c", "", "YAML run configuration")
	f.StringVar(&runFlags.mode, "mode", config.ModeChallenge, "challenge or validation")
	f.StringVar(&runFlags.overrideN, "override-n", "", "override modulus (validation mode)")
	f.StringVar(&runFlags.gate, "gate", "", "validation ladder gate, e.g. G030")
	f.StringVar(&runFlags.seedHex, "seed-hex", "", "override hex seed")
	f.IntVar(&runFlags.samples, "samples", 50_000, "corridor sample count")
	f.Int64Var(&runFlags.window, "window", 10_000_000, "corridor half-width around sqrt(N)")
	f.StringVar(&runFlags.sampler, "sampler", config.SamplerUniform, "uniform or jittered")
	f.Int64Var(&runFlags.denseWindow, "dense-window", 0, "dense contiguous band half-width (0 = off)")
	f.StringVar(&runFlags.types, "types", "dirichlet5", "comma-separated behavioral types")
	f.StringVar(&runFlags.sweepOrder, "sweep-order", "ascending", "ascending or seeded")
	f.IntVar(&runFlags.maxSweeps, "max-sweeps", 50, "sweep cap")
	f.Float64Var(&runFlags.epsilon, "epsilon", 0.01, "backtracking hysteresis threshold")
	f.IntVar(&runFlags.frozenCount, "frozen-count", 0, "randomly frozen cell count")
	f.IntVar(&runFlags.topM, "top-m", 50, "corridor output size")
	f.StringVar(&runFlags.logDir, "log-dir", "logs", "directory for JSON reports")
	f.StringVar(&runFlags.dbPath, "db", "", "SQLite database path (empty = no db)")
}

// loadRunConfig layers CLI flags over the YAML file over defaults. Only
// flags the user actually set override file values.
func loadRunConfig(cmd *cobra.Command) (config.Run, error) {
	cfg := config.Default()
	if runFlags.configPath != "" {
		var err error
		cfg, err = config.Load(runFlags.configPath)
		if err != nil {
			return cfg, err
		}
	}

	set := cmd.Flags().Changed
	if set("mode") {
		cfg.Mode = runFlags.mode
	}
	if set("override-n") {
		cfg.OverrideN = runFlags.overrideN
	}
	if set("gate") {
		cfg.Gate = runFlags.gate
	}
	if set("seed-hex") {
		cfg.SeedHex = runFlags.seedHex
	}
	if set("samples") {
		cfg.Samples = runFlags.samples
	}
	if set("window") {
		cfg.Window = runFlags.window
	}
	if set("sampler") {
		cfg.Sampler = runFlags.sampler
	}
	if set("dense-window") {
		cfg.DenseWindow = runFlags.denseWindow
	}
	if set("types") {
		cfg.Types = splitTypes(runFlags.types)
	}
	if set("sweep-order") {
		cfg.SweepOrder = runFlags.sweepOrder
	}
	if set("max-sweeps") {
		cfg.MaxSweeps = runFlags.maxSweeps
	}
	if set("epsilon") {
		cfg.Epsilon = runFlags.epsilon
	}
	if set("frozen-count") {
		cfg.FrozenCount = runFlags.frozenCount
	}
	if set("top-m") {
		cfg.TopM = runFlags.topM
	}
	if set("log-dir") {
		cfg.LogDir = runFlags.logDir
	}
	if set("db") {
		cfg.DBPath = runFlags.dbPath
	}
	return cfg, nil
}

func splitTypes(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func printCertification(out *harness.Outcome, limit int) {
	fmt.Print(certificationSummary(out, limit))
}

func certificationSummary(out *harness.Outcome, limit int) string {
	if len(out.Certification) == 0 {
		return ""
	}
	if limit > len(out.Certification) {
		limit = len(out.Certification)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Top-%d certified (of %d):\n", limit, len(out.Certification))
	for _, r := range out.Certification[:limit] {
		verdict := "miss"
		if r.IsFactor {
			verdict = "FACTOR"
		}
		fmt.Fprintf(&b, "  #%-3d %s  gcd=%s  %s\n", r.Rank, r.Value, r.Gcd, verdict)
	}
	return b.String()
}
