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

var gridFlags struct {
	configPath string
	seeds      string
	parallel   int
	logDir     string
	dbPath     string
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Execute a base configuration across several seeds in parallel",
	RunE: func(cmd *cobra.Command, args []string) error {
		if gridFlags.seeds == "" {
			return fmt.Errorf("grid: --seeds is required")
		}
		base := config.Default()
		if gridFlags.configPath != "" {
			var err error
			base, err = config.Load(gridFlags.configPath)
			if err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("log-dir") {
			base.LogDir = gridFlags.logDir
		}
		if cmd.Flags().Changed("db") {
			base.DBPath = gridFlags.dbPath
		}

		var seeds []string
		for _, s := range strings.Split(gridFlags.seeds, ",") {
			if s = strings.TrimSpace(s); s != "" {
				seeds = append(seeds, s)
			}
		}

		cfgs := harness.SeedVariants(base, seeds)
		slog.Info("grid starting", "runs", len(cfgs), "parallel", gridFlags.parallel)
		outcomes, err := harness.ExecuteGrid(cfgs, gridFlags.parallel)
		if err != nil {
			return err
		}

		var db *persistence.DB
		if base.DBPath != "" {
			db, err = persistence.Open(base.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
		}

		for _, out := range outcomes {
			path, err := persistence.WriteReport(base.LogDir, out)
			if err != nil {
				return err
			}
			if db != nil {
				if err := db.SaveOutcome(out); err != nil {
					return fmt.Errorf("save run %s: %w", out.RunID, err)
				}
			}
			fmt.Printf("%s  seed=%s  %s  sweeps=%d  swaps=%s  index=%.4f  %s\n",
				out.RunID[:8], truncate(out.SeedHex, 8), out.Report.State,
				out.Report.Sweeps, humanize.Comma(int64(out.Report.TotalSwaps)),
				out.Report.BacktrackIndex, path)
		}
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func init() {
	f := gridCmd.Flags()
	f.StringVarP(&gridFlags.configPath, "config", "c", "", "YAML base configuration")
	f.StringVar(&gridFlags.seeds, "seeds", "", "comma-separated hex seeds, one run each")
	f.IntVar(&gridFlags.parallel, "parallel", 0, "max concurrent runs (0 = unbounded)")
	f.StringVar(&gridFlags.logDir, "log-dir", "logs", "directory for JSON reports")
	f.StringVar(&gridFlags.dbPath, "db", "", "SQLite database path (empty = no db)")
}
