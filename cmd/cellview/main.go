// Command cellview runs the cell-view morphogenesis search engine.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "cellview",
	Short: "Local-rule lattice reordering engine over integer candidates",
	Long: "cellview evolves an ordered lattice of integer candidates by local\n" +
		"energy comparisons, extracts monotonicity / clustering / backtracking\n" +
		"signals from the run, and certifies the resulting low-energy corridor.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(ladderCmd)
	rootCmd.Version = version
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
