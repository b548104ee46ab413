package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/cellview/internal/persistence"
)

var runsFlags struct {
	dbPath string
	limit  int
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs and any certified factor hits",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := persistence.Open(runsFlags.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		summaries, err := db.ListRuns(runsFlags.limit)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("no runs stored")
			return nil
		}

		for _, s := range summaries {
			fmt.Printf("%s  %s  %-11s %-18s sweeps=%-4d swaps=%-8s index=%-8.4f candidates=%s faults=%d (%s)\n",
				s.ID[:8], s.CreatedAt, s.Mode, s.State, s.Sweeps,
				humanize.Comma(int64(s.TotalSwaps)), s.BacktrackIndex,
				humanize.Comma(int64(s.CandidateCount)), s.FaultCount,
				fmt.Sprintf("%dms", s.ElapsedMs))
		}

		hits, err := db.FactorHits()
		if err != nil {
			return err
		}
		if len(hits) > 0 {
			fmt.Println("certified factors:")
			for _, h := range hits {
				fmt.Printf("  %s\n", h)
			}
		}
		return nil
	},
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&runsFlags.dbPath, "db", "data/cellview.db", "SQLite database path")
	f.IntVar(&runsFlags.limit, "limit", 20, "max runs to list")
}
