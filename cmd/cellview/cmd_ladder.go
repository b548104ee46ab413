package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/talgya/cellview/internal/ladder"
)

var ladderCmd = &cobra.Command{
	Use:   "ladder",
	Short: "Print the validation ladder of unbalanced semiprime gates",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("%-6s %-6s %-8s %-8s %-10s %s\n", "gate", "bits", "p bits", "q bits", "p/sqrtN", "N")
		for _, g := range ladder.Gates() {
			if !g.Known() {
				fmt.Printf("%-6s %-6d %-8s %-8s %-10s %s  (%s)\n",
					g.Name, g.ActualBits, "?", "?", "?", g.N, g.Note)
				continue
			}
			frac, _ := new(big.Float).Quo(
				new(big.Float).SetInt(g.P),
				new(big.Float).SetInt(g.SqrtN),
			).Float64()
			fmt.Printf("%-6s %-6d %-8d %-8d %-10.6f %s\n",
				g.Name, g.ActualBits, g.P.BitLen(), g.Q.BitLen(), frac, g.N)
		}
		return nil
	},
}
