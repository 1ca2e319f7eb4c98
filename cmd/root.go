// Package cmd holds the monopoly command line: the room server, the bot simulator and a dev token helper.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "monopoly",
	Short: "Monopoly rules engine and multiplayer room server",
	Long: `Runs the Monopoly room server or plays bot games against the rules engine.

Examples:
  monopoly serve
  monopoly serve --memory
  monopoly simulate --players 4 --seed 7 --preset quick
  monopoly token --user u1 --name Alice
  monopoly journal --path sim.db sim-7`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(journalCmd)
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
